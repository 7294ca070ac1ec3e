package optimizer

import (
	"github.com/shopspring/decimal"

	"github.com/vetanhq/vetan/internal/domain"
)

// SuggestionType classifies a tax-saving suggestion for display.
type SuggestionType string

const (
	SuggestionInfo    SuggestionType = "info"
	SuggestionWarning SuggestionType = "warning"
	SuggestionTip     SuggestionType = "tip"
)

// Suggestion is one actionable tax-saving recommendation produced by the
// rule set. PotentialSaving is set only when a rule can estimate one.
type Suggestion struct {
	Type            SuggestionType   `json:"type"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	PotentialSaving *decimal.Decimal `json:"potentialSaving,omitempty"`
}

// OptimizerResult is the outcome of running both regime calculations on the
// same financial facts.
type OptimizerResult struct {
	Recommended domain.TaxRegime `json:"recommendedRegime"`

	OldRegime domain.TaxCalculationResult `json:"oldRegime"`
	NewRegime domain.TaxCalculationResult `json:"newRegime"`

	SavingsAmount decimal.Decimal `json:"savingsAmount"`
	SavingsPct    decimal.Decimal `json:"savingsPercentage"`

	Suggestions []Suggestion `json:"suggestions"`
}

// RecommendedResult returns the calculation behind the recommendation.
func (r *OptimizerResult) RecommendedResult() domain.TaxCalculationResult {
	if r.Recommended == domain.RegimeOld {
		return r.OldRegime
	}
	return r.NewRegime
}

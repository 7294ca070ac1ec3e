package optimizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetanhq/vetan/internal/calculation"
	"github.com/vetanhq/vetan/internal/config"
	"github.com/vetanhq/vetan/internal/domain"
)

func newTestOptimizer() *Optimizer {
	return NewOptimizer(calculation.NewTaxCalculator(config.DefaultTaxSettings()))
}

func TestOptimizeRecommendsNewWithoutDeductions(t *testing.T) {
	o := newTestOptimizer()

	result := o.OptimizeTaxRegime(domain.TaxCalculationInput{
		GrossIncome: decimal.NewFromInt(1500000),
		Regime:      domain.RegimeNew,
	})

	assert.Equal(t, domain.RegimeNew, result.Recommended)
	assert.True(t, result.NewRegime.TotalTax.Equal(decimal.NewFromInt(145600)))
	assert.True(t, result.OldRegime.TotalTax.Equal(decimal.NewFromInt(257400)),
		"Expected old-regime 257400, got %s", result.OldRegime.TotalTax)
	assert.True(t, result.SavingsAmount.Equal(decimal.NewFromInt(111800)))
}

func TestOptimizeRecommendsOldWithFullDeductions(t *testing.T) {
	o := newTestOptimizer()

	result := o.OptimizeTaxRegime(domain.TaxCalculationInput{
		GrossIncome:  decimal.NewFromInt(1500000),
		Regime:       domain.RegimeNew,
		MonthlyBasic: decimal.NewFromInt(50000),
		MonthlyHRA:   decimal.NewFromInt(20000),
		MonthlyRent:  decimal.NewFromInt(15000),
		MetroCity:    true,
		Investments: domain.InvestmentDeclarations{
			Section80C:       decimal.NewFromInt(150000),
			Section80D:       decimal.NewFromInt(25000),
			NPS80CCD1B:       decimal.NewFromInt(50000),
			HomeLoanInterest: decimal.NewFromInt(200000),
		},
	})

	assert.Equal(t, domain.RegimeOld, result.Recommended)
	assert.True(t, result.OldRegime.TotalTax.LessThan(result.NewRegime.TotalTax))
}

func TestOptimizeTieFavorsOldRegime(t *testing.T) {
	o := newTestOptimizer()

	// At 3,00,000 gross both regimes owe zero.
	result := o.OptimizeTaxRegime(domain.TaxCalculationInput{
		GrossIncome: decimal.NewFromInt(300000),
		Regime:      domain.RegimeNew,
	})

	require.True(t, result.OldRegime.TotalTax.IsZero())
	require.True(t, result.NewRegime.TotalTax.IsZero())
	assert.Equal(t, domain.RegimeOld, result.Recommended)
	assert.True(t, result.SavingsAmount.IsZero())
	assert.True(t, result.SavingsPct.IsZero())
}

func TestSuggestionsFlagRebateZeroTax(t *testing.T) {
	o := newTestOptimizer()

	// 7,50,000 gross lands on the 87A limit after the standard deduction,
	// so the new regime owes nothing.
	result := o.OptimizeTaxRegime(domain.TaxCalculationInput{
		GrossIncome: decimal.NewFromInt(750000),
		Regime:      domain.RegimeNew,
	})

	require.Equal(t, domain.RegimeNew, result.Recommended)
	require.True(t, result.NewRegime.RebateApplied)
	require.True(t, result.NewRegime.TotalTax.IsZero())

	require.GreaterOrEqual(t, len(result.Suggestions), 2)
	assert.Equal(t, "Section 87A rebate zeroes your tax", result.Suggestions[1].Title)
	assert.Contains(t, result.Suggestions[1].Description, "₹7,00,000")
}

func TestSuggestionsRebateNoteOmittedWhenTaxDue(t *testing.T) {
	o := newTestOptimizer()

	result := o.OptimizeTaxRegime(domain.TaxCalculationInput{
		GrossIncome: decimal.NewFromInt(1500000),
		Regime:      domain.RegimeNew,
	})

	require.Equal(t, domain.RegimeNew, result.Recommended)
	require.False(t, result.NewRegime.RebateApplied)
	assert.NotContains(t, suggestionTitles(result), "Section 87A rebate zeroes your tax")
}

func TestSuggestionsFlagUnusedDeductionRoom(t *testing.T) {
	o := newTestOptimizer()

	result := o.OptimizeTaxRegime(domain.TaxCalculationInput{
		GrossIncome:  decimal.NewFromInt(1400000),
		Regime:       domain.RegimeOld,
		MonthlyBasic: decimal.NewFromInt(50000),
		MonthlyHRA:   decimal.NewFromInt(20000),
		MonthlyRent:  decimal.NewFromInt(15000),
		MetroCity:    true,
		Investments: domain.InvestmentDeclarations{
			Section80C:       decimal.NewFromInt(50000),
			HomeLoanInterest: decimal.NewFromInt(200000),
		},
	})

	require.Equal(t, domain.RegimeOld, result.Recommended)

	titles := suggestionTitles(result)
	assert.Contains(t, titles, "Unused Section 80C limit")
	assert.Contains(t, titles, "Unused NPS 80CCD(1B) limit")
	assert.Contains(t, titles, "Unused Section 80D limit")

	for _, s := range result.Suggestions {
		if s.Title == "Unused Section 80C limit" {
			require.NotNil(t, s.PotentialSaving)
			// 1,00,000 of headroom at the flat 30% estimate.
			assert.True(t, s.PotentialSaving.Equal(decimal.NewFromInt(30000)),
				"Expected 30000, got %s", s.PotentialSaving)
		}
	}
}

func TestSuggestionsWarnOnMissingRent(t *testing.T) {
	o := newTestOptimizer()

	result := o.OptimizeTaxRegime(domain.TaxCalculationInput{
		GrossIncome:  decimal.NewFromInt(1500000),
		Regime:       domain.RegimeOld,
		MonthlyBasic: decimal.NewFromInt(50000),
		MonthlyHRA:   decimal.NewFromInt(20000),
		Investments: domain.InvestmentDeclarations{
			Section80C:       decimal.NewFromInt(150000),
			Section80D:       decimal.NewFromInt(25000),
			NPS80CCD1B:       decimal.NewFromInt(50000),
			HomeLoanInterest: decimal.NewFromInt(200000),
		},
	})

	require.Equal(t, domain.RegimeOld, result.Recommended)
	assert.Contains(t, suggestionTitles(result), "HRA received but no rent declared")
}

func TestSuggestionsHighEarnerNote(t *testing.T) {
	o := newTestOptimizer()

	result := o.OptimizeTaxRegime(domain.TaxCalculationInput{
		GrossIncome: decimal.NewFromInt(2000000),
		Regime:      domain.RegimeNew,
	})

	require.Equal(t, domain.RegimeNew, result.Recommended)
	assert.Contains(t, suggestionTitles(result), "Revisit after maximizing deductions")
}

func TestSuggestionsSwitchRecommendation(t *testing.T) {
	o := newTestOptimizer()

	result := o.OptimizeTaxRegime(domain.TaxCalculationInput{
		GrossIncome: decimal.NewFromInt(1500000),
		Regime:      domain.RegimeOld,
	})

	require.Equal(t, domain.RegimeNew, result.Recommended)
	require.NotEmpty(t, result.Suggestions)

	first := result.Suggestions[0]
	assert.Equal(t, SuggestionInfo, first.Type)
	assert.Contains(t, first.Title, "Switch to the new regime")
	require.NotNil(t, first.PotentialSaving)
	assert.True(t, first.PotentialSaving.Equal(result.SavingsAmount))
}

func TestSuggestionsAreDeterministic(t *testing.T) {
	o := newTestOptimizer()
	input := domain.TaxCalculationInput{
		GrossIncome:  decimal.NewFromInt(1500000),
		Regime:       domain.RegimeOld,
		MonthlyBasic: decimal.NewFromInt(50000),
		MonthlyHRA:   decimal.NewFromInt(20000),
		MonthlyRent:  decimal.NewFromInt(15000),
		MetroCity:    true,
		Investments: domain.InvestmentDeclarations{
			Section80C:       decimal.NewFromInt(50000),
			HomeLoanInterest: decimal.NewFromInt(200000),
		},
	}

	first := o.OptimizeTaxRegime(input)
	second := o.OptimizeTaxRegime(input)

	require.Equal(t, len(first.Suggestions), len(second.Suggestions))
	for i := range first.Suggestions {
		assert.Equal(t, first.Suggestions[i].Title, second.Suggestions[i].Title)
	}
}

func suggestionTitles(result *OptimizerResult) []string {
	titles := make([]string, 0, len(result.Suggestions))
	for _, s := range result.Suggestions {
		titles = append(titles, s.Title)
	}
	return titles
}

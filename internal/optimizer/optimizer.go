// Package optimizer runs both tax regime calculations on the same financial
// facts and emits a recommendation plus a ranked list of actionable
// suggestions. It is a rule-based expert system, not free text: every rule
// is independently testable and the output is deterministic for identical
// input.
package optimizer

import (
	"github.com/shopspring/decimal"

	"github.com/vetanhq/vetan/internal/calculation"
	"github.com/vetanhq/vetan/internal/domain"
)

// Optimizer compares old- and new-regime outcomes for one employee.
type Optimizer struct {
	Tax *calculation.TaxCalculator
}

// NewOptimizer creates an optimizer over a tax calculator.
func NewOptimizer(tax *calculation.TaxCalculator) *Optimizer {
	return &Optimizer{Tax: tax}
}

// OptimizeTaxRegime runs both regime calculations on the input's underlying
// financial facts and returns the comparison. Ties favor the old regime:
// its itemized deductions are already substantiated, which is worth more in
// an audit than an equal-tax new-regime filing. That tie-break is a
// deliberate choice, not an oversight.
func (o *Optimizer) OptimizeTaxRegime(input domain.TaxCalculationInput) *OptimizerResult {
	oldInput := input
	oldInput.Regime = domain.RegimeOld
	newInput := input
	newInput.Regime = domain.RegimeNew

	oldResult := o.Tax.CalculateEmployeeTax(oldInput)
	newResult := o.Tax.CalculateEmployeeTax(newInput)

	recommended := domain.RegimeNew
	if oldResult.TotalTax.LessThanOrEqual(newResult.TotalTax) {
		recommended = domain.RegimeOld
	}

	savings := oldResult.TotalTax.Sub(newResult.TotalTax).Abs()

	higher := decimal.Max(oldResult.TotalTax, newResult.TotalTax)
	savingsPct := decimal.Zero
	if higher.IsPositive() {
		savingsPct = savings.Div(higher).Mul(decimal.NewFromInt(100))
	}

	result := &OptimizerResult{
		Recommended:   recommended,
		OldRegime:     oldResult,
		NewRegime:     newResult,
		SavingsAmount: savings,
		SavingsPct:    savingsPct,
	}

	result.Suggestions = o.generateSuggestions(input, result)
	return result
}

// resolveConfig mirrors the tax calculator's fiscal-year resolution so the
// suggestion rules see the same limits the calculation used.
func (o *Optimizer) resolveConfig(input domain.TaxCalculationInput) *domain.YearlyTaxConfig {
	year := input.FiscalYear
	if year == "" {
		year = o.Tax.Settings.ActiveFiscalYear
	}
	cfg, _ := o.Tax.Settings.ConfigForYear(year)
	return cfg
}

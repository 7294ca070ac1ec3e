package optimizer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vetanhq/vetan/internal/calculation"
	"github.com/vetanhq/vetan/internal/domain"
	"github.com/vetanhq/vetan/pkg/currency"
)

// SUGGESTION RULE ASSUMPTIONS:
//
// 1. Estimated savings use a flat 30% marginal rate. Exact marginal rates
//    depend on which slab the deduction lands in; the flat estimate is an
//    upper bound for most incomes and is labelled as an estimate in the
//    suggestion text.
//
// 2. Rules fire in a fixed order so the output is stable across runs for
//    identical input.
//
// 3. Deduction headroom below 10,000 for 80C is noise and is suppressed.
//    The other headroom rules fire on any positive headroom.

var (
	marginalRateEstimate = decimal.NewFromFloat(0.30)
	headroomNoiseFloor   = decimal.NewFromInt(10000)
	highEarnerThreshold  = decimal.NewFromInt(1500000)
)

// generateSuggestions runs every rule in declaration order against the
// comparison outcome.
func (o *Optimizer) generateSuggestions(input domain.TaxCalculationInput, result *OptimizerResult) []Suggestion {
	suggestions := []Suggestion{}
	cfg := o.resolveConfig(input)
	if cfg == nil {
		return suggestions
	}

	suggestions = append(suggestions, regimeSuggestion(input, result)...)
	suggestions = append(suggestions, rebateSuggestion(result, cfg)...)

	if result.Recommended == domain.RegimeOld {
		suggestions = append(suggestions, section80CSuggestion(input, cfg)...)
		suggestions = append(suggestions, hraSuggestions(input)...)
		suggestions = append(suggestions, npsSuggestion(input)...)
		suggestions = append(suggestions, section80DSuggestion(input)...)
	}

	suggestions = append(suggestions, highEarnerSuggestion(input, result)...)

	return suggestions
}

// regimeSuggestion tells the employee whether to switch or stay.
func regimeSuggestion(input domain.TaxCalculationInput, result *OptimizerResult) []Suggestion {
	if input.Regime != "" && input.Regime != result.Recommended {
		saving := result.SavingsAmount
		return []Suggestion{{
			Type:  SuggestionInfo,
			Title: fmt.Sprintf("Switch to the %s regime", result.Recommended),
			Description: fmt.Sprintf(
				"The %s regime would reduce your annual tax by %s (%s%%).",
				result.Recommended,
				currency.FormatINRWithSymbol(saving),
				result.SavingsPct.Round(1),
			),
			PotentialSaving: &saving,
		}}
	}

	return []Suggestion{{
		Type:  SuggestionInfo,
		Title: fmt.Sprintf("The %s regime is already optimal for you", result.Recommended),
		Description: fmt.Sprintf(
			"Staying put saves %s per year over the alternative.",
			currency.FormatINRWithSymbol(result.SavingsAmount),
		),
	}}
}

// rebateSuggestion calls out the Section 87A rebate when it zeroes the
// recommended new-regime liability.
func rebateSuggestion(result *OptimizerResult, cfg *domain.YearlyTaxConfig) []Suggestion {
	if result.Recommended != domain.RegimeNew || !result.NewRegime.RebateApplied {
		return nil
	}

	return []Suggestion{{
		Type:  SuggestionInfo,
		Title: "Section 87A rebate zeroes your tax",
		Description: fmt.Sprintf(
			"Your taxable income is within the %s rebate limit, so the new regime owes no tax at all this year.",
			currency.FormatINRWithSymbol(cfg.Section87ALimit),
		),
	}}
}

// section80CSuggestion flags unused 80C headroom above the noise floor.
func section80CSuggestion(input domain.TaxCalculationInput, cfg *domain.YearlyTaxConfig) []Suggestion {
	declared := decimal.Min(input.Investments.Section80C, cfg.Section80CLimit)
	headroom := cfg.Section80CLimit.Sub(declared)
	if headroom.LessThanOrEqual(headroomNoiseFloor) {
		return nil
	}

	saving := headroom.Mul(marginalRateEstimate).Round(0)
	return []Suggestion{{
		Type:  SuggestionTip,
		Title: "Unused Section 80C limit",
		Description: fmt.Sprintf(
			"You have %s of unused 80C room (PPF, ELSS, EPF top-up, life insurance). Using it could save roughly %s in tax.",
			currency.FormatINRWithSymbol(headroom),
			currency.FormatINRWithSymbol(saving),
		),
		PotentialSaving: &saving,
	}}
}

// hraSuggestions warns about HRA that cannot be exempted.
func hraSuggestions(input domain.TaxCalculationInput) []Suggestion {
	var out []Suggestion

	if input.MonthlyHRA.IsPositive() && !input.MonthlyRent.IsPositive() {
		out = append(out, Suggestion{
			Type:  SuggestionWarning,
			Title: "HRA received but no rent declared",
			Description: "Your salary includes an HRA component but no rent is on record, " +
				"so the entire HRA is taxed. Declare rent paid to claim the exemption.",
		})
		return out
	}

	if input.MonthlyRent.IsPositive() {
		annualBasic := input.MonthlyBasic.Mul(decimal.NewFromInt(12))
		annualRent := input.MonthlyRent.Mul(decimal.NewFromInt(12))
		if annualRent.LessThan(annualBasic.Mul(decimal.NewFromFloat(0.10))) {
			out = append(out, Suggestion{
				Type:  SuggestionWarning,
				Title: "Rent below the 10% of basic threshold",
				Description: "Only rent paid beyond 10% of basic salary counts toward the HRA " +
					"exemption, so your declared rent yields no exemption at all.",
			})
		}
	}

	return out
}

// npsSuggestion flags unused 80CCD(1B) headroom.
func npsSuggestion(input domain.TaxCalculationInput) []Suggestion {
	declared := decimal.Min(input.Investments.NPS80CCD1B, calculation.NPS80CCD1BCeiling)
	headroom := calculation.NPS80CCD1BCeiling.Sub(declared)
	if !headroom.IsPositive() {
		return nil
	}

	saving := headroom.Mul(marginalRateEstimate).Round(0)
	return []Suggestion{{
		Type:  SuggestionTip,
		Title: "Unused NPS 80CCD(1B) limit",
		Description: fmt.Sprintf(
			"An additional NPS contribution of %s is deductible over and above 80C, worth roughly %s in tax.",
			currency.FormatINRWithSymbol(headroom),
			currency.FormatINRWithSymbol(saving),
		),
		PotentialSaving: &saving,
	}}
}

// section80DSuggestion flags unused health-insurance deduction headroom.
func section80DSuggestion(input domain.TaxCalculationInput) []Suggestion {
	declared := decimal.Min(input.Investments.Section80D, calculation.Section80DCeiling)
	headroom := calculation.Section80DCeiling.Sub(declared)
	if !headroom.IsPositive() {
		return nil
	}

	saving := headroom.Mul(marginalRateEstimate).Round(0)
	return []Suggestion{{
		Type:  SuggestionTip,
		Title: "Unused Section 80D limit",
		Description: fmt.Sprintf(
			"Health insurance premiums up to another %s are deductible under 80D, worth roughly %s in tax.",
			currency.FormatINRWithSymbol(headroom),
			currency.FormatINRWithSymbol(saving),
		),
		PotentialSaving: &saving,
	}}
}

// highEarnerSuggestion notes that high incomes with full deductions often
// still favor the old regime.
func highEarnerSuggestion(input domain.TaxCalculationInput, result *OptimizerResult) []Suggestion {
	if result.Recommended != domain.RegimeNew || !input.GrossIncome.GreaterThan(highEarnerThreshold) {
		return nil
	}

	return []Suggestion{{
		Type:  SuggestionInfo,
		Title: "Revisit after maximizing deductions",
		Description: "At your income level the old regime can overtake the new one once " +
			"80C, NPS and health insurance limits are fully used. Re-run this comparison " +
			"after updating your declarations.",
	}}
}

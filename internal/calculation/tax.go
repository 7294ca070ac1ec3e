package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/vetanhq/vetan/internal/domain"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Section 80D ceiling is a fixed 25,000 regardless of senior-citizen
//    status (the statute allows a higher senior limit). Kept as-is.
//
// 2. Section 87A is a full rebate: taxable income at or below the limit
//    forces pre-cess tax to zero. It is not a partial credit.
//
// 3. Each slab's tax contribution is rounded to the rupee independently
//    before summing. Changing this to a single final rounding breaks
//    numeric parity with existing payslips.
//
// 4. Negative or garbage income clamps to zero taxable income instead of
//    erroring. A payroll run must always produce some payslip.

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Fixed statutory deduction ceilings for the old regime.
var (
	Section80DCeiling       = decimal.NewFromInt(25000)
	NPS80CCD1BCeiling       = decimal.NewFromInt(50000)
	HomeLoanInterestCeiling = decimal.NewFromInt(200000)
)

// TaxCalculator computes income tax liability under either regime for one
// employee for one fiscal year. It never mutates its settings and keeps no
// state between calls.
type TaxCalculator struct {
	Settings domain.TaxSettings
	Logger   Logger
}

// NewTaxCalculator creates a tax calculator over a versioned settings root.
func NewTaxCalculator(settings domain.TaxSettings) *TaxCalculator {
	return &TaxCalculator{Settings: settings, Logger: noopLogger{}}
}

// SetLogger installs a logger for non-fatal diagnostics.
func (tc *TaxCalculator) SetLogger(l Logger) {
	if l != nil {
		tc.Logger = l
	}
}

// CalculateEmployeeTax computes the tax liability for one input, dispatching
// to the old- or new-regime calculation.
func (tc *TaxCalculator) CalculateEmployeeTax(input domain.TaxCalculationInput) domain.TaxCalculationResult {
	cfg := tc.resolveConfig(input.FiscalYear)
	if cfg == nil {
		// No configuration at all; emit an all-zero result rather than crash
		// the payroll pipeline.
		tc.Logger.Errorf("tax: no yearly tax configuration available")
		return domain.TaxCalculationResult{
			Regime:      input.Regime,
			GrossIncome: input.GrossIncome,
			Deductions:  map[string]decimal.Decimal{},
		}
	}

	if input.Regime == domain.RegimeOld {
		return tc.calculateOldRegime(input, cfg)
	}
	return tc.calculateNewRegime(input, cfg)
}

// resolveConfig finds the yearly config for the requested fiscal year,
// falling back to the active year and then to the first configured year.
func (tc *TaxCalculator) resolveConfig(fiscalYear string) *domain.YearlyTaxConfig {
	year := fiscalYear
	if year == "" {
		year = tc.Settings.ActiveFiscalYear
	}

	cfg, matched := tc.Settings.ConfigForYear(year)
	if cfg != nil && !matched {
		tc.Logger.Warnf("tax: no config for fiscal year %s, falling back to %s", year, cfg.FiscalYear)
	}
	return cfg
}

func (tc *TaxCalculator) calculateNewRegime(input domain.TaxCalculationInput, cfg *domain.YearlyTaxConfig) domain.TaxCalculationResult {
	deductions := map[string]decimal.Decimal{
		domain.DeductionStandard: cfg.StandardDeduction,
	}

	taxable := clampToZero(input.GrossIncome.Sub(cfg.StandardDeduction))

	tax, breakdown := slabTax(taxable, cfg.SlabsForRegime(domain.RegimeNew))

	// Section 87A: full rebate, not a partial credit.
	rebate := false
	if taxable.LessThanOrEqual(cfg.Section87ALimit) {
		tax = decimal.Zero
		rebate = true
	}

	return tc.assembleResult(input, cfg, domain.RegimeNew, deductions, taxable, tax, breakdown, rebate)
}

func (tc *TaxCalculator) calculateOldRegime(input domain.TaxCalculationInput, cfg *domain.YearlyTaxConfig) domain.TaxCalculationResult {
	deductions := map[string]decimal.Decimal{
		domain.DeductionStandard:     cfg.StandardDeduction,
		domain.DeductionHRA:          hraExemption(input, cfg.HRAExemptionLimit),
		domain.Deduction80C:          decimal.Min(input.Investments.Section80C, cfg.Section80CLimit),
		domain.Deduction80D:          decimal.Min(input.Investments.Section80D, Section80DCeiling),
		domain.DeductionNPS80CCD1B:   decimal.Min(input.Investments.NPS80CCD1B, NPS80CCD1BCeiling),
		domain.DeductionHomeLoanIntr: decimal.Min(input.Investments.HomeLoanInterest, HomeLoanInterestCeiling),
	}

	total := decimal.Zero
	for _, d := range deductions {
		total = total.Add(d)
	}

	taxable := clampToZero(input.GrossIncome.Sub(total))
	tax, breakdown := slabTax(taxable, cfg.SlabsForRegime(domain.RegimeOld))

	// No 87A rebate path in the old regime.
	return tc.assembleResult(input, cfg, domain.RegimeOld, deductions, taxable, tax, breakdown, false)
}

func (tc *TaxCalculator) assembleResult(
	input domain.TaxCalculationInput,
	cfg *domain.YearlyTaxConfig,
	regime domain.TaxRegime,
	deductions map[string]decimal.Decimal,
	taxable, tax decimal.Decimal,
	breakdown []domain.SlabTax,
	rebate bool,
) domain.TaxCalculationResult {
	cess := tax.Mul(cfg.CessRatePct).Div(hundred).Round(0)
	total := tax.Add(cess)

	return domain.TaxCalculationResult{
		FiscalYear:    cfg.FiscalYear,
		Regime:        regime,
		GrossIncome:   input.GrossIncome,
		Deductions:    deductions,
		TaxableIncome: taxable,
		TaxPayable:    tax,
		Cess:          cess,
		TotalTax:      total,
		// Informational monthly withholding; fractional rupees allowed.
		MonthlyTDS:    total.Div(twelve),
		RebateApplied: rebate,
		SlabBreakdown: breakdown,
	}
}

// hraExemption computes the old-regime HRA exemption: the least of annual
// HRA received, rent paid in excess of 10% of annual basic, and 50% (metro)
// or 40% (non-metro) of annual basic. Inputs are monthly and annualized
// here; zero rent means zero exemption. The result is capped at the
// configured exemption limit.
func hraExemption(input domain.TaxCalculationInput, limit decimal.Decimal) decimal.Decimal {
	if !input.MonthlyRent.IsPositive() {
		return decimal.Zero
	}

	annualBasic := input.MonthlyBasic.Mul(twelve)
	annualHRA := input.MonthlyHRA.Mul(twelve)
	annualRent := input.MonthlyRent.Mul(twelve)

	rentExcess := clampToZero(annualRent.Sub(annualBasic.Mul(decimal.NewFromFloat(0.10))))

	basicShare := decimal.NewFromFloat(0.40)
	if input.MetroCity {
		basicShare = decimal.NewFromFloat(0.50)
	}

	exemption := decimal.Min(annualHRA, rentExcess, annualBasic.Mul(basicShare))
	return decimal.Min(clampToZero(exemption), limit)
}

// slabTax runs the slab-wise progressive tax algorithm over slabs sorted
// ascending by MinIncome. Each slab's contribution is rounded to the rupee
// independently before summing, and breakdown rows are emitted in ascending
// income order.
func slabTax(taxable decimal.Decimal, slabs []domain.TaxSlab) (decimal.Decimal, []domain.SlabTax) {
	total := decimal.Zero
	breakdown := make([]domain.SlabTax, 0, len(slabs))

	for _, slab := range slabs {
		if taxable.LessThanOrEqual(slab.MinIncome) {
			break
		}

		applicable := decimal.Min(taxable.Sub(slab.MinIncome), slab.MaxIncome.Sub(slab.MinIncome))
		if applicable.IsPositive() {
			slabAmount := applicable.Mul(slab.RatePct).Div(hundred).Round(0)
			total = total.Add(slabAmount)
			breakdown = append(breakdown, domain.SlabTax{
				Slab:    slab,
				Income:  applicable,
				RatePct: slab.RatePct,
				Tax:     slabAmount,
			})
		}

		if taxable.LessThanOrEqual(slab.MaxIncome) {
			break
		}
	}

	return total, breakdown
}

func clampToZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

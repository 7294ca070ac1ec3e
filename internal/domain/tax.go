package domain

import (
	"github.com/shopspring/decimal"
)

// TaxRegime identifies one of the two mutually exclusive Indian income-tax
// computation schemes.
type TaxRegime string

const (
	// RegimeOld permits itemized deductions (80C, 80D, HRA, NPS, home loan).
	RegimeOld TaxRegime = "old"
	// RegimeNew offers lower slab rates with only the standard deduction.
	RegimeNew TaxRegime = "new"
)

// Valid reports whether the regime is one of the two known schemes.
func (r TaxRegime) Valid() bool {
	return r == RegimeOld || r == RegimeNew
}

// TaxSlab is a single income bracket taxed at a fixed marginal rate.
// Within one (regime, fiscal year) pair, slabs are contiguous and
// non-overlapping when sorted by MinIncome; the top slab carries an
// effectively-infinite MaxIncome sentinel.
type TaxSlab struct {
	Regime     TaxRegime       `yaml:"regime" json:"regime"`
	FiscalYear string          `yaml:"fiscal_year" json:"fiscalYear"`
	MinIncome  decimal.Decimal `yaml:"min_income" json:"minIncome"`
	MaxIncome  decimal.Decimal `yaml:"max_income" json:"maxIncome"`
	RatePct    decimal.Decimal `yaml:"rate_pct" json:"taxRatePercent"`
}

// YearlyTaxConfig is one fiscal year's complete statutory rule set. Configs
// are authored by an administrator and never mutated by the calculators.
type YearlyTaxConfig struct {
	FiscalYear        string          `yaml:"fiscal_year" json:"fiscalYear"`
	StandardDeduction decimal.Decimal `yaml:"standard_deduction" json:"standardDeduction"`
	Section80CLimit   decimal.Decimal `yaml:"section_80c_limit" json:"section80CLimit"`
	HRAExemptionLimit decimal.Decimal `yaml:"hra_exemption_limit" json:"hraExemptionLimit"`
	Section87ALimit   decimal.Decimal `yaml:"section_87a_rebate_limit" json:"section87ARebateLimit"`
	CessRatePct       decimal.Decimal `yaml:"cess_rate_pct" json:"cessRatePercent"`
	Slabs             []TaxSlab       `yaml:"slabs" json:"slabs"`
}

// SlabsForRegime returns the slabs applicable to the given regime, sorted
// ascending by MinIncome.
func (c *YearlyTaxConfig) SlabsForRegime(regime TaxRegime) []TaxSlab {
	slabs := make([]TaxSlab, 0, len(c.Slabs))
	for _, s := range c.Slabs {
		if s.Regime == regime {
			slabs = append(slabs, s)
		}
	}
	// Insertion sort; slab tables are tiny.
	for i := 1; i < len(slabs); i++ {
		for j := i; j > 0 && slabs[j].MinIncome.LessThan(slabs[j-1].MinIncome); j-- {
			slabs[j], slabs[j-1] = slabs[j-1], slabs[j]
		}
	}
	return slabs
}

// TaxSettings is the versioned configuration root: every authored fiscal
// year plus the year payroll currently runs against.
type TaxSettings struct {
	ActiveFiscalYear string            `yaml:"active_fiscal_year" json:"activeFiscalYear"`
	YearlyConfigs    []YearlyTaxConfig `yaml:"yearly_configs" json:"yearlyConfigs"`
}

// ConfigForYear looks up the config for a fiscal year. A miss falls back to
// the first configured year so a payroll run always has some rule set to
// work with. The second return reports whether the requested year matched.
func (s *TaxSettings) ConfigForYear(fiscalYear string) (*YearlyTaxConfig, bool) {
	for i := range s.YearlyConfigs {
		if s.YearlyConfigs[i].FiscalYear == fiscalYear {
			return &s.YearlyConfigs[i], true
		}
	}
	if len(s.YearlyConfigs) > 0 {
		return &s.YearlyConfigs[0], false
	}
	return nil, false
}

// InvestmentDeclarations are the employee's declared old-regime investments.
type InvestmentDeclarations struct {
	Section80C       decimal.Decimal `yaml:"section_80c" json:"section80C"`
	Section80D       decimal.Decimal `yaml:"section_80d" json:"section80D"`
	NPS80CCD1B       decimal.Decimal `yaml:"nps_80ccd_1b" json:"nps80CCD1B"`
	HomeLoanInterest decimal.Decimal `yaml:"home_loan_interest" json:"homeLoanInterest"`
}

// TaxCalculationInput is the per-call value object for one employee's tax
// computation in one fiscal year. It has no identity and is never persisted
// by the calculators.
type TaxCalculationInput struct {
	GrossIncome decimal.Decimal `yaml:"gross_income" json:"grossIncome"`
	Regime      TaxRegime       `yaml:"regime" json:"regime"`

	// Monthly salary composition, used by the HRA exemption formula.
	MonthlyBasic decimal.Decimal `yaml:"monthly_basic" json:"monthlyBasic"`
	MonthlyHRA   decimal.Decimal `yaml:"monthly_hra" json:"monthlyHRA"`
	MonthlyRent  decimal.Decimal `yaml:"monthly_rent" json:"monthlyRent"`
	MetroCity    bool            `yaml:"metro_city" json:"metroCity"`

	Investments InvestmentDeclarations `yaml:"investments" json:"investments"`

	// FiscalYear overrides the active year when set.
	FiscalYear string `yaml:"fiscal_year,omitempty" json:"fiscalYear,omitempty"`
}

// SlabTax is one row of the slab-wise breakdown, emitted in ascending
// income order.
type SlabTax struct {
	Slab    TaxSlab         `json:"slab"`
	Income  decimal.Decimal `json:"income"`
	RatePct decimal.Decimal `json:"rate"`
	Tax     decimal.Decimal `json:"tax"`
}

// TaxCalculationResult is the fully derived outcome of one tax computation.
// It carries no hidden state; recomputing from the same input yields an
// identical result.
type TaxCalculationResult struct {
	FiscalYear    string                     `json:"fiscalYear"`
	Regime        TaxRegime                  `json:"regime"`
	GrossIncome   decimal.Decimal            `json:"grossIncome"`
	Deductions    map[string]decimal.Decimal `json:"deductions"`
	TaxableIncome decimal.Decimal            `json:"taxableIncome"`
	TaxPayable    decimal.Decimal            `json:"taxPayable"`
	Cess          decimal.Decimal            `json:"cess"`
	TotalTax      decimal.Decimal            `json:"totalTax"`
	MonthlyTDS    decimal.Decimal            `json:"monthlyTDS"`
	RebateApplied bool                       `json:"rebateApplied"`
	SlabBreakdown []SlabTax                  `json:"slabBreakdown"`
}

// Deduction keys in TaxCalculationResult.Deductions.
const (
	DeductionStandard     = "standardDeduction"
	DeductionHRA          = "hraExemption"
	Deduction80C          = "section80C"
	Deduction80D          = "section80D"
	DeductionNPS80CCD1B   = "nps80CCD1B"
	DeductionHomeLoanIntr = "homeLoanInterest"
)

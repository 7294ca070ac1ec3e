// Package config loads and validates tax settings from YAML files and
// provides the built-in statutory defaults used when no file is supplied.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vetanhq/vetan/internal/domain"
)

// maxIncomeSentinel marks the open-ended top slab. One trillion rupees is
// beyond any payroll input this system will see.
var maxIncomeSentinel = decimal.NewFromInt(1_000_000_000_000)

// InputParser handles parsing of tax settings files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads tax settings from a YAML file and validates them.
func (ip *InputParser) LoadFromFile(filename string) (*domain.TaxSettings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var settings domain.TaxSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&settings); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &settings, nil
}

// ValidateConfiguration validates loaded tax settings. Every authored year
// must be internally consistent before payroll is allowed to run against it.
func (ip *InputParser) ValidateConfiguration(settings *domain.TaxSettings) error {
	if len(settings.YearlyConfigs) == 0 {
		return fmt.Errorf("no yearly tax configs provided")
	}

	seen := make(map[string]bool)
	for i := range settings.YearlyConfigs {
		cfg := &settings.YearlyConfigs[i]
		if cfg.FiscalYear == "" {
			return fmt.Errorf("yearly config %d: fiscal year is required", i)
		}
		if seen[cfg.FiscalYear] {
			return fmt.Errorf("duplicate config for fiscal year %s", cfg.FiscalYear)
		}
		seen[cfg.FiscalYear] = true

		if err := ip.validateYearlyConfig(cfg); err != nil {
			return fmt.Errorf("fiscal year %s validation failed: %w", cfg.FiscalYear, err)
		}
	}

	if settings.ActiveFiscalYear != "" && !seen[settings.ActiveFiscalYear] {
		return fmt.Errorf("active fiscal year %s has no config", settings.ActiveFiscalYear)
	}

	return nil
}

// validateYearlyConfig validates one fiscal year's rule set.
func (ip *InputParser) validateYearlyConfig(cfg *domain.YearlyTaxConfig) error {
	for _, limit := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"standard deduction", cfg.StandardDeduction},
		{"section 80C limit", cfg.Section80CLimit},
		{"HRA exemption limit", cfg.HRAExemptionLimit},
		{"section 87A rebate limit", cfg.Section87ALimit},
		{"cess rate", cfg.CessRatePct},
	} {
		if limit.value.IsNegative() {
			return fmt.Errorf("%s cannot be negative", limit.name)
		}
	}

	for _, regime := range []domain.TaxRegime{domain.RegimeOld, domain.RegimeNew} {
		if err := ip.validateSlabs(cfg.SlabsForRegime(regime)); err != nil {
			return fmt.Errorf("%s regime slabs: %w", regime, err)
		}
	}

	return nil
}

// validateSlabs checks that a regime's slabs form a contiguous ladder from
// zero with sane marginal rates. Slabs arrive sorted by MinIncome.
func (ip *InputParser) validateSlabs(slabs []domain.TaxSlab) error {
	if len(slabs) == 0 {
		return fmt.Errorf("no slabs defined")
	}

	if !slabs[0].MinIncome.IsZero() {
		return fmt.Errorf("first slab must start at zero, got %s", slabs[0].MinIncome)
	}

	for i, slab := range slabs {
		if slab.MaxIncome.LessThanOrEqual(slab.MinIncome) {
			return fmt.Errorf("slab %d: max income %s not above min income %s", i, slab.MaxIncome, slab.MinIncome)
		}
		if slab.RatePct.IsNegative() || slab.RatePct.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("slab %d: rate %s%% outside 0..100", i, slab.RatePct)
		}
		if i > 0 && !slab.MinIncome.Equal(slabs[i-1].MaxIncome) {
			return fmt.Errorf("slab %d: starts at %s but previous slab ends at %s", i, slab.MinIncome, slabs[i-1].MaxIncome)
		}
	}

	return nil
}

// DefaultTaxSettings returns the built-in FY 2024-25 statutory defaults for
// both regimes, matching the Finance Act rates for that year.
func DefaultTaxSettings() domain.TaxSettings {
	const fy = "2024-25"

	newSlabs := slabLadder(domain.RegimeNew, fy, []slabSpec{
		{0, 300_000, 0},
		{300_000, 600_000, 5},
		{600_000, 900_000, 10},
		{900_000, 1_200_000, 15},
		{1_200_000, 1_500_000, 20},
		{1_500_000, -1, 30},
	})
	oldSlabs := slabLadder(domain.RegimeOld, fy, []slabSpec{
		{0, 250_000, 0},
		{250_000, 500_000, 5},
		{500_000, 1_000_000, 20},
		{1_000_000, -1, 30},
	})

	return domain.TaxSettings{
		ActiveFiscalYear: fy,
		YearlyConfigs: []domain.YearlyTaxConfig{
			{
				FiscalYear:        fy,
				StandardDeduction: decimal.NewFromInt(50_000),
				Section80CLimit:   decimal.NewFromInt(150_000),
				HRAExemptionLimit: decimal.NewFromInt(100_000),
				Section87ALimit:   decimal.NewFromInt(700_000),
				CessRatePct:       decimal.NewFromInt(4),
				Slabs:             append(newSlabs, oldSlabs...),
			},
		},
	}
}

type slabSpec struct {
	min, max int64
	ratePct  int64
}

func slabLadder(regime domain.TaxRegime, fiscalYear string, specs []slabSpec) []domain.TaxSlab {
	slabs := make([]domain.TaxSlab, 0, len(specs))
	for _, s := range specs {
		max := maxIncomeSentinel
		if s.max >= 0 {
			max = decimal.NewFromInt(s.max)
		}
		slabs = append(slabs, domain.TaxSlab{
			Regime:     regime,
			FiscalYear: fiscalYear,
			MinIncome:  decimal.NewFromInt(s.min),
			MaxIncome:  max,
			RatePct:    decimal.NewFromInt(s.ratePct),
		})
	}
	return slabs
}

package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vetanhq/vetan/internal/domain"
	"github.com/vetanhq/vetan/pkg/currency"
	"github.com/vetanhq/vetan/pkg/dateutil"
)

// GRATUITY CALCULATION ASSUMPTIONS:
//
// 1. Statutory rounding uses a 0.5-year threshold (">6 months rounds up").
//    This simplifies the 240-days-in-final-year rule some employers apply.
//
// 2. Eligibility uses exactYears >= 4.8 rather than the nominal 5-year
//    statutory minimum, absorbing date-rounding noise near the boundary.
//
// 3. Malformed joining/exit dates degrade to zero service instead of
//    failing the settlement run. The warning is logged so data-entry bugs
//    remain visible.

// GratuityPolicy carries the statutory constants as configuration rather
// than magic numbers. DefaultGratuityPolicy matches the Payment of Gratuity
// Act values currently in force.
type GratuityPolicy struct {
	// CapAmount is the statutory ceiling on gratuity payout.
	CapAmount decimal.Decimal `yaml:"cap_amount" json:"capAmount"`
	// MinServiceYears is the eligibility threshold in exact years.
	MinServiceYears decimal.Decimal `yaml:"min_service_years" json:"minServiceYears"`
	// PayCycleDivisor is the working days per month used as the wage
	// divisor (the Act's 26-day month).
	PayCycleDivisor int `yaml:"pay_cycle_divisor" json:"payCycleDivisor"`
}

// DefaultGratuityPolicy returns the statutory defaults: a 20 lakh cap, a
// 4.8-year eligibility tolerance and the 26-day pay cycle.
func DefaultGratuityPolicy() GratuityPolicy {
	return GratuityPolicy{
		CapAmount:       decimal.NewFromInt(2000000),
		MinServiceYears: decimal.NewFromFloat(4.8),
		PayCycleDivisor: 26,
	}
}

// GratuityCalculator computes statutory gratuity for exiting employees.
type GratuityCalculator struct {
	Policy GratuityPolicy
	Logger Logger
}

// NewGratuityCalculator creates a gratuity calculator with the given policy.
func NewGratuityCalculator(policy GratuityPolicy) *GratuityCalculator {
	return &GratuityCalculator{Policy: policy, Logger: noopLogger{}}
}

// SetLogger installs a logger for non-fatal diagnostics.
func (gc *GratuityCalculator) SetLogger(l Logger) {
	if l != nil {
		gc.Logger = l
	}
}

// Calculate computes statutory gratuity per the Payment of Gratuity Act
// formula: lastDrawn x 15/26 x roundedYears, capped at the policy ceiling.
func (gc *GratuityCalculator) Calculate(input domain.GratuityCalculationInput) domain.GratuityCalculationResult {
	lastDrawn := input.MonthlyBasic.Add(input.DearnessAllowance)

	span, ok := gc.serviceSpan(input)
	exactYears := decimal.NewFromFloat(span.ExactYears)

	result := domain.GratuityCalculationResult{
		ExactYears:      exactYears,
		ActualDays:      span.TotalDays,
		LastDrawnSalary: lastDrawn,
		GratuityAmount:  decimal.Zero,
		CappedAmount:    decimal.Zero,
	}

	if !ok {
		result.Formula = "Not eligible: joining or exit date is invalid, service treated as zero"
		return result
	}

	result.YearsOfService = statutoryRoundYears(span.ExactYears)

	if exactYears.LessThan(gc.Policy.MinServiceYears) {
		result.Formula = fmt.Sprintf(
			"Not eligible: %s years of service is below the %s-year minimum",
			exactYears.StringFixed(2), gc.Policy.MinServiceYears.StringFixed(1))
		return result
	}

	result.EligibleForGratuity = true

	divisor := gc.Policy.PayCycleDivisor
	if input.PayCycleDivisor > 0 {
		divisor = input.PayCycleDivisor
	}

	years := decimal.NewFromInt(int64(result.YearsOfService))
	amount := lastDrawn.
		Mul(decimal.NewFromInt(15)).
		Div(decimal.NewFromInt(int64(divisor))).
		Mul(years).
		Round(0)

	result.GratuityAmount = amount
	result.CappedAmount = decimal.Min(amount, gc.Policy.CapAmount)
	result.IsCapped = amount.GreaterThan(gc.Policy.CapAmount)

	result.Formula = fmt.Sprintf("Gratuity = %s x 15/%d x %d years = %s",
		currency.FormatINRWithSymbol(lastDrawn), divisor, result.YearsOfService,
		currency.FormatINRWithSymbol(amount))
	if result.IsCapped {
		result.Formula += fmt.Sprintf(", capped at %s", currency.FormatINRWithSymbol(gc.Policy.CapAmount))
	}

	return result
}

// serviceSpan parses the dates and computes the calendar-accurate service
// span. Malformed dates yield a zero span and a warning.
func (gc *GratuityCalculator) serviceSpan(input domain.GratuityCalculationInput) (dateutil.ServiceSpan, bool) {
	joining, err := dateutil.ParseDate(input.JoiningDate)
	if err != nil {
		gc.Logger.Warnf("gratuity: malformed joining date %q, treating service as zero", input.JoiningDate)
		return dateutil.ServiceSpan{}, false
	}
	exit, err := dateutil.ParseDate(input.ExitDate)
	if err != nil {
		gc.Logger.Warnf("gratuity: malformed exit date %q, treating service as zero", input.ExitDate)
		return dateutil.ServiceSpan{}, false
	}
	return dateutil.Service(joining, exit), true
}

// statutoryRoundYears floors the exact years and rounds up when the
// fractional part reaches six months.
func statutoryRoundYears(exactYears float64) int {
	whole := int(exactYears)
	if exactYears-float64(whole) >= 0.5 {
		whole++
	}
	return whole
}

package calculation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vetanhq/vetan/internal/domain"
)

// defaultWorkingDaysPerMonth is the wage divisor used when an input does not
// override it.
const defaultWorkingDaysPerMonth = 26

// LeaveEncashment converts an unused leave balance into pay:
// balance x (monthlyBasic / workingDaysPerMonth), rounded to the paisa.
func LeaveEncashment(input domain.LeaveEncashmentInput) decimal.Decimal {
	days := workingDays(input.WorkingDaysPerMonth)

	perDay := input.MonthlyBasic.Div(decimal.NewFromInt(int64(days)))
	return clampToZero(input.LeaveBalanceDays.Mul(perDay)).Round(2)
}

// NoticeRecovery computes the notice-period shortfall recovery:
// max(0, required - served) x (monthlyCTC / workingDaysPerMonth).
// Overserving never produces a refund.
func NoticeRecovery(input domain.NoticeRecoveryInput) decimal.Decimal {
	shortfall := input.RequiredDays - input.ActualDaysServed
	if shortfall <= 0 {
		return decimal.Zero
	}

	days := workingDays(input.WorkingDaysPerMonth)
	perDay := input.MonthlyCTC.Div(decimal.NewFromInt(int64(days)))
	return perDay.Mul(decimal.NewFromInt(int64(shortfall))).Round(2)
}

// SettlementCalculator assembles the full-and-final settlement for an
// exiting employee.
type SettlementCalculator struct {
	Gratuity *GratuityCalculator
}

// NewSettlementCalculator creates a settlement calculator over a gratuity
// policy.
func NewSettlementCalculator(policy GratuityPolicy) *SettlementCalculator {
	return &SettlementCalculator{Gratuity: NewGratuityCalculator(policy)}
}

// Calculate produces the settlement record: gratuity (capped) plus leave
// encashment minus notice shortfall recovery. The caller persists it.
func (sc *SettlementCalculator) Calculate(input domain.SettlementInput) domain.SettlementResult {
	gratuity := sc.Gratuity.Calculate(input.Gratuity)
	leave := LeaveEncashment(input.Leave)
	notice := NoticeRecovery(input.Notice)

	return domain.SettlementResult{
		ID:              uuid.NewString(),
		EmployeeID:      input.EmployeeID,
		Gratuity:        gratuity,
		LeaveEncashment: leave,
		NoticeRecovery:  notice,
		NetPayable:      gratuity.CappedAmount.Add(leave).Sub(notice),
	}
}

func workingDays(override int) int {
	if override > 0 {
		return override
	}
	return defaultWorkingDaysPerMonth
}

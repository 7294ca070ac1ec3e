package domain

import (
	"github.com/shopspring/decimal"
)

// GratuityCalculationInput carries the facts needed to compute statutory
// gratuity for an exiting employee. Dates are ISO YYYY-MM-DD strings.
type GratuityCalculationInput struct {
	MonthlyBasic       decimal.Decimal `yaml:"monthly_basic" json:"monthlyBasic"`
	DearnessAllowance  decimal.Decimal `yaml:"dearness_allowance" json:"dearnessAllowance"`
	JoiningDate        string          `yaml:"joining_date" json:"joiningDate"`
	ExitDate           string          `yaml:"exit_date" json:"exitDate"`
	PayCycleDivisor    int             `yaml:"pay_cycle_divisor,omitempty" json:"payCycleDivisor,omitempty"`
}

// GratuityCalculationResult is the computed gratuity outcome, including the
// structured numbers behind the audit trace so callers never have to parse
// the rendered Formula string.
type GratuityCalculationResult struct {
	YearsOfService      int             `json:"yearsOfService"`
	ExactYears          decimal.Decimal `json:"exactYears"`
	ActualDays          int             `json:"actualDays"`
	EligibleForGratuity bool            `json:"eligibleForGratuity"`
	GratuityAmount      decimal.Decimal `json:"gratuityAmount"`
	CappedAmount        decimal.Decimal `json:"cappedAmount"`
	IsCapped            bool            `json:"isCapped"`
	LastDrawnSalary     decimal.Decimal `json:"lastDrawnSalary"`
	// Formula is the rendered audit trace, locale-formatted with Indian
	// digit grouping for display.
	Formula string `json:"formula"`
}

// LeaveEncashmentInput carries the facts for leave-balance encashment.
type LeaveEncashmentInput struct {
	LeaveBalanceDays    decimal.Decimal `yaml:"leave_balance_days" json:"leaveBalanceDays"`
	MonthlyBasic        decimal.Decimal `yaml:"monthly_basic" json:"monthlyBasic"`
	WorkingDaysPerMonth int             `yaml:"working_days_per_month,omitempty" json:"workingDaysPerMonth,omitempty"`
}

// NoticeRecoveryInput carries the facts for notice-period shortfall recovery.
type NoticeRecoveryInput struct {
	RequiredDays        int             `yaml:"required_days" json:"requiredDays"`
	ActualDaysServed    int             `yaml:"actual_days_served" json:"actualDaysServed"`
	MonthlyCTC          decimal.Decimal `yaml:"monthly_ctc" json:"monthlyCTC"`
	WorkingDaysPerMonth int             `yaml:"working_days_per_month,omitempty" json:"workingDaysPerMonth,omitempty"`
}

// SettlementInput bundles everything needed for a full-and-final settlement.
type SettlementInput struct {
	EmployeeID string                   `yaml:"employee_id" json:"employeeId"`
	Gratuity   GratuityCalculationInput `yaml:"gratuity" json:"gratuity"`
	Leave      LeaveEncashmentInput     `yaml:"leave" json:"leave"`
	Notice     NoticeRecoveryInput      `yaml:"notice" json:"notice"`
}

// SettlementResult is the assembled full-and-final settlement for an exiting
// employee: gratuity plus leave encashment minus notice shortfall recovery.
// The external persistence collaborator owns its lifecycle after creation.
type SettlementResult struct {
	ID              string                    `json:"id"`
	EmployeeID      string                    `json:"employeeId"`
	Gratuity        GratuityCalculationResult `json:"gratuity"`
	LeaveEncashment decimal.Decimal           `json:"leaveEncashment"`
	NoticeRecovery  decimal.Decimal           `json:"noticeRecovery"`
	NetPayable      decimal.Decimal           `json:"netPayable"`
}

package calculation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vetanhq/vetan/internal/domain"
)

// FormulaContext is the variable environment an incentive formula evaluates
// against. Exactly three names are exposed; anything else in an expression
// is rejected as invalid.
type FormulaContext struct {
	MonthlyBasic decimal.Decimal
	MonthlyCTC   decimal.Decimal
	FixedValue   decimal.Decimal
}

// NewFormulaContext builds the evaluation context for one employee.
// MonthlyBasic uses the assumed 40% basic-to-CTC ratio, not the employee's
// configured salary structure.
func NewFormulaContext(employee *domain.Employee, fixedValue decimal.Decimal) FormulaContext {
	return FormulaContext{
		MonthlyBasic: employee.AssumedMonthlyBasic(),
		MonthlyCTC:   employee.MonthlyCTC(),
		FixedValue:   fixedValue,
	}
}

func (c FormulaContext) variables() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"monthlyBasic": c.MonthlyBasic,
		"monthlyCTC":   c.MonthlyCTC,
		"fixedValue":   c.FixedValue,
	}
}

// IncentiveEngine evaluates variable-pay rules and generates dated
// allocation records. It holds no state; every call is independent.
type IncentiveEngine struct {
	Logger Logger
}

// NewIncentiveEngine creates an incentive engine.
func NewIncentiveEngine() *IncentiveEngine {
	return &IncentiveEngine{Logger: noopLogger{}}
}

// SetLogger installs a logger for non-fatal diagnostics.
func (ie *IncentiveEngine) SetLogger(l Logger) {
	if l != nil {
		ie.Logger = l
	}
}

// EvaluateIncentiveAmount evaluates the rule's formula against the context,
// applies the cap and rounds to paisa precision. Negative amounts are
// deliberate recoveries and pass through uncapped on the negative side.
func (ie *IncentiveEngine) EvaluateIncentiveAmount(rule *domain.IncentiveRule, ctx FormulaContext) (decimal.Decimal, error) {
	amount, err := evaluateExpression(rule.FormulaExpression, ctx.variables())
	if err != nil {
		return decimal.Zero, &InvalidFormulaError{
			RuleName:   rule.Name,
			Expression: rule.FormulaExpression,
			Reason:     err.Error(),
		}
	}

	if rule.CapAmount != nil && amount.GreaterThan(*rule.CapAmount) {
		amount = *rule.CapAmount
	}

	return amount.Round(2), nil
}

// CreateAllocation evaluates the rule once and produces a Draft allocation
// for the given payroll period. installmentNumber and totalInstallments are
// zero for one-time payouts.
func (ie *IncentiveEngine) CreateAllocation(
	rule *domain.IncentiveRule,
	employee *domain.Employee,
	month, year int,
	installmentNumber, totalInstallments int,
) (*domain.IncentiveAllocation, error) {
	ctx := NewFormulaContext(employee, decimal.Zero)
	amount, err := ie.EvaluateIncentiveAmount(rule, ctx)
	if err != nil {
		return nil, err
	}

	return &domain.IncentiveAllocation{
		ID:                uuid.NewString(),
		RuleID:            rule.ID,
		EmployeeID:        employee.ID,
		CalculatedAmount:  amount,
		PayrollMonth:      month,
		PayrollYear:       year,
		Status:            domain.AllocationDraft,
		IsRecovery:        amount.IsNegative(),
		SourceRuleVersion: rule.Version,
		InstallmentNumber: installmentNumber,
		TotalInstallments: totalInstallments,
	}, nil
}

// GenerateRecurringAllocations produces one allocation per calendar month
// starting at (startMonth, startYear), advancing month by month with year
// rollover. Each installment is a full independent formula evaluation: N
// installments of a formula yielding X pay out N times X in total, not X
// split N ways.
func (ie *IncentiveEngine) GenerateRecurringAllocations(
	rule *domain.IncentiveRule,
	employee *domain.Employee,
	startMonth, startYear int,
) ([]domain.IncentiveAllocation, error) {
	count := rule.RecurrenceCount
	if count <= 1 {
		alloc, err := ie.CreateAllocation(rule, employee, startMonth, startYear, 0, 0)
		if err != nil {
			return nil, err
		}
		return []domain.IncentiveAllocation{*alloc}, nil
	}

	allocations := make([]domain.IncentiveAllocation, 0, count)
	month, year := startMonth, startYear

	for i := 1; i <= count; i++ {
		alloc, err := ie.CreateAllocation(rule, employee, month, year, i, count)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, *alloc)

		month++
		if month > 12 {
			month = 1
			year++
		}
	}

	return allocations, nil
}

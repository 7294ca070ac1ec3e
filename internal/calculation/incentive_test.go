package calculation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetanhq/vetan/internal/domain"
)

func testEmployee() *domain.Employee {
	return &domain.Employee{
		ID:        "emp-7",
		Name:      "Asha Rao",
		AnnualCTC: decimal.NewFromInt(1200000),
		Regime:    domain.RegimeNew,
	}
}

func testRule(formula string) *domain.IncentiveRule {
	return &domain.IncentiveRule{
		ID:                "rule-1",
		Name:              "Performance Bonus",
		Category:          "performance",
		FormulaExpression: formula,
		RecurrenceType:    domain.RecurrenceOneTime,
		TaxTreatment:      domain.TaxTreatmentRegular,
		Version:           1,
	}
}

func TestEvaluateIncentiveAmount(t *testing.T) {
	ie := NewIncentiveEngine()
	emp := testEmployee()

	// Annual CTC 12,00,000 implies an assumed monthly basic of 40,000.
	ctx := NewFormulaContext(emp, decimal.Zero)
	require.True(t, ctx.MonthlyBasic.Equal(decimal.NewFromInt(40000)))
	require.True(t, ctx.MonthlyCTC.Equal(decimal.NewFromInt(100000)))

	amount, err := ie.EvaluateIncentiveAmount(testRule("monthlyBasic * 0.1"), ctx)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(4000)), "Expected 4000, got %s", amount)
}

func TestEvaluateIncentiveAmountRoundsToPaisa(t *testing.T) {
	ie := NewIncentiveEngine()
	ctx := NewFormulaContext(testEmployee(), decimal.Zero)

	amount, err := ie.EvaluateIncentiveAmount(testRule("1000 / 3"), ctx)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromFloat(333.33)), "Expected 333.33, got %s", amount)
}

func TestEvaluateIncentiveAmountCap(t *testing.T) {
	ie := NewIncentiveEngine()
	ctx := NewFormulaContext(testEmployee(), decimal.Zero)

	cap := decimal.NewFromInt(3000)
	rule := testRule("monthlyBasic * 0.1")
	rule.CapAmount = &cap

	amount, err := ie.EvaluateIncentiveAmount(rule, ctx)
	require.NoError(t, err)
	assert.True(t, amount.Equal(cap), "Expected capped 3000, got %s", amount)
}

func TestEvaluateIncentiveAmountCapIgnoresRecoveries(t *testing.T) {
	ie := NewIncentiveEngine()
	ctx := NewFormulaContext(testEmployee(), decimal.Zero)

	cap := decimal.NewFromInt(100)
	rule := testRule("0 - monthlyBasic * 0.05")
	rule.CapAmount = &cap

	amount, err := ie.EvaluateIncentiveAmount(rule, ctx)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(-2000)),
		"Negative amounts pass through uncapped, got %s", amount)
}

func TestEvaluateIncentiveAmountInvalidFormula(t *testing.T) {
	ie := NewIncentiveEngine()
	ctx := NewFormulaContext(testEmployee(), decimal.Zero)

	_, err := ie.EvaluateIncentiveAmount(testRule("annualBonus * 2"), ctx)
	require.Error(t, err)

	var formulaErr *InvalidFormulaError
	require.True(t, errors.As(err, &formulaErr))
	assert.Equal(t, "Performance Bonus", formulaErr.RuleName)
	assert.Contains(t, formulaErr.Error(), "annualBonus")
}

func TestCreateAllocation(t *testing.T) {
	ie := NewIncentiveEngine()

	alloc, err := ie.CreateAllocation(testRule("monthlyBasic * 0.1"), testEmployee(), 4, 2025, 0, 0)
	require.NoError(t, err)

	assert.NotEmpty(t, alloc.ID)
	assert.Equal(t, "rule-1", alloc.RuleID)
	assert.Equal(t, "emp-7", alloc.EmployeeID)
	assert.Equal(t, 4, alloc.PayrollMonth)
	assert.Equal(t, 2025, alloc.PayrollYear)
	assert.Equal(t, domain.AllocationDraft, alloc.Status)
	assert.Equal(t, 1, alloc.SourceRuleVersion)
	assert.False(t, alloc.IsRecovery)
	assert.True(t, alloc.CalculatedAmount.Equal(decimal.NewFromInt(4000)))
}

func TestCreateAllocationRecovery(t *testing.T) {
	ie := NewIncentiveEngine()

	alloc, err := ie.CreateAllocation(testRule("0 - 500"), testEmployee(), 4, 2025, 0, 0)
	require.NoError(t, err)

	assert.True(t, alloc.IsRecovery)
	assert.True(t, alloc.CalculatedAmount.Equal(decimal.NewFromInt(-500)))
}

func TestGenerateRecurringAllocations(t *testing.T) {
	ie := NewIncentiveEngine()

	rule := testRule("monthlyBasic * 0.1")
	rule.RecurrenceType = domain.RecurrenceMonthly
	rule.RecurrenceCount = 3

	allocs, err := ie.GenerateRecurringAllocations(rule, testEmployee(), 11, 2024)
	require.NoError(t, err)
	require.Len(t, allocs, 3)

	expected := []struct{ month, year int }{
		{11, 2024},
		{12, 2024},
		{1, 2025},
	}
	for i, alloc := range allocs {
		assert.Equal(t, expected[i].month, alloc.PayrollMonth)
		assert.Equal(t, expected[i].year, alloc.PayrollYear)
		assert.Equal(t, i+1, alloc.InstallmentNumber)
		assert.Equal(t, 3, alloc.TotalInstallments)
		assert.True(t, alloc.CalculatedAmount.Equal(decimal.NewFromInt(4000)),
			"Every installment is a full evaluation, got %s", alloc.CalculatedAmount)
	}
}

func TestGenerateRecurringAllocationsSingle(t *testing.T) {
	ie := NewIncentiveEngine()

	allocs, err := ie.GenerateRecurringAllocations(testRule("monthlyBasic * 0.1"), testEmployee(), 6, 2025)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, 0, allocs[0].InstallmentNumber)
	assert.Equal(t, 0, allocs[0].TotalInstallments)
}

func TestAllocationStatusTransitions(t *testing.T) {
	alloc := &domain.IncentiveAllocation{ID: "a-1", Status: domain.AllocationDraft}

	require.NoError(t, alloc.Transition(domain.AllocationPendingApproval))
	require.NoError(t, alloc.Transition(domain.AllocationApproved))

	// Approved is terminal.
	assert.Error(t, alloc.Transition(domain.AllocationDraft))
	assert.Error(t, alloc.Transition(domain.AllocationPendingApproval))

	// Draft cannot skip straight to approved.
	skip := &domain.IncentiveAllocation{ID: "a-2", Status: domain.AllocationDraft}
	assert.Error(t, skip.Transition(domain.AllocationApproved))
}

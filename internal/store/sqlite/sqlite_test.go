package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetanhq/vetan/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testStoreEmployee() domain.Employee {
	return domain.Employee{
		ID:          "emp-1",
		Name:        "Asha Rao",
		AnnualCTC:   decimal.NewFromInt(1200000),
		Regime:      domain.RegimeNew,
		JoiningDate: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testStoreRule() domain.IncentiveRule {
	return domain.IncentiveRule{
		ID:                "rule-1",
		Name:              "Performance Bonus",
		Category:          "performance",
		FormulaExpression: "monthlyBasic * 0.1",
		RecurrenceType:    domain.RecurrenceOneTime,
		TaxTreatment:      domain.TaxTreatmentRegular,
		Version:           1,
	}
}

func testStoreAllocation(id string) domain.IncentiveAllocation {
	return domain.IncentiveAllocation{
		ID:                id,
		RuleID:            "rule-1",
		EmployeeID:        "emp-1",
		CalculatedAmount:  decimal.NewFromInt(4000),
		PayrollMonth:      4,
		PayrollYear:       2025,
		Status:            domain.AllocationDraft,
		SourceRuleVersion: 1,
	}
}

func TestEmployeeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, testStoreEmployee()))

	got, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Name)
	assert.True(t, got.AnnualCTC.Equal(decimal.NewFromInt(1200000)))
	assert.Equal(t, domain.RegimeNew, got.Regime)
	assert.Equal(t, 2019, got.JoiningDate.Year())

	_, err = store.GetEmployee(ctx, "emp-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRuleRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rule := testStoreRule()
	cap := decimal.NewFromInt(25000)
	rule.CapAmount = &cap
	rule.RecurrenceType = domain.RecurrenceMonthly
	rule.RecurrenceCount = 6
	rule.PFApplicable = true

	require.NoError(t, store.SaveRule(ctx, rule))

	got, err := store.GetRule(ctx, "rule-1")
	require.NoError(t, err)
	assert.Equal(t, "Performance Bonus", got.Name)
	assert.Equal(t, "monthlyBasic * 0.1", got.FormulaExpression)
	require.NotNil(t, got.CapAmount)
	assert.True(t, got.CapAmount.Equal(cap))
	assert.Equal(t, 6, got.RecurrenceCount)
	assert.True(t, got.PFApplicable)
	assert.False(t, got.IsLocked)
}

func TestRuleWithoutCap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRule(ctx, testStoreRule()))

	got, err := store.GetRule(ctx, "rule-1")
	require.NoError(t, err)
	assert.Nil(t, got.CapAmount)
}

func TestApprovalLocksRule(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRule(ctx, testStoreRule()))
	require.NoError(t, store.SaveAllocation(ctx, testStoreAllocation("alloc-1")))

	_, err := store.SubmitAllocation(ctx, "alloc-1")
	require.NoError(t, err)

	approved, err := store.ApproveAllocation(ctx, "alloc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AllocationApproved, approved.Status)

	rule, err := store.GetRule(ctx, "rule-1")
	require.NoError(t, err)
	assert.True(t, rule.IsLocked)

	// The locked rule rejects edits and deletion.
	edited := testStoreRule()
	edited.FormulaExpression = "monthlyBasic * 0.2"
	assert.ErrorIs(t, store.SaveRule(ctx, edited), ErrRuleLocked)
	assert.ErrorIs(t, store.DeleteRule(ctx, "rule-1"), ErrRuleLocked)

	// A new version under a new ID is the amendment path.
	v2 := testStoreRule()
	v2.ID = "rule-1-v2"
	v2.Version = 2
	v2.FormulaExpression = "monthlyBasic * 0.2"
	assert.NoError(t, store.SaveRule(ctx, v2))
}

func TestAllocationWorkflow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRule(ctx, testStoreRule()))
	require.NoError(t, store.SaveAllocation(ctx, testStoreAllocation("alloc-1")))

	// Draft cannot be approved directly.
	_, err := store.ApproveAllocation(ctx, "alloc-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	pending, err := store.SubmitAllocation(ctx, "alloc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AllocationPendingApproval, pending.Status)

	// Resubmitting a pending allocation is rejected.
	_, err = store.SubmitAllocation(ctx, "alloc-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = store.ApproveAllocation(ctx, "alloc-1")
	require.NoError(t, err)

	got, err := store.GetAllocation(ctx, "alloc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AllocationApproved, got.Status)
}

func TestDeleteAllocationDraftOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRule(ctx, testStoreRule()))
	require.NoError(t, store.SaveAllocation(ctx, testStoreAllocation("alloc-1")))
	require.NoError(t, store.SaveAllocation(ctx, testStoreAllocation("alloc-2")))

	_, err := store.SubmitAllocation(ctx, "alloc-2")
	require.NoError(t, err)

	assert.NoError(t, store.DeleteAllocation(ctx, "alloc-1"))
	assert.ErrorIs(t, store.DeleteAllocation(ctx, "alloc-2"), ErrNotDraft)
	assert.ErrorIs(t, store.DeleteAllocation(ctx, "alloc-1"), ErrNotFound)
}

func TestListAllocationsByEmployeeOrdersByPeriod(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRule(ctx, testStoreRule()))

	later := testStoreAllocation("alloc-later")
	later.PayrollMonth = 1
	later.PayrollYear = 2026
	earlier := testStoreAllocation("alloc-earlier")
	earlier.PayrollMonth = 11
	earlier.PayrollYear = 2025

	require.NoError(t, store.SaveAllocation(ctx, later))
	require.NoError(t, store.SaveAllocation(ctx, earlier))

	allocs, err := store.ListAllocationsByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, "alloc-earlier", allocs[0].ID)
	assert.Equal(t, "alloc-later", allocs[1].ID)
}

func TestSettlementRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settlement := domain.SettlementResult{
		ID:         "fnf-1",
		EmployeeID: "emp-1",
		Gratuity: domain.GratuityCalculationResult{
			YearsOfService:      5,
			EligibleForGratuity: true,
			GratuityAmount:      decimal.NewFromInt(144231),
			CappedAmount:        decimal.NewFromInt(144231),
			LastDrawnSalary:     decimal.NewFromInt(50000),
			Formula:             "Gratuity = ₹50,000 x 15/26 x 5 years = ₹1,44,231",
		},
		LeaveEncashment: decimal.NewFromInt(20000),
		NoticeRecovery:  decimal.NewFromInt(45000),
		NetPayable:      decimal.NewFromInt(119231),
	}

	require.NoError(t, store.SaveSettlement(ctx, settlement))

	got, err := store.GetSettlement(ctx, "fnf-1")
	require.NoError(t, err)
	assert.Equal(t, "emp-1", got.EmployeeID)
	assert.True(t, got.NetPayable.Equal(decimal.NewFromInt(119231)))
	assert.Equal(t, 5, got.Gratuity.YearsOfService)
	assert.Contains(t, got.Gratuity.Formula, "15/26")

	list, err := store.ListSettlementsByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

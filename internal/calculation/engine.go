package calculation

import (
	"github.com/vetanhq/vetan/internal/domain"
)

// Engine bundles the four statutory calculators behind one construction
// point. Every calculator is pure and synchronous; callers may run
// calculations for different employees concurrently because nothing here
// mutates shared state.
type Engine struct {
	Tax        *TaxCalculator
	Gratuity   *GratuityCalculator
	Settlement *SettlementCalculator
	Incentive  *IncentiveEngine
	Logger     Logger
}

// NewEngine creates an engine over the given tax settings and the default
// gratuity policy.
func NewEngine(settings domain.TaxSettings) *Engine {
	return &Engine{
		Tax:        NewTaxCalculator(settings),
		Gratuity:   NewGratuityCalculator(DefaultGratuityPolicy()),
		Settlement: NewSettlementCalculator(DefaultGratuityPolicy()),
		Incentive:  NewIncentiveEngine(),
		Logger:     noopLogger{},
	}
}

// SetLogger installs a logger on the engine and all calculators.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		return
	}
	e.Logger = l
	e.Tax.SetLogger(l)
	e.Gratuity.SetLogger(l)
	e.Settlement.Gratuity.SetLogger(l)
	e.Incentive.SetLogger(l)
}

// BatchTaxItem pairs an employee with their tax input for a payroll run.
type BatchTaxItem struct {
	EmployeeID string
	Input      domain.TaxCalculationInput
}

// BatchTaxResult is one employee's outcome within a batch run.
type BatchTaxResult struct {
	EmployeeID string
	Result     domain.TaxCalculationResult
}

// RunTaxBatch computes tax for every item. Each employee is an independent
// unit of work with no ordering dependency on the others; results are
// returned in input order. Ordering guarantees only hold within one
// employee's slab breakdown.
func (e *Engine) RunTaxBatch(items []BatchTaxItem) []BatchTaxResult {
	results := make([]BatchTaxResult, len(items))
	for i, item := range items {
		results[i] = BatchTaxResult{
			EmployeeID: item.EmployeeID,
			Result:     e.Tax.CalculateEmployeeTax(item.Input),
		}
	}
	return results
}

// BatchAllocationResult is one rule's outcome within a bulk incentive run.
// A failed rule carries its error without aborting the rest of the batch.
type BatchAllocationResult struct {
	RuleID      string
	EmployeeID  string
	Allocations []domain.IncentiveAllocation
	Err         error
}

// RunIncentiveBatch generates allocations for every rule against one
// employee. An invalid formula fails only its own entry.
func (e *Engine) RunIncentiveBatch(
	rules []domain.IncentiveRule,
	employee *domain.Employee,
	startMonth, startYear int,
) []BatchAllocationResult {
	results := make([]BatchAllocationResult, 0, len(rules))
	for i := range rules {
		allocs, err := e.Incentive.GenerateRecurringAllocations(&rules[i], employee, startMonth, startYear)
		if err != nil {
			e.Logger.Errorf("incentive: rule %s failed: %v", rules[i].ID, err)
		}
		results = append(results, BatchAllocationResult{
			RuleID:      rules[i].ID,
			EmployeeID:  employee.ID,
			Allocations: allocs,
			Err:         err,
		})
	}
	return results
}

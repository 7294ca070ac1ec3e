package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RecurrenceType controls how many allocations one rule evaluation produces.
type RecurrenceType string

const (
	RecurrenceOneTime RecurrenceType = "one_time"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// TaxTreatmentType tags how a payout is treated by the tax pipeline.
type TaxTreatmentType string

const (
	TaxTreatmentRegular   TaxTreatmentType = "regular"
	TaxTreatmentPerquiste TaxTreatmentType = "perquisite"
	TaxTreatmentExempt    TaxTreatmentType = "exempt"
)

// IncentiveRule is a versioned, named monetary formula definition. Once any
// allocation derived from a rule has been approved the rule is locked:
// amendments require a new version, never in-place mutation, so that
// already-approved payouts stay auditable.
type IncentiveRule struct {
	ID                string           `yaml:"id" json:"id"`
	Name              string           `yaml:"name" json:"name"`
	Category          string           `yaml:"category" json:"category"`
	FormulaExpression string           `yaml:"formula" json:"formulaExpression"`
	BaseComponent     string           `yaml:"base_component" json:"baseComponent"`
	CapAmount         *decimal.Decimal `yaml:"cap_amount,omitempty" json:"capAmount,omitempty"`
	RecurrenceType    RecurrenceType   `yaml:"recurrence_type" json:"recurrenceType"`
	RecurrenceCount   int              `yaml:"recurrence_count" json:"recurrenceCount"`
	TaxTreatment      TaxTreatmentType `yaml:"tax_treatment" json:"taxTreatmentType"`
	PFApplicable      bool             `yaml:"pf_applicable" json:"pfApplicable"`
	ESIApplicable     bool             `yaml:"esi_applicable" json:"esiApplicable"`
	EffectiveFrom     string           `yaml:"effective_from" json:"effectiveFrom"`
	EffectiveTo       string           `yaml:"effective_to,omitempty" json:"effectiveTo,omitempty"`
	Version           int              `yaml:"version" json:"version"`
	IsLocked          bool             `yaml:"is_locked" json:"isLocked"`
}

// AllocationStatus is the finite state machine for a computed payout:
// Draft -> PendingApproval -> Approved, with Approved terminal. There is no
// rejected state; cancellation is handled by discarding drafts in the
// surrounding workflow.
type AllocationStatus string

const (
	AllocationDraft           AllocationStatus = "draft"
	AllocationPendingApproval AllocationStatus = "pending_approval"
	AllocationApproved        AllocationStatus = "approved"
)

// CanTransitionTo reports whether the linear happy path permits the move.
func (s AllocationStatus) CanTransitionTo(next AllocationStatus) bool {
	switch s {
	case AllocationDraft:
		return next == AllocationPendingApproval
	case AllocationPendingApproval:
		return next == AllocationApproved
	default:
		return false
	}
}

// IncentiveAllocation is one computed payout instance for one employee for
// one payroll period. Allocations are never recomputed in place; a
// correction is a new allocation.
type IncentiveAllocation struct {
	ID                string           `json:"id"`
	RuleID            string           `json:"ruleId"`
	EmployeeID        string           `json:"employeeId"`
	CalculatedAmount  decimal.Decimal  `json:"calculatedAmount"`
	PayrollMonth      int              `json:"payrollMonth"`
	PayrollYear       int              `json:"payrollYear"`
	Status            AllocationStatus `json:"status"`
	IsRecovery        bool             `json:"isRecovery"`
	SourceRuleVersion int              `json:"sourceRuleVersion"`
	InstallmentNumber int              `json:"installmentNumber,omitempty"`
	TotalInstallments int              `json:"totalInstallments,omitempty"`
}

// Transition moves the allocation along the status state machine, rejecting
// anything outside the linear happy path.
func (a *IncentiveAllocation) Transition(next AllocationStatus) error {
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("allocation %s: invalid status transition %s -> %s", a.ID, a.Status, next)
	}
	a.Status = next
	return nil
}

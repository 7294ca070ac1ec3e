// Package sqlite provides the SQLite-backed persistence layer for incentive
// rules, allocations and settlement records.
//
// Rule locking is enforced here rather than in the calculators: once any
// allocation derived from a rule is approved, the rule row is marked locked
// and every later write to it is rejected. Amendments happen by inserting a
// new rule version, never by editing the locked row.
//
// Monetary values are stored as TEXT in decimal string form. SQLite's REAL
// column type is binary floating point and would corrupt paisa amounts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/vetanhq/vetan/internal/domain"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrRuleLocked is returned on any attempt to modify a locked rule.
	ErrRuleLocked = errors.New("rule is locked; create a new version instead")
	// ErrNotDraft is returned when deleting an allocation that has left the
	// draft state.
	ErrNotDraft = errors.New("only draft allocations can be deleted")
	// ErrInvalidTransition is returned for a status move outside the
	// Draft -> PendingApproval -> Approved path.
	ErrInvalidTransition = errors.New("invalid allocation status transition")
)

// Store implements persistence for the payroll computation records.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		annual_ctc TEXT NOT NULL,
		regime TEXT NOT NULL,
		joining_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS incentive_rules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		formula TEXT NOT NULL,
		base_component TEXT,
		cap_amount TEXT,
		recurrence_type TEXT NOT NULL,
		recurrence_count INTEGER NOT NULL DEFAULT 0,
		tax_treatment TEXT NOT NULL,
		pf_applicable INTEGER NOT NULL DEFAULT 0,
		esi_applicable INTEGER NOT NULL DEFAULT 0,
		effective_from TEXT,
		effective_to TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		is_locked INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS incentive_allocations (
		id TEXT PRIMARY KEY,
		rule_id TEXT NOT NULL REFERENCES incentive_rules(id),
		employee_id TEXT NOT NULL,
		calculated_amount TEXT NOT NULL,
		payroll_month INTEGER NOT NULL,
		payroll_year INTEGER NOT NULL,
		status TEXT NOT NULL,
		is_recovery INTEGER NOT NULL DEFAULT 0,
		source_rule_version INTEGER NOT NULL,
		installment_number INTEGER NOT NULL DEFAULT 0,
		total_installments INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_allocations_employee_period
		ON incentive_allocations(employee_id, payroll_year, payroll_month);
	CREATE INDEX IF NOT EXISTS idx_allocations_rule
		ON incentive_allocations(rule_id);

	CREATE TABLE IF NOT EXISTS settlements (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		gratuity_json TEXT NOT NULL,
		leave_encashment TEXT NOT NULL,
		notice_recovery TEXT NOT NULL,
		net_payable TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_settlements_employee
		ON settlements(employee_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveEmployee inserts or updates an employee record.
func (s *Store) SaveEmployee(ctx context.Context, emp domain.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, annual_ctc, regime, joining_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			annual_ctc = excluded.annual_ctc,
			regime = excluded.regime,
			joining_date = excluded.joining_date
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.AnnualCTC.String(), string(emp.Regime),
		emp.JoiningDate.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp domain.Employee
	var annualCTC, regime, joiningDate string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, annual_ctc, regime, joining_date FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &annualCTC, &regime, &joiningDate)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	emp.AnnualCTC, err = decimal.NewFromString(annualCTC)
	if err != nil {
		return nil, fmt.Errorf("corrupt annual_ctc for employee %s: %w", id, err)
	}
	emp.Regime = domain.TaxRegime(regime)
	emp.JoiningDate, _ = time.Parse(time.RFC3339, joiningDate)
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, annual_ctc, regime, joining_date FROM employees ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var emp domain.Employee
		var annualCTC, regime, joiningDate string
		if err := rows.Scan(&emp.ID, &emp.Name, &annualCTC, &regime, &joiningDate); err != nil {
			return nil, err
		}
		emp.AnnualCTC, err = decimal.NewFromString(annualCTC)
		if err != nil {
			return nil, fmt.Errorf("corrupt annual_ctc for employee %s: %w", emp.ID, err)
		}
		emp.Regime = domain.TaxRegime(regime)
		emp.JoiningDate, _ = time.Parse(time.RFC3339, joiningDate)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// SaveRule inserts or updates an incentive rule. Updating a locked rule is
// rejected with ErrRuleLocked.
func (s *Store) SaveRule(ctx context.Context, rule domain.IncentiveRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, exists, err := s.ruleLocked(ctx, rule.ID)
	if err != nil {
		return err
	}
	if exists && locked {
		return ErrRuleLocked
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO incentive_rules (
			id, name, category, formula, base_component, cap_amount,
			recurrence_type, recurrence_count, tax_treatment,
			pf_applicable, esi_applicable, effective_from, effective_to,
			version, is_locked, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			formula = excluded.formula,
			base_component = excluded.base_component,
			cap_amount = excluded.cap_amount,
			recurrence_type = excluded.recurrence_type,
			recurrence_count = excluded.recurrence_count,
			tax_treatment = excluded.tax_treatment,
			pf_applicable = excluded.pf_applicable,
			esi_applicable = excluded.esi_applicable,
			effective_from = excluded.effective_from,
			effective_to = excluded.effective_to,
			version = excluded.version,
			is_locked = excluded.is_locked,
			updated_at = excluded.updated_at
	`

	var capAmount any
	if rule.CapAmount != nil {
		capAmount = rule.CapAmount.String()
	}

	_, err = s.db.ExecContext(ctx, query,
		rule.ID, rule.Name, rule.Category, rule.FormulaExpression, rule.BaseComponent,
		capAmount, string(rule.RecurrenceType), rule.RecurrenceCount,
		string(rule.TaxTreatment), boolInt(rule.PFApplicable), boolInt(rule.ESIApplicable),
		rule.EffectiveFrom, rule.EffectiveTo, rule.Version, boolInt(rule.IsLocked),
		now, now,
	)
	return err
}

// GetRule retrieves a rule by ID.
func (s *Store) GetRule(ctx context.Context, id string) (*domain.IncentiveRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules, err := s.queryRules(ctx,
		ruleSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, ErrNotFound
	}
	return &rules[0], nil
}

// ListRules returns all rules ordered by name then version.
func (s *Store) ListRules(ctx context.Context) ([]domain.IncentiveRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRules(ctx, ruleSelect+" ORDER BY name, version")
}

// DeleteRule removes a rule. Locked rules cannot be deleted.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, exists, err := s.ruleLocked(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if locked {
		return ErrRuleLocked
	}

	_, err = s.db.ExecContext(ctx, "DELETE FROM incentive_rules WHERE id = ?", id)
	return err
}

const ruleSelect = `
	SELECT id, name, category, formula, base_component, cap_amount,
		recurrence_type, recurrence_count, tax_treatment,
		pf_applicable, esi_applicable, effective_from, effective_to,
		version, is_locked
	FROM incentive_rules`

func (s *Store) queryRules(ctx context.Context, query string, args ...any) ([]domain.IncentiveRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.IncentiveRule
	for rows.Next() {
		var r domain.IncentiveRule
		var baseComponent, capAmount, effectiveFrom, effectiveTo sql.NullString
		var recurrenceType, taxTreatment string
		var pf, esi, locked int

		if err := rows.Scan(&r.ID, &r.Name, &r.Category, &r.FormulaExpression,
			&baseComponent, &capAmount, &recurrenceType, &r.RecurrenceCount,
			&taxTreatment, &pf, &esi, &effectiveFrom, &effectiveTo,
			&r.Version, &locked); err != nil {
			return nil, err
		}

		r.BaseComponent = baseComponent.String
		r.EffectiveFrom = effectiveFrom.String
		r.EffectiveTo = effectiveTo.String
		r.RecurrenceType = domain.RecurrenceType(recurrenceType)
		r.TaxTreatment = domain.TaxTreatmentType(taxTreatment)
		r.PFApplicable = pf != 0
		r.ESIApplicable = esi != 0
		r.IsLocked = locked != 0

		if capAmount.Valid {
			cap, err := decimal.NewFromString(capAmount.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt cap_amount for rule %s: %w", r.ID, err)
			}
			r.CapAmount = &cap
		}

		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// ruleLocked reports the lock state and existence of a rule.
func (s *Store) ruleLocked(ctx context.Context, id string) (locked, exists bool, err error) {
	var lockedInt int
	err = s.db.QueryRowContext(ctx,
		"SELECT is_locked FROM incentive_rules WHERE id = ?", id,
	).Scan(&lockedInt)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return lockedInt != 0, true, nil
}

// SaveAllocation inserts or updates an allocation record.
func (s *Store) SaveAllocation(ctx context.Context, alloc domain.IncentiveAllocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveAllocation(ctx, s.db, alloc)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) saveAllocation(ctx context.Context, db execer, alloc domain.IncentiveAllocation) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO incentive_allocations (
			id, rule_id, employee_id, calculated_amount, payroll_month,
			payroll_year, status, is_recovery, source_rule_version,
			installment_number, total_installments, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		alloc.ID, alloc.RuleID, alloc.EmployeeID, alloc.CalculatedAmount.String(),
		alloc.PayrollMonth, alloc.PayrollYear, string(alloc.Status),
		boolInt(alloc.IsRecovery), alloc.SourceRuleVersion,
		alloc.InstallmentNumber, alloc.TotalInstallments, now, now,
	)
	return err
}

// GetAllocation retrieves an allocation by ID.
func (s *Store) GetAllocation(ctx context.Context, id string) (*domain.IncentiveAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allocs, err := s.queryAllocations(ctx, allocationSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(allocs) == 0 {
		return nil, ErrNotFound
	}
	return &allocs[0], nil
}

// ListAllocationsByEmployee returns an employee's allocations in payroll
// period order.
func (s *Store) ListAllocationsByEmployee(ctx context.Context, employeeID string) ([]domain.IncentiveAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAllocations(ctx,
		allocationSelect+" WHERE employee_id = ? ORDER BY payroll_year, payroll_month",
		employeeID)
}

// ListAllocationsByRule returns every allocation derived from a rule.
func (s *Store) ListAllocationsByRule(ctx context.Context, ruleID string) ([]domain.IncentiveAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAllocations(ctx,
		allocationSelect+" WHERE rule_id = ? ORDER BY payroll_year, payroll_month",
		ruleID)
}

const allocationSelect = `
	SELECT id, rule_id, employee_id, calculated_amount, payroll_month,
		payroll_year, status, is_recovery, source_rule_version,
		installment_number, total_installments
	FROM incentive_allocations`

func (s *Store) queryAllocations(ctx context.Context, query string, args ...any) ([]domain.IncentiveAllocation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocs []domain.IncentiveAllocation
	for rows.Next() {
		var a domain.IncentiveAllocation
		var amount, status string
		var recovery int

		if err := rows.Scan(&a.ID, &a.RuleID, &a.EmployeeID, &amount,
			&a.PayrollMonth, &a.PayrollYear, &status, &recovery,
			&a.SourceRuleVersion, &a.InstallmentNumber, &a.TotalInstallments); err != nil {
			return nil, err
		}

		a.CalculatedAmount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt calculated_amount for allocation %s: %w", a.ID, err)
		}
		a.Status = domain.AllocationStatus(status)
		a.IsRecovery = recovery != 0

		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

// SubmitAllocation moves a draft allocation to pending approval.
func (s *Store) SubmitAllocation(ctx context.Context, id string) (*domain.IncentiveAllocation, error) {
	return s.transition(ctx, id, domain.AllocationPendingApproval)
}

// ApproveAllocation moves a pending allocation to approved and locks its
// source rule in the same transaction. After this, the rule can no longer be
// edited or deleted.
func (s *Store) ApproveAllocation(ctx context.Context, id string) (*domain.IncentiveAllocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	alloc, err := s.getAllocationTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := alloc.Transition(domain.AllocationApproved); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	if err := s.saveAllocation(ctx, tx, *alloc); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE incentive_rules SET is_locked = 1, updated_at = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), alloc.RuleID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return alloc, nil
}

// DeleteAllocation removes a draft allocation. Anything past draft is part
// of the approval audit trail and stays.
func (s *Store) DeleteAllocation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	allocs, err := s.queryAllocations(ctx, allocationSelect+" WHERE id = ?", id)
	if err != nil {
		return err
	}
	if len(allocs) == 0 {
		return ErrNotFound
	}
	if allocs[0].Status != domain.AllocationDraft {
		return ErrNotDraft
	}

	_, err = s.db.ExecContext(ctx, "DELETE FROM incentive_allocations WHERE id = ?", id)
	return err
}

// transition applies a single-step status move under the write lock.
func (s *Store) transition(ctx context.Context, id string, next domain.AllocationStatus) (*domain.IncentiveAllocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allocs, err := s.queryAllocations(ctx, allocationSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(allocs) == 0 {
		return nil, ErrNotFound
	}

	alloc := allocs[0]
	if err := alloc.Transition(next); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	if err := s.saveAllocation(ctx, s.db, alloc); err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (s *Store) getAllocationTx(ctx context.Context, tx *sql.Tx, id string) (*domain.IncentiveAllocation, error) {
	var a domain.IncentiveAllocation
	var amount, status string
	var recovery int

	err := tx.QueryRowContext(ctx, allocationSelect+" WHERE id = ?", id).Scan(
		&a.ID, &a.RuleID, &a.EmployeeID, &amount,
		&a.PayrollMonth, &a.PayrollYear, &status, &recovery,
		&a.SourceRuleVersion, &a.InstallmentNumber, &a.TotalInstallments)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.CalculatedAmount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt calculated_amount for allocation %s: %w", a.ID, err)
	}
	a.Status = domain.AllocationStatus(status)
	a.IsRecovery = recovery != 0
	return &a, nil
}

// SaveSettlement persists a settlement record. The gratuity breakdown is
// stored as JSON alongside the structured totals.
func (s *Store) SaveSettlement(ctx context.Context, settlement domain.SettlementResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gratuityJSON, err := json.Marshal(settlement.Gratuity)
	if err != nil {
		return fmt.Errorf("failed to encode gratuity breakdown: %w", err)
	}

	query := `
		INSERT INTO settlements (
			id, employee_id, gratuity_json, leave_encashment,
			notice_recovery, net_payable, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		settlement.ID, settlement.EmployeeID, string(gratuityJSON),
		settlement.LeaveEncashment.String(), settlement.NoticeRecovery.String(),
		settlement.NetPayable.String(), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetSettlement retrieves a settlement by ID.
func (s *Store) GetSettlement(ctx context.Context, id string) (*domain.SettlementResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settlements, err := s.querySettlements(ctx, settlementSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(settlements) == 0 {
		return nil, ErrNotFound
	}
	return &settlements[0], nil
}

// ListSettlementsByEmployee returns an employee's settlements, newest first.
func (s *Store) ListSettlementsByEmployee(ctx context.Context, employeeID string) ([]domain.SettlementResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySettlements(ctx,
		settlementSelect+" WHERE employee_id = ? ORDER BY created_at DESC",
		employeeID)
}

const settlementSelect = `
	SELECT id, employee_id, gratuity_json, leave_encashment, notice_recovery, net_payable
	FROM settlements`

func (s *Store) querySettlements(ctx context.Context, query string, args ...any) ([]domain.SettlementResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settlements []domain.SettlementResult
	for rows.Next() {
		var r domain.SettlementResult
		var gratuityJSON, leave, notice, net string

		if err := rows.Scan(&r.ID, &r.EmployeeID, &gratuityJSON, &leave, &notice, &net); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(gratuityJSON), &r.Gratuity); err != nil {
			return nil, fmt.Errorf("corrupt gratuity breakdown for settlement %s: %w", r.ID, err)
		}
		if r.LeaveEncashment, err = decimal.NewFromString(leave); err != nil {
			return nil, err
		}
		if r.NoticeRecovery, err = decimal.NewFromString(notice); err != nil {
			return nil, err
		}
		if r.NetPayable, err = decimal.NewFromString(net); err != nil {
			return nil, err
		}

		settlements = append(settlements, r)
	}
	return settlements, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

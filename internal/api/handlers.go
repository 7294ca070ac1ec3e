package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vetanhq/vetan/internal/calculation"
	"github.com/vetanhq/vetan/internal/domain"
	"github.com/vetanhq/vetan/internal/optimizer"
	"github.com/vetanhq/vetan/internal/output"
	"github.com/vetanhq/vetan/internal/store/sqlite"
	"github.com/vetanhq/vetan/pkg/dateutil"
)

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Engine    *calculation.Engine
	Optimizer *optimizer.Optimizer
	Logger    zerolog.Logger
}

// NewHandler creates a handler over a store and a calculation engine.
func NewHandler(store *sqlite.Store, engine *calculation.Engine, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:     store,
		Engine:    engine,
		Optimizer: optimizer.NewOptimizer(engine.Tax),
		Logger:    logger,
	}
}

// CalculateTax computes one tax liability.
// POST /api/tax/calculate
func (h *Handler) CalculateTax(w http.ResponseWriter, r *http.Request) {
	var input domain.TaxCalculationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if input.Regime != "" && !input.Regime.Valid() {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Unknown tax regime %q (use old or new)", input.Regime), nil)
		return
	}

	writeJSON(w, http.StatusOK, h.Engine.Tax.CalculateEmployeeTax(input))
}

// CalculateTaxBatch computes tax for a whole payroll run.
// POST /api/tax/batch
func (h *Handler) CalculateTaxBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchTaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	items := make([]calculation.BatchTaxItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = calculation.BatchTaxItem{EmployeeID: item.EmployeeID, Input: item.Input}
	}

	writeJSON(w, http.StatusOK, h.Engine.RunTaxBatch(items))
}

// OptimizeRegime compares both regimes for the same financial facts.
// POST /api/tax/optimize
func (h *Handler) OptimizeRegime(w http.ResponseWriter, r *http.Request) {
	var input domain.TaxCalculationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	writeJSON(w, http.StatusOK, h.Optimizer.OptimizeTaxRegime(input))
}

// CalculateGratuity computes statutory gratuity without persisting anything.
// POST /api/gratuity/calculate
func (h *Handler) CalculateGratuity(w http.ResponseWriter, r *http.Request) {
	var input domain.GratuityCalculationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	writeJSON(w, http.StatusOK, h.Engine.Gratuity.Calculate(input))
}

// CreateSettlement computes and persists a full-and-final settlement.
// POST /api/settlements
func (h *Handler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	var input domain.SettlementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if input.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employeeId is required", nil)
		return
	}

	settlement := h.Engine.Settlement.Calculate(input)
	if err := h.Store.SaveSettlement(r.Context(), settlement); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settlement", err)
		return
	}

	writeJSON(w, http.StatusCreated, settlement)
}

// GetSettlement returns a stored settlement.
// GET /api/settlements/{id}
func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	settlement, err := h.Store.GetSettlement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "settlement", err)
		return
	}

	writeJSON(w, http.StatusOK, settlement)
}

// GetSettlementStatement renders a stored settlement as a PDF statement.
// GET /api/settlements/{id}/statement
func (h *Handler) GetSettlementStatement(w http.ResponseWriter, r *http.Request) {
	settlement, err := h.Store.GetSettlement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "settlement", err)
		return
	}

	employee, err := h.Store.GetEmployee(r.Context(), settlement.EmployeeID)
	if err != nil && !errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to load employee", err)
		return
	}

	data, err := output.GenerateSettlementPDF(*settlement, employee)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render statement", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=settlement-%s.pdf", settlement.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	if employees == nil {
		employees = []domain.Employee{}
	}

	writeJSON(w, http.StatusOK, employees)
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "employee", err)
		return
	}

	writeJSON(w, http.StatusOK, emp)
}

// CreateEmployee creates or updates an employee record.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	annualCTC, err := decimal.NewFromString(req.AnnualCTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid annualCTC", err)
		return
	}
	regime := domain.TaxRegime(req.Regime)
	if !regime.Valid() {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Unknown tax regime %q (use old or new)", req.Regime), nil)
		return
	}

	var joiningDate time.Time
	if req.JoiningDate != "" {
		joiningDate, err = dateutil.ParseDate(req.JoiningDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid joiningDate format (use YYYY-MM-DD)", err)
			return
		}
	}

	emp := domain.Employee{
		ID:          req.ID,
		Name:        req.Name,
		AnnualCTC:   annualCTC,
		Regime:      regime,
		JoiningDate: joiningDate,
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, emp)
}

// ListRules returns all incentive rules.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Store.ListRules(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rules", err)
		return
	}
	if rules == nil {
		rules = []domain.IncentiveRule{}
	}

	writeJSON(w, http.StatusOK, rules)
}

// GetRule returns a single rule.
// GET /api/rules/{id}
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.Store.GetRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "rule", err)
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

// SaveRule creates or updates a rule. The formula is validated against a
// probe context before anything is stored, so an unparseable rule never
// reaches payroll.
// POST /api/rules
func (h *Handler) SaveRule(w http.ResponseWriter, r *http.Request) {
	var rule domain.IncentiveRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if rule.ID == "" || rule.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	if rule.Version <= 0 {
		rule.Version = 1
	}

	probe := &domain.Employee{AnnualCTC: decimal.NewFromInt(1200000)}
	if _, err := h.Engine.Incentive.EvaluateIncentiveAmount(&rule,
		calculation.NewFormulaContext(probe, decimal.Zero)); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid formula", err)
		return
	}

	if err := h.Store.SaveRule(r.Context(), rule); err != nil {
		writeStoreError(w, "rule", err)
		return
	}

	writeJSON(w, http.StatusCreated, rule)
}

// DeleteRule removes an unlocked rule.
// DELETE /api/rules/{id}
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "rule", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateAllocations evaluates a rule for an employee and persists the
// resulting draft allocations.
// POST /api/rules/{id}/allocations
func (h *Handler) GenerateAllocations(w http.ResponseWriter, r *http.Request) {
	var req GenerateAllocationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.StartMonth < 1 || req.StartMonth > 12 {
		writeError(w, http.StatusBadRequest, "startMonth must be 1..12", nil)
		return
	}

	ctx := r.Context()
	rule, err := h.Store.GetRule(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "rule", err)
		return
	}
	employee, err := h.Store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		writeStoreError(w, "employee", err)
		return
	}

	allocations, err := h.Engine.Incentive.GenerateRecurringAllocations(rule, employee, req.StartMonth, req.StartYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to evaluate rule", err)
		return
	}

	for _, alloc := range allocations {
		if err := h.Store.SaveAllocation(ctx, alloc); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save allocation", err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, allocations)
}

// ListEmployeeAllocations returns an employee's allocations.
// GET /api/employees/{id}/allocations
func (h *Handler) ListEmployeeAllocations(w http.ResponseWriter, r *http.Request) {
	allocs, err := h.Store.ListAllocationsByEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list allocations", err)
		return
	}
	if allocs == nil {
		allocs = []domain.IncentiveAllocation{}
	}

	writeJSON(w, http.StatusOK, allocs)
}

// ListEmployeeSettlements returns an employee's settlements.
// GET /api/employees/{id}/settlements
func (h *Handler) ListEmployeeSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.Store.ListSettlementsByEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settlements", err)
		return
	}
	if settlements == nil {
		settlements = []domain.SettlementResult{}
	}

	writeJSON(w, http.StatusOK, settlements)
}

// SubmitAllocation moves a draft allocation to pending approval.
// POST /api/allocations/{id}/submit
func (h *Handler) SubmitAllocation(w http.ResponseWriter, r *http.Request) {
	alloc, err := h.Store.SubmitAllocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "allocation", err)
		return
	}

	writeJSON(w, http.StatusOK, alloc)
}

// ApproveAllocation approves a pending allocation and locks its source rule.
// POST /api/allocations/{id}/approve
func (h *Handler) ApproveAllocation(w http.ResponseWriter, r *http.Request) {
	alloc, err := h.Store.ApproveAllocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "allocation", err)
		return
	}

	writeJSON(w, http.StatusOK, alloc)
}

// DeleteAllocation discards a draft allocation.
// DELETE /api/allocations/{id}
func (h *Handler) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAllocation(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "allocation", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeStoreError maps store errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, noun string, err error) {
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		writeError(w, http.StatusNotFound, noun+" not found", nil)
	case errors.Is(err, sqlite.ErrRuleLocked):
		writeError(w, http.StatusConflict, "Rule is locked; create a new version instead", nil)
	case errors.Is(err, sqlite.ErrNotDraft):
		writeError(w, http.StatusConflict, "Only draft allocations can be deleted", nil)
	case errors.Is(err, sqlite.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Invalid allocation status transition", err)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to access "+noun, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

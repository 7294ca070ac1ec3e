package api

import (
	"github.com/vetanhq/vetan/internal/domain"
)

// ErrorResponse is the JSON body for every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CreateEmployeeRequest is the body for POST /api/employees.
type CreateEmployeeRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AnnualCTC   string `json:"annualCTC"`
	Regime      string `json:"regime"`
	JoiningDate string `json:"joiningDate"`
}

// GenerateAllocationsRequest is the body for POST /api/rules/{id}/allocations.
type GenerateAllocationsRequest struct {
	EmployeeID string `json:"employeeId"`
	StartMonth int    `json:"startMonth"`
	StartYear  int    `json:"startYear"`
}

// BatchTaxRequest is the body for POST /api/tax/batch.
type BatchTaxRequest struct {
	Items []BatchTaxRequestItem `json:"items"`
}

// BatchTaxRequestItem pairs an employee ID with a tax input.
type BatchTaxRequestItem struct {
	EmployeeID string                     `json:"employeeId"`
	Input      domain.TaxCalculationInput `json:"input"`
}

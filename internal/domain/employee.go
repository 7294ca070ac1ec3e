package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the slice of the employee record the calculators consume.
// The authoritative record lives with the external HR collaborators; the
// engine only reads compensation facts from it.
type Employee struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	AnnualCTC   decimal.Decimal `yaml:"annual_ctc" json:"annualCTC"`
	Regime      TaxRegime       `yaml:"regime" json:"regime"`
	JoiningDate time.Time       `yaml:"joining_date" json:"joiningDate"`
}

// MonthlyCTC is the employee's annual CTC spread over twelve months.
func (e *Employee) MonthlyCTC() decimal.Decimal {
	return e.AnnualCTC.Div(decimal.NewFromInt(12))
}

// AssumedMonthlyBasic derives a monthly basic as 40% of annual CTC over
// twelve months. This is a fixed assumed ratio, not the employee's actual
// configured salary structure; the incentive formula context depends on it.
func (e *Employee) AssumedMonthlyBasic() decimal.Decimal {
	return e.AnnualCTC.
		Mul(decimal.NewFromFloat(0.40)).
		Div(decimal.NewFromInt(12))
}

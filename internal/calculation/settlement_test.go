package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vetanhq/vetan/internal/domain"
)

func TestLeaveEncashment(t *testing.T) {
	tests := []struct {
		name     string
		input    domain.LeaveEncashmentInput
		expected decimal.Decimal
	}{
		{
			name: "Whole day balance",
			input: domain.LeaveEncashmentInput{
				LeaveBalanceDays: decimal.NewFromInt(10),
				MonthlyBasic:     decimal.NewFromInt(52000),
			},
			expected: decimal.NewFromInt(20000),
		},
		{
			name: "Fractional balance rounds to paisa",
			input: domain.LeaveEncashmentInput{
				LeaveBalanceDays: decimal.NewFromFloat(7.5),
				MonthlyBasic:     decimal.NewFromInt(52000),
			},
			expected: decimal.NewFromInt(15000),
		},
		{
			name: "Negative balance clamps to zero",
			input: domain.LeaveEncashmentInput{
				LeaveBalanceDays: decimal.NewFromInt(-3),
				MonthlyBasic:     decimal.NewFromInt(52000),
			},
			expected: decimal.Zero,
		},
		{
			name: "Custom working days divisor",
			input: domain.LeaveEncashmentInput{
				LeaveBalanceDays:    decimal.NewFromInt(10),
				MonthlyBasic:        decimal.NewFromInt(60000),
				WorkingDaysPerMonth: 30,
			},
			expected: decimal.NewFromInt(20000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LeaveEncashment(tt.input)
			assert.True(t, got.Equal(tt.expected), "Expected %s, got %s", tt.expected, got)
		})
	}
}

func TestNoticeRecovery(t *testing.T) {
	tests := []struct {
		name     string
		input    domain.NoticeRecoveryInput
		expected decimal.Decimal
	}{
		{
			name: "Shortfall charged per day",
			input: domain.NoticeRecoveryInput{
				RequiredDays:     60,
				ActualDaysServed: 45,
				MonthlyCTC:       decimal.NewFromInt(78000),
			},
			expected: decimal.NewFromInt(45000),
		},
		{
			name: "Full notice served",
			input: domain.NoticeRecoveryInput{
				RequiredDays:     60,
				ActualDaysServed: 60,
				MonthlyCTC:       decimal.NewFromInt(78000),
			},
			expected: decimal.Zero,
		},
		{
			name: "Overserving never refunds",
			input: domain.NoticeRecoveryInput{
				RequiredDays:     30,
				ActualDaysServed: 90,
				MonthlyCTC:       decimal.NewFromInt(78000),
			},
			expected: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NoticeRecovery(tt.input)
			assert.True(t, got.Equal(tt.expected), "Expected %s, got %s", tt.expected, got)
		})
	}
}

func TestSettlementCalculation(t *testing.T) {
	sc := NewSettlementCalculator(DefaultGratuityPolicy())

	result := sc.Calculate(domain.SettlementInput{
		EmployeeID: "emp-42",
		Gratuity: domain.GratuityCalculationInput{
			MonthlyBasic: decimal.NewFromInt(50000),
			JoiningDate:  "2019-01-01",
			ExitDate:     "2024-01-31",
		},
		Leave: domain.LeaveEncashmentInput{
			LeaveBalanceDays: decimal.NewFromInt(10),
			MonthlyBasic:     decimal.NewFromInt(52000),
		},
		Notice: domain.NoticeRecoveryInput{
			RequiredDays:     60,
			ActualDaysServed: 45,
			MonthlyCTC:       decimal.NewFromInt(78000),
		},
	})

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "emp-42", result.EmployeeID)
	assert.True(t, result.Gratuity.CappedAmount.Equal(decimal.NewFromInt(144231)))
	assert.True(t, result.LeaveEncashment.Equal(decimal.NewFromInt(20000)))
	assert.True(t, result.NoticeRecovery.Equal(decimal.NewFromInt(45000)))

	// 1,44,231 + 20,000 - 45,000.
	assert.True(t, result.NetPayable.Equal(decimal.NewFromInt(119231)),
		"Expected net 119231, got %s", result.NetPayable)
}

func TestSettlementUsesCappedGratuity(t *testing.T) {
	sc := NewSettlementCalculator(DefaultGratuityPolicy())

	result := sc.Calculate(domain.SettlementInput{
		EmployeeID: "emp-veteran",
		Gratuity: domain.GratuityCalculationInput{
			MonthlyBasic: decimal.NewFromInt(300000),
			JoiningDate:  "1990-01-01",
			ExitDate:     "2020-01-01",
		},
	})

	assert.True(t, result.Gratuity.IsCapped)
	assert.True(t, result.NetPayable.Equal(decimal.NewFromInt(2000000)),
		"Net must use the capped gratuity, got %s", result.NetPayable)
}

func TestSettlementDistinctIDs(t *testing.T) {
	sc := NewSettlementCalculator(DefaultGratuityPolicy())
	input := domain.SettlementInput{EmployeeID: "emp-1"}

	first := sc.Calculate(input)
	second := sc.Calculate(input)

	assert.NotEqual(t, first.ID, second.ID)
}

package calculation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vetanhq/vetan/internal/domain"
)

func TestGratuityStandardCase(t *testing.T) {
	gc := NewGratuityCalculator(DefaultGratuityPolicy())

	result := gc.Calculate(domain.GratuityCalculationInput{
		MonthlyBasic: decimal.NewFromInt(50000),
		JoiningDate:  "2019-01-01",
		ExitDate:     "2024-01-31",
	})

	assert.True(t, result.EligibleForGratuity)
	assert.Equal(t, 5, result.YearsOfService)
	assert.True(t, result.GratuityAmount.Equal(decimal.NewFromInt(144231)),
		"Expected 144231, got %s", result.GratuityAmount)
	assert.True(t, result.CappedAmount.Equal(result.GratuityAmount))
	assert.False(t, result.IsCapped)
	assert.Contains(t, result.Formula, "x 15/26 x 5 years")
}

func TestGratuityServiceRounding(t *testing.T) {
	gc := NewGratuityCalculator(DefaultGratuityPolicy())

	tests := []struct {
		name          string
		joining, exit string
		expectedYears int
	}{
		{
			name:    "Fraction below half year rounds down",
			joining: "2018-01-01", exit: "2023-05-01",
			expectedYears: 5,
		},
		{
			name:    "Fraction at half year or more rounds up",
			joining: "2018-01-01", exit: "2023-09-01",
			expectedYears: 6,
		},
		{
			name:    "Exact anniversary stays whole",
			joining: "2018-01-01", exit: "2024-01-01",
			expectedYears: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := gc.Calculate(domain.GratuityCalculationInput{
				MonthlyBasic: decimal.NewFromInt(50000),
				JoiningDate:  tt.joining,
				ExitDate:     tt.exit,
			})
			assert.Equal(t, tt.expectedYears, result.YearsOfService)
		})
	}
}

func TestGratuityIneligibleShortService(t *testing.T) {
	gc := NewGratuityCalculator(DefaultGratuityPolicy())

	result := gc.Calculate(domain.GratuityCalculationInput{
		MonthlyBasic: decimal.NewFromInt(50000),
		JoiningDate:  "2020-01-01",
		ExitDate:     "2024-06-30",
	})

	assert.False(t, result.EligibleForGratuity)
	assert.True(t, result.GratuityAmount.IsZero())
	assert.True(t, result.CappedAmount.IsZero())
	assert.True(t, strings.HasPrefix(result.Formula, "Not eligible"))
}

func TestGratuityEligibilityTolerance(t *testing.T) {
	gc := NewGratuityCalculator(DefaultGratuityPolicy())

	// 4 years and roughly ten months of service clears the 4.8-year
	// threshold even though the nominal statutory minimum is five.
	result := gc.Calculate(domain.GratuityCalculationInput{
		MonthlyBasic: decimal.NewFromInt(50000),
		JoiningDate:  "2019-01-01",
		ExitDate:     "2023-11-01",
	})

	assert.True(t, result.EligibleForGratuity)
	assert.Equal(t, 5, result.YearsOfService)
}

func TestGratuityCap(t *testing.T) {
	gc := NewGratuityCalculator(DefaultGratuityPolicy())

	result := gc.Calculate(domain.GratuityCalculationInput{
		MonthlyBasic: decimal.NewFromInt(300000),
		JoiningDate:  "1990-01-01",
		ExitDate:     "2020-01-01",
	})

	assert.True(t, result.IsCapped)
	assert.True(t, result.GratuityAmount.GreaterThan(result.CappedAmount))
	assert.True(t, result.CappedAmount.Equal(decimal.NewFromInt(2000000)))
	assert.Contains(t, result.Formula, "capped at ₹20,00,000")
}

func TestGratuityDearnessAllowance(t *testing.T) {
	gc := NewGratuityCalculator(DefaultGratuityPolicy())

	withDA := gc.Calculate(domain.GratuityCalculationInput{
		MonthlyBasic:      decimal.NewFromInt(40000),
		DearnessAllowance: decimal.NewFromInt(10000),
		JoiningDate:       "2019-01-01",
		ExitDate:          "2024-01-31",
	})

	assert.True(t, withDA.LastDrawnSalary.Equal(decimal.NewFromInt(50000)))
	assert.True(t, withDA.GratuityAmount.Equal(decimal.NewFromInt(144231)),
		"Expected 144231, got %s", withDA.GratuityAmount)
}

func TestGratuityCustomDivisor(t *testing.T) {
	gc := NewGratuityCalculator(DefaultGratuityPolicy())

	result := gc.Calculate(domain.GratuityCalculationInput{
		MonthlyBasic:    decimal.NewFromInt(52000),
		JoiningDate:     "2014-01-01",
		ExitDate:        "2024-01-01",
		PayCycleDivisor: 30,
	})

	// 52,000 x 15/30 x 10 = 2,60,000.
	assert.True(t, result.GratuityAmount.Equal(decimal.NewFromInt(260000)),
		"Expected 260000, got %s", result.GratuityAmount)
	assert.Contains(t, result.Formula, "x 15/30 x 10 years")
}

func TestGratuityMalformedDates(t *testing.T) {
	gc := NewGratuityCalculator(DefaultGratuityPolicy())

	tests := []struct {
		name          string
		joining, exit string
	}{
		{"Garbage joining date", "not-a-date", "2024-01-31"},
		{"Garbage exit date", "2019-01-01", "31/01/2024"},
		{"Empty dates", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := gc.Calculate(domain.GratuityCalculationInput{
				MonthlyBasic: decimal.NewFromInt(50000),
				JoiningDate:  tt.joining,
				ExitDate:     tt.exit,
			})
			assert.False(t, result.EligibleForGratuity)
			assert.True(t, result.GratuityAmount.IsZero())
			assert.Contains(t, result.Formula, "invalid")
		})
	}
}

func TestGratuityExitBeforeJoining(t *testing.T) {
	gc := NewGratuityCalculator(DefaultGratuityPolicy())

	result := gc.Calculate(domain.GratuityCalculationInput{
		MonthlyBasic: decimal.NewFromInt(50000),
		JoiningDate:  "2024-01-01",
		ExitDate:     "2020-01-01",
	})

	assert.False(t, result.EligibleForGratuity)
	assert.True(t, result.GratuityAmount.IsZero())
}

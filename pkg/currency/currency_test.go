package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatINR(t *testing.T) {
	tests := []struct {
		amount   int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{50000, "50,000"},
		{100000, "1,00,000"},
		{144231, "1,44,231"},
		{1500000, "15,00,000"},
		{2000000, "20,00,000"},
		{123456789, "12,34,56,789"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatINR(decimal.NewFromInt(tt.amount)))
		})
	}
}

func TestFormatINRNegative(t *testing.T) {
	assert.Equal(t, "-1,00,000", FormatINR(decimal.NewFromInt(-100000)))
	assert.Equal(t, "-₹1,00,000", FormatINRWithSymbol(decimal.NewFromInt(-100000)))
}

func TestFormatINRRoundsToRupee(t *testing.T) {
	assert.Equal(t, "1,44,231", FormatINR(decimal.NewFromFloat(144230.77)))
}

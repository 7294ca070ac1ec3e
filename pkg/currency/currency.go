// Package currency formats rupee amounts with Indian digit grouping.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount using the Indian grouping convention: the last
// three digits form one group, every preceding pair forms another
// (e.g. 2000000 -> "20,00,000"). Fractional digits beyond the rupee are
// dropped; the amount is rounded to the nearest rupee first.
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(0)

	neg := rounded.IsNegative()
	digits := rounded.Abs().StringFixed(0)

	grouped := groupIndian(digits)
	if neg {
		return "-" + grouped
	}
	return grouped
}

// FormatINRWithSymbol prepends the rupee sign.
func FormatINRWithSymbol(amount decimal.Decimal) string {
	s := FormatINR(amount)
	if strings.HasPrefix(s, "-") {
		return "-₹" + s[1:]
	}
	return "₹" + s
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}

	return strings.Join(groups, ",") + "," + tail
}

package optimizer

import (
	"fmt"
	"strings"

	"github.com/vetanhq/vetan/internal/domain"
	"github.com/vetanhq/vetan/pkg/currency"
)

// TableFormatter formats an optimizer result as a console table.
type TableFormatter struct{}

// Format renders the regime comparison and suggestions for a terminal.
func (tf *TableFormatter) Format(result *OptimizerResult) string {
	var sb strings.Builder

	sb.WriteString("TAX REGIME COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 72) + "\n")
	sb.WriteString(fmt.Sprintf("Fiscal Year: %s\n", result.OldRegime.FiscalYear))
	sb.WriteString(fmt.Sprintf("Gross Income: %s\n", currency.FormatINRWithSymbol(result.OldRegime.GrossIncome)))
	sb.WriteString("\n")

	labelWidth := 22
	numWidth := 18

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s\n",
		labelWidth, "",
		numWidth, "Old Regime",
		numWidth, "New Regime"))
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	rows := []struct {
		label    string
		old, new string
	}{
		{"Total Deductions", tf.totalDeductions(result.OldRegime), tf.totalDeductions(result.NewRegime)},
		{"Taxable Income", currency.FormatINR(result.OldRegime.TaxableIncome), currency.FormatINR(result.NewRegime.TaxableIncome)},
		{"Tax Payable", currency.FormatINR(result.OldRegime.TaxPayable), currency.FormatINR(result.NewRegime.TaxPayable)},
		{"Cess", currency.FormatINR(result.OldRegime.Cess), currency.FormatINR(result.NewRegime.Cess)},
		{"Total Tax", currency.FormatINR(result.OldRegime.TotalTax), currency.FormatINR(result.NewRegime.TotalTax)},
		{"Monthly TDS", currency.FormatINR(result.OldRegime.MonthlyTDS.Round(0)), currency.FormatINR(result.NewRegime.MonthlyTDS.Round(0))},
	}
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%-*s %*s %*s\n", labelWidth, row.label, numWidth, row.old, numWidth, row.new))
	}

	sb.WriteString(strings.Repeat("=", 72) + "\n")
	sb.WriteString(fmt.Sprintf("\nRECOMMENDED: %s regime", strings.ToUpper(string(result.Recommended))))
	if result.SavingsAmount.IsPositive() {
		sb.WriteString(fmt.Sprintf(" (saves %s, %s%%)",
			currency.FormatINRWithSymbol(result.SavingsAmount),
			result.SavingsPct.Round(1)))
	}
	sb.WriteString("\n")

	if len(result.Suggestions) > 0 {
		sb.WriteString("\nSUGGESTIONS\n")
		sb.WriteString(strings.Repeat("-", 72) + "\n")
		for _, s := range result.Suggestions {
			sb.WriteString(fmt.Sprintf("[%s] %s\n", strings.ToUpper(string(s.Type)), s.Title))
			sb.WriteString(fmt.Sprintf("  %s\n", s.Description))
		}
	}

	return sb.String()
}

func (tf *TableFormatter) totalDeductions(r domain.TaxCalculationResult) string {
	total := r.GrossIncome.Sub(r.TaxableIncome)
	return currency.FormatINR(total)
}

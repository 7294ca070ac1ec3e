package optimizer

import (
	"encoding/csv"
	"strings"

	"github.com/vetanhq/vetan/internal/domain"
)

// CSVFormatter formats an optimizer result as CSV, one row per regime.
type CSVFormatter struct{}

// Format generates CSV output for the regime comparison.
func (cf *CSVFormatter) Format(result *OptimizerResult) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Regime",
		"Recommended",
		"Gross Income",
		"Taxable Income",
		"Tax Payable",
		"Cess",
		"Total Tax",
		"Monthly TDS",
		"Rebate Applied",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, row := range []struct {
		regime domain.TaxRegime
		calc   domain.TaxCalculationResult
	}{
		{domain.RegimeOld, result.OldRegime},
		{domain.RegimeNew, result.NewRegime},
	} {
		record := []string{
			string(row.regime),
			boolString(result.Recommended == row.regime),
			row.calc.GrossIncome.StringFixed(2),
			row.calc.TaxableIncome.StringFixed(2),
			row.calc.TaxPayable.StringFixed(2),
			row.calc.Cess.StringFixed(2),
			row.calc.TotalTax.StringFixed(2),
			row.calc.MonthlyTDS.StringFixed(2),
			boolString(row.calc.RebateApplied),
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Package output renders settlement statements as PDF documents.
package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/vetanhq/vetan/internal/domain"
	"github.com/vetanhq/vetan/pkg/currency"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// pdfText converts UTF-8 text to PDF-safe encoding. The standard PDF fonts
// are Latin-1 and have no rupee glyph, so the symbol becomes "Rs. ".
func pdfText(s string) string {
	return strings.ReplaceAll(s, "₹", "Rs. ")
}

func moneyPDF(d decimal.Decimal) string {
	return pdfText(currency.FormatINRWithSymbol(d))
}

// SettlementStatement builds the full-and-final settlement statement PDF.
type SettlementStatement struct {
	pdf        *fpdf.Fpdf
	settlement domain.SettlementResult
	employee   *domain.Employee
}

// GenerateSettlementPDF renders a settlement as a one-page statement. The
// employee record is optional; when present the header names the employee.
func GenerateSettlementPDF(settlement domain.SettlementResult, employee *domain.Employee) ([]byte, error) {
	stmt := &SettlementStatement{
		pdf:        fpdf.New("P", "mm", "A4", ""),
		settlement: settlement,
		employee:   employee,
	}

	stmt.pdf.SetMargins(marginLeft, marginTop, marginRight)
	stmt.pdf.SetAutoPageBreak(true, marginBottom)

	stmt.addHeader()
	stmt.addGratuitySection()
	stmt.addComponentTable()
	stmt.addFooter()

	var buf bytes.Buffer
	if err := stmt.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *SettlementStatement) addHeader() {
	s.pdf.AddPage()

	s.pdf.SetFont("Arial", "B", 20)
	s.pdf.SetTextColor(0, 51, 102)
	s.pdf.CellFormat(contentWidth, 12, "Full & Final Settlement Statement", "", 1, "C", false, 0, "")

	s.pdf.SetFont("Arial", "", 11)
	s.pdf.SetTextColor(80, 80, 80)
	name := s.settlement.EmployeeID
	if s.employee != nil && s.employee.Name != "" {
		name = fmt.Sprintf("%s (%s)", s.employee.Name, s.employee.ID)
	}
	s.pdf.CellFormat(contentWidth, 8, pdfText("Employee: "+name), "", 1, "C", false, 0, "")

	s.pdf.SetFont("Arial", "I", 9)
	s.pdf.CellFormat(contentWidth, 6,
		fmt.Sprintf("Statement ID: %s   Generated: %s", s.settlement.ID, time.Now().Format("2 January 2006")),
		"", 1, "C", false, 0, "")
	s.pdf.Ln(6)
}

func (s *SettlementStatement) addGratuitySection() {
	g := s.settlement.Gratuity

	s.pdf.SetFont("Arial", "B", 12)
	s.pdf.SetTextColor(0, 51, 102)
	s.pdf.CellFormat(contentWidth, 8, "Gratuity", "B", 1, "L", false, 0, "")
	s.pdf.Ln(1)

	s.pdf.SetFont("Arial", "", 10)
	s.pdf.SetTextColor(50, 50, 50)

	rows := [][2]string{
		{"Years of Service", fmt.Sprintf("%d (%s exact)", g.YearsOfService, g.ExactYears.StringFixed(2))},
		{"Last Drawn Salary", moneyPDF(g.LastDrawnSalary)},
		{"Eligible", yesNo(g.EligibleForGratuity)},
		{"Gratuity Amount", moneyPDF(g.CappedAmount)},
	}
	if g.IsCapped {
		rows = append(rows, [2]string{"Statutory Cap Applied", yesNo(true)})
	}
	for _, row := range rows {
		s.pdf.CellFormat(60, 7, row[0], "", 0, "L", false, 0, "")
		s.pdf.CellFormat(contentWidth-60, 7, row[1], "", 1, "L", false, 0, "")
	}

	s.pdf.SetFont("Arial", "I", 9)
	s.pdf.SetTextColor(100, 100, 100)
	s.pdf.MultiCell(contentWidth, 6, pdfText(g.Formula), "", "L", false)
	s.pdf.Ln(4)
}

func (s *SettlementStatement) addComponentTable() {
	s.pdf.SetFont("Arial", "B", 12)
	s.pdf.SetTextColor(0, 51, 102)
	s.pdf.CellFormat(contentWidth, 8, "Settlement Summary", "B", 1, "L", false, 0, "")
	s.pdf.Ln(1)

	s.pdf.SetFillColor(245, 247, 250)
	s.pdf.SetDrawColor(200, 200, 200)
	s.pdf.SetFont("Arial", "B", 10)
	s.pdf.SetTextColor(0, 51, 102)
	s.pdf.CellFormat(110, 8, "Component", "1", 0, "L", true, 0, "")
	s.pdf.CellFormat(contentWidth-110, 8, "Amount", "1", 1, "R", true, 0, "")

	s.pdf.SetFont("Arial", "", 10)
	s.pdf.SetTextColor(50, 50, 50)

	s.componentRow("Gratuity (payable)", s.settlement.Gratuity.CappedAmount, false)
	s.componentRow("Leave Encashment", s.settlement.LeaveEncashment, false)
	s.componentRow("Notice Period Recovery", s.settlement.NoticeRecovery.Neg(), false)

	s.pdf.SetFont("Arial", "B", 11)
	s.pdf.SetTextColor(0, 51, 102)
	s.componentRow("Net Payable", s.settlement.NetPayable, true)
}

func (s *SettlementStatement) componentRow(label string, amount decimal.Decimal, fill bool) {
	s.pdf.CellFormat(110, 8, label, "1", 0, "L", fill, 0, "")
	s.pdf.CellFormat(contentWidth-110, 8, moneyPDF(amount), "1", 1, "R", fill, 0, "")
}

func (s *SettlementStatement) addFooter() {
	s.pdf.Ln(10)
	s.pdf.SetFont("Arial", "I", 8)
	s.pdf.SetTextColor(120, 120, 120)
	s.pdf.MultiCell(contentWidth, 5,
		"This statement is computer generated from the statutory settlement calculation. "+
			"Gratuity figures follow the Payment of Gratuity Act formula with the applicable ceiling.",
		"", "L", false)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Package tui is an interactive terminal front end for the regime
// comparison: fill in the income facts, hit enter, and the comparison
// updates in place.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/vetanhq/vetan/internal/calculation"
	"github.com/vetanhq/vetan/internal/domain"
	"github.com/vetanhq/vetan/internal/optimizer"
	"github.com/vetanhq/vetan/pkg/currency"
)

// Input field indices, in tab order.
const (
	fieldGrossIncome = iota
	fieldMonthlyBasic
	fieldMonthlyHRA
	fieldMonthlyRent
	field80C
	field80D
	fieldNPS
	fieldHomeLoan
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Gross Annual Income",
	"Monthly Basic",
	"Monthly HRA",
	"Monthly Rent Paid",
	"Section 80C",
	"Section 80D",
	"NPS 80CCD(1B)",
	"Home Loan Interest",
}

// Model is the application state for the regime comparison screen.
type Model struct {
	optimizer *optimizer.Optimizer

	inputs  [fieldCount]textinput.Model
	focused int
	metro   bool

	result *optimizer.OptimizerResult
	err    error

	width  int
	height int
}

// NewModel creates the TUI model over a tax calculator.
func NewModel(tax *calculation.TaxCalculator) Model {
	m := Model{
		optimizer: optimizer.NewOptimizer(tax),
		width:     80,
		height:    24,
	}

	for i := 0; i < fieldCount; i++ {
		ti := textinput.New()
		ti.Placeholder = "0"
		ti.CharLimit = 12
		ti.Width = 14
		m.inputs[i] = ti
	}
	m.inputs[fieldGrossIncome].Focus()

	return m
}

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			m.setFocus((m.focused + 1) % fieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focused + fieldCount - 1) % fieldCount)
			return m, nil
		case "ctrl+m", "ctrl+t":
			m.metro = !m.metro
			return m, nil
		case "enter":
			m.compute()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(index int) {
	m.inputs[m.focused].Blur()
	m.focused = index
	m.inputs[m.focused].Focus()
}

// compute reads the form and runs the regime comparison.
func (m *Model) compute() {
	values := [fieldCount]decimal.Decimal{}
	for i := 0; i < fieldCount; i++ {
		raw := strings.TrimSpace(m.inputs[i].Value())
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			m.err = fmt.Errorf("%s: %q is not a number", fieldLabels[i], raw)
			m.result = nil
			return
		}
		values[i] = v
	}

	m.err = nil
	m.result = m.optimizer.OptimizeTaxRegime(domain.TaxCalculationInput{
		GrossIncome:  values[fieldGrossIncome],
		MonthlyBasic: values[fieldMonthlyBasic],
		MonthlyHRA:   values[fieldMonthlyHRA],
		MonthlyRent:  values[fieldMonthlyRent],
		MetroCity:    m.metro,
		Investments: domain.InvestmentDeclarations{
			Section80C:       values[field80C],
			Section80D:       values[field80D],
			NPS80CCD1B:       values[fieldNPS],
			HomeLoanInterest: values[fieldHomeLoan],
		},
	})
}

// View renders the form and, when available, the comparison result.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Vetan  Tax Regime Comparison"))
	b.WriteString("\n\n")

	for i := 0; i < fieldCount; i++ {
		label := labelStyle
		if i == m.focused {
			label = focusedLabelStyle
		}
		b.WriteString(label.Render(fieldLabels[i]))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	metro := "no"
	if m.metro {
		metro = "yes"
	}
	b.WriteString(labelStyle.Render("Metro City (ctrl+t)"))
	b.WriteString(metro)
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(warningStyle.Render("\n" + m.err.Error()))
	}
	if m.result != nil {
		b.WriteString(m.renderResult())
	}

	b.WriteString(helpStyle.Render("\ntab: next field • enter: compute • esc: quit"))

	return appStyle.Render(b.String())
}

func (m Model) renderResult() string {
	r := m.result

	var b strings.Builder
	fmt.Fprintf(&b, "Old regime total tax  %s\n", currency.FormatINRWithSymbol(r.OldRegime.TotalTax))
	fmt.Fprintf(&b, "New regime total tax  %s\n", currency.FormatINRWithSymbol(r.NewRegime.TotalTax))
	b.WriteString("\n")
	b.WriteString(recommendedStyle.Render(
		fmt.Sprintf("Recommended: %s regime", strings.ToUpper(string(r.Recommended)))))
	if r.SavingsAmount.IsPositive() {
		fmt.Fprintf(&b, "\nSaves %s per year (%s%%)",
			currency.FormatINRWithSymbol(r.SavingsAmount), r.SavingsPct.Round(1))
	}

	for _, s := range r.Suggestions {
		fmt.Fprintf(&b, "\n[%s] %s", strings.ToUpper(string(s.Type)), s.Title)
	}

	return resultBoxStyle.Render(b.String())
}

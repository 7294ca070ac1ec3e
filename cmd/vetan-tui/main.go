package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vetanhq/vetan/internal/calculation"
	"github.com/vetanhq/vetan/internal/config"
	"github.com/vetanhq/vetan/internal/tui"
)

func main() {
	// Optional tax settings file; statutory defaults otherwise.
	settings := config.DefaultTaxSettings()
	if len(os.Args) > 1 {
		loaded, err := config.NewInputParser().LoadFromFile(os.Args[1])
		if err != nil {
			fmt.Printf("Error loading settings: %v\n", err)
			os.Exit(1)
		}
		settings = *loaded
	}

	model := tui.NewModel(calculation.NewTaxCalculator(settings))

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vetanhq/vetan/internal/api"
	"github.com/vetanhq/vetan/internal/calculation"
	"github.com/vetanhq/vetan/internal/config"
	"github.com/vetanhq/vetan/internal/domain"
	"github.com/vetanhq/vetan/internal/optimizer"
	"github.com/vetanhq/vetan/internal/output"
	"github.com/vetanhq/vetan/internal/store/sqlite"
)

// zerologAdapter implements calculation.Logger on top of zerolog.
type zerologAdapter struct{ l zerolog.Logger }

func (z zerologAdapter) Debugf(format string, args ...any) { z.l.Debug().Msgf(format, args...) }
func (z zerologAdapter) Infof(format string, args ...any)  { z.l.Info().Msgf(format, args...) }
func (z zerologAdapter) Warnf(format string, args ...any)  { z.l.Warn().Msgf(format, args...) }
func (z zerologAdapter) Errorf(format string, args ...any) { z.l.Error().Msgf(format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

var rootCmd = &cobra.Command{
	Use:   "vetan",
	Short: "Indian payroll statutory calculator",
	Long:  "Income tax, regime comparison, gratuity, settlement and variable-pay calculations for Indian payroll",
}

// loadSettings loads tax settings from the --config flag or falls back to
// the built-in statutory defaults.
func loadSettings(cmd *cobra.Command) (domain.TaxSettings, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.DefaultTaxSettings(), nil
	}

	parser := config.NewInputParser()
	settings, err := parser.LoadFromFile(path)
	if err != nil {
		return domain.TaxSettings{}, err
	}
	return *settings, nil
}

// taxInputFromFlags assembles a tax calculation input from shared flags.
func taxInputFromFlags(cmd *cobra.Command) (domain.TaxCalculationInput, error) {
	var input domain.TaxCalculationInput
	var err error

	flags := map[string]*decimal.Decimal{
		"gross":     &input.GrossIncome,
		"basic":     &input.MonthlyBasic,
		"hra":       &input.MonthlyHRA,
		"rent":      &input.MonthlyRent,
		"80c":       &input.Investments.Section80C,
		"80d":       &input.Investments.Section80D,
		"nps":       &input.Investments.NPS80CCD1B,
		"home-loan": &input.Investments.HomeLoanInterest,
	}
	for name, target := range flags {
		raw, _ := cmd.Flags().GetString(name)
		if raw == "" {
			continue
		}
		if *target, err = decimal.NewFromString(raw); err != nil {
			return input, fmt.Errorf("invalid --%s value %q: %w", name, raw, err)
		}
	}

	input.MetroCity, _ = cmd.Flags().GetBool("metro")
	input.FiscalYear, _ = cmd.Flags().GetString("fiscal-year")

	regime, _ := cmd.Flags().GetString("regime")
	input.Regime = domain.TaxRegime(regime)
	if regime != "" && !input.Regime.Valid() {
		return input, fmt.Errorf("unknown regime %q (use old or new)", regime)
	}

	return input, nil
}

func addTaxInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("gross", "", "gross annual income")
	cmd.Flags().String("basic", "", "monthly basic salary")
	cmd.Flags().String("hra", "", "monthly HRA received")
	cmd.Flags().String("rent", "", "monthly rent paid")
	cmd.Flags().String("80c", "", "section 80C declarations")
	cmd.Flags().String("80d", "", "section 80D health insurance premium")
	cmd.Flags().String("nps", "", "NPS 80CCD(1B) contribution")
	cmd.Flags().String("home-loan", "", "home loan interest paid")
	cmd.Flags().Bool("metro", false, "metro city residence")
	cmd.Flags().String("fiscal-year", "", "fiscal year override (e.g. 2024-25)")
	cmd.Flags().String("config", "", "tax settings YAML file")
}

func taxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Calculate income tax for one regime",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			input, err := taxInputFromFlags(cmd)
			if err != nil {
				return err
			}
			if input.Regime == "" {
				input.Regime = domain.RegimeNew
			}

			calc := calculation.NewTaxCalculator(settings)
			calc.SetLogger(zerologAdapter{logger})

			return writeJSONOutput(calc.CalculateEmployeeTax(input))
		},
	}
	addTaxInputFlags(cmd)
	return cmd
}

func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Compare both regimes and suggest the better one",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			input, err := taxInputFromFlags(cmd)
			if err != nil {
				return err
			}

			calc := calculation.NewTaxCalculator(settings)
			calc.SetLogger(zerologAdapter{logger})
			result := optimizer.NewOptimizer(calc).OptimizeTaxRegime(input)

			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "json":
				out, err := (&optimizer.JSONFormatter{Pretty: true}).Format(result)
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, out)
			case "csv":
				out, err := (&optimizer.CSVFormatter{}).Format(result)
				if err != nil {
					return err
				}
				fmt.Fprint(os.Stdout, out)
			default:
				fmt.Fprint(os.Stdout, (&optimizer.TableFormatter{}).Format(result))
			}
			return nil
		},
	}
	addTaxInputFlags(cmd)
	cmd.Flags().String("format", "table", "output format: table, json, csv")
	return cmd
}

func gratuityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gratuity",
		Short: "Calculate statutory gratuity for an exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			basic, _ := cmd.Flags().GetString("basic")
			da, _ := cmd.Flags().GetString("da")

			var input domain.GratuityCalculationInput
			var err error
			if input.MonthlyBasic, err = decimal.NewFromString(basic); err != nil {
				return fmt.Errorf("invalid --basic value %q: %w", basic, err)
			}
			if da != "" {
				if input.DearnessAllowance, err = decimal.NewFromString(da); err != nil {
					return fmt.Errorf("invalid --da value %q: %w", da, err)
				}
			}
			input.JoiningDate, _ = cmd.Flags().GetString("joining")
			input.ExitDate, _ = cmd.Flags().GetString("exit")

			calc := calculation.NewGratuityCalculator(calculation.DefaultGratuityPolicy())
			calc.SetLogger(zerologAdapter{logger})

			result := calc.Calculate(input)
			fmt.Fprintln(os.Stdout, result.Formula)
			return writeJSONOutput(result)
		},
	}
	cmd.Flags().String("basic", "0", "last drawn monthly basic")
	cmd.Flags().String("da", "", "monthly dearness allowance")
	cmd.Flags().String("joining", "", "joining date (YYYY-MM-DD)")
	cmd.Flags().String("exit", "", "exit date (YYYY-MM-DD)")
	return cmd
}

func settlementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settlement [input-file]",
		Short: "Calculate a full-and-final settlement from a YAML input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var input domain.SettlementInput
			if err := yaml.Unmarshal(data, &input); err != nil {
				return fmt.Errorf("failed to parse settlement input: %w", err)
			}

			calc := calculation.NewSettlementCalculator(calculation.DefaultGratuityPolicy())
			calc.Gratuity.SetLogger(zerologAdapter{logger})
			result := calc.Calculate(input)

			if pdfPath, _ := cmd.Flags().GetString("pdf"); pdfPath != "" {
				pdfData, err := output.GenerateSettlementPDF(result, nil)
				if err != nil {
					return fmt.Errorf("failed to render statement: %w", err)
				}
				if err := os.WriteFile(pdfPath, pdfData, 0o644); err != nil {
					return err
				}
				logger.Info().Str("path", pdfPath).Msg("settlement statement written")
			}

			return writeJSONOutput(result)
		},
	}
	cmd.Flags().String("pdf", "", "also write a PDF statement to this path")
	return cmd
}

func incentiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incentive",
		Short: "Evaluate a variable-pay formula for an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctcRaw, _ := cmd.Flags().GetString("ctc")
			annualCTC, err := decimal.NewFromString(ctcRaw)
			if err != nil {
				return fmt.Errorf("invalid --ctc value %q: %w", ctcRaw, err)
			}

			formula, _ := cmd.Flags().GetString("formula")
			months, _ := cmd.Flags().GetInt("months")
			startMonth, _ := cmd.Flags().GetInt("start-month")
			startYear, _ := cmd.Flags().GetInt("start-year")

			rule := &domain.IncentiveRule{
				ID:                "cli",
				Name:              "cli",
				FormulaExpression: formula,
				RecurrenceType:    domain.RecurrenceOneTime,
				RecurrenceCount:   months,
				Version:           1,
			}
			if months > 1 {
				rule.RecurrenceType = domain.RecurrenceMonthly
			}
			if capRaw, _ := cmd.Flags().GetString("cap"); capRaw != "" {
				capAmount, err := decimal.NewFromString(capRaw)
				if err != nil {
					return fmt.Errorf("invalid --cap value %q: %w", capRaw, err)
				}
				rule.CapAmount = &capAmount
			}

			employee := &domain.Employee{ID: "cli", AnnualCTC: annualCTC}
			engine := calculation.NewIncentiveEngine()
			engine.SetLogger(zerologAdapter{logger})

			allocations, err := engine.GenerateRecurringAllocations(rule, employee, startMonth, startYear)
			if err != nil {
				return err
			}
			return writeJSONOutput(allocations)
		},
	}
	cmd.Flags().String("formula", "", "formula expression (monthlyBasic, monthlyCTC, fixedValue)")
	cmd.Flags().String("ctc", "0", "employee annual CTC")
	cmd.Flags().String("cap", "", "cap amount")
	cmd.Flags().Int("months", 1, "number of monthly installments")
	cmd.Flags().Int("start-month", 4, "first payroll month (1..12)")
	cmd.Flags().Int("start-year", 2025, "first payroll year")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the payroll computation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			dbPath, _ := cmd.Flags().GetString("db")
			store, err := sqlite.New(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := calculation.NewEngine(settings)
			engine.SetLogger(zerologAdapter{logger})

			handler := api.NewHandler(store, engine, logger)
			addr, _ := cmd.Flags().GetString("addr")

			logger.Info().Str("addr", addr).Str("db", dbPath).Msg("starting server")
			return http.ListenAndServe(addr, api.NewRouter(handler))
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("db", "vetan.db", "SQLite database path")
	cmd.Flags().String("config", "", "tax settings YAML file")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "vetan %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

func writeJSONOutput(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}

func main() {
	rootCmd.AddCommand(taxCmd())
	rootCmd.AddCommand(optimizeCmd())
	rootCmd.AddCommand(gratuityCmd())
	rootCmd.AddCommand(settlementCmd())
	rootCmd.AddCommand(incentiveCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
}

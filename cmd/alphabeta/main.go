// alphabeta — weekly-returns alpha/beta analyzer
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/alphabeta/api"
	"github.com/seenimoa/alphabeta/internal/analysis"
	"github.com/seenimoa/alphabeta/internal/config"
	"github.com/seenimoa/alphabeta/internal/dataset"
	"github.com/seenimoa/alphabeta/internal/datasource"
	"github.com/seenimoa/alphabeta/internal/report"
	"github.com/seenimoa/alphabeta/pkg/models"
	"github.com/seenimoa/alphabeta/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "alphabeta",
	Short: "alphabeta — CAPM alpha/beta analysis over weekly returns",
	Long: `alphabeta computes Jensen's alpha, beta, and R² for a stock against a
benchmark index from weekly returns, either as a single regression over a
3- or 5-year horizon or as a rolling quarterly-stepped trend. Prices come
from Yahoo Finance or a local CSV file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(rollingCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("alphabeta %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Shared analysis flags / helpers ---

// analysisParams merges the config defaults with the command's flags.
func analysisParams(cmd *cobra.Command, stock string) (models.AnalysisParams, error) {
	benchmark, _ := cmd.Flags().GetString("benchmark")
	params := cfg.Params(utils.NormalizeSymbol(stock), utils.NormalizeSymbol(benchmark))

	if cmd.Flags().Changed("risk-free") {
		params.RiskFreeRatePct, _ = cmd.Flags().GetFloat64("risk-free")
	}
	if cmd.Flags().Changed("period") {
		years, _ := cmd.Flags().GetInt("period")
		switch years {
		case 3:
			params.PeriodWeeks = 156
		case 5:
			params.PeriodWeeks = 260
		default:
			return params, fmt.Errorf("unsupported period %d (use 3 or 5 years)", years)
		}
	}
	if cmd.Flags().Changed("log") {
		params.UseLogReturns, _ = cmd.Flags().GetBool("log")
	}
	if cmd.Flags().Changed("window-weeks") {
		params.WindowWeeks, _ = cmd.Flags().GetInt("window-weeks")
	}
	if cmd.Flags().Changed("step-weeks") {
		params.StepWeeks, _ = cmd.Flags().GetInt("step-weeks")
	}

	if params.RiskFreeRatePct < 0 || params.RiskFreeRatePct > 20 {
		return params, fmt.Errorf("risk-free rate %.2f out of range [0, 20]", params.RiskFreeRatePct)
	}
	if params.Stock == params.Benchmark {
		return params, fmt.Errorf("stock and benchmark must differ")
	}
	return params, nil
}

// priceTable loads daily closes either from the --csv file or from Yahoo
// Finance, covering at least lookbackWeeks before now.
func priceTable(cmd *cobra.Command, symbols []string, lookbackWeeks int) (*models.PriceTable, error) {
	if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		table, rep, err := dataset.Load(f)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", csvPath, err)
		}
		dataset.Clean(table, rep)
		if rep.HasErrors() {
			fmt.Fprintf(os.Stderr, "warning: %s had %d dropped row(s)\n", csvPath, rep.RowsDropped)
		}
		for _, sym := range symbols {
			if !table.HasColumn(sym) {
				return nil, fmt.Errorf("%s has no column %s", csvPath, sym)
			}
		}
		return table, nil
	}

	client := datasource.NewClient(datasource.Options{
		CacheTTL:          time.Duration(cfg.Datasource.CacheTTL) * time.Second,
		RequestsPerSecond: cfg.Datasource.RequestsPerSecond,
		ConcurrentFetches: cfg.Datasource.ConcurrentFetches,
	})

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -7*(lookbackWeeks+4))

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()
	return client.PriceTable(ctx, symbols, from, to)
}

// writeExports writes the optional --export CSV and --chart JSON outputs.
func writeExports(cmd *cobra.Command, writeCSV func(f *os.File) error, series func() any) error {
	if path, _ := cmd.Flags().GetString("export"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := writeCSV(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	if path, _ := cmd.Flags().GetString("chart"); path != "" {
		data, err := json.MarshalIndent(series(), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [stock]",
	Short: "Run a static alpha/beta regression for a stock",
	Long: `Compute Jensen's alpha, beta, R², and the regression standard error for
one stock against a benchmark over the trailing 3- or 5-year weekly window.

Examples:
  alphabeta analyze AAPL --benchmark SPY
  alphabeta analyze AAPL --benchmark SPY --period 5 --risk-free 4.5
  alphabeta analyze AAPL --benchmark SPY --csv prices.csv --chart scatter.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := analysisParams(cmd, args[0])
		if err != nil {
			return err
		}

		table, err := priceTable(cmd, []string{params.Stock, params.Benchmark}, params.PeriodWeeks)
		if err != nil {
			return err
		}

		result, _, err := analysis.RunStatic(table, params)
		if err != nil {
			return err
		}

		fmt.Print(report.RenderAnalysisText(params.Stock, params.Benchmark, params, result))

		return writeExports(cmd,
			func(f *os.File) error { return report.WriteAnalysisCSV(f, result) },
			func() any { return report.BuildScatterSeries(result) })
	},
}

func init() {
	analyzeCmd.Flags().String("benchmark", "SPY", "benchmark index symbol")
	analyzeCmd.Flags().Float64("risk-free", 5.0, "annual risk-free rate in percent")
	analyzeCmd.Flags().Int("period", 3, "analysis period in years (3 or 5)")
	analyzeCmd.Flags().Bool("log", false, "use log returns instead of simple returns")
	analyzeCmd.Flags().String("csv", "", "load prices from a CSV file instead of Yahoo Finance")
	analyzeCmd.Flags().String("export", "", "write regression data points to a CSV file")
	analyzeCmd.Flags().String("chart", "", "write scatter chart series data to a JSON file")
}

// --- Rolling Command ---

var rollingCmd = &cobra.Command{
	Use:   "rolling [stock]",
	Short: "Compute the rolling alpha/beta trend for a stock",
	Long: `Slide a trailing window across the aligned weekly return history and
re-run the regression at each quarterly step, producing an alpha/beta/R²
trend over time.

Examples:
  alphabeta rolling AAPL --benchmark SPY
  alphabeta rolling AAPL --benchmark SPY --window-weeks 104 --step-weeks 26`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := analysisParams(cmd, args[0])
		if err != nil {
			return err
		}

		// Fetch enough history for several window positions past the first.
		lookback := params.WindowWeeks + 9*params.StepWeeks
		table, err := priceTable(cmd, []string{params.Stock, params.Benchmark}, lookback)
		if err != nil {
			return err
		}

		result, err := analysis.RunRolling(table, params)
		if err != nil {
			return err
		}

		fmt.Print(report.RenderRollingText(params.Stock, &result))

		return writeExports(cmd,
			func(f *os.File) error { return report.WriteRollingCSV(f, &result) },
			func() any { return report.BuildTrendSeries(&result) })
	},
}

func init() {
	rollingCmd.Flags().String("benchmark", "SPY", "benchmark index symbol")
	rollingCmd.Flags().Float64("risk-free", 5.0, "annual risk-free rate in percent")
	rollingCmd.Flags().Int("period", 3, "analysis period in years (3 or 5)")
	rollingCmd.Flags().Bool("log", false, "use log returns instead of simple returns")
	rollingCmd.Flags().Int("window-weeks", 156, "rolling window length in weeks")
	rollingCmd.Flags().Int("step-weeks", 13, "weeks between window positions")
	rollingCmd.Flags().String("csv", "", "load prices from a CSV file instead of Yahoo Finance")
	rollingCmd.Flags().String("export", "", "write the rolling trend to a CSV file")
	rollingCmd.Flags().String("chart", "", "write trend chart series data to a JSON file")
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch [symbols...]",
	Short: "Download daily closes from Yahoo Finance into a CSV file",
	Long: `Download daily closing prices for one or more symbols and write them as an
analyzer-format CSV (Date column plus one column per symbol).

Examples:
  alphabeta fetch AAPL SPY --years 3 --out prices.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		years, _ := cmd.Flags().GetInt("years")
		if years < 1 {
			return fmt.Errorf("years must be at least 1")
		}
		outPath, _ := cmd.Flags().GetString("out")

		client := datasource.NewClient(datasource.Options{
			CacheTTL:          time.Duration(cfg.Datasource.CacheTTL) * time.Second,
			RequestsPerSecond: cfg.Datasource.RequestsPerSecond,
			ConcurrentFetches: cfg.Datasource.ConcurrentFetches,
		})

		to := time.Now().UTC()
		from := to.AddDate(-years, 0, -7)

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		table, err := client.PriceTable(ctx, args, from, to)
		if err != nil {
			return err
		}
		fmt.Printf("fetched %d trading days for %d symbol(s)\n", table.Rows(), len(table.Columns))

		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if err := dataset.Write(out, table); err != nil {
			return err
		}
		if outPath != "" {
			fmt.Printf("wrote %s\n", outPath)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().Int("years", 3, "years of history to download")
	fetchCmd.Flags().String("out", "", "output CSV path (default: stdout)")
}

// --- Validate Command ---

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate and clean an analyzer-format price CSV",
	Long: `Check a price CSV for bad dates, duplicate rows, and unparseable cells,
impute short gaps (up to two consecutive missing days per run), and report
everything found. With --out, write the cleaned table back out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		table, rep, err := dataset.Load(f)
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}
		dataset.Clean(table, rep)

		fmt.Printf("rows read: %d, loaded: %d, dropped: %d\n", rep.RowsRead, rep.RowsLoaded, rep.RowsDropped)
		fmt.Printf("columns: %v\n", table.Columns)
		for _, is := range rep.Issues {
			if is.Column != "" {
				fmt.Printf("  row %d [%s] %s: %s\n", is.Row, is.Column, is.Kind, is.Message)
			} else {
				fmt.Printf("  row %d %s: %s\n", is.Row, is.Kind, is.Message)
			}
		}

		if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := dataset.Write(out, table); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", outPath)
		}

		if rep.HasErrors() {
			return fmt.Errorf("%d row(s) dropped", rep.RowsDropped)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().String("out", "", "write the cleaned CSV to this path")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		api.Version = version
		srv := api.NewServer(cfg)

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting alphabeta API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

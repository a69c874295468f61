package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/seenimoa/alphabeta/pkg/models"
	"github.com/seenimoa/alphabeta/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Text Report — CLI-facing summary rendering
// ════════════════════════════════════════════════════════════════════

// RenderAnalysisText renders a static analysis result as a plain-text
// summary block for terminal output.
func RenderAnalysisText(stock, benchmark string, params models.AnalysisParams, result *models.AnalysisResult) string {
	var sb strings.Builder

	kind := "simple"
	if params.UseLogReturns {
		kind = "log"
	}

	sb.WriteString(fmt.Sprintf("Alpha/Beta Analysis: %s vs %s\n", stock, benchmark))
	sb.WriteString(strings.Repeat("─", 48) + "\n")
	sb.WriteString(fmt.Sprintf("  Period          : %d weeks (%s returns)\n", params.PeriodWeeks, kind))
	sb.WriteString(fmt.Sprintf("  Risk-free rate  : %.2f%% p.a.\n", params.RiskFreeRatePct))
	sb.WriteString(fmt.Sprintf("  Data points     : %d\n", result.Statistics.DataPointsCount))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Alpha           : %+.4f%% p.a.\n", result.Alpha))
	sb.WriteString(fmt.Sprintf("  Beta            : %.4f\n", result.Beta))
	sb.WriteString(fmt.Sprintf("  R-squared       : %.4f\n", result.RSquared))
	sb.WriteString(fmt.Sprintf("  Std. error      : %.4f\n", result.StandardError))
	sb.WriteString(fmt.Sprintf("  Regression      : y = %.4fx %+.4f\n", result.Regression.Slope, result.Regression.Intercept))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Mean return     : stock %+.4f%%/wk, benchmark %+.4f%%/wk\n",
		result.Statistics.MeanStockReturn, result.Statistics.MeanMarketReturn))
	sb.WriteString(fmt.Sprintf("  Std deviation   : stock %.4f, benchmark %.4f\n",
		result.Statistics.StdStockReturn, result.Statistics.StdMarketReturn))
	sb.WriteString(fmt.Sprintf("  Correlation     : %.4f\n", result.Statistics.Correlation))

	return sb.String()
}

// RenderRollingText renders a rolling trend as an aligned plain-text table.
func RenderRollingText(stock string, result *models.RollingResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Rolling Trend: %s (%d windows)\n", stock, len(result.Points)))
	sb.WriteString(strings.Repeat("─", 72) + "\n")
	sb.WriteString(fmt.Sprintf("  %-9s %-12s %-12s %10s %10s %10s\n",
		"Quarter", "From", "To", "Alpha", "Beta", "R²"))
	for _, p := range result.Points {
		sb.WriteString(fmt.Sprintf("  %-9s %-12s %-12s %+10.4f %10.4f %10.4f\n",
			p.Quarter,
			utils.FormatDate(p.DataPeriodStart),
			utils.FormatDate(p.DataPeriodEnd),
			p.Alpha, p.Beta, p.RSquared))
	}

	if len(result.Skipped) > 0 {
		reasons := make([]string, 0, len(result.Skipped))
		for r := range result.Skipped {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		sb.WriteString("\n")
		for _, r := range reasons {
			sb.WriteString(fmt.Sprintf("  skipped %d window(s): %s\n", result.Skipped[r], r))
		}
	}

	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// CSV Export
// ════════════════════════════════════════════════════════════════════

// WriteAnalysisCSV writes the regression data points of a static analysis
// as CSV: one row per aligned week pair, with the fitted value alongside.
func WriteAnalysisCSV(w io.Writer, result *models.AnalysisResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"benchmark_return", "stock_return", "fitted"}); err != nil {
		return err
	}
	for _, p := range result.DataPoints {
		fitted := result.Regression.Slope*p.X + result.Regression.Intercept
		row := []string{
			strconv.FormatFloat(p.X, 'f', -1, 64),
			strconv.FormatFloat(p.Y, 'f', -1, 64),
			strconv.FormatFloat(fitted, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteRollingCSV writes a rolling trend as CSV, one row per window.
func WriteRollingCSV(w io.Writer, result *models.RollingResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"quarter", "date", "period_start", "period_end", "alpha", "beta", "r_squared", "data_points"}); err != nil {
		return err
	}
	for _, p := range result.Points {
		row := []string{
			p.Quarter,
			utils.FormatDate(p.Date),
			utils.FormatDate(p.DataPeriodStart),
			utils.FormatDate(p.DataPeriodEnd),
			strconv.FormatFloat(p.Alpha, 'f', -1, 64),
			strconv.FormatFloat(p.Beta, 'f', -1, 64),
			strconv.FormatFloat(p.RSquared, 'f', -1, 64),
			strconv.Itoa(p.DataPoints),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

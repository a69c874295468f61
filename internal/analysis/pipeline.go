package analysis

import (
	"errors"
	"fmt"

	"github.com/seenimoa/alphabeta/pkg/models"
)

// ErrNoAlignedData means the inner join of the requested instruments left
// zero common weeks — valid input, nothing to analyze.
var ErrNoAlignedData = errors.New("no overlapping weeks between the selected instruments")

// AlignTable derives weekly returns for the requested columns of a price
// table and inner-joins them onto common week-end dates. This is the shared
// front half of both the static and rolling pipelines.
func AlignTable(table *models.PriceTable, names []string, useLog bool) ([]models.AlignedWeek, error) {
	perColumn := make(map[string][]models.WeeklyReturn, len(names))
	for _, name := range names {
		prices, ok := table.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found in price table", name)
		}
		perColumn[name] = DeriveWeeklyReturns(table.Dates, prices, useLog)
	}
	return Align(names, perColumn), nil
}

// RunStatic runs the full static pipeline: derive, align, truncate to the
// selected period, regress. The aligned (pre-truncation) series is returned
// alongside so callers can reuse it for the rolling trend or report its
// coverage.
func RunStatic(table *models.PriceTable, p models.AnalysisParams) (*models.AnalysisResult, []models.AlignedWeek, error) {
	p = p.Normalized()
	aligned, err := AlignTable(table, []string{p.Stock, p.Benchmark}, p.UseLogReturns)
	if err != nil {
		return nil, nil, err
	}
	if len(aligned) == 0 {
		return nil, nil, ErrNoAlignedData
	}

	scoped := FilterByPeriod(aligned, p.PeriodWeeks)
	res, err := Analyze(Returns(scoped, p.Stock), Returns(scoped, p.Benchmark), p.RiskFreeRatePct)
	if err != nil {
		return nil, aligned, err
	}
	return res, aligned, nil
}

// RunRolling runs the rolling-trend pipeline over the full aligned history.
func RunRolling(table *models.PriceTable, p models.AnalysisParams) (models.RollingResult, error) {
	p = p.Normalized()
	aligned, err := AlignTable(table, []string{p.Stock, p.Benchmark}, p.UseLogReturns)
	if err != nil {
		return models.RollingResult{}, err
	}
	return ComputeRolling(aligned, p.Stock, p.Benchmark, p.RiskFreeRatePct, p.WindowWeeks, p.StepWeeks), nil
}

package report

import (
	"github.com/seenimoa/alphabeta/pkg/models"
	"github.com/seenimoa/alphabeta/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Chart Series — plain data for the UI to plot
// ════════════════════════════════════════════════════════════════════

// ScatterSeries is the plottable form of a static regression: the weekly
// return pairs plus a two-point segment of the fitted line spanning the
// observed benchmark range. Rendering is the consumer's job.
type ScatterSeries struct {
	Points []models.DataPoint    `json:"points"`
	Line   [2]models.DataPoint   `json:"line"`
	Fit    models.RegressionLine `json:"fit"`
}

// BuildScatterSeries converts an analysis result into a scatter series.
// The line segment spans [minX, maxX] of the data points so a plot can draw
// it without re-deriving the fit.
func BuildScatterSeries(result *models.AnalysisResult) ScatterSeries {
	s := ScatterSeries{
		Points: result.DataPoints,
		Fit:    result.Regression,
	}
	if len(result.DataPoints) == 0 {
		return s
	}

	minX, maxX := result.DataPoints[0].X, result.DataPoints[0].X
	for _, p := range result.DataPoints {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
	}
	at := func(x float64) models.DataPoint {
		return models.DataPoint{X: x, Y: result.Regression.Slope*x + result.Regression.Intercept}
	}
	s.Line = [2]models.DataPoint{at(minX), at(maxX)}
	return s
}

// TrendSeries is the plottable form of a rolling trend: parallel slices of
// quarter labels, window-end dates, and the per-window statistics, in
// ascending date order.
type TrendSeries struct {
	Labels   []string  `json:"labels"`
	Dates    []string  `json:"dates"` // yyyy-mm-dd window-end dates
	Alpha    []float64 `json:"alpha"`
	Beta     []float64 `json:"beta"`
	RSquared []float64 `json:"rSquared"`
}

// BuildTrendSeries converts a rolling result into a trend series.
func BuildTrendSeries(result *models.RollingResult) TrendSeries {
	n := len(result.Points)
	s := TrendSeries{
		Labels:   make([]string, n),
		Dates:    make([]string, n),
		Alpha:    make([]float64, n),
		Beta:     make([]float64, n),
		RSquared: make([]float64, n),
	}
	for i, p := range result.Points {
		s.Labels[i] = p.Quarter
		s.Dates[i] = utils.FormatDate(p.Date)
		s.Alpha[i] = p.Alpha
		s.Beta[i] = p.Beta
		s.RSquared[i] = p.RSquared
	}
	return s
}

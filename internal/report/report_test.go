package report

import (
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/alphabeta/pkg/models"
)

func sampleAnalysis() *models.AnalysisResult {
	return &models.AnalysisResult{
		Alpha:         17.6,
		Beta:          1.4,
		RSquared:      0.98,
		StandardError: 0.2582,
		Regression:    models.RegressionLine{Slope: 1.4, Intercept: 0.3},
		DataPoints: []models.DataPoint{
			{X: 1, Y: 2}, {X: -1, Y: -1}, {X: 2, Y: 3}, {X: 0, Y: 0}, {X: 0.5, Y: 1},
		},
		Statistics: models.DescriptiveStats{
			MeanStockReturn:  1.0,
			MeanMarketReturn: 0.5,
			StdStockReturn:   1.4142,
			StdMarketReturn:  1.0,
			Correlation:      0.9899,
			DataPointsCount:  5,
		},
	}
}

func sampleRolling() *models.RollingResult {
	d1 := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	return &models.RollingResult{
		Points: []models.RollingPoint{
			{Quarter: "Q1 2024", Date: d1, DataPeriodStart: d1.AddDate(-3, 0, 0), DataPeriodEnd: d1, Alpha: 5.2, Beta: 1.1, RSquared: 0.8, StockName: "AAPL", DataPoints: 156},
			{Quarter: "Q2 2024", Date: d2, DataPeriodStart: d2.AddDate(-3, 0, 0), DataPeriodEnd: d2, Alpha: 4.1, Beta: 1.2, RSquared: 0.75, StockName: "AAPL", DataPoints: 156},
		},
		Skipped: map[string]int{"zero variance": 1},
	}
}

func TestRenderAnalysisText(t *testing.T) {
	params := models.AnalysisParams{RiskFreeRatePct: 5, PeriodWeeks: 156}
	out := RenderAnalysisText("AAPL", "SPY", params, sampleAnalysis())

	for _, want := range []string{"AAPL vs SPY", "156 weeks", "1.4000", "17.6000", "0.9800", "simple returns"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderAnalysisText_LogReturns(t *testing.T) {
	params := models.AnalysisParams{RiskFreeRatePct: 5, PeriodWeeks: 260, UseLogReturns: true}
	out := RenderAnalysisText("AAPL", "SPY", params, sampleAnalysis())
	if !strings.Contains(out, "log returns") {
		t.Errorf("expected log returns label:\n%s", out)
	}
}

func TestRenderRollingText(t *testing.T) {
	out := RenderRollingText("AAPL", sampleRolling())

	for _, want := range []string{"2 windows", "Q1 2024", "Q2 2024", "skipped 1 window(s): zero variance"} {
		if !strings.Contains(out, want) {
			t.Errorf("rolling report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteAnalysisCSV(t *testing.T) {
	var buf strings.Builder
	if err := WriteAnalysisCSV(&buf, sampleAnalysis()); err != nil {
		t.Fatalf("WriteAnalysisCSV error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6 (header + 5 points)", len(lines))
	}
	if lines[0] != "benchmark_return,stock_return,fitted" {
		t.Errorf("header = %q", lines[0])
	}
	// First point: fitted = 1.4*1 + 0.3 = 1.7
	if lines[1] != "1,2,1.7" {
		t.Errorf("first row = %q, want 1,2,1.7", lines[1])
	}
}

func TestWriteRollingCSV(t *testing.T) {
	var buf strings.Builder
	if err := WriteRollingCSV(&buf, sampleRolling()); err != nil {
		t.Fatalf("WriteRollingCSV error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Q1 2024,2024-03-31,") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestBuildScatterSeries(t *testing.T) {
	res := sampleAnalysis()
	s := BuildScatterSeries(res)

	if len(s.Points) != len(res.DataPoints) {
		t.Fatalf("got %d points, want %d", len(s.Points), len(res.DataPoints))
	}
	if s.Fit != res.Regression {
		t.Errorf("fit = %+v, want %+v", s.Fit, res.Regression)
	}

	// X spans the benchmark range [-1, 2]; the segment must sit on the fit.
	if s.Line[0].X != -1 || s.Line[1].X != 2 {
		t.Errorf("segment spans [%v, %v], want [-1, 2]", s.Line[0].X, s.Line[1].X)
	}
	for _, p := range s.Line {
		want := res.Regression.Slope*p.X + res.Regression.Intercept
		if p.Y != want {
			t.Errorf("segment point at x=%v has y=%v, want %v", p.X, p.Y, want)
		}
	}
}

func TestBuildScatterSeries_Empty(t *testing.T) {
	s := BuildScatterSeries(&models.AnalysisResult{})
	if len(s.Points) != 0 {
		t.Errorf("got %d points, want 0", len(s.Points))
	}
}

func TestBuildTrendSeries(t *testing.T) {
	s := BuildTrendSeries(sampleRolling())

	if len(s.Labels) != 2 || len(s.Beta) != 2 || len(s.Dates) != 2 {
		t.Fatalf("series lengths = %d/%d/%d, want 2 each", len(s.Labels), len(s.Beta), len(s.Dates))
	}
	if s.Labels[0] != "Q1 2024" || s.Labels[1] != "Q2 2024" {
		t.Errorf("labels = %v", s.Labels)
	}
	if s.Dates[0] != "2024-03-31" {
		t.Errorf("dates[0] = %q, want 2024-03-31", s.Dates[0])
	}
	if s.Beta[0] != 1.1 || s.Alpha[1] != 4.1 || s.RSquared[1] != 0.75 {
		t.Errorf("values: beta=%v alpha=%v r2=%v", s.Beta, s.Alpha, s.RSquared)
	}
}

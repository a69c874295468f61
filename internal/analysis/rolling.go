package analysis

import (
	"errors"

	"github.com/seenimoa/alphabeta/pkg/models"
	"github.com/seenimoa/alphabeta/pkg/utils"
)

// Skip reasons recorded in RollingResult.Skipped.
const (
	SkipZeroVariance     = "zero variance"
	SkipInsufficientData = "insufficient data"
	SkipRegressionFailed = "regression failed"
)

// windowOutcome is one window position's result: either a point or a skip
// reason. Modelling the skip explicitly keeps the continue-on-failure
// semantics visible instead of hiding it in recover/short-circuit control
// flow.
type windowOutcome struct {
	point models.RollingPoint
	skip  string
}

// ComputeRolling slides a trailing window of windowWeeks over the aligned
// series, stepping by stepWeeks, and regresses each window. A window whose
// regression fails (constant benchmark, too few points) is skipped and
// counted, never fatal — real price histories contain quiet stretches and
// one degenerate window must not abort the whole trend.
//
// Window end positions are windowWeeks, windowWeeks+stepWeeks, ... up to
// len(aligned); each window is the half-open slice [i-windowWeeks, i).
// A series shorter than windowWeeks yields an empty result.
func ComputeRolling(aligned []models.AlignedWeek, subject, benchmark string, annualRiskFreePct float64, windowWeeks, stepWeeks int) models.RollingResult {
	if windowWeeks <= 0 {
		windowWeeks = models.DefaultWindowWeeks
	}
	if stepWeeks <= 0 {
		stepWeeks = models.DefaultStepWeeks
	}

	result := models.RollingResult{Points: []models.RollingPoint{}}
	if len(aligned) < windowWeeks {
		return result
	}

	for i := windowWeeks; i <= len(aligned); i += stepWeeks {
		window := aligned[i-windowWeeks : i]
		outcome := analyzeWindow(window, subject, benchmark, annualRiskFreePct)
		if outcome.skip != "" {
			if result.Skipped == nil {
				result.Skipped = make(map[string]int)
			}
			result.Skipped[outcome.skip]++
			continue
		}
		result.Points = append(result.Points, outcome.point)
	}
	return result
}

// analyzeWindow regresses a single window and classifies failures into skip
// reasons.
func analyzeWindow(window []models.AlignedWeek, subject, benchmark string, annualRiskFreePct float64) windowOutcome {
	subjectReturns := Returns(window, subject)
	benchmarkReturns := Returns(window, benchmark)
	if len(subjectReturns) < 2 || len(benchmarkReturns) < 2 {
		return windowOutcome{skip: SkipInsufficientData}
	}

	res, err := Analyze(subjectReturns, benchmarkReturns, annualRiskFreePct)
	if err != nil {
		switch {
		case errors.Is(err, ErrZeroVariance):
			return windowOutcome{skip: SkipZeroVariance}
		case errors.Is(err, ErrInsufficientData):
			return windowOutcome{skip: SkipInsufficientData}
		default:
			return windowOutcome{skip: SkipRegressionFailed}
		}
	}

	start := window[0].WeekEndDate
	end := window[len(window)-1].WeekEndDate
	return windowOutcome{point: models.RollingPoint{
		Quarter:         utils.QuarterLabel(end),
		Date:            end,
		DataPeriodStart: start,
		DataPeriodEnd:   end,
		Alpha:           res.Alpha,
		Beta:            res.Beta,
		RSquared:        res.RSquared,
		StockName:       subject,
		DataPoints:      len(window),
	}}
}

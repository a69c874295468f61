package analysis

import (
	"errors"
	"math"

	"github.com/seenimoa/alphabeta/pkg/models"
)

// Sentinel errors returned by Analyze. Static analysis surfaces them to the
// caller; the rolling engine absorbs them per window.
var (
	// ErrInsufficientData means fewer than 2 paired observations were
	// supplied (or the two series differ in length).
	ErrInsufficientData = errors.New("insufficient data: need at least 2 paired return observations")

	// ErrZeroVariance means the benchmark returns are constant over the
	// analyzed window, so beta is undefined.
	ErrZeroVariance = errors.New("benchmark returns have zero variance")
)

// WeeksPerYear converts between weekly and annual rates.
const WeeksPerYear = 52.0

// Analyze runs the CAPM regression of subject returns on benchmark returns.
// Both inputs are percentage returns per week; annualRiskFreePct is an
// annual percentage (e.g. 5.0).
//
//   - Beta = population covariance(subject, benchmark) / population
//     variance(benchmark).
//   - Alpha (annualized %): the weekly risk-free rate is annual/52; the
//     CAPM-expected weekly return is rf + beta*(meanBenchmark - rf); weekly
//     alpha is meanSubject minus that, annualized by *52.
//   - R² is the squared Pearson correlation (0 when either series is
//     constant).
//   - The regression line reuses beta as slope with intercept =
//     meanSubject - beta*meanBenchmark, which is the OLS closed form — one
//     computation, no second rounding path.
//   - StandardError = sqrt(SSR/(n-2)); with n == 2 there are no residual
//     degrees of freedom and the two points fit exactly, so it is reported
//     as 0.
func Analyze(subject, benchmark []float64, annualRiskFreePct float64) (*models.AnalysisResult, error) {
	n := len(subject)
	if n < 2 || n != len(benchmark) {
		return nil, ErrInsufficientData
	}

	meanY := mean(subject)
	meanX := mean(benchmark)

	varX := populationVariance(benchmark, meanX)
	if varX == 0 {
		return nil, ErrZeroVariance
	}
	cov := populationCovariance(benchmark, subject, meanX, meanY)
	beta := cov / varX

	weeklyRf := annualRiskFreePct / WeeksPerYear
	expected := weeklyRf + beta*(meanX-weeklyRf)
	alpha := (meanY - expected) * WeeksPerYear

	corr := correlation(benchmark, subject, meanX, meanY)
	rSquared := corr * corr

	slope := beta
	intercept := meanY - slope*meanX

	var stdErr float64
	if n > 2 {
		var ssr float64
		for i := 0; i < n; i++ {
			resid := subject[i] - (slope*benchmark[i] + intercept)
			ssr += resid * resid
		}
		stdErr = math.Sqrt(ssr / float64(n-2))
	}

	points := make([]models.DataPoint, n)
	for i := 0; i < n; i++ {
		points[i] = models.DataPoint{X: benchmark[i], Y: subject[i]}
	}

	return &models.AnalysisResult{
		Alpha:         alpha,
		Beta:          beta,
		RSquared:      rSquared,
		StandardError: stdErr,
		Regression:    models.RegressionLine{Slope: slope, Intercept: intercept},
		DataPoints:    points,
		Statistics: models.DescriptiveStats{
			MeanStockReturn:  meanY,
			MeanMarketReturn: meanX,
			StdStockReturn:   populationStdDev(subject, meanY),
			StdMarketReturn:  populationStdDev(benchmark, meanX),
			Correlation:      corr,
			DataPointsCount:  n,
		},
	}, nil
}

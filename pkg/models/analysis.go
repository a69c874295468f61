package models

import "time"

// DataPoint is one paired (benchmark, stock) weekly return observation on
// the regression scatter.
type DataPoint struct {
	X float64 `json:"x"` // benchmark return, % per week
	Y float64 `json:"y"` // stock return, % per week
}

// RegressionLine holds the OLS fit of stock returns on benchmark returns.
// Slope equals Beta by construction (both come from the same
// covariance/variance computation).
type RegressionLine struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// DescriptiveStats carries the per-series statistics computed alongside the
// regression, for display and testing.
type DescriptiveStats struct {
	MeanStockReturn  float64 `json:"meanStockReturn"`
	MeanMarketReturn float64 `json:"meanMarketReturn"`
	StdStockReturn   float64 `json:"stdStockReturn"`
	StdMarketReturn  float64 `json:"stdMarketReturn"`
	Correlation      float64 `json:"correlation"`
	DataPointsCount  int     `json:"dataPointsCount"`
}

// AnalysisResult is the output of one static alpha/beta regression.
// Alpha is the annualized CAPM excess return in percent; Beta is the
// population covariance/variance slope of weekly returns. Immutable value
// object — recomputed wholesale whenever inputs change.
type AnalysisResult struct {
	Alpha         float64          `json:"alpha"`
	Beta          float64          `json:"beta"`
	RSquared      float64          `json:"rSquared"`
	StandardError float64          `json:"standardError"`
	Regression    RegressionLine   `json:"regression"`
	DataPoints    []DataPoint      `json:"dataPoints"`
	Statistics    DescriptiveStats `json:"statistics"`
}

// RollingPoint is one window position of the rolling trend: the alpha, beta
// and R² of the trailing window ending at Date, labelled with the calendar
// quarter of that date.
type RollingPoint struct {
	Quarter         string    `json:"quarter"`
	Date            time.Time `json:"date"`
	DataPeriodStart time.Time `json:"dataPeriodStart"`
	DataPeriodEnd   time.Time `json:"dataPeriodEnd"`
	Alpha           float64   `json:"alpha"`
	Beta            float64   `json:"beta"`
	RSquared        float64   `json:"rSquared"`
	StockName       string    `json:"stockName"`
	DataPoints      int       `json:"dataPoints"`
}

// RollingResult is the full rolling trend for one instrument. Points are
// ordered ascending by window end date; skipped windows leave no point, so
// consumers must not assume fixed quarterly spacing. Skipped counts windows
// dropped per reason (e.g. "zero variance").
type RollingResult struct {
	Points  []RollingPoint `json:"points"`
	Skipped map[string]int `json:"skipped,omitempty"`
}

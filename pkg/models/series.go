// Package models defines the core data structures used throughout the
// alpha/beta analyzer.
package models

import (
	"math"
	"time"
)

// PriceTable holds a date-aligned table of daily closing prices for one or
// more named instruments. Row i of every column refers to Dates[i]. Missing
// prices are stored as NaN so column slices stay index-aligned with Dates.
type PriceTable struct {
	Dates   []time.Time          `json:"dates"`
	Columns []string             `json:"columns"`
	Prices  map[string][]float64 `json:"-"`
}

// Rows returns the number of date rows in the table.
func (t *PriceTable) Rows() int { return len(t.Dates) }

// Column returns the price slice for the named instrument.
func (t *PriceTable) Column(name string) ([]float64, bool) {
	p, ok := t.Prices[name]
	return p, ok
}

// HasColumn reports whether the table carries the named instrument.
func (t *PriceTable) HasColumn(name string) bool {
	_, ok := t.Prices[name]
	return ok
}

// Missing is the sentinel for an absent price cell.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether a price cell holds no observation.
func IsMissing(p float64) bool { return math.IsNaN(p) }

// WeeklyReturn is one instrument-week observation: the week's representative
// closing price (last valid trading-day close seen inside the week) and its
// percentage (or log) change versus the prior week's representative price.
type WeeklyReturn struct {
	WeekEndDate   time.Time `json:"weekEndDate"`
	Price         float64   `json:"price"`
	Return        float64   `json:"return"`
	PreviousPrice float64   `json:"previousPrice"`
}

// InstrumentWeek is one instrument's slot inside an aligned week.
type InstrumentWeek struct {
	Price  float64 `json:"price"`
	Return float64 `json:"return"`
}

// AlignedWeek is a week for which every requested instrument has a
// WeeklyReturn at the same week-end date (strict inner join — a week missing
// from any instrument never appears here).
type AlignedWeek struct {
	WeekEndDate time.Time                 `json:"weekEndDate"`
	Instruments map[string]InstrumentWeek `json:"instruments"`
}

// AnalysisParams carries the user-selected inputs for one analysis run.
// RiskFreeRatePct is an annual percentage (e.g. 5.0); PeriodWeeks scopes the
// static analysis (156 = 3y, 260 = 5y); WindowWeeks/StepWeeks drive the
// rolling trend (defaults 156/13).
type AnalysisParams struct {
	Stock           string  `json:"stock"`
	Benchmark       string  `json:"benchmark"`
	RiskFreeRatePct float64 `json:"riskFreeRate"`
	PeriodWeeks     int     `json:"periodWeeks"`
	UseLogReturns   bool    `json:"logReturns"`
	WindowWeeks     int     `json:"windowWeeks"`
	StepWeeks       int     `json:"stepWeeks"`
}

// Default analysis parameters, matching the product's 3-year static horizon
// and quarterly-stepped 3-year rolling window.
const (
	DefaultPeriodWeeks = 156
	DefaultWindowWeeks = 156
	DefaultStepWeeks   = 13
)

// Normalized returns a copy with zero-valued window parameters replaced by
// the defaults.
func (p AnalysisParams) Normalized() AnalysisParams {
	if p.PeriodWeeks <= 0 {
		p.PeriodWeeks = DefaultPeriodWeeks
	}
	if p.WindowWeeks <= 0 {
		p.WindowWeeks = DefaultWindowWeeks
	}
	if p.StepWeeks <= 0 {
		p.StepWeeks = DefaultStepWeeks
	}
	return p
}

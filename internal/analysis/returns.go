// Package analysis implements the alpha/beta calculation engine: weekly
// return derivation, series alignment, CAPM regression, rolling trend
// computation, and period filtering. Every function is pure and
// deterministic — identical inputs produce identical outputs.
package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/seenimoa/alphabeta/pkg/models"
	"github.com/seenimoa/alphabeta/pkg/utils"
)

// DeriveWeeklyReturns converts a daily (possibly irregular) price series
// into a weekly return series. Missing prices are conveyed as NaN and never
// enter week grouping. Each week's representative price is the last numeric
// price observed inside the week; a week is emitted only when both its own
// and the prior week's representative prices are positive, so a zero or
// negative close poisons its own week and the one after it. The first week
// has no prior price and is never emitted.
//
// Mismatched or empty inputs yield an empty result, not an error — the
// loading collaborator validates shape before handing data over.
func DeriveWeeklyReturns(dates []time.Time, prices []float64, useLog bool) []models.WeeklyReturn {
	if len(dates) == 0 || len(dates) != len(prices) {
		return nil
	}

	// Group by canonical week-end date; last numeric price in a week wins.
	reps := make(map[time.Time]float64)
	order := make([]time.Time, 0)
	for i, d := range dates {
		p := prices[i]
		if models.IsMissing(p) {
			continue
		}
		we := utils.WeekEnd(d)
		if _, seen := reps[we]; !seen {
			order = append(order, we)
		}
		reps[we] = p
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	out := make([]models.WeeklyReturn, 0, len(order))
	for i := 1; i < len(order); i++ {
		cur := reps[order[i]]
		prev := reps[order[i-1]]
		if cur <= 0 || prev <= 0 {
			continue
		}
		var ret float64
		if useLog {
			ret = math.Log(cur / prev)
		} else {
			ret = (cur - prev) / prev * 100
		}
		out = append(out, models.WeeklyReturn{
			WeekEndDate:   order[i],
			Price:         cur,
			Return:        ret,
			PreviousPrice: prev,
		})
	}
	return out
}

// Align inner-joins the per-instrument weekly return series onto the set of
// week-end dates present in every series. Weeks covered by only some
// instruments are dropped entirely — regression needs paired observations,
// and a week missing from one instrument cannot yield a valid (x, y) pair.
// names fixes the instruments considered (and must all be present in
// perColumn); output rows are ordered ascending by week-end date.
func Align(names []string, perColumn map[string][]models.WeeklyReturn) []models.AlignedWeek {
	if len(names) == 0 {
		return nil
	}

	byDate := make(map[string]map[string]models.WeeklyReturn) // date key -> name -> entry
	union := make([]time.Time, 0)
	seen := make(map[string]bool)
	for _, name := range names {
		for _, wr := range perColumn[name] {
			key := utils.FormatDate(wr.WeekEndDate)
			if byDate[key] == nil {
				byDate[key] = make(map[string]models.WeeklyReturn, len(names))
			}
			byDate[key][name] = wr
			if !seen[key] {
				seen[key] = true
				union = append(union, wr.WeekEndDate)
			}
		}
	}
	sort.Slice(union, func(i, j int) bool { return union[i].Before(union[j]) })

	out := make([]models.AlignedWeek, 0, len(union))
	for _, date := range union {
		entries := byDate[utils.FormatDate(date)]
		if len(entries) != len(names) {
			continue
		}
		row := models.AlignedWeek{
			WeekEndDate: date,
			Instruments: make(map[string]models.InstrumentWeek, len(names)),
		}
		for _, name := range names {
			wr := entries[name]
			row.Instruments[name] = models.InstrumentWeek{Price: wr.Price, Return: wr.Return}
		}
		out = append(out, row)
	}
	return out
}

// FilterByPeriod truncates an aligned series to its most recent weeks
// entries, or returns it unchanged when it is already shorter. Used to
// scope the static analysis to a 3-year (156-week) or 5-year (260-week)
// horizon.
func FilterByPeriod(aligned []models.AlignedWeek, weeks int) []models.AlignedWeek {
	if weeks <= 0 || len(aligned) <= weeks {
		return aligned
	}
	return aligned[len(aligned)-weeks:]
}

// Returns extracts one instrument's return series from an aligned table,
// preserving row order.
func Returns(aligned []models.AlignedWeek, name string) []float64 {
	out := make([]float64, len(aligned))
	for i, row := range aligned {
		out[i] = row.Instruments[name].Return
	}
	return out
}

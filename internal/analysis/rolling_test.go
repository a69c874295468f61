package analysis

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/seenimoa/alphabeta/pkg/models"
)

// alignedPair builds an aligned series from paired return slices, one week
// apart, starting 2018-01-07.
func alignedPair(stock, market []float64) []models.AlignedWeek {
	out := make([]models.AlignedWeek, len(stock))
	base := time.Date(2018, 1, 7, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = models.AlignedWeek{
			WeekEndDate: base.AddDate(0, 0, 7*i),
			Instruments: map[string]models.InstrumentWeek{
				"STOCK":  {Price: 100, Return: stock[i]},
				"MARKET": {Price: 100, Return: market[i]},
			},
		}
	}
	return out
}

// noisyReturns produces a deterministic non-constant return series.
func noisyReturns(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(float64(i)*0.7)*2 + float64(i%5)*0.3
	}
	return out
}

func TestComputeRolling_WindowCount(t *testing.T) {
	// Exactly windowWeeks + 3*stepWeeks entries → 4 window positions
	// (ends at 156, 169, 182, 195).
	n := 156 + 3*13
	aligned := alignedPair(noisyReturns(n), noisyReturns(n))
	// Distinct series so the regression is not the identity.
	for i := range aligned {
		iw := aligned[i].Instruments["STOCK"]
		iw.Return += 0.1 * float64(i%7)
		aligned[i].Instruments["STOCK"] = iw
	}

	res := ComputeRolling(aligned, "STOCK", "MARKET", 5.0, 156, 13)
	if len(res.Points) != 4 {
		t.Fatalf("got %d rolling points, want 4", len(res.Points))
	}
	if len(res.Skipped) != 0 {
		t.Errorf("unexpected skips: %v", res.Skipped)
	}

	// Ascending by window end; each window spans exactly 156 weeks.
	for i, p := range res.Points {
		if p.DataPoints != 156 {
			t.Errorf("point %d DataPoints = %d, want 156", i, p.DataPoints)
		}
		if p.StockName != "STOCK" {
			t.Errorf("point %d StockName = %q, want STOCK", i, p.StockName)
		}
		wantSpan := 155 * 7 * 24 * time.Hour
		if p.DataPeriodEnd.Sub(p.DataPeriodStart) != wantSpan {
			t.Errorf("point %d window span = %v, want %v", i, p.DataPeriodEnd.Sub(p.DataPeriodStart), wantSpan)
		}
		if i > 0 && !res.Points[i-1].Date.Before(p.Date) {
			t.Errorf("points not ascending at %d", i)
		}
	}

	// Consecutive points are one step apart.
	step := res.Points[1].Date.Sub(res.Points[0].Date)
	if step != 13*7*24*time.Hour {
		t.Errorf("step between points = %v, want 13 weeks", step)
	}
}

func TestComputeRolling_InsufficientData(t *testing.T) {
	aligned := alignedPair(noisyReturns(100), noisyReturns(100))
	res := ComputeRolling(aligned, "STOCK", "MARKET", 5.0, 156, 13)
	if len(res.Points) != 0 {
		t.Errorf("got %d points for a 100-week series, want 0", len(res.Points))
	}
	if res.Skipped != nil {
		t.Errorf("unexpected skips: %v", res.Skipped)
	}
}

func TestComputeRolling_SkipsZeroVarianceWindow(t *testing.T) {
	// First window's benchmark is constant; later windows vary. The
	// degenerate window is counted and skipped, not fatal.
	market := []float64{1, 1, 1, 1, 2, 3, 4, 5}
	stock := []float64{1, 2, 1, 2, 3, 1, 4, 2}
	aligned := alignedPair(stock, market)

	res := ComputeRolling(aligned, "STOCK", "MARKET", 5.0, 4, 2)
	if res.Skipped[SkipZeroVariance] != 1 {
		t.Fatalf("Skipped[zero variance] = %d, want 1 (%v)", res.Skipped[SkipZeroVariance], res.Skipped)
	}
	if len(res.Points) != 2 {
		t.Fatalf("got %d points, want 2 (positions 6 and 8)", len(res.Points))
	}
	// The surviving points are the windows ending at indices 6 and 8.
	wantFirst := aligned[5].WeekEndDate
	if !res.Points[0].Date.Equal(wantFirst) {
		t.Errorf("first surviving point at %v, want %v", res.Points[0].Date, wantFirst)
	}
}

func TestComputeRolling_QuarterLabel(t *testing.T) {
	aligned := alignedPair(noisyReturns(8), noisyReturns(8))
	for i := range aligned {
		iw := aligned[i].Instruments["STOCK"]
		iw.Return = noisyReturns(8)[i] * 1.5
		aligned[i].Instruments["STOCK"] = iw
	}

	res := ComputeRolling(aligned, "STOCK", "MARKET", 5.0, 4, 4)
	if len(res.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(res.Points))
	}
	for _, p := range res.Points {
		q := (int(p.Date.Month())-1)/3 + 1
		want := fmt.Sprintf("Q%d %d", q, p.Date.Year())
		if p.Quarter != want {
			t.Errorf("Quarter = %q, want %q", p.Quarter, want)
		}
	}
}

func TestComputeRolling_DefaultsApplied(t *testing.T) {
	// Zero window/step fall back to 156/13.
	n := 156 + 13
	aligned := alignedPair(noisyReturns(n), noisyReturns(n))
	for i := range aligned {
		iw := aligned[i].Instruments["STOCK"]
		iw.Return += 0.05 * float64(i%3)
		aligned[i].Instruments["STOCK"] = iw
	}

	res := ComputeRolling(aligned, "STOCK", "MARKET", 5.0, 0, 0)
	if len(res.Points) != 2 {
		t.Errorf("got %d points, want 2 (ends at 156 and 169)", len(res.Points))
	}
}

package analysis

import (
	"testing"
	"time"

	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

// sweepBars builds a tape with a clear swing high at 110 and appends
// the provided final bar.
func sweepBars(latest model.Bar) []model.Bar {
	highs := []float64{100, 102, 110, 103, 101, 100, 99, 100, 101, 102}
	lows := []float64{95, 97, 105, 98, 96, 95, 90, 95, 96, 97}
	var bars []model.Bar
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range highs {
		bars = append(bars, model.Bar{
			Date:  day.AddDate(0, 0, i).Format("2006-01-02"),
			Open:  lows[i] + 1,
			High:  highs[i],
			Low:   lows[i],
			Close: highs[i] - 1,
		})
	}
	latest.Date = day.AddDate(0, 0, len(highs)).Format("2006-01-02")
	return append(bars, latest)
}

func TestSweepHigh(t *testing.T) {
	ld := NewLiquidityDetector(30, 2)
	// High pierces the 110 swing high, close falls back below it.
	bars := sweepBars(model.Bar{Open: 107, High: 112, Low: 106, Close: 108})

	sweeps := ld.Detect(bars)

	found := false
	for _, s := range sweeps {
		if s.Type == "sweep_high" && s.SwingPrice == 110 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sweep_high at 110, got %+v", sweeps)
	}
}

func TestSweepLow(t *testing.T) {
	ld := NewLiquidityDetector(30, 2)
	// Low pierces the 90 swing low, close recovers above it.
	bars := sweepBars(model.Bar{Open: 95, High: 96, Low: 88, Close: 92})

	sweeps := ld.Detect(bars)

	found := false
	for _, s := range sweeps {
		if s.Type == "sweep_low" && s.SwingPrice == 90 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sweep_low at 90, got %+v", sweeps)
	}
}

func TestFailedReclaim(t *testing.T) {
	ld := NewLiquidityDetector(30, 2)
	// Higher high than the prior bar (102) but a red close in the lower
	// half of the bar's own range.
	bars := sweepBars(model.Bar{Open: 104, High: 105, Low: 99, Close: 100})

	sweeps := ld.Detect(bars)

	found := false
	for _, s := range sweeps {
		if s.Type == "failed_reclaim" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected failed_reclaim, got %+v", sweeps)
	}
}

func TestNoSweepWhenCloseHolds(t *testing.T) {
	ld := NewLiquidityDetector(30, 2)
	// Breaks the swing high and holds above it: breakout, not a sweep.
	bars := sweepBars(model.Bar{Open: 107, High: 112, Low: 106, Close: 111})

	for _, s := range ld.Detect(bars) {
		if s.Type == "sweep_high" {
			t.Fatalf("close above the swing high must not fire a sweep: %+v", s)
		}
	}
}

package model

import (
	"math"
	"testing"
)

func TestNormalizeBars(t *testing.T) {
	in := []Bar{
		{Date: "2024-01-03", Open: 101, High: 103, Low: 100, Close: 102, Volume: 900},
		{Date: "2024-01-02", Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000},
		{Date: "2024-01-04", Open: math.NaN(), High: 103, Low: 100, Close: 102}, // dropped
		{Date: "", Open: 100, High: 102, Low: 99, Close: 101},                   // dropped
		{Date: "2024-01-05", Open: 100, High: 99, Low: 102, Close: 101},         // high < low, dropped
		{Date: "2024-01-02", Open: 100, High: 102, Low: 99, Close: 100.5, Volume: 1100}, // duplicate date
	}

	bars, err := NormalizeBars(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Date != "2024-01-02" || bars[1].Date != "2024-01-03" {
		t.Errorf("bars must sort ascending by date: %+v", bars)
	}
	// The later occurrence of a duplicate date wins.
	if bars[0].Close != 100.5 {
		t.Errorf("expected duplicate date to keep the last bar, got close %f", bars[0].Close)
	}
}

func TestNormalizeBarsEmpty(t *testing.T) {
	if _, err := NormalizeBars(nil); err != ErrNoBars {
		t.Errorf("expected ErrNoBars, got %v", err)
	}
	if _, err := NormalizeBars([]Bar{{Date: "", Close: 1}}); err != ErrNoBars {
		t.Errorf("expected ErrNoBars after dropping everything, got %v", err)
	}
}

func TestBarShapeHelpers(t *testing.T) {
	b := Bar{Open: 100, High: 110, Low: 95, Close: 104}

	if b.Body() != 4 {
		t.Errorf("expected body 4, got %f", b.Body())
	}
	if b.Range() != 15 {
		t.Errorf("expected range 15, got %f", b.Range())
	}
	if !b.Bullish() || b.Bearish() {
		t.Error("close above open must be bullish")
	}
	if b.UpperWick() != 6 {
		t.Errorf("expected upper wick 6, got %f", b.UpperWick())
	}
	if b.LowerWick() != 5 {
		t.Errorf("expected lower wick 5, got %f", b.LowerWick())
	}
}

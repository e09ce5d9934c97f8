package model

import (
	"errors"
	"math"
	"sort"
)

// Bar represents one daily OHLCV candle. Dates are calendar strings
// (YYYY-MM-DD) and the series is strictly ascending by date.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Body returns the absolute open-close distance.
func (b Bar) Body() float64 {
	return math.Abs(b.Close - b.Open)
}

// Range returns the high-low distance.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool {
	return b.Close > b.Open
}

// Bearish reports whether the bar closed below its open.
func (b Bar) Bearish() bool {
	return b.Close < b.Open
}

// UpperWick returns the distance from the body top to the high.
func (b Bar) UpperWick() float64 {
	return b.High - math.Max(b.Open, b.Close)
}

// LowerWick returns the distance from the body bottom to the low.
func (b Bar) LowerWick() float64 {
	return math.Min(b.Open, b.Close) - b.Low
}

// ErrNoBars is returned when normalization leaves nothing to analyze.
var ErrNoBars = errors.New("no usable bars after normalization")

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// NormalizeBars is the single ingestion adapter: it drops bars with
// non-finite fields or an empty date, sorts by date, and collapses
// duplicate dates keeping the last occurrence. Detectors downstream
// consume only the normalized shape. NaN never crosses this boundary.
func NormalizeBars(in []Bar) ([]Bar, error) {
	out := make([]Bar, 0, len(in))
	for _, b := range in {
		if b.Date == "" {
			continue
		}
		if !finite(b.Open, b.High, b.Low, b.Close, b.Volume) {
			continue
		}
		if b.High < b.Low {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Date == b.Date {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	if len(dedup) == 0 {
		return nil, ErrNoBars
	}
	return dedup, nil
}

// Closes extracts the close series from bars.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

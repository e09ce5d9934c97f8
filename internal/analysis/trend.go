package analysis

import (
	"github.com/colbywhitledge-web/trader-hub-v1/internal/indicators"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/pivots"
)

// Trend is the prevailing trend classification.
type Trend string

const (
	TrendUp      Trend = "uptrend"
	TrendDown    Trend = "downtrend"
	TrendRange   Trend = "range"
	TrendUnknown Trend = "unknown"
)

// ClassifyTrend combines price position against the medium MA with the
// MA's slope over slopeLookback bars. Both must agree for a directional
// call; disagreement is a range; an undefined MA is unknown.
func ClassifyTrend(bars []model.Bar, ma []float64, slopeLookback int) Trend {
	if len(bars) == 0 || len(ma) != len(bars) {
		return TrendUnknown
	}
	last := len(bars) - 1
	if !indicators.Valid(ma[last]) {
		return TrendUnknown
	}
	prevIdx := last - slopeLookback
	if prevIdx < 0 || !indicators.Valid(ma[prevIdx]) {
		return TrendUnknown
	}

	slope := ma[last] - ma[prevIdx]
	close := bars[last].Close

	switch {
	case close > ma[last] && slope > 0:
		return TrendUp
	case close < ma[last] && slope < 0:
		return TrendDown
	default:
		return TrendRange
	}
}

// ClusterLevels merges pivot prices lying within tolerance (fractional)
// of an existing cluster into that cluster's running average. Output is
// in first-seen order.
func ClusterLevels(ps []pivots.Pivot, tolerance float64) []float64 {
	if tolerance <= 0 {
		tolerance = 0.01
	}
	var levels []float64
	for _, p := range ps {
		merged := false
		for i, lvl := range levels {
			if lvl != 0 && abs(p.Price-lvl)/lvl < tolerance {
				levels[i] = (lvl + p.Price) / 2
				merged = true
				break
			}
		}
		if !merged {
			levels = append(levels, p.Price)
		}
	}
	return levels
}

// NearestLevel returns the level closest to price and its absolute
// distance; ok is false when no levels exist.
func NearestLevel(price float64, levels []float64) (level, distance float64, ok bool) {
	for _, lvl := range levels {
		d := abs(price - lvl)
		if !ok || d < distance {
			level, distance, ok = lvl, d, true
		}
	}
	return level, distance, ok
}

package indicators

import (
	"math"

	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

// Series values are aligned index-for-index with the input; indices
// before an indicator's warm-up hold NaN. Valid reports definedness.
func Valid(v float64) bool {
	return !math.IsNaN(v)
}

// Last returns the final defined value of a series, or NaN.
func Last(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if Valid(series[i]) {
			return series[i]
		}
	}
	return math.NaN()
}

func undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes a running-sum simple moving average. Index i is defined
// once i >= period-1; earlier indices are NaN. A non-positive period or
// empty input yields an all-NaN series of matching length.
func SMA(values []float64, period int) []float64 {
	out := undefined(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// TrueRange for bar i uses the previous close: max(h-l, |h-pc|, |l-pc|).
func TrueRange(cur, prev model.Bar) float64 {
	return math.Max(cur.High-cur.Low,
		math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))
}

// ATRWilder computes the Wilder-smoothed Average True Range. The first
// defined value, at index = period, is the simple average of the first
// `period` true ranges; subsequent values follow
// next = (prev*(period-1) + tr) / period. Fewer than period+1 bars
// yields an all-NaN series.
func ATRWilder(bars []model.Bar, period int) []float64 {
	out := undefined(len(bars))
	if period <= 0 || len(bars) < period+1 {
		return out
	}

	trs := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		trs[i] = TrueRange(bars[i], bars[i-1])
	}

	seed := 0.0
	for i := 1; i <= period; i++ {
		seed += trs[i]
	}
	atr := seed / float64(period)
	out[period] = atr

	for i := period + 1; i < len(bars); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
		out[i] = atr
	}
	return out
}

// RSIWilder computes the Wilder-smoothed Relative Strength Index from a
// close series. Average gain/loss are seeded from the first `period`
// deltas, then smoothed with factor 1/period. When cumulative loss is
// zero RS is treated as infinite and RSI saturates at 100. Defined
// values always lie in [0, 100].
func RSIWilder(closes []float64, period int) []float64 {
	out := undefined(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Volumes extracts the volume series from bars.
func Volumes(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

package pivots

import (
	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

// Pivot is a confirmed swing point: a bar whose high (or low) is a
// strict local extremum over a symmetric lookback window.
type Pivot struct {
	Index int     `json:"index"`
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Find returns swing lows and swing highs in bar order. A pivot at
// index i requires every bar in [i-lookback, i+lookback] (excluding i)
// to stay strictly inside its extreme; ties disqualify. The detector is
// pure and rerun in full on each request.
func Find(bars []model.Bar, lookback int) (lows, highs []Pivot) {
	if lookback <= 0 || len(bars) < 2*lookback+1 {
		return nil, nil
	}

	for i := lookback; i < len(bars)-lookback; i++ {
		isLow, isHigh := true, true
		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if bars[j].Low <= bars[i].Low {
				isLow = false
			}
			if bars[j].High >= bars[i].High {
				isHigh = false
			}
			if !isLow && !isHigh {
				break
			}
		}
		if isLow {
			lows = append(lows, Pivot{Index: i, Date: bars[i].Date, Price: bars[i].Low})
		}
		if isHigh {
			highs = append(highs, Pivot{Index: i, Date: bars[i].Date, Price: bars[i].High})
		}
	}
	return lows, highs
}

// LastN returns the up-to-n most recent pivots, oldest first.
func LastN(ps []Pivot, n int) []Pivot {
	if len(ps) <= n {
		return ps
	}
	return ps[len(ps)-n:]
}

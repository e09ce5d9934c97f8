package analysis

import (
	"github.com/colbywhitledge-web/trader-hub-v1/internal/indicators"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/pivots"
)

// RSIDivergence is the single divergence verdict for a request.
type RSIDivergence struct {
	Type       string    `json:"type"` // "none", "bullish" or "bearish"
	Strength   int       `json:"strength"`
	PivotDates [2]string `json:"pivot_dates"`
}

// DivergenceDetector compares the two most recent swing points against
// RSI readings at those points.
type DivergenceDetector struct {
	rsiDelta float64 // RSI point spread that earns a strength bonus
	recency  int     // bar distance from series end that earns a bonus
}

// NewDivergenceDetector creates a divergence detector. The strength
// bonuses are a preserved policy table: +1 for an RSI delta of at least
// rsiDelta points, +1 when the second pivot sits within recency bars of
// the series end.
func NewDivergenceDetector(rsiDelta float64, recency int) *DivergenceDetector {
	if rsiDelta <= 0 {
		rsiDelta = 5
	}
	if recency <= 0 {
		recency = 10
	}
	return &DivergenceDetector{rsiDelta: rsiDelta, recency: recency}
}

// Detect flags bullish divergence when the two most recent swing lows
// show a lower low in price but a higher RSI (bearish is the mirror on
// highs). When both candidates qualify, the stronger one wins; ties go
// to the candidate with the more recent second pivot.
func (dd *DivergenceDetector) Detect(rsi []float64, lows, highs []pivots.Pivot, seriesLen int) RSIDivergence {
	none := RSIDivergence{Type: "none"}

	bull, bullOK := dd.candidate(rsi, pivots.LastN(lows, 2), seriesLen, true)
	bear, bearOK := dd.candidate(rsi, pivots.LastN(highs, 2), seriesLen, false)

	switch {
	case bullOK && bearOK:
		if bear.Strength > bull.Strength {
			return bear
		}
		if bull.Strength > bear.Strength {
			return bull
		}
		if lastIndex(highs) > lastIndex(lows) {
			return bear
		}
		return bull
	case bullOK:
		return bull
	case bearOK:
		return bear
	}
	return none
}

func (dd *DivergenceDetector) candidate(rsi []float64, ps []pivots.Pivot, seriesLen int, bullish bool) (RSIDivergence, bool) {
	if len(ps) < 2 {
		return RSIDivergence{}, false
	}
	first, second := ps[0], ps[1]
	if first.Index >= len(rsi) || second.Index >= len(rsi) {
		return RSIDivergence{}, false
	}
	r1, r2 := rsi[first.Index], rsi[second.Index]
	if !indicators.Valid(r1) || !indicators.Valid(r2) {
		return RSIDivergence{}, false
	}

	var divType string
	if bullish {
		// Price made a lower low while momentum made a higher low.
		if !(second.Price < first.Price && r2 > r1) {
			return RSIDivergence{}, false
		}
		divType = "bullish"
	} else {
		if !(second.Price > first.Price && r2 < r1) {
			return RSIDivergence{}, false
		}
		divType = "bearish"
	}

	strength := 1
	if abs(r2-r1) >= dd.rsiDelta {
		strength++
	}
	if seriesLen-1-second.Index <= dd.recency {
		strength++
	}
	return RSIDivergence{
		Type:       divType,
		Strength:   strength,
		PivotDates: [2]string{first.Date, second.Date},
	}, true
}

func lastIndex(ps []pivots.Pivot) int {
	if len(ps) == 0 {
		return -1
	}
	return ps[len(ps)-1].Index
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

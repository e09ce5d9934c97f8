package analysis

import (
	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/pivots"
)

// LiquiditySweep marks the latest bar breaching a prior swing extreme
// intrabar but closing back inside it, or failing to hold a new high.
type LiquiditySweep struct {
	Date       string  `json:"date"`
	Type       string  `json:"type"` // "sweep_high", "sweep_low", "failed_reclaim"
	SwingPrice float64 `json:"swing_price,omitempty"`
}

// LiquidityDetector inspects the latest bar against recent swing
// levels.
type LiquidityDetector struct {
	window   int
	lookback int
}

// NewLiquidityDetector creates a sweep detector. window bounds the
// recent slice scanned for swing points; lookback is the pivot
// symmetric window.
func NewLiquidityDetector(window, lookback int) *LiquidityDetector {
	if window <= 0 {
		window = 30
	}
	if lookback <= 0 {
		lookback = 3
	}
	return &LiquidityDetector{window: window, lookback: lookback}
}

// Detect evaluates only the latest bar: a sweep-high fires when its
// high exceeds the most recent swing high but its close falls back
// below it (mirror for sweep-low). A failed reclaim fires when the bar
// makes a higher high than the previous bar yet closes red in the lower
// half of its own range.
func (ld *LiquidityDetector) Detect(bars []model.Bar) []LiquiditySweep {
	if len(bars) < 2 {
		return nil
	}
	latest := bars[len(bars)-1]

	start := len(bars) - ld.window
	if start < 0 {
		start = 0
	}
	// Exclude the latest bar from pivot detection so it can sweep a
	// prior extreme rather than be one.
	lows, highs := pivots.Find(bars[start:len(bars)-1], ld.lookback)

	var out []LiquiditySweep
	if n := len(highs); n > 0 {
		swing := highs[n-1]
		if latest.High > swing.Price && latest.Close < swing.Price {
			out = append(out, LiquiditySweep{Date: latest.Date, Type: "sweep_high", SwingPrice: swing.Price})
		}
	}
	if n := len(lows); n > 0 {
		swing := lows[n-1]
		if latest.Low < swing.Price && latest.Close > swing.Price {
			out = append(out, LiquiditySweep{Date: latest.Date, Type: "sweep_low", SwingPrice: swing.Price})
		}
	}

	prev := bars[len(bars)-2]
	if latest.High > prev.High && latest.Bearish() && latest.Range() > 0 &&
		latest.Close < latest.Low+latest.Range()/2 {
		out = append(out, LiquiditySweep{Date: latest.Date, Type: "failed_reclaim"})
	}
	return out
}

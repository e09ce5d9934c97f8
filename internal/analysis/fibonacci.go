package analysis

import (
	"fmt"

	"github.com/colbywhitledge-web/trader-hub-v1/internal/indicators"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/pivots"
)

// FibAnchor is the swing the retracement grid is drawn from.
type FibAnchor struct {
	From     float64 `json:"from"`
	To       float64 `json:"to"`
	FromDate string  `json:"from_date"`
	ToDate   string  `json:"to_date"`
}

// FibLevel is one ratio of the anchored move.
type FibLevel struct {
	Level float64 `json:"level"`
	Price float64 `json:"price"`
}

// Confluence is a fib price backed by at least one independent reason.
type Confluence struct {
	Price   float64  `json:"price"`
	Reasons []string `json:"reasons"`
}

// Fibonacci bundles the anchored retracement/extension grid. Anchor is
// nil when no qualifying swing pair exists.
type Fibonacci struct {
	Anchor       *FibAnchor   `json:"anchor"`
	Retracements []FibLevel   `json:"retracements"`
	Extensions   []FibLevel   `json:"extensions"`
	Confluences  []Confluence `json:"confluences"`
}

var retracementRatios = []float64{0.236, 0.382, 0.5, 0.618, 0.786}
var extensionRatios = []float64{1.272, 1.618}

// FibDetector anchors a fibonacci grid off recent swing structure.
type FibDetector struct {
	tolerancePct float64 // confluence tolerance as percent of price
}

// NewFibDetector creates a fibonacci detector.
func NewFibDetector(tolerancePct float64) *FibDetector {
	if tolerancePct <= 0 {
		tolerancePct = 0.5
	}
	return &FibDetector{tolerancePct: tolerancePct}
}

// Detect selects the anchor by trend: in an uptrend, from the nearest
// prior swing low to the latest swing high; downtrend is the mirror; in
// a range, whichever of the latest high/low came later anchors to the
// opposite-type pivot immediately preceding it. namedMAs supplies
// latest MA readings for confluence tagging; levels supplies clustered
// support/resistance.
func (fd *FibDetector) Detect(trend Trend, lows, highs []pivots.Pivot, namedMAs map[string]float64, support, resistance []float64) Fibonacci {
	anchor := selectAnchor(trend, lows, highs)
	if anchor == nil {
		return Fibonacci{}
	}

	fib := Fibonacci{Anchor: anchor}
	move := anchor.To - anchor.From
	for _, r := range retracementRatios {
		fib.Retracements = append(fib.Retracements, FibLevel{Level: r, Price: anchor.To - move*r})
	}
	for _, r := range extensionRatios {
		fib.Extensions = append(fib.Extensions, FibLevel{Level: r, Price: anchor.From + move*r})
	}
	fib.Confluences = fd.confluences(fib.Retracements, namedMAs, support, resistance)
	return fib
}

func selectAnchor(trend Trend, lows, highs []pivots.Pivot) *FibAnchor {
	switch trend {
	case TrendUp:
		return anchorFromTo(lows, highs)
	case TrendDown:
		return anchorFromTo(highs, lows)
	case TrendRange:
		// Later of the latest high/low, anchored to the opposite-type
		// pivot immediately preceding it.
		if lastIndex(highs) > lastIndex(lows) {
			return anchorFromTo(lows, highs)
		}
		if lastIndex(lows) > lastIndex(highs) {
			return anchorFromTo(highs, lows)
		}
	}
	return nil
}

// anchorFromTo draws from the nearest from-pivot preceding the latest
// to-pivot.
func anchorFromTo(from, to []pivots.Pivot) *FibAnchor {
	if len(to) == 0 {
		return nil
	}
	target := to[len(to)-1]
	for i := len(from) - 1; i >= 0; i-- {
		if from[i].Index < target.Index {
			return &FibAnchor{
				From:     from[i].Price,
				To:       target.Price,
				FromDate: from[i].Date,
				ToDate:   target.Date,
			}
		}
	}
	return nil
}

func (fd *FibDetector) confluences(retracements []FibLevel, namedMAs map[string]float64, support, resistance []float64) []Confluence {
	var out []Confluence
	for _, lvl := range retracements {
		if lvl.Price == 0 {
			continue
		}
		reasons := []string{fmt.Sprintf("fib %.1f%%", lvl.Level*100)}
		tol := abs(lvl.Price) * fd.tolerancePct / 100

		for _, name := range []string{"sma20", "sma50", "sma200"} {
			if v, ok := namedMAs[name]; ok && indicators.Valid(v) && abs(v-lvl.Price) <= tol {
				reasons = append(reasons, name)
			}
		}
		for _, s := range support {
			if abs(s-lvl.Price) <= tol {
				reasons = append(reasons, "support")
				break
			}
		}
		for _, r := range resistance {
			if abs(r-lvl.Price) <= tol {
				reasons = append(reasons, "resistance")
				break
			}
		}

		if len(reasons) > 1 {
			out = append(out, Confluence{Price: lvl.Price, Reasons: reasons})
		}
	}
	return out
}

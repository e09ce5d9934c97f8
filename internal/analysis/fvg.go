package analysis

import (
	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

// FVG is a three-bar imbalance: the first and third bar ranges do not
// overlap, leaving an untraded zone behind the middle bar.
type FVG struct {
	CreationDate string  `json:"creation_date"`
	Direction    string  `json:"direction"` // "bullish" or "bearish"
	ZoneLow      float64 `json:"zone_low"`
	ZoneHigh     float64 `json:"zone_high"`
	Rebalanced   bool    `json:"rebalanced"`
}

// FVGDetector detects fair value gaps and whether price has since
// traded back into them.
type FVGDetector struct {
	minGapPercent float64
	window        int
}

// NewFVGDetector creates an FVG detector. minGapPercent filters noise
// zones; window bounds the forward rebalance scan.
func NewFVGDetector(minGapPercent float64, window int) *FVGDetector {
	if minGapPercent <= 0 {
		minGapPercent = 0.1
	}
	if window <= 0 {
		window = 40
	}
	return &FVGDetector{minGapPercent: minGapPercent, window: window}
}

// Detect scans bar triples (i-2, i-1, i). A bullish FVG exists when bar
// i's low clears bar i-2's high; the zone spans those two extremes.
// Results are bar-ordered (most-recent-last) and capped from the end.
func (fd *FVGDetector) Detect(bars []model.Bar, cap int) []FVG {
	if len(bars) < 3 {
		return nil
	}

	var out []FVG
	for i := 2; i < len(bars); i++ {
		first, last := bars[i-2], bars[i]

		if last.Low > first.High {
			gapPct := pct(last.Low-first.High, first.High)
			if gapPct >= fd.minGapPercent {
				f := FVG{
					CreationDate: bars[i-1].Date,
					Direction:    "bullish",
					ZoneLow:      first.High,
					ZoneHigh:     last.Low,
				}
				f.Rebalanced = fd.rebalanced(f, bars, i)
				out = append(out, f)
			}
		}

		if last.High < first.Low {
			gapPct := pct(first.Low-last.High, last.High)
			if gapPct >= fd.minGapPercent {
				f := FVG{
					CreationDate: bars[i-1].Date,
					Direction:    "bearish",
					ZoneLow:      last.High,
					ZoneHigh:     first.Low,
				}
				f.Rebalanced = fd.rebalanced(f, bars, i)
				out = append(out, f)
			}
		}
	}
	if cap > 0 && len(out) > cap {
		out = out[len(out)-cap:]
	}
	return out
}

// rebalanced reports whether any bar within the forward window overlaps
// the zone after the pattern completes at index completedAt.
func (fd *FVGDetector) rebalanced(f FVG, bars []model.Bar, completedAt int) bool {
	end := completedAt + fd.window
	if end > len(bars)-1 {
		end = len(bars) - 1
	}
	for j := completedAt + 1; j <= end; j++ {
		if bars[j].Low <= f.ZoneHigh && bars[j].High >= f.ZoneLow {
			return true
		}
	}
	return false
}

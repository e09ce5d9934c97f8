package analysis

import (
	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

// GapStatus tracks fill progress. Transitions are monotonic:
// unfilled -> partial -> filled, and filled is terminal.
type GapStatus string

const (
	GapUnfilled GapStatus = "unfilled"
	GapPartial  GapStatus = "partial"
	GapFilled   GapStatus = "filled"
)

// Gap is a session gap: the open cleared the prior bar's entire range.
type Gap struct {
	Date      string    `json:"date"`
	Direction string    `json:"direction"` // "up" or "down"
	PrevClose float64   `json:"prev_close"`
	Open      float64   `json:"open"`
	ZoneLow   float64   `json:"zone_low"`
	ZoneHigh  float64   `json:"zone_high"`
	SizePct   float64   `json:"size_pct"`
	Status    GapStatus `json:"status"`
}

// GapDetector finds session gaps and tracks their fill status over a
// bounded forward window.
type GapDetector struct {
	fillWindow int
}

// NewGapDetector creates a gap detector; window is the forward
// lookahead in bars used to resolve fill status.
func NewGapDetector(fillWindow int) *GapDetector {
	if fillWindow <= 0 {
		fillWindow = 40
	}
	return &GapDetector{fillWindow: fillWindow}
}

// Detect returns gaps in bar order (most-recent-last), capped from the
// end. A gap up exists when a bar opens above the prior bar's high; the
// zone spans the prior extreme to the gapping open. A later bar that
// merely overlaps the zone marks it partial; one that fully crosses
// through marks it filled and ends the scan for that gap.
func (gd *GapDetector) Detect(bars []model.Bar, cap int) []Gap {
	if len(bars) < 2 {
		return nil
	}

	var gaps []Gap
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1], bars[i]

		if cur.Open > prev.High {
			g := Gap{
				Date:      cur.Date,
				Direction: "up",
				PrevClose: prev.Close,
				Open:      cur.Open,
				ZoneLow:   prev.High,
				ZoneHigh:  cur.Open,
				SizePct:   pct(cur.Open-prev.High, prev.High),
				Status:    GapUnfilled,
			}
			gd.resolve(&g, bars, i)
			gaps = append(gaps, g)
		} else if cur.Open < prev.Low {
			g := Gap{
				Date:      cur.Date,
				Direction: "down",
				PrevClose: prev.Close,
				Open:      cur.Open,
				ZoneLow:   cur.Open,
				ZoneHigh:  prev.Low,
				SizePct:   pct(prev.Low-cur.Open, prev.Low),
				Status:    GapUnfilled,
			}
			gd.resolve(&g, bars, i)
			gaps = append(gaps, g)
		}
	}
	if cap > 0 && len(gaps) > cap {
		gaps = gaps[len(gaps)-cap:]
	}
	return gaps
}

// resolve walks forward from the gap's creation bar, at most fillWindow
// bars, upgrading status monotonically.
func (gd *GapDetector) resolve(g *Gap, bars []model.Bar, createdAt int) {
	end := createdAt + gd.fillWindow
	if end > len(bars)-1 {
		end = len(bars) - 1
	}
	for j := createdAt + 1; j <= end; j++ {
		b := bars[j]
		if g.Direction == "up" {
			if b.Low <= g.ZoneLow {
				g.Status = GapFilled
				return
			}
			if b.Low < g.ZoneHigh {
				g.Status = GapPartial
			}
		} else {
			if b.High >= g.ZoneHigh {
				g.Status = GapFilled
				return
			}
			if b.High > g.ZoneLow {
				g.Status = GapPartial
			}
		}
	}
}

func pct(delta, base float64) float64 {
	if base == 0 {
		return 0
	}
	return delta / base * 100
}

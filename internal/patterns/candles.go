package patterns

import (
	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

// PatternType tags a single- or two-bar candlestick classification.
type PatternType string

const (
	Doji             PatternType = "doji"
	Hammer           PatternType = "hammer"
	ShootingStar     PatternType = "shooting_star"
	BullishEngulfing PatternType = "bullish_engulfing"
	BearishEngulfing PatternType = "bearish_engulfing"
	InsideBar        PatternType = "inside_bar"
	OutsideBar       PatternType = "outside_bar"
)

// CandlePattern is one tag attached to one bar; a bar may carry several.
type CandlePattern struct {
	Date      string      `json:"date"`
	Type      PatternType `json:"type"`
	Direction string      `json:"direction"` // "bullish", "bearish" or "neutral"
}

// CandleDetector classifies bars by body-to-range ratio and wick
// dominance. Thresholds come from configuration, not code.
type CandleDetector struct {
	dojiBodyMax     float64 // body/range ceiling for a doji
	wickBodyMax     float64 // body/range ceiling for hammer / shooting star
	wickDominant    float64 // dominant wick floor, fraction of range
	wickOppositeMax float64 // opposite wick ceiling, fraction of range
}

// NewCandleDetector creates a candle pattern detector. Non-positive
// thresholds fall back to the standard ratios.
func NewCandleDetector(dojiBodyMax, wickBodyMax, wickDominant, wickOppositeMax float64) *CandleDetector {
	if dojiBodyMax <= 0 {
		dojiBodyMax = 0.12
	}
	if wickBodyMax <= 0 {
		wickBodyMax = 0.35
	}
	if wickDominant <= 0 {
		wickDominant = 0.55
	}
	if wickOppositeMax <= 0 {
		wickOppositeMax = 0.2
	}
	return &CandleDetector{
		dojiBodyMax:     dojiBodyMax,
		wickBodyMax:     wickBodyMax,
		wickDominant:    wickDominant,
		wickOppositeMax: wickOppositeMax,
	}
}

// Detect scans the bar window and returns tags in bar order
// (most-recent-last), capped at cap entries from the end.
func (cd *CandleDetector) Detect(bars []model.Bar, cap int) []CandlePattern {
	var out []CandlePattern
	for i := range bars {
		cur := bars[i]
		if cd.isDoji(cur) {
			out = append(out, CandlePattern{Date: cur.Date, Type: Doji, Direction: "neutral"})
		}
		if cd.isHammer(cur) {
			out = append(out, CandlePattern{Date: cur.Date, Type: Hammer, Direction: "bullish"})
		}
		if cd.isShootingStar(cur) {
			out = append(out, CandlePattern{Date: cur.Date, Type: ShootingStar, Direction: "bearish"})
		}
		if i == 0 {
			continue
		}
		prev := bars[i-1]
		if cd.isBullishEngulfing(prev, cur) {
			out = append(out, CandlePattern{Date: cur.Date, Type: BullishEngulfing, Direction: "bullish"})
		}
		if cd.isBearishEngulfing(prev, cur) {
			out = append(out, CandlePattern{Date: cur.Date, Type: BearishEngulfing, Direction: "bearish"})
		}
		if cur.High < prev.High && cur.Low > prev.Low {
			out = append(out, CandlePattern{Date: cur.Date, Type: InsideBar, Direction: "neutral"})
		}
		if cur.High > prev.High && cur.Low < prev.Low {
			dir := "neutral"
			if cur.Bullish() {
				dir = "bullish"
			} else if cur.Bearish() {
				dir = "bearish"
			}
			out = append(out, CandlePattern{Date: cur.Date, Type: OutsideBar, Direction: dir})
		}
	}
	if cap > 0 && len(out) > cap {
		out = out[len(out)-cap:]
	}
	return out
}

func (cd *CandleDetector) isDoji(b model.Bar) bool {
	r := b.Range()
	if r == 0 {
		return false
	}
	return b.Body()/r < cd.dojiBodyMax
}

func (cd *CandleDetector) isHammer(b model.Bar) bool {
	r := b.Range()
	if r == 0 {
		return false
	}
	return b.Body()/r < cd.wickBodyMax &&
		b.LowerWick() >= cd.wickDominant*r &&
		b.UpperWick() < cd.wickOppositeMax*r
}

func (cd *CandleDetector) isShootingStar(b model.Bar) bool {
	r := b.Range()
	if r == 0 {
		return false
	}
	return b.Body()/r < cd.wickBodyMax &&
		b.UpperWick() >= cd.wickDominant*r &&
		b.LowerWick() < cd.wickOppositeMax*r
}

func (cd *CandleDetector) isBullishEngulfing(prev, cur model.Bar) bool {
	if !prev.Bearish() || !cur.Bullish() {
		return false
	}
	// Current body must fully contain and exceed the prior body.
	return cur.Open <= prev.Close && cur.Close >= prev.Open && cur.Body() > prev.Body()
}

func (cd *CandleDetector) isBearishEngulfing(prev, cur model.Bar) bool {
	if !prev.Bullish() || !cur.Bearish() {
		return false
	}
	return cur.Open >= prev.Close && cur.Close <= prev.Open && cur.Body() > prev.Body()
}

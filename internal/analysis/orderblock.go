package analysis

import (
	"github.com/colbywhitledge-web/trader-hub-v1/internal/indicators"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

// OrderBlock is the body of the last opposite-colored candle preceding
// a high-volume displacement bar, treated as a supply/demand zone.
type OrderBlock struct {
	CreationDate string  `json:"creation_date"`
	Direction    string  `json:"direction"` // "bullish" or "bearish"
	ZoneLow      float64 `json:"zone_low"`
	ZoneHigh     float64 `json:"zone_high"`
	Tapped       bool    `json:"tapped"`
}

// OrderBlockDetector locates displacement bars and their preceding
// opposite candles.
type OrderBlockDetector struct {
	atrMultiple  float64
	volMultiple  float64
	volAvgPeriod int
	window       int
}

// NewOrderBlockDetector creates an order block detector. A displacement
// bar has true range >= atrMultiple x ATR and volume >= volMultiple x
// its volAvgPeriod-bar average; window bounds the forward tap scan.
func NewOrderBlockDetector(atrMultiple, volMultiple float64, volAvgPeriod, window int) *OrderBlockDetector {
	if atrMultiple <= 0 {
		atrMultiple = 1.5
	}
	if volMultiple <= 0 {
		volMultiple = 1.5
	}
	if volAvgPeriod <= 0 {
		volAvgPeriod = 20
	}
	if window <= 0 {
		window = 40
	}
	return &OrderBlockDetector{
		atrMultiple:  atrMultiple,
		volMultiple:  volMultiple,
		volAvgPeriod: volAvgPeriod,
		window:       window,
	}
}

// Detect returns order blocks in bar order (most-recent-last), capped
// from the end. atr must be aligned with bars (NaN before warm-up).
func (od *OrderBlockDetector) Detect(bars []model.Bar, atr []float64, cap int) []OrderBlock {
	if len(bars) < od.volAvgPeriod+1 {
		return nil
	}
	volAvg := indicators.SMA(indicators.Volumes(bars), od.volAvgPeriod)

	var out []OrderBlock
	for i := 1; i < len(bars); i++ {
		if i >= len(atr) || !indicators.Valid(atr[i]) || !indicators.Valid(volAvg[i]) {
			continue
		}
		tr := indicators.TrueRange(bars[i], bars[i-1])
		if tr < od.atrMultiple*atr[i] || bars[i].Volume < od.volMultiple*volAvg[i] {
			continue
		}

		// Displacement bar found; the nearest prior opposite-colored
		// candle's body defines the zone.
		if ob, ok := od.anchor(bars, i); ok {
			ob.Tapped = od.tapped(ob, bars, i)
			out = append(out, ob)
		}
	}
	if cap > 0 && len(out) > cap {
		out = out[len(out)-cap:]
	}
	return out
}

func (od *OrderBlockDetector) anchor(bars []model.Bar, dispIdx int) (OrderBlock, bool) {
	disp := bars[dispIdx]
	for j := dispIdx - 1; j >= 0; j-- {
		b := bars[j]
		if disp.Bullish() && b.Bearish() {
			return OrderBlock{
				CreationDate: b.Date,
				Direction:    "bullish",
				ZoneLow:      b.Close,
				ZoneHigh:     b.Open,
			}, true
		}
		if disp.Bearish() && b.Bullish() {
			return OrderBlock{
				CreationDate: b.Date,
				Direction:    "bearish",
				ZoneLow:      b.Open,
				ZoneHigh:     b.Close,
			}, true
		}
	}
	return OrderBlock{}, false
}

func (od *OrderBlockDetector) tapped(ob OrderBlock, bars []model.Bar, dispIdx int) bool {
	end := dispIdx + od.window
	if end > len(bars)-1 {
		end = len(bars) - 1
	}
	for j := dispIdx + 1; j <= end; j++ {
		if bars[j].Low <= ob.ZoneHigh && bars[j].High >= ob.ZoneLow {
			return true
		}
	}
	return false
}

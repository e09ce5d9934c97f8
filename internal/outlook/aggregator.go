package outlook

import (
	"fmt"
	"math"

	"github.com/colbywhitledge-web/trader-hub-v1/internal/analysis"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/indicators"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/patterns"
)

// ExpectedRange is the next-day range estimate.
type ExpectedRange struct {
	Center float64 `json:"center"`
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Method string  `json:"method"`
}

// Scenario is one narrative path with its key levels.
type Scenario struct {
	Name      string    `json:"name"`
	Narrative string    `json:"narrative"`
	Levels    []float64 `json:"levels,omitempty"`
}

// Outlook is the condensed directional read for one instrument.
type Outlook struct {
	Bias          string        `json:"bias"` // "bullish", "bearish" or "neutral"
	Score         float64       `json:"score"`
	Confidence    int           `json:"confidence_1_5"`
	ExpectedRange ExpectedRange `json:"expected_range_next_day"`
	Scenarios     []Scenario    `json:"scenarios"`
}

// Inputs carries everything the aggregator weighs.
type Inputs struct {
	Close         float64
	SMA50         float64
	SMA200        float64
	RSI           float64
	ATR           float64
	Trend         analysis.Trend
	Divergence    analysis.RSIDivergence
	RecentSweeps  []patterns.MASweep
	FibConfluence bool
	Grade         analysis.LiquidityGrade
	NewsSentiment float64 // already clamped by the caller
	Support       []float64
	Resistance    []float64
}

// Aggregator folds trend, momentum, divergence and context into a
// single bias score and scenario set.
type Aggregator struct {
	highVolRatio float64 // ATR/close above this shrinks the range multiplier
	lowVolRatio  float64 // ATR/close below this widens it
}

// NewAggregator creates an outlook aggregator.
func NewAggregator(highVolRatio, lowVolRatio float64) *Aggregator {
	if highVolRatio <= 0 {
		highVolRatio = 0.08
	}
	if lowVolRatio <= 0 {
		lowVolRatio = 0.02
	}
	return &Aggregator{highVolRatio: highVolRatio, lowVolRatio: lowVolRatio}
}

// Aggregate computes the weighted bias score. The weights are a
// preserved policy table: price vs SMA50 +-15, vs SMA200 +-10, RSI vs
// 50 +-10, divergence +-5 x strength, each recent MA sweep +-5, fib
// confluence +5, liquidity grade C -10, plus the bounded news nudge.
func (a *Aggregator) Aggregate(in Inputs) Outlook {
	score := 0.0

	if indicators.Valid(in.SMA50) {
		if in.Close > in.SMA50 {
			score += 15
		} else if in.Close < in.SMA50 {
			score -= 15
		}
	}
	if indicators.Valid(in.SMA200) {
		if in.Close > in.SMA200 {
			score += 10
		} else if in.Close < in.SMA200 {
			score -= 10
		}
	}
	if indicators.Valid(in.RSI) {
		if in.RSI > 50 {
			score += 10
		} else if in.RSI < 50 {
			score -= 10
		}
	}
	switch in.Divergence.Type {
	case "bullish":
		score += 5 * float64(in.Divergence.Strength)
	case "bearish":
		score -= 5 * float64(in.Divergence.Strength)
	}
	for _, sw := range in.RecentSweeps {
		if sw.Direction == "bullish" {
			score += 5
		} else {
			score -= 5
		}
	}
	if in.FibConfluence {
		score += 5
	}
	if in.Grade == analysis.GradeC {
		score -= 10
	}
	score += in.NewsSentiment

	bias := "neutral"
	if score >= 20 {
		bias = "bullish"
	} else if score <= -20 {
		bias = "bearish"
	}

	return Outlook{
		Bias:          bias,
		Score:         score,
		Confidence:    a.confidence(score, in.Grade),
		ExpectedRange: a.expectedRange(in.Close, in.ATR),
		Scenarios:     a.scenarios(in),
	}
}

// confidence maps |score| to 1-5 and docks thin tape: one notch for
// grade B, two for grade C, floored at 1.
func (a *Aggregator) confidence(score float64, grade analysis.LiquidityGrade) int {
	c := 1 + int(math.Abs(score)/15)
	if c > 5 {
		c = 5
	}
	switch grade {
	case analysis.GradeB:
		c--
	case analysis.GradeC:
		c -= 2
	}
	if c < 1 {
		c = 1
	}
	return c
}

// expectedRange is close +- ATR14 x multiplier: 0.8 when volatility is
// already extreme (ATR/close above the high ratio), 1.2 when it is
// compressed (below the low ratio), 1.0 otherwise.
func (a *Aggregator) expectedRange(close, atr float64) ExpectedRange {
	if close <= 0 || !indicators.Valid(atr) {
		return ExpectedRange{Center: close, Low: close, High: close, Method: "no ATR available"}
	}
	mult := 1.0
	ratio := atr / close
	if ratio > a.highVolRatio {
		mult = 0.8
	} else if ratio < a.lowVolRatio {
		mult = 1.2
	}
	return ExpectedRange{
		Center: close,
		Low:    close - atr*mult,
		High:   close + atr*mult,
		Method: fmt.Sprintf("close +/- ATR14 x %.1f", mult),
	}
}

func (a *Aggregator) scenarios(in Inputs) []Scenario {
	var out []Scenario

	bull := Scenario{
		Name:      "bullish",
		Narrative: "Buyers defend the nearest support and momentum carries price into overhead supply.",
	}
	if lvl, _, ok := analysis.NearestLevel(in.Close, in.Support); ok {
		bull.Narrative = fmt.Sprintf("Buyers defend support near %.2f and rotate price toward resistance.", lvl)
		bull.Levels = append(bull.Levels, lvl)
	}
	if lvl, _, ok := analysis.NearestLevel(in.Close, in.Resistance); ok {
		bull.Levels = append(bull.Levels, lvl)
	}
	out = append(out, bull)

	bear := Scenario{
		Name:      "bearish",
		Narrative: "Sellers reject the nearest resistance and price rotates back through support.",
	}
	if lvl, _, ok := analysis.NearestLevel(in.Close, in.Resistance); ok {
		bear.Narrative = fmt.Sprintf("Sellers reject resistance near %.2f and press price back into support.", lvl)
		bear.Levels = append(bear.Levels, lvl)
	}
	if lvl, _, ok := analysis.NearestLevel(in.Close, in.Support); ok {
		bear.Levels = append(bear.Levels, lvl)
	}
	out = append(out, bear)

	if in.Trend == analysis.TrendRange {
		out = append(out, Scenario{
			Name:      "range",
			Narrative: "No directional edge; fade the extremes until a daily close escapes the range.",
		})
	}
	return out
}

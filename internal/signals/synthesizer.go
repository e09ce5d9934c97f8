package signals

import (
	"fmt"
	"math"
	"sort"

	"github.com/colbywhitledge-web/trader-hub-v1/internal/analysis"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/indicators"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/patterns"
)

// Severity is the fixed signal vocabulary.
type Severity string

const (
	SeverityHigh Severity = "high"
	SeverityMed  Severity = "med"
	SeverityLow  Severity = "low"
	SeverityInfo Severity = "info"
)

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 4
	case SeverityMed:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// Signal is the unified trade-relevant output unit.
type Signal struct {
	ID           string                 `json:"id"`
	Category     string                 `json:"category"`
	Type         string                 `json:"type"`
	Timeframe    string                 `json:"timeframe"`
	Severity     Severity               `json:"severity"`
	Title        string                 `json:"title"`
	Trigger      string                 `json:"trigger"`
	Action       string                 `json:"action"`
	Invalidation string                 `json:"invalidation,omitempty"`
	Levels       []float64              `json:"levels,omitempty"`
	Meta         map[string]interface{} `json:"meta,omitempty"`
}

// CrossInput carries prior and current values for one MA pair. Any NaN
// member makes the cross undecidable and the signal is skipped.
type CrossInput struct {
	Name     string
	PrevFast float64
	PrevSlow float64
	Fast     float64
	Slow     float64
}

// Inputs bundles every detector output plus live readings for one run.
type Inputs struct {
	Spot        float64
	RSI         float64
	Divergence  analysis.RSIDivergence
	Crosses     []CrossInput
	Sweeps      []analysis.LiquiditySweep
	Gaps        []analysis.Gap
	Candles     []patterns.CandlePattern
	MASweeps    []patterns.MASweep
	FVGs        []analysis.FVG
	OrderBlocks []analysis.OrderBlock
	Fib         analysis.Fibonacci
	Support     []float64
	Resistance  []float64
	LatestDate  string
}

// Synthesizer converts raw detector outputs into the ranked,
// deduplicated signal list.
type Synthesizer struct {
	rsiOversold   float64
	rsiOverbought float64
	rsiWeak       float64
	rsiStrong     float64
	proximityPct  float64
	sweepRecency  int
	maxSignals    int
}

// NewSynthesizer creates a synthesizer with the given thresholds.
func NewSynthesizer(rsiOversold, rsiOverbought, rsiWeak, rsiStrong, proximityPct float64, sweepRecency, maxSignals int) *Synthesizer {
	if rsiOversold <= 0 {
		rsiOversold = 35
	}
	if rsiOverbought <= 0 {
		rsiOverbought = 65
	}
	if rsiWeak <= 0 {
		rsiWeak = 45
	}
	if rsiStrong <= 0 {
		rsiStrong = 55
	}
	if proximityPct <= 0 {
		proximityPct = 1.0
	}
	if sweepRecency <= 0 {
		sweepRecency = 5
	}
	if maxSignals <= 0 {
		maxSignals = 12
	}
	return &Synthesizer{
		rsiOversold:   rsiOversold,
		rsiOverbought: rsiOverbought,
		rsiWeak:       rsiWeak,
		rsiStrong:     rsiStrong,
		proximityPct:  proximityPct,
		sweepRecency:  sweepRecency,
		maxSignals:    maxSignals,
	}
}

const timeframe = "1d"

// Synthesize generates every candidate, stable-sorts by severity rank,
// dedupes by (category, type, title) keeping the first occurrence, and
// caps the result. Sorting before truncation is load-bearing: a
// high-severity signal must never lose its slot to an earlier-generated
// duplicate of lower priority. Identical inputs yield byte-identical
// output.
func (s *Synthesizer) Synthesize(in Inputs) []Signal {
	var out []Signal
	out = append(out, s.momentumSignals(in)...)
	out = append(out, s.divergenceSignals(in)...)
	out = append(out, s.crossSignals(in)...)
	out = append(out, s.sweepSignals(in)...)
	out = append(out, s.levelSignals(in)...)
	out = append(out, s.gapSignals(in)...)
	out = append(out, s.candleSignals(in)...)
	out = append(out, s.maSweepSignals(in)...)
	out = append(out, s.fvgSignals(in)...)
	out = append(out, s.orderBlockSignals(in)...)
	out = append(out, s.fibSignals(in)...)

	sort.SliceStable(out, func(i, j int) bool {
		return severityRank(out[i].Severity) > severityRank(out[j].Severity)
	})

	seen := make(map[string]bool, len(out))
	deduped := out[:0]
	for _, sig := range out {
		key := sig.Category + "|" + sig.Type + "|" + sig.Title
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, sig)
	}
	if len(deduped) > s.maxSignals {
		deduped = deduped[:s.maxSignals]
	}
	return deduped
}

func makeID(category, sigType string, suffix ...string) string {
	id := category + ":" + sigType
	for _, sfx := range suffix {
		id += ":" + sfx
	}
	return id
}

// momentumSignals evaluates the RSI bands in fixed priority order;
// exactly one band can fire.
func (s *Synthesizer) momentumSignals(in Inputs) []Signal {
	if !indicators.Valid(in.RSI) {
		return nil
	}
	switch {
	case in.RSI <= s.rsiOversold:
		return []Signal{{
			ID:       makeID("momentum", "oversold"),
			Category: "momentum", Type: "oversold", Timeframe: timeframe,
			Severity: SeverityMed,
			Title:    "RSI oversold-ish",
			Trigger:  fmt.Sprintf("RSI14 at %.1f, at or below %.0f", in.RSI, s.rsiOversold),
			Action:   "Watch for basing or a reversal trigger before knife-catching",
		}}
	case in.RSI >= s.rsiOverbought:
		return []Signal{{
			ID:       makeID("momentum", "overbought"),
			Category: "momentum", Type: "overbought", Timeframe: timeframe,
			Severity: SeverityMed,
			Title:    "RSI overbought-ish",
			Trigger:  fmt.Sprintf("RSI14 at %.1f, at or above %.0f", in.RSI, s.rsiOverbought),
			Action:   "Tighten stops; extension often precedes digestion",
		}}
	case in.RSI < s.rsiWeak:
		return []Signal{{
			ID:       makeID("momentum", "weak_momentum"),
			Category: "momentum", Type: "weak_momentum", Timeframe: timeframe,
			Severity: SeverityInfo,
			Title:    "Weak momentum",
			Trigger:  fmt.Sprintf("RSI14 at %.1f, below %.0f", in.RSI, s.rsiWeak),
			Action:   "Momentum favors sellers; wait for improvement",
		}}
	case in.RSI > s.rsiStrong:
		return []Signal{{
			ID:       makeID("momentum", "positive_momentum"),
			Category: "momentum", Type: "positive_momentum", Timeframe: timeframe,
			Severity: SeverityInfo,
			Title:    "Positive momentum",
			Trigger:  fmt.Sprintf("RSI14 at %.1f, above %.0f", in.RSI, s.rsiStrong),
			Action:   "Momentum favors buyers",
		}}
	}
	return nil
}

func (s *Synthesizer) divergenceSignals(in Inputs) []Signal {
	d := in.Divergence
	if d.Type != "bullish" && d.Type != "bearish" {
		return nil
	}
	severity := SeverityMed
	if d.Strength >= 3 {
		severity = SeverityHigh
	}
	action := "Reversal risk to the upside; watch the prior swing low"
	invalidation := "A fresh low with confirming RSI"
	if d.Type == "bearish" {
		action = "Reversal risk to the downside; watch the prior swing high"
		invalidation = "A fresh high with confirming RSI"
	}
	return []Signal{{
		ID:       makeID("momentum", d.Type+"_divergence"),
		Category: "momentum", Type: d.Type + "_divergence", Timeframe: timeframe,
		Severity: severity,
		Title:    fmt.Sprintf("RSI %s divergence (strength %d)", d.Type, d.Strength),
		Trigger:  fmt.Sprintf("Price and RSI disagree across pivots %s and %s", d.PivotDates[0], d.PivotDates[1]),
		Action:   action, Invalidation: invalidation,
		Meta:     map[string]interface{}{"strength": d.Strength},
	}}
}

func (s *Synthesizer) crossSignals(in Inputs) []Signal {
	var out []Signal
	for _, c := range in.Crosses {
		if math.IsNaN(c.PrevFast) || math.IsNaN(c.PrevSlow) || math.IsNaN(c.Fast) || math.IsNaN(c.Slow) {
			continue
		}
		severity := SeverityMed
		if c.Name == "50_200" {
			severity = SeverityHigh
		}
		if c.PrevFast <= c.PrevSlow && c.Fast > c.Slow {
			out = append(out, Signal{
				ID:       makeID("trend", "golden_cross_"+c.Name),
				Category: "trend", Type: "golden_cross_" + c.Name, Timeframe: timeframe,
				Severity: severity,
				Title:    "Bullish MA cross (" + c.Name + ")",
				Trigger:  fmt.Sprintf("Fast MA crossed above slow (%.2f > %.2f)", c.Fast, c.Slow),
				Action:   "Trend turning up; pullbacks toward the fast MA are of interest",
			})
		} else if c.PrevFast >= c.PrevSlow && c.Fast < c.Slow {
			out = append(out, Signal{
				ID:       makeID("trend", "death_cross_"+c.Name),
				Category: "trend", Type: "death_cross_" + c.Name, Timeframe: timeframe,
				Severity: severity,
				Title:    "Bearish MA cross (" + c.Name + ")",
				Trigger:  fmt.Sprintf("Fast MA crossed below slow (%.2f < %.2f)", c.Fast, c.Slow),
				Action:   "Trend turning down; rallies toward the fast MA are suspect",
			})
		}
	}
	return out
}

// sweepSignals: liquidity sweeps always carry high severity (reversal
// risk); a failed reclaim rates medium.
func (s *Synthesizer) sweepSignals(in Inputs) []Signal {
	var out []Signal
	for _, sw := range in.Sweeps {
		switch sw.Type {
		case "sweep_high":
			out = append(out, Signal{
				ID:           makeID("liquidity", "sweep_high"),
				Category:     "liquidity", Type: "sweep_high", Timeframe: timeframe,
				Severity:     SeverityHigh,
				Title:        "Liquidity sweep above swing high",
				Trigger:      fmt.Sprintf("High pierced %.2f but close fell back below it", sw.SwingPrice),
				Action:       "Stop-hunt signature; downside reversal risk",
				Invalidation: fmt.Sprintf("Daily close back above %.2f", sw.SwingPrice),
				Levels:       []float64{sw.SwingPrice},
			})
		case "sweep_low":
			out = append(out, Signal{
				ID:           makeID("liquidity", "sweep_low"),
				Category:     "liquidity", Type: "sweep_low", Timeframe: timeframe,
				Severity:     SeverityHigh,
				Title:        "Liquidity sweep below swing low",
				Trigger:      fmt.Sprintf("Low pierced %.2f but close recovered above it", sw.SwingPrice),
				Action:       "Stop-hunt signature; upside reversal risk",
				Invalidation: fmt.Sprintf("Daily close back below %.2f", sw.SwingPrice),
				Levels:       []float64{sw.SwingPrice},
			})
		case "failed_reclaim":
			out = append(out, Signal{
				ID:       makeID("liquidity", "failed_reclaim"),
				Category: "liquidity", Type: "failed_reclaim", Timeframe: timeframe,
				Severity: SeverityMed,
				Title:    "Failed reclaim of new high",
				Trigger:  "Higher high printed but bar closed red in its lower half",
				Action:   "Buyers failed to hold the breakout",
			})
		}
	}
	return out
}

// levelSignals flags proximity to the closest support and resistance:
// high severity inside the proximity band, info otherwise.
func (s *Synthesizer) levelSignals(in Inputs) []Signal {
	if in.Spot <= 0 {
		return nil
	}
	var out []Signal
	if lvl, dist, ok := analysis.NearestLevel(in.Spot, in.Support); ok {
		out = append(out, s.proximitySignal("near_support", "support", lvl, dist, in.Spot))
	}
	if lvl, dist, ok := analysis.NearestLevel(in.Spot, in.Resistance); ok {
		out = append(out, s.proximitySignal("near_resistance", "resistance", lvl, dist, in.Spot))
	}
	return out
}

func (s *Synthesizer) proximitySignal(sigType, kind string, level, dist, spot float64) Signal {
	distPct := dist / spot * 100
	severity := SeverityInfo
	if distPct <= s.proximityPct {
		severity = SeverityHigh
	}
	return Signal{
		ID:       makeID("levels", sigType),
		Category: "levels", Type: sigType, Timeframe: timeframe,
		Severity: severity,
		Title:    fmt.Sprintf("Closest %s at %.2f", kind, level),
		Trigger:  fmt.Sprintf("Spot %.2f is %.2f%% away", spot, distPct),
		Action:   "Key level in play; expect reaction or acceleration through it",
		Levels:   []float64{level},
	}
}

func (s *Synthesizer) gapSignals(in Inputs) []Signal {
	var out []Signal
	for _, g := range in.Gaps {
		if g.Status == analysis.GapFilled {
			continue
		}
		severity := SeverityMed
		if g.Status == analysis.GapPartial {
			severity = SeverityInfo
		}
		out = append(out, Signal{
			ID:       makeID("gaps", "gap_"+g.Direction, g.Date),
			Category: "gaps", Type: "gap_" + g.Direction, Timeframe: timeframe,
			Severity: severity,
			Title:    fmt.Sprintf("%s gap %s from %s", string(g.Status), g.Direction, g.Date),
			Trigger:  fmt.Sprintf("Open cleared prior range by %.2f%%", g.SizePct),
			Action:   "Unfilled gaps tend to attract price",
			Levels:   []float64{g.ZoneLow, g.ZoneHigh},
		})
	}
	return out
}

// candleSignals only reports tags on the latest bar; historical tags
// stay in the technicals bundle.
func (s *Synthesizer) candleSignals(in Inputs) []Signal {
	var out []Signal
	for _, c := range in.Candles {
		if c.Date != in.LatestDate {
			continue
		}
		severity := SeverityLow
		if c.Direction == "neutral" {
			severity = SeverityInfo
		}
		out = append(out, Signal{
			ID:       makeID("candles", string(c.Type)),
			Category: "candles", Type: string(c.Type), Timeframe: timeframe,
			Severity: severity,
			Title:    fmt.Sprintf("%s on latest bar", c.Type),
			Trigger:  "Candle shape classification on " + c.Date,
			Action:   "Single-bar evidence; needs confirmation",
		})
	}
	return out
}

func (s *Synthesizer) maSweepSignals(in Inputs) []Signal {
	var out []Signal
	for _, sw := range in.MASweeps {
		out = append(out, Signal{
			ID:       makeID("trend", "ma_sweep_"+sw.Direction, sw.MAName, sw.Date),
			Category: "trend", Type: "ma_sweep_" + sw.Direction, Timeframe: timeframe,
			Severity: SeverityLow,
			Title:    fmt.Sprintf("%s sweep of %s on %s", sw.Direction, sw.MAName, sw.Date),
			Trigger:  "Price pierced the MA intrabar but closed back through it",
			Action:   "MA acting as a magnet and rejection level",
		})
	}
	return out
}

func (s *Synthesizer) fvgSignals(in Inputs) []Signal {
	var out []Signal
	for _, f := range in.FVGs {
		if f.Rebalanced {
			continue
		}
		out = append(out, Signal{
			ID:       makeID("imbalance", "fvg_"+f.Direction, f.CreationDate),
			Category: "imbalance", Type: "fvg_" + f.Direction, Timeframe: timeframe,
			Severity: SeverityMed,
			Title:    fmt.Sprintf("Open %s fair value gap from %s", f.Direction, f.CreationDate),
			Trigger:  fmt.Sprintf("Imbalance zone %.2f-%.2f untouched since creation", f.ZoneLow, f.ZoneHigh),
			Action:   "Price often returns to rebalance the zone",
			Levels:   []float64{f.ZoneLow, f.ZoneHigh},
		})
	}
	return out
}

func (s *Synthesizer) orderBlockSignals(in Inputs) []Signal {
	var out []Signal
	for _, ob := range in.OrderBlocks {
		if ob.Tapped {
			continue
		}
		out = append(out, Signal{
			ID:       makeID("imbalance", "order_block_"+ob.Direction, ob.CreationDate),
			Category: "imbalance", Type: "order_block_" + ob.Direction, Timeframe: timeframe,
			Severity: SeverityMed,
			Title:    fmt.Sprintf("Untapped %s order block from %s", ob.Direction, ob.CreationDate),
			Trigger:  fmt.Sprintf("Displacement origin zone %.2f-%.2f untouched", ob.ZoneLow, ob.ZoneHigh),
			Action:   "Zone likely to act as supply/demand on first revisit",
			Levels:   []float64{ob.ZoneLow, ob.ZoneHigh},
		})
	}
	return out
}

func (s *Synthesizer) fibSignals(in Inputs) []Signal {
	var out []Signal
	for _, c := range in.Fib.Confluences {
		out = append(out, Signal{
			ID:       makeID("levels", "fib_confluence", fmt.Sprintf("%.2f", c.Price)),
			Category: "levels", Type: "fib_confluence", Timeframe: timeframe,
			Severity: SeverityInfo,
			Title:    fmt.Sprintf("Fibonacci confluence at %.2f", c.Price),
			Trigger:  fmt.Sprintf("%d aligned reasons at one price", len(c.Reasons)),
			Action:   "Stacked levels strengthen the zone",
			Levels:   []float64{c.Price},
			Meta:     map[string]interface{}{"reasons": c.Reasons},
		})
	}
	return out
}

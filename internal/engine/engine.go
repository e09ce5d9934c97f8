package engine

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/colbywhitledge-web/trader-hub-v1/config"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/analysis"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/indicators"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/outlook"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/patterns"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/pivots"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/signals"
)

// IndicatorSnapshot carries previously computed prior-period MA values
// from an external collaborator. NaN members fall back to the local
// series; when neither is available the MA-cross signals are skipped.
type IndicatorSnapshot struct {
	PrevSMA20  float64
	PrevSMA50  float64
	PrevSMA200 float64
}

// Options are the optional per-request collaborator inputs.
type Options struct {
	Levels   model.KeyLevels
	News     []model.NewsItem
	Snapshot *IndicatorSnapshot
}

// Technicals bundles raw detector outputs for display.
type Technicals struct {
	Trend           analysis.Trend              `json:"trend"`
	RSI             *float64                    `json:"rsi,omitempty"`
	ATR             *float64                    `json:"atr,omitempty"`
	SMA20           *float64                    `json:"sma20,omitempty"`
	SMA50           *float64                    `json:"sma50,omitempty"`
	SMA200          *float64                    `json:"sma200,omitempty"`
	Gaps            []analysis.Gap              `json:"gaps"`
	Candles         []patterns.CandlePattern    `json:"candle_patterns"`
	MASweeps        []patterns.MASweep          `json:"ma_sweeps"`
	Divergence      analysis.RSIDivergence      `json:"divergence"`
	FVGs            []analysis.FVG              `json:"fvgs"`
	OrderBlocks     []analysis.OrderBlock       `json:"order_blocks"`
	Fibonacci       analysis.Fibonacci          `json:"fibonacci"`
	LiquiditySweeps []analysis.LiquiditySweep   `json:"liquidity_sweeps"`
	Support         []float64                   `json:"support"`
	Resistance      []float64                   `json:"resistance"`
	LiquidityGrade  analysis.LiquidityGrade     `json:"liquidity_grade"`
}

// Result is the full pipeline output for one request.
type Result struct {
	Signals    []signals.Signal `json:"signals"`
	Outlook    outlook.Outlook  `json:"outlook"`
	Technicals Technicals       `json:"technicals"`
}

// Engine runs the analysis pipeline: bars -> indicator series ->
// detectors -> signal synthesis -> outlook. It holds no per-request
// state and is safe for concurrent use across symbols.
type Engine struct {
	cfg    config.AnalysisConfig
	logger zerolog.Logger

	gaps        *analysis.GapDetector
	fvgs        *analysis.FVGDetector
	orderBlocks *analysis.OrderBlockDetector
	liquidity   *analysis.LiquidityDetector
	divergence  *analysis.DivergenceDetector
	fib         *analysis.FibDetector
	candles     *patterns.CandleDetector
	synth       *signals.Synthesizer
	agg         *outlook.Aggregator
}

// New wires every detector from the analysis configuration.
func New(cfg config.AnalysisConfig, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger.With().Str("component", "engine").Logger(),

		gaps:        analysis.NewGapDetector(cfg.GapFillWindow),
		fvgs:        analysis.NewFVGDetector(cfg.MinGapPercent, cfg.FVGWindow),
		orderBlocks: analysis.NewOrderBlockDetector(cfg.DisplacementATR, cfg.DisplacementVol, cfg.VolumeAvgPeriod, cfg.OrderBlockWindow),
		liquidity:   analysis.NewLiquidityDetector(cfg.SweepWindow, cfg.PivotLookback),
		divergence:  analysis.NewDivergenceDetector(cfg.DivergenceRSIDelta, cfg.DivergenceRecency),
		fib:         analysis.NewFibDetector(cfg.FibTolerance),
		candles:     patterns.NewCandleDetector(cfg.DojiBodyMax, cfg.WickBodyMax, cfg.WickDominant, cfg.WickOppositeMax),
		synth:       signals.NewSynthesizer(cfg.RSIOversold, cfg.RSIOverbought, cfg.RSIWeak, cfg.RSIStrong, cfg.LevelProximityPct, cfg.SweepRecency, cfg.MaxSignals),
		agg:         outlook.NewAggregator(cfg.HighVolRatio, cfg.LowVolRatio),
	}
}

// Analyze runs the full pipeline over one bar series. Input is
// normalized exactly once; every detector runs isolated so a single
// failure never aborts synthesis; a series too short for a detector
// simply contributes nothing.
func (e *Engine) Analyze(rawBars []model.Bar, opts Options) (*Result, error) {
	bars, err := model.NormalizeBars(rawBars)
	if err != nil {
		return nil, err
	}

	closes := model.Closes(bars)
	rsi := indicators.RSIWilder(closes, e.cfg.RSIPeriod)
	atr := indicators.ATRWilder(bars, e.cfg.ATRPeriod)
	sma20 := indicators.SMA(closes, e.cfg.FastSMA)
	sma50 := indicators.SMA(closes, e.cfg.MediumSMA)
	sma200 := indicators.SMA(closes, e.cfg.SlowSMA)

	lows, highs := pivots.Find(bars, e.cfg.PivotLookback)
	trend := analysis.ClassifyTrend(bars, sma50, e.cfg.TrendSlope)

	tech := Technicals{
		Trend:          trend,
		RSI:            ptrIfValid(indicators.Last(rsi)),
		ATR:            ptrIfValid(indicators.Last(atr)),
		SMA20:          ptrIfValid(indicators.Last(sma20)),
		SMA50:          ptrIfValid(indicators.Last(sma50)),
		SMA200:         ptrIfValid(indicators.Last(sma200)),
		Divergence:     analysis.RSIDivergence{Type: "none"},
		Support:        analysis.ClusterLevels(lows, 0.01),
		Resistance:     analysis.ClusterLevels(highs, 0.01),
		LiquidityGrade: analysis.GradeLiquidity(bars, e.cfg.LiquidityAGrade, e.cfg.LiquidityBGrade),
	}
	// External levels supplement the pivot-derived ones.
	tech.Support = append(tech.Support, opts.Levels.Support...)
	tech.Resistance = append(tech.Resistance, opts.Levels.Resistance...)

	e.guard("gaps", func() { tech.Gaps = e.gaps.Detect(bars, e.cfg.ScanCap) })
	e.guard("candles", func() { tech.Candles = e.candles.Detect(bars, e.cfg.ScanCap) })
	e.guard("ma_sweeps", func() {
		tech.MASweeps = patterns.DetectMASweeps(bars, []patterns.NamedMA{
			{Name: "sma20", Series: sma20},
			{Name: "sma50", Series: sma50},
		}, e.cfg.ScanCap)
	})
	e.guard("fvgs", func() { tech.FVGs = e.fvgs.Detect(bars, e.cfg.ScanCap) })
	e.guard("order_blocks", func() { tech.OrderBlocks = e.orderBlocks.Detect(bars, atr, e.cfg.ScanCap) })
	e.guard("liquidity", func() { tech.LiquiditySweeps = e.liquidity.Detect(bars) })
	e.guard("divergence", func() { tech.Divergence = e.divergence.Detect(rsi, lows, highs, len(bars)) })
	e.guard("fibonacci", func() {
		tech.Fibonacci = e.fib.Detect(trend, lows, highs, map[string]float64{
			"sma20":  indicators.Last(sma20),
			"sma50":  indicators.Last(sma50),
			"sma200": indicators.Last(sma200),
		}, tech.Support, tech.Resistance)
	})

	last := len(bars) - 1
	in := signals.Inputs{
		Spot:        bars[last].Close,
		RSI:         rsi[last],
		Divergence:  tech.Divergence,
		Crosses:     e.crosses(sma20, sma50, sma200, opts.Snapshot),
		Sweeps:      tech.LiquiditySweeps,
		Gaps:        tech.Gaps,
		Candles:     tech.Candles,
		MASweeps:    tech.MASweeps,
		FVGs:        tech.FVGs,
		OrderBlocks: tech.OrderBlocks,
		Fib:         tech.Fibonacci,
		Support:     tech.Support,
		Resistance:  tech.Resistance,
		LatestDate:  bars[last].Date,
	}

	var sigs []signals.Signal
	e.guard("synthesizer", func() { sigs = e.synth.Synthesize(in) })
	if sigs == nil {
		sigs = []signals.Signal{}
	}

	out := e.agg.Aggregate(outlook.Inputs{
		Close:         bars[last].Close,
		SMA50:         sma50[last],
		SMA200:        sma200[last],
		RSI:           rsi[last],
		ATR:           atr[last],
		Trend:         trend,
		Divergence:    tech.Divergence,
		RecentSweeps:  recentSweeps(tech.MASweeps, bars, e.cfg.SweepRecency),
		FibConfluence: len(tech.Fibonacci.Confluences) > 0,
		Grade:         tech.LiquidityGrade,
		NewsSentiment: model.NewsSentiment(opts.News, e.cfg.NewsBound),
		Support:       tech.Support,
		Resistance:    tech.Resistance,
	})

	return &Result{Signals: sigs, Outlook: out, Technicals: tech}, nil
}

// crosses builds the MA-cross inputs for the 20/50 and 50/200 pairs.
// An external snapshot takes precedence for the prior-period values;
// otherwise the prior index of the local series is used.
func (e *Engine) crosses(sma20, sma50, sma200 []float64, snap *IndicatorSnapshot) []signals.CrossInput {
	last := len(sma20) - 1
	if last < 1 {
		return nil
	}
	prev20, prev50, prev200 := sma20[last-1], sma50[last-1], sma200[last-1]
	if snap != nil {
		if indicators.Valid(snap.PrevSMA20) {
			prev20 = snap.PrevSMA20
		}
		if indicators.Valid(snap.PrevSMA50) {
			prev50 = snap.PrevSMA50
		}
		if indicators.Valid(snap.PrevSMA200) {
			prev200 = snap.PrevSMA200
		}
	}
	return []signals.CrossInput{
		{Name: "20_50", PrevFast: prev20, PrevSlow: prev50, Fast: sma20[last], Slow: sma50[last]},
		{Name: "50_200", PrevFast: prev50, PrevSlow: prev200, Fast: sma50[last], Slow: sma200[last]},
	}
}

// guard isolates one detector: a panic is recovered and logged so the
// remaining detectors still contribute.
func (e *Engine) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn().Str("detector", name).Interface("panic", r).
				Msg("detector failed; continuing without its output")
		}
	}()
	fn()
}

func ptrIfValid(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// recentSweeps keeps only sweeps dated within the last n bars; those
// are the ones that still weigh on the outlook bias.
func recentSweeps(sweeps []patterns.MASweep, bars []model.Bar, n int) []patterns.MASweep {
	start := len(bars) - n
	if start < 0 {
		start = 0
	}
	cutoff := bars[start].Date
	var out []patterns.MASweep
	for _, sw := range sweeps {
		if sw.Date >= cutoff {
			out = append(out, sw)
		}
	}
	return out
}

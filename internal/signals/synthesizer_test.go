package signals

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/colbywhitledge-web/trader-hub-v1/internal/analysis"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/patterns"
)

func newTestSynthesizer() *Synthesizer {
	return NewSynthesizer(35, 65, 45, 55, 1.0, 5, 12)
}

func hasType(sigs []Signal, sigType string) bool {
	for _, s := range sigs {
		if s.Type == sigType {
			return true
		}
	}
	return false
}

func TestMomentumBands(t *testing.T) {
	s := newTestSynthesizer()

	tests := []struct {
		rsi      float64
		wantType string
		wantSev  Severity
	}{
		{30, "oversold", SeverityMed},
		{70, "overbought", SeverityMed},
		{40, "weak_momentum", SeverityInfo},
		{60, "positive_momentum", SeverityInfo},
	}

	for _, tt := range tests {
		sigs := s.Synthesize(Inputs{RSI: tt.rsi})
		if len(sigs) != 1 {
			t.Fatalf("RSI %.0f: expected exactly one signal, got %d", tt.rsi, len(sigs))
		}
		if sigs[0].Type != tt.wantType || sigs[0].Severity != tt.wantSev {
			t.Errorf("RSI %.0f: expected %s/%s, got %s/%s",
				tt.rsi, tt.wantType, tt.wantSev, sigs[0].Type, sigs[0].Severity)
		}
	}

	// Mid-band and warm-up RSI stay silent.
	if sigs := s.Synthesize(Inputs{RSI: 50}); len(sigs) != 0 {
		t.Errorf("RSI 50 must not fire, got %+v", sigs)
	}
	if sigs := s.Synthesize(Inputs{RSI: math.NaN()}); len(sigs) != 0 {
		t.Errorf("undefined RSI must not fire, got %+v", sigs)
	}
}

func TestGoldenCross(t *testing.T) {
	s := newTestSynthesizer()

	sigs := s.Synthesize(Inputs{
		RSI: math.NaN(),
		Crosses: []CrossInput{
			{Name: "20_50", PrevFast: 49, PrevSlow: 50, Fast: 51, Slow: 50.5},
		},
	})

	if len(sigs) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(sigs))
	}
	if sigs[0].Type != "golden_cross_20_50" || sigs[0].Severity != SeverityMed {
		t.Errorf("expected med golden_cross_20_50, got %+v", sigs[0])
	}
}

func TestDeathCrossOfMajorsIsHigh(t *testing.T) {
	s := newTestSynthesizer()

	sigs := s.Synthesize(Inputs{
		RSI: math.NaN(),
		Crosses: []CrossInput{
			{Name: "50_200", PrevFast: 101, PrevSlow: 100, Fast: 99, Slow: 100},
			{Name: "20_50", PrevFast: 100, PrevSlow: 100, Fast: 100, Slow: 100}, // no cross
			{Name: "20_50", PrevFast: math.NaN(), PrevSlow: 50, Fast: 51, Slow: 50}, // undecidable
		},
	})

	if len(sigs) != 1 {
		t.Fatalf("expected 1 signal, got %d: %+v", len(sigs), sigs)
	}
	if sigs[0].Type != "death_cross_50_200" || sigs[0].Severity != SeverityHigh {
		t.Errorf("expected high death_cross_50_200, got %+v", sigs[0])
	}
}

func TestLevelProximity(t *testing.T) {
	s := newTestSynthesizer()

	sigs := s.Synthesize(Inputs{
		RSI:        math.NaN(),
		Spot:       100,
		Support:    []float64{99.5}, // 0.5% away
		Resistance: []float64{120},  // 20% away
	})

	if len(sigs) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(sigs))
	}
	// High sorts ahead of info.
	if sigs[0].Type != "near_support" || sigs[0].Severity != SeverityHigh {
		t.Errorf("expected high near_support first, got %+v", sigs[0])
	}
	if sigs[1].Type != "near_resistance" || sigs[1].Severity != SeverityInfo {
		t.Errorf("expected info near_resistance second, got %+v", sigs[1])
	}
}

func TestHighSeveritySurvivesTruncation(t *testing.T) {
	s := newTestSynthesizer()

	// Flood the generators with 15 distinct low-severity sweeps, then add
	// three high-severity signals generated after them.
	var maSweeps []patterns.MASweep
	for i := 0; i < 15; i++ {
		maSweeps = append(maSweeps, patterns.MASweep{
			Date:      fmt.Sprintf("2024-01-%02d", i+1),
			MAName:    "sma20",
			Direction: "bullish",
		})
	}

	sigs := s.Synthesize(Inputs{
		RSI:      math.NaN(),
		MASweeps: maSweeps,
		Sweeps: []analysis.LiquiditySweep{
			{Date: "2024-01-16", Type: "sweep_high", SwingPrice: 110},
			{Date: "2024-01-16", Type: "sweep_low", SwingPrice: 90},
		},
		Divergence: analysis.RSIDivergence{Type: "bullish", Strength: 3},
	})

	if len(sigs) != 12 {
		t.Fatalf("expected the cap of 12, got %d", len(sigs))
	}
	for _, want := range []string{"sweep_high", "sweep_low", "bullish_divergence"} {
		if !hasType(sigs, want) {
			t.Errorf("high-severity %s must survive truncation", want)
		}
	}
	for i := 0; i < 3; i++ {
		if sigs[i].Severity != SeverityHigh {
			t.Errorf("signal %d: expected high severity at the front, got %s", i, sigs[i].Severity)
		}
	}
}

func TestDivergenceSeverityTracksStrength(t *testing.T) {
	s := newTestSynthesizer()

	weak := s.Synthesize(Inputs{RSI: math.NaN(), Divergence: analysis.RSIDivergence{Type: "bearish", Strength: 2}})
	if len(weak) != 1 || weak[0].Severity != SeverityMed {
		t.Fatalf("strength 2 divergence should be med, got %+v", weak)
	}

	strong := s.Synthesize(Inputs{RSI: math.NaN(), Divergence: analysis.RSIDivergence{Type: "bearish", Strength: 3}})
	if len(strong) != 1 || strong[0].Severity != SeverityHigh {
		t.Fatalf("strength 3 divergence should be high, got %+v", strong)
	}
}

func TestDuplicateSignalsCollapse(t *testing.T) {
	s := newTestSynthesizer()

	sigs := s.Synthesize(Inputs{
		RSI: math.NaN(),
		MASweeps: []patterns.MASweep{
			{Date: "2024-01-02", MAName: "sma20", Direction: "bullish"},
			{Date: "2024-01-02", MAName: "sma20", Direction: "bullish"},
		},
	})

	if len(sigs) != 1 {
		t.Errorf("identical sweeps must collapse to one signal, got %d", len(sigs))
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	s := newTestSynthesizer()

	in := Inputs{
		RSI:        62,
		Spot:       100,
		Support:    []float64{98},
		Resistance: []float64{105},
		Divergence: analysis.RSIDivergence{Type: "bullish", Strength: 2},
		Gaps: []analysis.Gap{
			{Date: "2024-01-10", Direction: "up", ZoneLow: 95, ZoneHigh: 97, SizePct: 2.1, Status: analysis.GapUnfilled},
		},
	}

	first := s.Synthesize(in)
	second := s.Synthesize(in)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must yield identical signal lists")
	}
}

func TestFilledGapsAndTappedBlocksSkipped(t *testing.T) {
	s := newTestSynthesizer()

	sigs := s.Synthesize(Inputs{
		RSI: math.NaN(),
		Gaps: []analysis.Gap{
			{Date: "2024-01-10", Direction: "up", Status: analysis.GapFilled},
		},
		OrderBlocks: []analysis.OrderBlock{
			{CreationDate: "2024-01-11", Direction: "bullish", Tapped: true},
		},
		FVGs: []analysis.FVG{
			{CreationDate: "2024-01-12", Direction: "bullish", Rebalanced: true},
		},
	})

	if len(sigs) != 0 {
		t.Errorf("resolved zones must not signal, got %+v", sigs)
	}
}

func TestCandleSignalsOnlyForLatestBar(t *testing.T) {
	s := newTestSynthesizer()

	sigs := s.Synthesize(Inputs{
		RSI:        math.NaN(),
		LatestDate: "2024-01-05",
		Candles: []patterns.CandlePattern{
			{Date: "2024-01-03", Type: patterns.Hammer, Direction: "bullish"},
			{Date: "2024-01-05", Type: patterns.Doji, Direction: "neutral"},
		},
	})

	if len(sigs) != 1 {
		t.Fatalf("expected only the latest bar's tag, got %d", len(sigs))
	}
	if sigs[0].Type != string(patterns.Doji) || sigs[0].Severity != SeverityInfo {
		t.Errorf("expected info doji, got %+v", sigs[0])
	}
}

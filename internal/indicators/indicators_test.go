package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

func TestSMAWarmupAndValue(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = float64(i + 1) // 1..25
	}

	sma := SMA(values, 20)

	if len(sma) != len(values) {
		t.Fatalf("expected aligned series, got len %d", len(sma))
	}
	for i := 0; i < 19; i++ {
		if Valid(sma[i]) {
			t.Errorf("index %d should be undefined before warm-up, got %f", i, sma[i])
		}
	}

	// Mean of 1..20 is 10.5; mean of 6..25 is 15.5.
	if math.Abs(sma[19]-10.5) > 1e-9 {
		t.Errorf("expected sma[19]=10.5, got %f", sma[19])
	}
	if math.Abs(sma[24]-15.5) > 1e-9 {
		t.Errorf("expected sma[24]=15.5, got %f", sma[24])
	}
}

func TestSMADegenerateInputs(t *testing.T) {
	if got := SMA(nil, 20); len(got) != 0 {
		t.Errorf("empty input should yield empty series, got len %d", len(got))
	}
	for _, period := range []int{0, -3} {
		got := SMA([]float64{1, 2, 3}, period)
		if len(got) != 3 {
			t.Fatalf("period %d: expected matching length, got %d", period, len(got))
		}
		for i, v := range got {
			if Valid(v) {
				t.Errorf("period %d: index %d should be undefined", period, i)
			}
		}
	}
}

func flatBars(n int, close float64) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{
			Date:  dateFor(i),
			Open:  close,
			High:  close + 1,
			Low:   close - 1,
			Close: close,
		}
	}
	return bars
}

func dateFor(i int) string {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02")
}

func TestATRWilderWarmupAndSeed(t *testing.T) {
	bars := flatBars(20, 100) // constant TR of 2

	atr := ATRWilder(bars, 14)

	for i := 0; i < 14; i++ {
		if Valid(atr[i]) {
			t.Errorf("index %d should be undefined before warm-up", i)
		}
	}
	// Seed is the simple average of the first 14 TRs, all 2.0, and the
	// Wilder recursion keeps a constant input constant.
	for i := 14; i < len(bars); i++ {
		if math.Abs(atr[i]-2.0) > 1e-9 {
			t.Errorf("expected atr[%d]=2.0, got %f", i, atr[i])
		}
	}
}

func TestATRWilderInsufficientBars(t *testing.T) {
	atr := ATRWilder(flatBars(14, 100), 14) // needs period+1
	for i, v := range atr {
		if Valid(v) {
			t.Errorf("index %d should be undefined with only 14 bars", i)
		}
	}
}

func TestATRWilderRecursion(t *testing.T) {
	bars := flatBars(16, 100)
	// Spike the final bar so TR jumps from 2 to 10.
	bars[15].High = 105
	bars[15].Low = 95

	atr := ATRWilder(bars, 14)

	// next = (2*13 + 10) / 14
	want := (2.0*13 + 10.0) / 14
	if math.Abs(atr[15]-want) > 1e-9 {
		t.Errorf("expected atr[15]=%f, got %f", want, atr[15])
	}
}

func TestRSIWilderBoundsAndWarmup(t *testing.T) {
	closes := []float64{44, 44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10,
		45.42, 45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03,
		46.41, 46.22, 45.64, 46.21, 46.25, 45.71, 46.45}

	rsi := RSIWilder(closes, 14)

	for i := 0; i < 14; i++ {
		if Valid(rsi[i]) {
			t.Errorf("index %d should be undefined before warm-up", i)
		}
	}
	for i := 14; i < len(closes); i++ {
		if !Valid(rsi[i]) {
			t.Fatalf("index %d should be defined", i)
		}
		if rsi[i] < 0 || rsi[i] > 100 {
			t.Errorf("rsi[%d]=%f outside [0,100]", i, rsi[i])
		}
	}
}

func TestRSIWilderSaturatesAt100(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i) // monotonically rising, zero losses
	}

	rsi := RSIWilder(closes, 14)

	for i := 14; i < len(closes); i++ {
		if rsi[i] != 100 {
			t.Errorf("expected rsi[%d]=100 with zero cumulative loss, got %f", i, rsi[i])
		}
	}
}

func TestLast(t *testing.T) {
	series := []float64{math.NaN(), 5, math.NaN()}
	if got := Last(series); got != 5 {
		t.Errorf("expected last defined value 5, got %f", got)
	}
	if Valid(Last([]float64{math.NaN()})) {
		t.Error("all-NaN series should yield NaN")
	}
}

package patterns

import (
	"math"
	"testing"

	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

func TestDetectMASweeps(t *testing.T) {
	bars := []model.Bar{
		{Date: "2024-01-02", Open: 101, High: 103, Low: 98, Close: 102},  // low < 100 < close
		{Date: "2024-01-03", Open: 101, High: 104, Low: 100.5, Close: 99}, // high > 100 > close... close below MA
		{Date: "2024-01-04", Open: 100.5, High: 101, Low: 100.2, Close: 100.8}, // holds above the MA
	}
	ma := []float64{100, 100, 100}

	sweeps := DetectMASweeps(bars, []NamedMA{{Name: "sma20", Series: ma}}, 0)

	if len(sweeps) != 2 {
		t.Fatalf("expected 2 sweeps, got %d: %+v", len(sweeps), sweeps)
	}
	if sweeps[0].Direction != "bullish" || sweeps[0].Date != "2024-01-02" {
		t.Errorf("expected bullish sweep on first bar, got %+v", sweeps[0])
	}
	if sweeps[1].Direction != "bearish" || sweeps[1].Date != "2024-01-03" {
		t.Errorf("expected bearish sweep on second bar, got %+v", sweeps[1])
	}
}

func TestDetectMASweepsSkipsUndefinedMA(t *testing.T) {
	bars := []model.Bar{
		{Date: "2024-01-02", Open: 101, High: 103, Low: 98, Close: 102},
	}
	ma := []float64{math.NaN()}

	if sweeps := DetectMASweeps(bars, []NamedMA{{Name: "sma20", Series: ma}}, 0); len(sweeps) != 0 {
		t.Errorf("undefined MA values must not produce sweeps, got %+v", sweeps)
	}
}

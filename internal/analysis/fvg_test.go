package analysis

import (
	"testing"

	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

func TestDetectBullishFVG(t *testing.T) {
	fd := NewFVGDetector(0.1, 40)

	bars := []model.Bar{
		{Date: "2024-01-02", Open: 95, High: 100, Low: 94, Close: 98},
		{Date: "2024-01-03", Open: 98, High: 105, Low: 97, Close: 104},
		{Date: "2024-01-04", Open: 104, High: 108, Low: 101, Close: 106},
	}

	fvgs := fd.Detect(bars, 0)

	if len(fvgs) != 1 {
		t.Fatalf("expected 1 FVG, got %d", len(fvgs))
	}
	f := fvgs[0]
	if f.Direction != "bullish" {
		t.Errorf("expected bullish, got %s", f.Direction)
	}
	if f.ZoneLow != 100 || f.ZoneHigh != 101 {
		t.Errorf("expected zone 100-101, got %f-%f", f.ZoneLow, f.ZoneHigh)
	}
	if f.CreationDate != "2024-01-03" {
		t.Errorf("expected creation on the middle bar, got %s", f.CreationDate)
	}
	if f.Rebalanced {
		t.Error("no later bar exists; zone cannot be rebalanced")
	}
}

func TestDetectBearishFVG(t *testing.T) {
	fd := NewFVGDetector(0.1, 40)

	bars := []model.Bar{
		{Date: "2024-01-02", Open: 105, High: 106, Low: 100, Close: 102},
		{Date: "2024-01-03", Open: 102, High: 103, Low: 95, Close: 96},
		{Date: "2024-01-04", Open: 96, High: 99, Low: 92, Close: 94},
	}

	fvgs := fd.Detect(bars, 0)

	if len(fvgs) != 1 {
		t.Fatalf("expected 1 FVG, got %d", len(fvgs))
	}
	f := fvgs[0]
	if f.Direction != "bearish" || f.ZoneLow != 99 || f.ZoneHigh != 100 {
		t.Errorf("unexpected FVG: %+v", f)
	}
}

func TestNoFVGWhenRangesOverlap(t *testing.T) {
	fd := NewFVGDetector(0.1, 40)

	bars := []model.Bar{
		{Date: "2024-01-02", Open: 95, High: 100, Low: 94, Close: 98},
		{Date: "2024-01-03", Open: 98, High: 102, Low: 97, Close: 100},
		{Date: "2024-01-04", Open: 100, High: 104, Low: 99, Close: 102},
	}

	if fvgs := fd.Detect(bars, 0); len(fvgs) != 0 {
		t.Errorf("expected no FVGs for overlapping ranges, got %d", len(fvgs))
	}
}

func TestFVGRebalancedByLaterBar(t *testing.T) {
	fd := NewFVGDetector(0.1, 40)

	bars := []model.Bar{
		{Date: "2024-01-02", Open: 95, High: 100, Low: 94, Close: 98},
		{Date: "2024-01-03", Open: 98, High: 105, Low: 97, Close: 104},
		{Date: "2024-01-04", Open: 104, High: 108, Low: 101, Close: 106},
		{Date: "2024-01-05", Open: 106, High: 107, Low: 100.5, Close: 103}, // wicks into 100-101
	}

	fvgs := fd.Detect(bars, 0)

	if len(fvgs) != 1 || !fvgs[0].Rebalanced {
		t.Fatalf("expected rebalanced FVG, got %+v", fvgs)
	}
}

func TestFVGMinimumGapFilter(t *testing.T) {
	fd := NewFVGDetector(5.0, 40) // 5% floor

	bars := []model.Bar{
		{Date: "2024-01-02", Open: 100, High: 100.5, Low: 99.5, Close: 100},
		{Date: "2024-01-03", Open: 100, High: 102, Low: 99, Close: 101},
		{Date: "2024-01-04", Open: 101, High: 102, Low: 100.6, Close: 101.5},
	}

	if fvgs := fd.Detect(bars, 0); len(fvgs) != 0 {
		t.Errorf("expected sub-threshold gap to be filtered, got %d", len(fvgs))
	}
}

func BenchmarkDetectFVGs(b *testing.B) {
	fd := NewFVGDetector(0.1, 40)

	bars := make([]model.Bar, 1000)
	for i := range bars {
		bars[i] = model.Bar{
			Date:  "2024-01-02",
			Open:  float64(100 + i),
			High:  float64(105 + i),
			Low:   float64(95 + i),
			Close: float64(102 + i),
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fd.Detect(bars, 0)
	}
}

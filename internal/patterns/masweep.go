package patterns

import (
	"github.com/colbywhitledge-web/trader-hub-v1/internal/indicators"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

// MASweep marks a bar that pierced a moving-average level intrabar but
// closed back on the other side of it.
type MASweep struct {
	Date      string `json:"date"`
	MAName    string `json:"ma_name"`
	Direction string `json:"direction"` // "bullish" or "bearish"
}

// NamedMA pairs a label with its aligned series.
type NamedMA struct {
	Name   string
	Series []float64
}

// DetectMASweeps scans each bar against each supplied MA series. A
// bullish sweep is low < MA < close; a bearish sweep is high > MA >
// close. Results are bar-ordered (most-recent-last) and capped from
// the end.
func DetectMASweeps(bars []model.Bar, mas []NamedMA, cap int) []MASweep {
	var out []MASweep
	for i, b := range bars {
		for _, ma := range mas {
			if i >= len(ma.Series) || !indicators.Valid(ma.Series[i]) {
				continue
			}
			v := ma.Series[i]
			if b.Low < v && v < b.Close {
				out = append(out, MASweep{Date: b.Date, MAName: ma.Name, Direction: "bullish"})
			} else if b.High > v && v > b.Close {
				out = append(out, MASweep{Date: b.Date, MAName: ma.Name, Direction: "bearish"})
			}
		}
	}
	if cap > 0 && len(out) > cap {
		out = out[len(out)-cap:]
	}
	return out
}

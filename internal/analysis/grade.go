package analysis

import (
	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

// LiquidityGrade rates how tradeable the instrument's tape is. Grade C
// names penalize outlook bias and confidence.
type LiquidityGrade string

const (
	GradeA LiquidityGrade = "A"
	GradeB LiquidityGrade = "B"
	GradeC LiquidityGrade = "C"
)

// GradeLiquidity grades by average daily turnover (close x volume) over
// the recent window, demoting one notch when more than a fifth of the
// bars printed no volume.
func GradeLiquidity(bars []model.Bar, aThreshold, bThreshold float64) LiquidityGrade {
	if len(bars) == 0 {
		return GradeC
	}
	window := bars
	if len(window) > 30 {
		window = window[len(window)-30:]
	}

	turnover := 0.0
	zeroVol := 0
	for _, b := range window {
		turnover += b.Close * b.Volume
		if b.Volume == 0 {
			zeroVol++
		}
	}
	avg := turnover / float64(len(window))

	grade := GradeC
	if avg >= aThreshold {
		grade = GradeA
	} else if avg >= bThreshold {
		grade = GradeB
	}

	if zeroVol*5 > len(window) {
		switch grade {
		case GradeA:
			grade = GradeB
		case GradeB:
			grade = GradeC
		}
	}
	return grade
}

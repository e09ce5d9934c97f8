package model

// NewsItem is a headline record supplied by the feed collaborator. Only
// the numeric score and tags participate in analysis, as a bounded nudge
// to the outlook bias.
type NewsItem struct {
	Date  string   `json:"date"`
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
	Score float64  `json:"score"`
}

// NewsSentiment sums item scores and clamps the result so headlines can
// tilt the bias but never dominate it.
func NewsSentiment(items []NewsItem, bound float64) float64 {
	total := 0.0
	for _, it := range items {
		if !finite(it.Score) {
			continue
		}
		total += it.Score
	}
	if total > bound {
		return bound
	}
	if total < -bound {
		return -bound
	}
	return total
}

// Package scoring holds the pure functions that turn sub-scores into an
// overall score, a priority bucket, and a trend classification.
package scoring

import (
	"math"

	"ideascout/internal/model"
)

// NormalizeWeights divides each weight by the sum so callers may configure
// weights that do not pre-sum to 1. All-zero (or negative-sum) weights fall
// back to equal weighting.
func NormalizeWeights(w model.ScoreWeights) model.ScoreWeights {
	sum := w.Virality + w.Relevance + w.Competition + w.Timeliness
	if sum <= 0 {
		return model.ScoreWeights{Virality: 0.25, Relevance: 0.25, Competition: 0.25, Timeliness: 0.25}
	}
	return model.ScoreWeights{
		Virality:    w.Virality / sum,
		Relevance:   w.Relevance / sum,
		Competition: w.Competition / sum,
		Timeliness:  w.Timeliness / sum,
	}
}

// Overall computes the weighted sum of the four sub-scores using normalized
// weights, rounded to two decimals and clamped to [0,100].
func Overall(sub model.SubScores, w model.ScoreWeights) float64 {
	nw := NormalizeWeights(w)
	score := sub.Virality*nw.Virality +
		sub.Relevance*nw.Relevance +
		sub.Competition*nw.Competition +
		sub.Timeliness*nw.Timeliness
	score = math.Round(score*100) / 100
	return Clamp(score, 0, 100)
}

// Priority buckets an overall score. Thresholds are inclusive on the lower
// bound: >=80 urgent, >=65 high, >=50 medium, else low.
func Priority(score float64) model.Priority {
	switch {
	case score >= 80:
		return model.PriorityUrgent
	case score >= 65:
		return model.PriorityHigh
	case score >= 50:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// Trend directions.
type Trend string

const (
	TrendRising    Trend = "rising"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// TrendDirection compares the mean of the last three samples against the mean
// of the first three: a >20% increase is rising, a >20% decrease declining.
// Fewer than two samples is stable by definition.
func TrendDirection(series []float64) Trend {
	if len(series) < 2 {
		return TrendStable
	}
	head := mean(series[:minInt(3, len(series))])
	tail := mean(series[maxInt(0, len(series)-3):])
	if head == 0 {
		if tail > 0 {
			return TrendRising
		}
		return TrendStable
	}
	change := (tail - head) / head
	switch {
	case change > 0.2:
		return TrendRising
	case change < -0.2:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Package scoring provides the deterministic rubric scoring engine: score
// normalization, the suggestion impact factor, per-section adjustment, and
// weighted aggregation. No LLM calls are made here and nothing here holds
// state, so every function is safe for concurrent use.
package scoring

import (
	"math"

	"github.com/dshills/cfrscore/internal/schema"
)

// Rubric score bounds.
const (
	MinScore = 60
	MaxScore = 100
)

// Rating thresholds, checked in descending order.
const (
	thresholdExcellent = 100
	thresholdVeryGood  = 90
	thresholdGood      = 80
	thresholdFair      = 70
)

// Clamp bounds v to [MinScore, MaxScore]. NaN clamps to MinScore.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// round rounds half to even, matching how the reference scores were produced.
func round(v float64) int {
	return int(math.RoundToEven(v))
}

// Normalize returns the rubric score for a raw assessment. A missing record
// or missing score is scored at the floor; out-of-range scores are clamped.
// Normalize never fails.
func Normalize(a *schema.SectionAssessment) int {
	if a == nil || a.Score == nil {
		return MinScore
	}
	return round(Clamp(*a.Score))
}

// Label maps an integer score to its rating.
func Label(score int) schema.Rating {
	return LabelFloat(float64(score))
}

// LabelFloat maps a fractional score to its rating using the same thresholds
// as Label.
func LabelFloat(score float64) schema.Rating {
	switch {
	case score >= thresholdExcellent:
		return schema.RatingExcellent
	case score >= thresholdVeryGood:
		return schema.RatingVeryGood
	case score >= thresholdGood:
		return schema.RatingGood
	case score >= thresholdFair:
		return schema.RatingFair
	default:
		return schema.RatingPoor
	}
}

// RatingOrdinal orders ratings from worst (0) to best (4); unknown ratings
// return -1. Used by --fail-below comparisons.
func RatingOrdinal(r schema.Rating) int {
	switch r {
	case schema.RatingPoor:
		return 0
	case schema.RatingFair:
		return 1
	case schema.RatingGood:
		return 2
	case schema.RatingVeryGood:
		return 3
	case schema.RatingExcellent:
		return 4
	default:
		return -1
	}
}

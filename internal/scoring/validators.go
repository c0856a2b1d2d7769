package scoring

import "strings"

// ValidateObjectivesCount scores the number of stated objectives. The ideal
// is eight to ten; tighter bands are checked first.
func ValidateObjectivesCount(n int) int {
	switch {
	case n >= 8 && n <= 10:
		return 100
	case n >= 7 && n <= 11:
		return 90
	case n >= 5 && n <= 13:
		return 80
	case n >= 4 && n <= 14:
		return 70
	default:
		return 60
	}
}

var outcomeRatings = map[string]int{
	"outcome":         100,
	"external_output": 90,
	"internal_output": 80,
	"process":         70,
	"input":           60,
}

// OutcomeKinds lists the recognised success-indicator measurement kinds, best first.
func OutcomeKinds() []string {
	return []string{"outcome", "external_output", "internal_output", "process", "input"}
}

// ValidateOutcomeOrientation scores how outcome-oriented a success indicator
// is. Matching is case-insensitive; unknown kinds score 60.
func ValidateOutcomeOrientation(kind string) int {
	if v, ok := outcomeRatings[strings.ToLower(kind)]; ok {
		return v
	}
	return MinScore
}

// ValidateTrendValues scores how completely a trend series is populated:
// the populated percentage, clamped to the rubric range. Empty input scores 60.
func ValidateTrendValues(points []*float64) float64 {
	if len(points) == 0 {
		return MinScore
	}
	populated := 0
	for _, p := range points {
		if p != nil {
			populated++
		}
	}
	return Clamp(float64(populated) / float64(len(points)) * 100)
}

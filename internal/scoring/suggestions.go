package scoring

import (
	"math"
	"strings"

	"github.com/dshills/cfrscore/internal/schema"
)

// Suggestion impact constants. The heuristic is arbitrary but must be
// reproduced exactly.
const (
	maxPenalty     = 0.2
	detailWeight   = 0.4
	quantityWeight = 0.6
	minFactor      = 1.0 - maxPenalty
	wordsPerPoint  = 100.0
	countPerPoint  = 10.0
)

// SuggestionStats holds the intermediate values of the impact computation.
type SuggestionStats struct {
	Entries        int
	NonBlank       int
	TotalWords     int
	AvgWords       float64
	DetailFactor   float64
	QuantityFactor float64
	Factor         float64
}

// AnalyzeSuggestions reduces a suggestion list to a multiplicative penalty in
// [0.8, 1.0]. More numerous and more detailed suggestions lower the factor.
func AnalyzeSuggestions(suggestions []schema.Suggestion) float64 {
	return SuggestionImpact(suggestions).Factor
}

// SuggestionImpact computes the suggestion impact factor along with the
// statistics it was derived from. An empty list yields a factor of exactly 1.0.
func SuggestionImpact(suggestions []schema.Suggestion) SuggestionStats {
	st := SuggestionStats{Entries: len(suggestions), Factor: 1.0}
	if len(suggestions) == 0 {
		return st
	}

	for _, s := range suggestions {
		text, ok := s.Text()
		if !ok {
			continue
		}
		if strings.TrimSpace(text) != "" {
			st.NonBlank++
		}
		st.TotalWords += len(strings.Fields(text))
	}

	st.AvgWords = float64(st.TotalWords) / float64(max(1, st.NonBlank))
	st.DetailFactor = 1.0 - math.Min(maxPenalty, st.AvgWords/wordsPerPoint)
	st.QuantityFactor = 1.0 - math.Min(maxPenalty, float64(st.NonBlank)/countPerPoint)

	combined := detailWeight*st.DetailFactor + quantityWeight*st.QuantityFactor
	st.Factor = math.Max(minFactor, math.Min(1.0, combined))
	return st
}

// Package schema defines all canonical data types for the cfrscore evaluation format.
package schema

import "strings"

// Rating is the qualitative label attached to a rubric score.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingVeryGood  Rating = "Very Good"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
)

// Ratings returns every rating from best to worst.
func Ratings() []Rating {
	return []Rating{RatingExcellent, RatingVeryGood, RatingGood, RatingFair, RatingPoor}
}

// ParseRating matches s case-insensitively against the rating labels.
// Underscores and hyphens are accepted in place of spaces ("very_good").
func ParseRating(s string) (Rating, bool) {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s))
	for _, r := range Ratings() {
		if strings.EqualFold(string(r), norm) {
			return r, true
		}
	}
	return "", false
}

// SectionAssessment is one rubric section's raw input as supplied by the
// generator. A nil Score means the record carried no score.
type SectionAssessment struct {
	Score         *float64 `json:"score,omitempty"`
	Justification string   `json:"justification,omitempty"`
}

// NewAssessment is a convenience constructor for a scored assessment.
func NewAssessment(score float64, justification string) *SectionAssessment {
	return &SectionAssessment{Score: &score, Justification: justification}
}

// AdjustedSection is a section score after the suggestion penalty has been
// applied. Entries passed through without a score have an empty Rating.
type AdjustedSection struct {
	Score         int    `json:"score"`
	Rating        Rating `json:"rating"`
	Justification string `json:"justification"`
}

// Scored reports whether a score was derived for the section.
func (a *AdjustedSection) Scored() bool {
	return a != nil && a.Rating != ""
}

// Report is the final evaluation of one document.
type Report struct {
	OverallScore           int                          `json:"overall_score"`
	OverallRating          Rating                       `json:"overall_rating"`
	SuggestionImpactFactor float64                      `json:"suggestion_impact_factor"`
	SectionScores          map[Section]*AdjustedSection `json:"section_scores"`
	OriginalScores         map[Section]int              `json:"original_scores,omitempty"`
}

// Fallback justification text. A report whose every section carries it is a
// canned report, not a genuine assessment.
const FallbackJustification = "Automatic evaluation"

// IsFallback reports whether r carries the canned fallback signal: an impact
// factor of 1.0, an overall rating of Fair, and the automatic justification on
// every section.
func (r *Report) IsFallback() bool {
	if r == nil || r.SuggestionImpactFactor != 1.0 || r.OverallRating != RatingFair {
		return false
	}
	if len(r.SectionScores) == 0 {
		return false
	}
	for _, s := range r.SectionScores {
		if s == nil || s.Justification != FallbackJustification {
			return false
		}
	}
	return true
}

// Result is the document-level output: the generator's descriptive fields
// plus the evaluation report.
type Result struct {
	Document    string   `json:"document,omitempty"`
	Heading     string   `json:"heading,omitempty"`
	Summary     []string `json:"summary,omitempty"`
	Suggestions []string `json:"enhancement_suggestions"`
	Evaluation  Report   `json:"evaluation"`
	Meta        Meta     `json:"meta"`
}

// Meta records how the result was produced.
type Meta struct {
	Tool        string  `json:"tool"`
	Version     string  `json:"version"`
	Profile     string  `json:"profile,omitempty"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	Source      string  `json:"source,omitempty"`
	DocHash     string  `json:"doc_hash,omitempty"`
}

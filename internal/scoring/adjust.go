package scoring

import "github.com/dshills/cfrscore/internal/schema"

// DefaultJustification is carried when an assessment has no justification.
const DefaultJustification = "No justification provided"

// Adjust applies factor to every scored section. Sections are independent.
//
// A nil record is passed through as a nil entry and a record without a score
// is passed through unscored (Rating empty) with its justification; neither
// gets a synthesized score.
func Adjust(sections map[schema.Section]*schema.SectionAssessment, factor float64) map[schema.Section]*schema.AdjustedSection {
	out := make(map[schema.Section]*schema.AdjustedSection, len(sections))
	for sec, a := range sections {
		switch {
		case a == nil:
			out[sec] = nil
		case a.Score == nil:
			out[sec] = &schema.AdjustedSection{Justification: a.Justification}
		default:
			score := round(Clamp(*a.Score * factor))
			just := a.Justification
			if just == "" {
				just = DefaultJustification
			}
			out[sec] = &schema.AdjustedSection{
				Score:         score,
				Rating:        Label(score),
				Justification: just,
			}
		}
	}
	return out
}

// Package assessment turns the generator's free-form answers into raw rubric
// assessments and suggestion lists. Parsing never fails: an unusable answer
// degrades to default assessments.
package assessment

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dshills/cfrscore/internal/schema"
)

// Source records which parsing strategy produced the sections.
type Source string

const (
	SourceDirect    Source = "direct"    // the answer was JSON
	SourceExtracted Source = "extracted" // a JSON object was found inside the answer
	SourceDefault   Source = "default"   // nothing parsed; every section defaulted
)

// Default section values used when an answer cannot be parsed at all.
const (
	DefaultScore         = 70
	DefaultJustification = "Default evaluation"
)

// Defaults returns every rubric section at the default score.
func Defaults() map[schema.Section]*schema.SectionAssessment {
	out := make(map[schema.Section]*schema.SectionAssessment, len(schema.Sections()))
	for _, sec := range schema.Sections() {
		out[sec] = schema.NewAssessment(DefaultScore, DefaultJustification)
	}
	return out
}

// objectRe greedily captures from the first '{' to the last '}'.
var objectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ParseSections parses an evaluation answer of the form
// {"sections": {"vision": {"score": 85, "justification": "..."}, ...}}.
//
// Strategies, in order: the whole answer (markdown fences stripped) as JSON;
// the outermost {...} block found inside it; every section at the default
// score. A parsed object without a "sections" key is accepted when its own
// keys are section names.
func ParseSections(raw string) (map[schema.Section]*schema.SectionAssessment, Source) {
	text := stripMarkdownFences(raw)
	if doc, ok := decodeObject(text); ok {
		return sectionsOf(doc), SourceDirect
	}
	if m := objectRe.FindString(text); m != "" {
		if doc, ok := decodeObject(m); ok {
			return sectionsOf(doc), SourceExtracted
		}
	}
	return Defaults(), SourceDefault
}

// decodeObject unmarshals s into a JSON object, retrying once after escaping
// stray backslashes.
func decodeObject(s string) (map[string]any, bool) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(s), &doc); err == nil && doc != nil {
		return doc, true
	}
	fixed := fixInvalidJSONEscapes(s)
	if fixed == s {
		return nil, false
	}
	doc = nil
	if err := json.Unmarshal([]byte(fixed), &doc); err == nil && doc != nil {
		return doc, true
	}
	return nil, false
}

func sectionsOf(doc map[string]any) map[schema.Section]*schema.SectionAssessment {
	if raw, ok := doc["sections"]; ok {
		m, _ := raw.(map[string]any)
		return DecodeSections(m)
	}
	return DecodeSections(doc)
}

// fenceRe matches a whole answer wrapped in a ``` or ~~~ fence.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// openFenceRe matches an opening fence line on its own, as left by a
// truncated answer.
var openFenceRe = regexp.MustCompile("^(?:`{3}|~{3})[^\\n]*\\n")

func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if loc := openFenceRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// invalidJSONEscapeRe matches a backslash followed by a character that cannot
// start a JSON escape sequence.
var invalidJSONEscapeRe = regexp.MustCompile(`\\([^"\\/bfnrtu])`)

func fixInvalidJSONEscapes(s string) string {
	return invalidJSONEscapeRe.ReplaceAllString(s, `\\$1`)
}

// SplitSuggestions splits a block of suggestion text into lines. Blank lines
// are kept so the list can be displayed as generated.
func SplitSuggestions(text string) []string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

// SplitSummary splits a summary answer into its non-blank lines.
func SplitSummary(text string) []string {
	var out []string
	for _, l := range strings.Split(strings.TrimSpace(text), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

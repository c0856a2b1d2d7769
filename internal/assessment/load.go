package assessment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/cfrscore/internal/schema"
)

// Input is an offline assessment: the material a generator would otherwise
// supply, read from a JSON or YAML file.
type Input struct {
	Heading     string
	Summary     []string
	Sections    map[schema.Section]*schema.SectionAssessment
	Suggestions []schema.Suggestion
	Source      Source
}

// LoadFile reads an assessment file. Recognised keys:
//
//	heading:     string
//	summary:     string or list of strings
//	sections:    map of section name to {score, justification}
//	response:    raw evaluation answer, parsed with ParseSections when
//	             sections is absent
//	suggestions: list (non-string entries are ignorable) or a text block
//	             split on line breaks
//
// The format is chosen by extension (.json, .yaml, .yml); anything else is
// tried as JSON and then as YAML.
func LoadFile(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assessment: read %s: %w", path, err)
	}
	doc, err := decodeDocument(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("assessment: parse %s: %w", path, err)
	}
	return fromDocument(doc), nil
}

func decodeDocument(data []byte, ext string) (map[string]any, error) {
	var doc map[string]any
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			doc = nil
			if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
				return nil, fmt.Errorf("neither JSON (%v) nor YAML (%v)", err, yerr)
			}
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("document is empty or not an object")
	}
	return doc, nil
}

func fromDocument(doc map[string]any) *Input {
	in := &Input{Source: SourceDirect}
	in.Heading, _ = doc["heading"].(string)

	switch s := doc["summary"].(type) {
	case string:
		in.Summary = SplitSummary(s)
	case []any:
		for _, v := range s {
			if str, ok := v.(string); ok {
				in.Summary = append(in.Summary, str)
			}
		}
	}

	if m, ok := doc["sections"].(map[string]any); ok {
		in.Sections = DecodeSections(m)
	} else if resp, ok := doc["response"].(string); ok {
		in.Sections, in.Source = ParseSections(resp)
	} else {
		in.Sections = map[schema.Section]*schema.SectionAssessment{}
	}

	switch s := doc["suggestions"].(type) {
	case []any:
		in.Suggestions = schema.SuggestionsFromAny(s)
	case string:
		in.Suggestions = schema.SuggestionsFromStrings(SplitSuggestions(s))
	}
	return in
}

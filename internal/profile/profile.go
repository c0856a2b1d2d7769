// Package profile defines evaluation profiles that modulate LLM prompt
// construction. Each profile names how the document is described to the model
// and provides a SystemPromptAddendum appended to the system prompt.
package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Default is the profile used when none is configured.
const Default = "cfr"

// Profile describes an evaluation framing.
type Profile struct {
	Name        string
	Description string
	// Subject is how prompts refer to the document ("this <Subject>").
	Subject              string
	SystemPromptAddendum string
}

// builtins is the registry of built-in profiles keyed by name.
var builtins = map[string]Profile{
	"cfr": {
		Name:        "cfr",
		Description: "Default profile; evaluates a departmental Commitment for Results document.",
		Subject:     "Commitment for Results (CFR) document",
		SystemPromptAddendum: "The document is a departmental Commitment for Results. Judge each " +
			"section on what the document states, not on what the department is likely to do. " +
			"When a section is only partially present, score what is there and say what is missing " +
			"in the justification.",
	},
	"manifesto": {
		Name:        "manifesto",
		Description: "Evaluates an Indian government manifesto against the CFR framework.",
		Subject:     "Indian government manifesto",
		SystemPromptAddendum: "The document is a government manifesto, not a formal results " +
			"framework. Map its commitments onto the CFR sections as closely as the text allows. " +
			"Ground suggestions in the Indian governance context and in public welfare.",
	},
	"strict": {
		Name:        "strict",
		Description: "Strict profile; any section without explicit evidence is scored at the floor.",
		Subject:     "Commitment for Results (CFR) document",
		SystemPromptAddendum: "Score strictly. A section that the document does not explicitly " +
			"contain must receive a score of 60. Do not infer weights, trend values or " +
			"success indicators that are not written down. Quote the document in every " +
			"justification.",
	},
}

// Names returns the built-in profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load returns the named built-in profile or an error if the name is unknown.
// An empty name selects Default.
func Load(name string) (Profile, error) {
	if name == "" {
		name = Default
	}
	p, ok := builtins[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile: unknown profile %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

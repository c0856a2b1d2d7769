package schema

// Suggestion is one entry of a suggestion list. An entry either carries text
// or is ignorable (a malformed, non-text value). Ignorable entries are kept
// for display but contribute nothing to suggestion statistics.
type Suggestion struct {
	text      string
	ignorable bool
}

// TextSuggestion wraps s. Blank text is still a text suggestion.
func TextSuggestion(s string) Suggestion {
	return Suggestion{text: s}
}

// IgnorableSuggestion returns an entry that carries no text.
func IgnorableSuggestion() Suggestion {
	return Suggestion{ignorable: true}
}

// Text returns the entry text and whether the entry carries text.
func (s Suggestion) Text() (string, bool) {
	return s.text, !s.ignorable
}

// String renders the entry for display.
func (s Suggestion) String() string {
	if s.ignorable {
		return ""
	}
	return s.text
}

// SuggestionsFromStrings converts plain strings, preserving order.
func SuggestionsFromStrings(in []string) []Suggestion {
	out := make([]Suggestion, len(in))
	for i, s := range in {
		out[i] = TextSuggestion(s)
	}
	return out
}

// SuggestionsFromAny converts loosely-typed values, as decoded from JSON or
// YAML. Strings become text entries; everything else is ignorable.
func SuggestionsFromAny(in []any) []Suggestion {
	out := make([]Suggestion, len(in))
	for i, v := range in {
		switch t := v.(type) {
		case string:
			out[i] = TextSuggestion(t)
		default:
			out[i] = IgnorableSuggestion()
		}
	}
	return out
}

// SuggestionStrings returns the display text of every entry, preserving order.
func SuggestionStrings(in []Suggestion) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.String()
	}
	return out
}

package llm

import (
	"strings"
	"testing"

	"github.com/dshills/cfrscore/internal/profile"
	"github.com/dshills/cfrscore/internal/schema"
)

func TestEvaluationQuestion_ListsEverySection(t *testing.T) {
	prof, _ := profile.Load("cfr")
	q := evaluationQuestion(prof)
	for _, sec := range schema.Sections() {
		if !strings.Contains(q, `"`+string(sec)+`"`) {
			t.Errorf("evaluation question missing section key %q", sec)
		}
	}
	for _, want := range []string{"Inter se priorities (Section 2, 40%)", "Trend values (Section 3, 15%)", "from 60 to 100"} {
		if !strings.Contains(q, want) {
			t.Errorf("evaluation question missing %q", want)
		}
	}
}

func TestPrompts_UseProfileSubject(t *testing.T) {
	prof, _ := profile.Load("manifesto")
	for name, q := range map[string]string{
		"heading":     headingQuestion(prof),
		"summary":     summaryQuestion(prof),
		"suggestions": suggestionsQuestion(prof),
		"evaluation":  evaluationQuestion(prof),
	} {
		if !strings.Contains(q, "Indian government manifesto") {
			t.Errorf("%s question does not name the profile subject", name)
		}
	}
}

func TestBuildSystemPrompt_Addendum(t *testing.T) {
	prof, _ := profile.Load("strict")
	sys := buildSystemPrompt(prof)
	if !strings.Contains(sys, prof.SystemPromptAddendum) {
		t.Error("system prompt missing profile addendum")
	}
}

func TestBuildRepairPrompt(t *testing.T) {
	got := buildRepairPrompt("ORIGINAL", "garbled answer")
	if !strings.HasPrefix(got, "ORIGINAL") || !strings.Contains(got, "garbled answer") {
		t.Errorf("repair prompt lacks context:\n%s", got)
	}
}

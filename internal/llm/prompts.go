package llm

import (
	"fmt"
	"strings"

	"github.com/dshills/cfrscore/internal/profile"
	"github.com/dshills/cfrscore/internal/schema"
)

// rubricEntry describes one section for the evaluation prompt.
type rubricEntry struct {
	label    string
	title    string
	criteria string
}

var rubric = map[schema.Section]rubricEntry{
	schema.SectionVision: {"Section 1A", "Vision",
		`Clear, forward-looking and inspiring. States "what", not "how".`},
	schema.SectionMission: {"Section 1B", "Mission",
		`Aligned with the vision, focused on "how", clearly articulated.`},
	schema.SectionObjectives: {"Section 1C", "Objectives",
		"Aligned with the mission, results-driven, not duplicated, ideally 8 to 10 in number."},
	schema.SectionInterSePriorities: {"Section 2", "Inter se priorities",
		"Actions capture the objectives and success indicators capture the actions. Indicators are " +
			"outcome-oriented, weights are distributed sensibly and targets are of high quality."},
	schema.SectionTrendValues: {"Section 3", "Trend values",
		"Data is given for previous years and projections are made for coming years."},
	schema.SectionSuccessIndicators: {"Section 4", "Description of success indicators",
		"Every acronym is explained and the explanations are necessary and of good quality."},
	schema.SectionOtherDepartmentRequirements: {"Section 5", "Performance requirements from other departments",
		"Dependencies are claimed where they exist and the requirements are specific."},
	schema.SectionOutcomeImpact: {"Section 6", "Outcome/impact of activities",
		"Share of objectives covered, and whether outcome statements and success indicators are results-driven."},
}

// buildSystemPrompt assembles the LLM system prompt.
func buildSystemPrompt(prof profile.Profile) string {
	var sb strings.Builder

	sb.WriteString("You are cfrscore, an evaluator of government performance documents " +
		"under the Commitment for Results (CFR) framework.\n\n")

	sb.WriteString("Answer ONLY from the DOCUMENT supplied in each message. " +
		"If the document does not contain the information asked for, say so instead of guessing.\n\n")

	if prof.SystemPromptAddendum != "" {
		sb.WriteString(prof.SystemPromptAddendum)
		sb.WriteString("\n")
	}
	return sb.String()
}

// buildUserPrompt pairs the numbered document context with one question.
func buildUserPrompt(docContext, question string) string {
	var sb strings.Builder
	sb.WriteString("DOCUMENT (numbered blocks):\n")
	sb.WriteString(docContext)
	sb.WriteString("\nQUESTION:\n")
	sb.WriteString(question)
	return sb.String()
}

func headingQuestion(prof profile.Profile) string {
	return fmt.Sprintf("Identify the ministry or department this %s is most relevant to, "+
		"based on its dominant themes. Answer with a single line of the form "+
		"\"Ministry of <Department Name> Department\" and nothing else.", prof.Subject)
}

func summaryQuestion(prof profile.Profile) string {
	return fmt.Sprintf("Summarize this %s in 4 to 6 sentences, one sentence per line. Cover its main "+
		"themes and goals, its key initiatives, its significant commitments and its overall vision. "+
		"Use formal, factual language.", prof.Subject)
}

func suggestionsQuestion(prof profile.Profile) string {
	return fmt.Sprintf("Give 3 to 5 constructive suggestions for improving this %s, one per line. "+
		"Address gaps that need clarification, the governance approach, public welfare and "+
		"implementation. Each suggestion must be specific and actionable.", prof.Subject)
}

func evaluationQuestion(prof profile.Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Evaluate the quality of this %s against the CFR framework. "+
		"Score each of the following %d sections from %d to %d:\n\n",
		prof.Subject, len(schema.Sections()), 60, 100)
	for i, sec := range schema.Sections() {
		e := rubric[sec]
		w, _ := schema.Weight(sec)
		fmt.Fprintf(&sb, "%d. %s (%s, %.0f%%): %s\n", i+1, e.title, e.label, w*100, e.criteria)
	}
	sb.WriteString("\nFor each section give a score and a 1-2 sentence justification.\n\n")
	sb.WriteString(evaluationSchema())
	return sb.String()
}

// evaluationSchema is the answer shape shown to the LLM.
func evaluationSchema() string {
	var sb strings.Builder
	sb.WriteString("Answer with JSON only, in exactly this shape:\n{\n  \"sections\": {\n")
	secs := schema.Sections()
	for i, sec := range secs {
		sep := ","
		if i == len(secs)-1 {
			sep = ""
		}
		fmt.Fprintf(&sb, "    %q: {\"score\": <60-100>, \"justification\": \"...\"}%s\n", string(sec), sep)
	}
	sb.WriteString("  }\n}\n")
	return sb.String()
}

// buildRepairPrompt constructs the repair message. It includes the original
// user prompt and the previous unreadable answer so the LLM has full context.
func buildRepairPrompt(originalUserPrompt, previousResponse string) string {
	var sb strings.Builder
	sb.WriteString(originalUserPrompt)
	sb.WriteString("\n\nYour previous answer was:\n")
	sb.WriteString(previousResponse)
	sb.WriteString("\n\nThat answer could not be read as JSON section scores. " +
		"Output only the JSON object in the shape shown above, with no prose and no code fences.")
	return sb.String()
}

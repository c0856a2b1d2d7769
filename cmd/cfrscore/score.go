package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/cfrscore/internal/assessment"
	"github.com/dshills/cfrscore/internal/schema"
	"github.com/dshills/cfrscore/internal/scoring"
)

func newScoreCmd(a *app) *cobra.Command {
	f := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "score <assessment-file>",
		Short: "Score a prepared assessment (JSON or YAML) without calling an LLM",
		Long: `score reads section assessments and enhancement suggestions from a file
and runs them through the scoring engine. The file holds "sections" (or a raw
"response" answer), "suggestions", and optionally "heading" and "summary".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.resolve(cmd, a)
			return runScore(cmd, a, f, args[0])
		},
	}
	f.register(cmd)
	return cmd
}

func runScore(cmd *cobra.Command, a *app, f *outputFlags, path string) error {
	a.log.Debug("loading assessment", "path", path)
	in, err := assessment.LoadFile(path)
	if err != nil {
		return exitError(exitInput, "failed to load assessment: %v", err)
	}
	a.log.Debug("assessment loaded", "sections", len(in.Sections), "suggestions", len(in.Suggestions), "source", in.Source)

	report, err := scoring.TryEvaluate(in.Sections, in.Suggestions)
	if err != nil {
		a.log.Warn("evaluation failed, using fallback report", "err", err)
		report = scoring.Fallback()
	}

	meta := newMeta("")
	meta.Source = string(in.Source)
	res := &schema.Result{
		Document:    filepath.Base(path),
		Heading:     in.Heading,
		Summary:     in.Summary,
		Suggestions: schema.SuggestionStrings(in.Suggestions),
		Evaluation:  report,
		Meta:        meta,
	}
	return emit(cmd.Context(), cmd, a, f, res)
}

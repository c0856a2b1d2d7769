package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/cfrscore/internal/history"
	"github.com/dshills/cfrscore/internal/render"
	"github.com/dshills/cfrscore/internal/schema"
	"github.com/dshills/cfrscore/internal/scoring"
)

// outputFlags are shared by the commands that produce a report.
type outputFlags struct {
	format    string
	out       string
	failBelow string
	save      bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.format, "format", "", "Output format: json, md, html or text (default from config)")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	flags.StringVar(&f.failBelow, "fail-below", "", "Exit 2 if the overall rating is below this rating (e.g. Good)")
	flags.BoolVar(&f.save, "save", false, "Record the evaluation in the history database")
}

// resolve fills unset flags from the config.
func (f *outputFlags) resolve(cmd *cobra.Command, a *app) {
	if !cmd.Flags().Changed("format") {
		f.format = a.cfg.Output.Format
	}
	if !cmd.Flags().Changed("fail-below") {
		f.failBelow = a.cfg.Output.FailBelow
	}
	if !cmd.Flags().Changed("save") {
		f.save = a.cfg.History.Save
	}
}

// emit validates, renders, writes and optionally records res, then applies
// the --fail-below threshold.
func emit(ctx context.Context, cmd *cobra.Command, a *app, f *outputFlags, res *schema.Result) error {
	var threshold schema.Rating
	if f.failBelow != "" {
		r, ok := schema.ParseRating(f.failBelow)
		if !ok {
			return exitError(exitInput, "invalid --fail-below %q (want one of %s)", f.failBelow, ratingList())
		}
		threshold = r
	}

	evalJSON, err := json.Marshal(&res.Evaluation)
	if err != nil {
		return exitError(exitSchema, "failed to marshal report: %v", err)
	}
	if msgs := schema.ValidateReportJSON(evalJSON); len(msgs) > 0 {
		for _, m := range msgs {
			a.log.Error("report schema violation", "detail", m)
		}
		return exitError(exitSchema, "report failed schema validation (%d errors)", len(msgs))
	}

	out, err := render.Render(res, f.format)
	if err != nil {
		return exitError(exitInput, "%v", err)
	}
	if f.out != "" {
		a.log.Debug("writing output", "path", f.out)
		if err := os.WriteFile(f.out, out, 0o644); err != nil {
			return exitError(exitGeneric, "failed to write output: %v", err)
		}
	} else if _, err := cmd.OutOrStdout().Write(out); err != nil {
		return err
	}

	if f.save {
		if err := saveHistory(ctx, a, res); err != nil {
			return exitError(exitGeneric, "failed to save history: %v", err)
		}
	}

	if threshold != "" && scoring.RatingOrdinal(res.Evaluation.OverallRating) < scoring.RatingOrdinal(threshold) {
		return exitError(exitBelow, "overall rating %s (%d) is below %s",
			res.Evaluation.OverallRating, res.Evaluation.OverallScore, threshold)
	}
	return nil
}

func saveHistory(ctx context.Context, a *app, res *schema.Result) error {
	store, err := history.Open(ctx, history.Driver(a.cfg.History.Driver), a.cfg.History.DSN)
	if err != nil {
		return err
	}
	defer store.Close()
	id, err := store.Save(ctx, res, time.Now())
	if err != nil {
		return err
	}
	a.log.Info("evaluation saved", "id", id, "driver", a.cfg.History.Driver)
	return nil
}

func ratingList() string {
	var names []string
	for _, r := range schema.Ratings() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

// newMeta fills the fields common to every result.
func newMeta(profileName string) schema.Meta {
	return schema.Meta{Tool: toolName, Version: version, Profile: profileName}
}

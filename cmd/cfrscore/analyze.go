package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/cfrscore/internal/assessment"
	"github.com/dshills/cfrscore/internal/document"
	"github.com/dshills/cfrscore/internal/llm"
	"github.com/dshills/cfrscore/internal/profile"
	"github.com/dshills/cfrscore/internal/schema"
	"github.com/dshills/cfrscore/internal/scoring"
)

type analyzeFlags struct {
	outputFlags
	profileName  string
	provider     string
	model        string
	maxTokens    int
	temperature  float64
	timeout      time.Duration
	contextBytes int
	debug        bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze <document>",
		Short: "Evaluate a Markdown or text document with an LLM and score it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.resolve(cmd, a)
			return runAnalyze(cmd, a, f, args[0])
		},
	}
	f.register(cmd)

	flags := cmd.Flags()
	flags.StringVar(&f.profileName, "profile", "", "Profile name: "+strings.Join(profile.Names(), ", ")+" (default from config)")
	flags.StringVar(&f.provider, "provider", "", "LLM provider: anthropic, openai, google or ollama (default from config)")
	flags.StringVar(&f.model, "model", "", "Model ID (default depends on provider)")
	flags.IntVar(&f.maxTokens, "max-tokens", 0, "Max response tokens per prompt (default from config)")
	flags.Float64Var(&f.temperature, "temperature", 0, "Model temperature (default from config)")
	flags.DurationVar(&f.timeout, "timeout", 0, "Overall LLM timeout, e.g. 2m (default from config)")
	flags.IntVar(&f.contextBytes, "context-bytes", 0, "Document context budget in bytes (default from config)")
	flags.BoolVar(&f.debug, "debug", false, "Print prompts and raw answers to stderr")
	return cmd
}

// resolve fills unset flags from the config.
func (f *analyzeFlags) resolve(cmd *cobra.Command, a *app) {
	f.outputFlags.resolve(cmd, a)
	cfg := a.cfg
	changed := cmd.Flags().Changed
	if !changed("profile") {
		f.profileName = cfg.Profile
	}
	if !changed("provider") {
		f.provider = cfg.LLM.Provider
	}
	if !changed("model") {
		f.model = cfg.LLM.Model
	}
	if !changed("max-tokens") {
		f.maxTokens = cfg.LLM.MaxTokens
	}
	if !changed("temperature") {
		f.temperature = cfg.LLM.Temperature
	}
	if !changed("timeout") {
		f.timeout = time.Duration(cfg.LLM.Timeout) * time.Second
	}
	if !changed("context-bytes") {
		f.contextBytes = cfg.LLM.ContextBytes
	}
	if f.model == "" {
		f.model = llm.DefaultModel(f.provider)
	}
}

func runAnalyze(cmd *cobra.Command, a *app, f *analyzeFlags, path string) error {
	log := a.log

	// 1. Load document
	log.Debug("loading document", "path", path)
	doc, err := document.Load(path)
	if err != nil {
		return exitError(exitInput, "failed to load document: %v", err)
	}
	log.Debug("document segmented", "blocks", len(doc.Blocks), "hash", doc.Hash)

	// 2. Load profile
	prof, err := profile.Load(f.profileName)
	if err != nil {
		return exitError(exitInput, "failed to load profile: %v", err)
	}

	// 3. Call LLM
	ctx := cmd.Context()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	log.Debug("calling LLM", "provider", f.provider, "model", f.model, "profile", prof.Name)
	analysis, err := llm.Analyze(ctx, doc, prof, llm.Options{
		Provider:     f.provider,
		Model:        f.model,
		MaxTokens:    f.maxTokens,
		Temperature:  f.temperature,
		ContextBytes: f.contextBytes,
		Debug:        f.debug,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return exitError(exitProvider, "LLM call timed out after %s: %v", f.timeout, err)
		}
		return exitError(exitProvider, "LLM call failed: %v", err)
	}
	if analysis.Source == assessment.SourceDefault {
		log.Warn("evaluation answer unreadable, sections defaulted")
	}
	log.Debug("analysis complete", "source", analysis.Source, "repaired", analysis.Repaired)

	// 4. Score
	suggestions := schema.SuggestionsFromStrings(analysis.Suggestions)
	report, err := scoring.TryEvaluate(analysis.Sections, suggestions)
	if err != nil {
		log.Warn("evaluation failed, using fallback report", "err", err)
		report = scoring.Fallback()
	}

	heading := analysis.Heading
	if heading == "" {
		heading = doc.Title
	}
	meta := newMeta(prof.Name)
	meta.Model = f.provider + "/" + f.model
	meta.Temperature = f.temperature
	meta.Source = string(analysis.Source)
	meta.DocHash = doc.Hash
	res := &schema.Result{
		Document:    filepath.Base(path),
		Heading:     heading,
		Summary:     analysis.Summary,
		Suggestions: analysis.Suggestions,
		Evaluation:  report,
		Meta:        meta,
	}

	// 5. Output
	return emit(ctx, cmd, a, &f.outputFlags, res)
}

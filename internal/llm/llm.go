// Package llm handles LLM provider communication, prompt construction and the
// single repair attempt for an unparseable evaluation answer.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/cfrscore/internal/assessment"
	"github.com/dshills/cfrscore/internal/document"
	"github.com/dshills/cfrscore/internal/profile"
	"github.com/dshills/cfrscore/internal/schema"
)

// Provider is the interface for LLM backends. Implementations must be safe for
// concurrent use; Analyze issues its prompts in parallel.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// NewProvider is the factory for creating LLM providers. It is a package-level
// variable so tests can replace it with a mock without modifying the call site.
// Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider func(providerName, model string) (Provider, error) = defaultNewProvider

// DefaultModel returns the model used for providerName when none is configured.
func DefaultModel(providerName string) string {
	switch strings.ToLower(providerName) {
	case "openai":
		return "gpt-4o"
	case "google":
		return "gemini-1.5-pro"
	case "ollama":
		return "llama3.1"
	default:
		return "claude-sonnet-4-6"
	}
}

// Options configures an Analyze call.
type Options struct {
	Provider     string
	Model        string
	MaxTokens    int
	Temperature  float64
	ContextBytes int // budget for the document context; <= 0 means unlimited
	Debug        bool
}

// Analysis is everything the generator produced for one document.
type Analysis struct {
	Heading     string
	Summary     []string
	Suggestions []string
	Sections    map[schema.Section]*schema.SectionAssessment
	// Source records how Sections were parsed. SourceDefault means neither the
	// evaluation answer nor the repair answer could be read.
	Source   assessment.Source
	Repaired bool
}

// Analyze asks the provider for a heading, a summary, enhancement suggestions
// and the rubric evaluation of doc. The four prompts run concurrently; if the
// evaluation answer cannot be parsed, one repair prompt is sent. Only provider
// failures are returned as errors.
func Analyze(ctx context.Context, doc *document.Document, prof profile.Profile, opts Options) (*Analysis, error) {
	model := opts.Model
	if model == "" {
		model = DefaultModel(opts.Provider)
	}
	provider, err := NewProvider(opts.Provider, model)
	if err != nil {
		return nil, fmt.Errorf("llm: create provider: %w", err)
	}

	sysPrompt := buildSystemPrompt(prof)
	docContext := doc.Context(opts.ContextBytes)

	tasks := []struct {
		name   string
		prompt string
	}{
		{name: "heading", prompt: headingQuestion(prof)},
		{name: "summary", prompt: summaryQuestion(prof)},
		{name: "suggestions", prompt: suggestionsQuestion(prof)},
		{name: "evaluation", prompt: evaluationQuestion(prof)},
	}
	answers := make([]string, len(tasks))

	if opts.Debug {
		// Debug prints prompts to stderr. The document text is included as-is.
		fmt.Fprintf(os.Stderr, "=== DEBUG: system prompt ===\n%s\n", sysPrompt)
		fmt.Fprintf(os.Stderr, "=== DEBUG: document context ===\n%s\n", docContext)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		userPrompt := buildUserPrompt(docContext, task.prompt)
		g.Go(func() error {
			raw, err := provider.Complete(gctx, sysPrompt, userPrompt, opts.MaxTokens, opts.Temperature)
			if err != nil {
				return fmt.Errorf("llm: %s: %w", task.name, err)
			}
			answers[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if opts.Debug {
		for i, task := range tasks {
			fmt.Fprintf(os.Stderr, "=== DEBUG: %s answer ===\n%s\n", task.name, answers[i])
		}
	}

	a := &Analysis{
		Heading:     cleanHeading(answers[0]),
		Summary:     assessment.SplitSummary(answers[1]),
		Suggestions: assessment.SplitSuggestions(answers[2]),
	}
	a.Sections, a.Source = assessment.ParseSections(answers[3])
	if usable(a.Sections, a.Source) {
		return a, nil
	}

	// One repair attempt: include the original question and the unusable
	// answer so the model has full context.
	repairPrompt := buildRepairPrompt(buildUserPrompt(docContext, tasks[3].prompt), answers[3])
	raw2, err := provider.Complete(ctx, sysPrompt, repairPrompt, opts.MaxTokens, opts.Temperature)
	if err != nil {
		return nil, fmt.Errorf("llm: repair: %w", err)
	}
	if opts.Debug {
		fmt.Fprintf(os.Stderr, "=== DEBUG: repair answer ===\n%s\n", raw2)
	}
	if sections, src := assessment.ParseSections(raw2); usable(sections, src) {
		a.Sections, a.Source, a.Repaired = sections, src, true
	}
	return a, nil
}

// usable reports whether a parsed evaluation answer scored at least one
// rubric section without falling back to defaults.
func usable(sections map[schema.Section]*schema.SectionAssessment, src assessment.Source) bool {
	return src != assessment.SourceDefault && len(sections) > 0
}

// cleanHeading keeps the first non-blank line of a heading answer and strips
// Markdown emphasis, heading markers and quotes.
func cleanHeading(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "# ")
		line = strings.Trim(line, "*_\"'` ")
		if line != "" {
			return line
		}
	}
	return ""
}

// ── Provider dispatch ─────────────────────────────────────────────────────────

// defaultNewProvider dispatches to the appropriate provider implementation.
func defaultNewProvider(providerName, model string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case "anthropic", "":
		return newAnthropicProvider(model)
	case "openai":
		return newOpenAIProvider(model)
	case "google":
		return newGoogleProvider(model)
	case "ollama":
		return newOllamaProvider(model)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q (available: anthropic, openai, google, ollama)", providerName)
	}
}

// ── Anthropic provider ───────────────────────────────────────────────────────

// anthropicProvider implements Provider using the Anthropic SDK.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(model string) (Provider, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("llm: ANTHROPIC_API_KEY environment variable not set")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &anthropicProvider{client: client, model: model}, nil
}

func (p *anthropicProvider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
	temperature float64,
) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: messages.new: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("anthropic: response contained no text content blocks")
	}
	return strings.Join(parts, ""), nil
}

package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// defaultOllamaURL is the OpenAI-compatible endpoint of a local Ollama server.
const defaultOllamaURL = "http://localhost:11434/v1"

// openaiProvider implements Provider using the OpenAI SDK. It also serves any
// OpenAI-compatible endpoint, including a local Ollama server.
type openaiProvider struct {
	client openai.Client
	model  string
	name   string
}

func newOpenAIProvider(model string) (Provider, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("llm: OPENAI_API_KEY environment variable not set")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &openaiProvider{client: openai.NewClient(opts...), model: model, name: "openai"}, nil
}

// newOllamaProvider talks to Ollama through its OpenAI-compatible API. No key
// is required; OLLAMA_BASE_URL overrides the default endpoint.
func newOllamaProvider(model string) (Provider, error) {
	base := os.Getenv("OLLAMA_BASE_URL")
	if base == "" {
		base = defaultOllamaURL
	}
	client := openai.NewClient(option.WithBaseURL(base), option.WithAPIKey("ollama"))
	return &openaiProvider{client: client, model: model, name: "ollama"}, nil
}

func (p *openaiProvider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
	temperature float64,
) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.model),
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s: chat.completions.new: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: response contained no choices", p.name)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s: response contained no content (finish reason %q)", p.name, resp.Choices[0].FinishReason)
	}
	return content, nil
}

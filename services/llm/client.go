package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client is the text-generation collaborator: one prompt in, one completion
// out. No streaming, no tool calling.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options selects a provider. A nil Client from New means mock mode: the
// orchestrator substitutes canned values instead of calling out. Mock mode is
// a first-class operating mode, not an error.
type Options struct {
	Provider        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	ModelName       string
	Mock            bool
}

// New builds the configured client, or nil when mock mode is requested or no
// credential is available for the chosen provider.
func New(opts Options) (Client, error) {
	if opts.Mock {
		log.Printf("[WARN] LLM running in mock mode (explicitly configured)")
		return nil, nil
	}

	switch opts.Provider {
	case "anthropic":
		if opts.AnthropicAPIKey == "" {
			log.Printf("[WARN] ANTHROPIC_API_KEY not set, LLM running in mock mode")
			return nil, nil
		}
		return newAnthropicClient(opts.AnthropicAPIKey, opts.ModelName), nil
	case "openai", "":
		if opts.OpenAIAPIKey == "" {
			log.Printf("[WARN] OPENAI_API_KEY not set, LLM running in mock mode")
			return nil, nil
		}
		return newOpenAIClient(opts.OpenAIAPIKey, opts.ModelName)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", opts.Provider)
	}
}

type openAIClient struct {
	llm llms.Model
}

func newOpenAIClient(apiKey, model string) (*openAIClient, error) {
	if model == "" {
		model = "gpt-4o-mini"
	}

	llm, err := openai.New(
		openai.WithModel(model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return &openAIClient{llm: llm}, nil
}

func (c *openAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, llms.WithTemperature(0.7))
	if err != nil {
		return "", fmt.Errorf("failed to generate LLM response: %w", err)
	}
	return completion, nil
}

type anthropicClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

func newAnthropicClient(apiKey, model string) *anthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	selectedModel := anthropic.ModelClaude4Sonnet20250514
	if model != "" {
		selectedModel = anthropic.Model(model)
	}

	return &anthropicClient{
		client: &client,
		model:  selectedModel,
	}
}

func (c *anthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	text := ""
	for _, block := range response.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += textBlock.Text
		}
	}

	return text, nil
}

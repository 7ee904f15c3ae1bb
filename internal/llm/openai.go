package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a professional Git commit message generator, helping developers write commit messages that follow the Conventional Commits specification."

var errMissingAPIKey = fmt.Errorf("%w: API key not set (api_key or OPENAI_API_KEY)", ErrToolNotFound)

// ChatClient is the part of *openai.Client the backend uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIOptions configures an OpenAIBackend.
type OpenAIOptions struct {
	APIKey  string
	APIBase string
	Model   string
	// Client overrides the HTTP client built from APIKey and APIBase.
	Client ChatClient
}

// OpenAIBackend generates through any OpenAI-compatible chat completion API.
type OpenAIBackend struct {
	client ChatClient
	model  string
	err    error
}

func NewOpenAIBackend(opts OpenAIOptions) *OpenAIBackend {
	b := &OpenAIBackend{client: opts.Client, model: opts.Model}
	if b.client != nil {
		return b
	}
	if opts.APIKey == "" {
		b.err = errMissingAPIKey
		return b
	}

	clientConfig := openai.DefaultConfig(opts.APIKey)
	if opts.APIBase != "" {
		clientConfig.BaseURL = opts.APIBase
	}
	b.client = openai.NewClientWithConfig(clientConfig)
	return b
}

func (b *OpenAIBackend) Name() string {
	return "openai:" + b.model
}

func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	if b.err != nil {
		return "", b.err
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("failed to call LLM: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyOutput
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyOutput
	}
	return content, nil
}

package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIAdapter implements the Adapter interface for OpenAI models.
type OpenAIAdapter struct {
	client openai.Client
}

// NewOpenAIAdapter creates a new OpenAI adapter.
func NewOpenAIAdapter(apiKey string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIAdapter{client: client}, nil
}

// Name returns the adapter identifier.
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Models returns the list of supported OpenAI models.
func (a *OpenAIAdapter) Models() []string {
	return []string{
		"gpt-5.2-instant",
		"gpt-5.2-thinking",
		"gpt-5.2-pro",
	}
}

// Generate sends a prompt to OpenAI and returns the raw execution. The
// completion ID doubles as the trace identifier.
func (a *OpenAIAdapter) Generate(ctx context.Context, model string, prompt string) (*Execution, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(4096),
	})
	if err != nil {
		provErr := &Error{Err: fmt.Errorf("openai API error: %w", err)}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			provErr.Status = apiErr.StatusCode
		}
		return nil, provErr
	}

	if len(resp.Choices) == 0 {
		return nil, &Error{
			TraceID: resp.ID,
			Err:     fmt.Errorf("openai returned no choices"),
		}
	}

	return &Execution{Content: resp.Choices[0].Message.Content, TraceID: resp.ID}, nil
}

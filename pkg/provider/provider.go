package provider

import "context"

// Execution is the raw outcome of one hosted-prompt call: the model's
// unprocessed text and the provider's trace identifier for that call.
// TraceID is empty when the provider supplied none.
type Execution struct {
	Content string
	TraceID string
}

// Adapter defines the interface for LLM provider backends.
type Adapter interface {
	// Generate sends a prompt to the model and returns the raw execution.
	// Exactly one network round-trip; no retries.
	Generate(ctx context.Context, model string, prompt string) (*Execution, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

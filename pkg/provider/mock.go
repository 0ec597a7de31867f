package provider

import "context"

// MockAdapter returns deterministic responses for local runs and tests.
type MockAdapter struct {
	responses       map[string]string
	defaultResponse string
	traceID         string
	err             error
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		responses:       make(map[string]string),
		defaultResponse: `{"note": "mock response"}`,
		traceID:         "mock-trace",
	}
}

// NewMockAdapterWithResponses creates a mock adapter with predefined
// responses keyed by exact prompt text.
func NewMockAdapterWithResponses(responses map[string]string, defaultResponse string) *MockAdapter {
	if defaultResponse == "" {
		defaultResponse = `{"note": "mock response"}`
	}
	return &MockAdapter{responses: responses, defaultResponse: defaultResponse, traceID: "mock-trace"}
}

// SetTraceID overrides the trace identifier attached to responses.
func (a *MockAdapter) SetTraceID(traceID string) {
	a.traceID = traceID
}

// Fail makes every subsequent Generate call return err.
func (a *MockAdapter) Fail(err error) {
	a.err = err
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Generate returns a deterministic execution for the prompt. The default
// response is returned as-is: echoing the prompt back would wrap the
// canned JSON in arbitrary template text and defeat recovery downstream.
func (a *MockAdapter) Generate(_ context.Context, model string, prompt string) (*Execution, error) {
	if a.err != nil {
		return nil, a.err
	}
	if response, ok := a.responses[prompt]; ok {
		return &Execution{Content: response, TraceID: a.traceID}, nil
	}
	return &Execution{Content: a.defaultResponse, TraceID: a.traceID}, nil
}

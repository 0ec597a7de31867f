package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"
)

// PromptSpec describes one managed prompt: which backend executes it, the
// model to use, and the prompt template. Templates see the serialized
// variables as fields, e.g. {{.clinical_notes}}.
type PromptSpec struct {
	Adapter  string `yaml:"adapter"`
	Model    string `yaml:"model"`
	Template string `yaml:"template"`
}

// Catalog maps opaque prompt identifiers to managed prompts. Which remote
// prompt a stage invokes is operator configuration, not code.
type Catalog map[string]PromptSpec

// Validate checks the catalog for structural errors.
func (c Catalog) Validate() error {
	for id, spec := range c {
		if id == "" {
			return fmt.Errorf("catalog contains empty prompt id")
		}
		if spec.Template == "" {
			return fmt.Errorf("prompt %s has no template", id)
		}
		if _, err := template.New(id).Parse(spec.Template); err != nil {
			return fmt.Errorf("prompt %s template: %w", id, err)
		}
	}
	return nil
}

// Invoker executes managed prompts: it resolves a prompt identifier against
// the catalog, renders the template with the caller's serialized variables,
// and performs exactly one call to the backing adapter. Content is opaque
// here; parsing is someone else's concern.
type Invoker struct {
	catalog  Catalog
	adapters map[string]Adapter
	logger   *zap.Logger
}

// NewInvoker creates an invoker over the given catalog and adapters.
func NewInvoker(catalog Catalog, adapters map[string]Adapter, logger *zap.Logger) (*Invoker, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no adapters configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{catalog: catalog, adapters: adapters, logger: logger}, nil
}

// Invoke runs the managed prompt identified by promptID with the given
// variables. Failures surface as *Error carrying the trace identifier when
// the provider supplied one before failing.
func (i *Invoker) Invoke(ctx context.Context, promptID string, vars map[string]string) (*Execution, error) {
	if promptID == "" {
		return nil, &Error{Err: fmt.Errorf("prompt id is required")}
	}
	spec, ok := i.catalog[promptID]
	if !ok {
		return nil, &Error{Err: fmt.Errorf("prompt %s not in catalog", promptID)}
	}

	adapterImpl, ok := i.adapters[spec.Adapter]
	if !ok {
		return nil, &Error{Err: fmt.Errorf("adapter %s not found for prompt %s", spec.Adapter, promptID)}
	}

	model := spec.Model
	if model == "" {
		models := adapterImpl.Models()
		if len(models) > 0 {
			model = models[0]
		}
	}
	if model == "" {
		return nil, &Error{Err: fmt.Errorf("model not specified for prompt %s", promptID)}
	}

	prompt, err := renderTemplate(promptID, spec.Template, vars)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("render prompt %s: %w", promptID, err)}
	}

	start := time.Now()
	exec, err := adapterImpl.Generate(ctx, model, prompt)
	if err != nil {
		i.logger.Warn("prompt execution failed",
			zap.String("prompt_id", promptID),
			zap.String("adapter", spec.Adapter),
			zap.String("trace_id", TraceIDFrom(err)),
			zap.Error(err))
		var provErr *Error
		if !errors.As(err, &provErr) {
			err = &Error{Err: err}
		}
		return nil, err
	}

	i.logger.Debug("prompt executed",
		zap.String("prompt_id", promptID),
		zap.String("adapter", spec.Adapter),
		zap.String("trace_id", exec.TraceID),
		zap.Duration("duration", time.Since(start)))
	return exec, nil
}

func renderTemplate(name, tmplText string, vars map[string]string) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(tmplText)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, vars); err != nil {
		return "", err
	}
	return sb.String(), nil
}

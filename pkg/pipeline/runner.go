// Package pipeline sequences the multi-stage clinical analysis: each
// stage's validated output feeds the next stage's variables, the first
// failure aborts the run, and a single assembled result (or a precise
// failure) comes back. Stages are causally dependent, so there is nothing
// useful to salvage past a broken one, and the core never retries: naming
// the failing stage and its trace identifier beats a best-effort partial
// answer for content a clinician will read.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinipath/dxscribe/pkg/audit"
	"github.com/clinipath/dxscribe/pkg/extract"
	"github.com/clinipath/dxscribe/pkg/provider"
)

// Invoker executes one managed prompt call. Satisfied by
// *provider.Invoker.
type Invoker interface {
	Invoke(ctx context.Context, promptID string, vars map[string]string) (*provider.Execution, error)
}

// Input is one analysis request: the full unstructured clinical context
// and the clinician's stated focus.
type Input struct {
	Notes string
	Focus string
}

// Runner executes a pipeline version. It holds no per-run state: every Run
// call is an independent run, safe to issue concurrently.
type Runner struct {
	invoker  Invoker
	version  *Version
	logger   *zap.Logger
	auditDir string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithAuditDir enables per-run audit records under dir.
func WithAuditDir(dir string) Option {
	return func(r *Runner) {
		r.auditDir = dir
	}
}

// NewRunner creates a runner for the given pipeline version.
func NewRunner(invoker Invoker, version *Version, opts ...Option) (*Runner, error) {
	if invoker == nil {
		return nil, fmt.Errorf("invoker is required")
	}
	if version == nil {
		return nil, fmt.Errorf("pipeline version is required")
	}
	if err := version.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{invoker: invoker, version: version, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes every stage in order. On success the result carries each
// stage's validated output plus metadata; on failure the returned error is
// a *StageError naming the failing stage, its trace identifier when one
// exists, and the metadata of the stages completed before it. No stage
// after a failing one is ever invoked.
func (r *Runner) Run(ctx context.Context, input Input) (*Result, error) {
	runID := uuid.NewString()
	meta := &Metadata{
		RunID:          runID,
		TraceIDs:       make(map[string]string),
		StageDurations: make(map[string]time.Duration),
	}

	writer := r.newAuditWriter(runID, input)

	callerVars := map[string]any{
		VarClinicalNotes: input.Notes,
		VarFocusQuery:    input.Focus,
	}

	outputs := make(map[string]map[string]any, len(r.version.Stages))
	var previous map[string]any
	start := time.Now()

	for _, stage := range r.version.Stages {
		vars, err := r.stageVars(stage, callerVars, previous)
		if err != nil {
			return nil, r.fail(writer, meta, start, stage, "", "", err)
		}

		stageStart := time.Now()
		exec, err := r.invoker.Invoke(ctx, stage.PromptID, vars)
		meta.StageDurations[stage.Name] = time.Since(stageStart)
		if err != nil {
			return nil, r.fail(writer, meta, start, stage, provider.TraceIDFrom(err), "", err)
		}
		meta.TraceIDs[stage.Name] = exec.TraceID

		obj, err := extract.Recover(exec.Content)
		if err != nil {
			return nil, r.fail(writer, meta, start, stage, exec.TraceID, exec.Content, err)
		}

		validated, err := stage.Schema.Validate(obj)
		if err != nil {
			return nil, r.fail(writer, meta, start, stage, exec.TraceID, exec.Content, err)
		}

		outputs[stage.Name] = validated
		meta.StagesCompleted = append(meta.StagesCompleted, stage.Name)
		previous = validated
		r.auditStage(writer, stage, exec.TraceID, exec.Content, meta)

		r.logger.Info("stage completed",
			zap.String("run_id", runID),
			zap.String("stage", stage.Name),
			zap.String("trace_id", exec.TraceID),
			zap.Duration("duration", meta.StageDurations[stage.Name]))
	}

	meta.Elapsed = time.Since(start)
	r.logger.Info("pipeline succeeded",
		zap.String("run_id", runID),
		zap.String("pipeline", r.version.Name),
		zap.Duration("elapsed", meta.Elapsed))

	return assemble(r.version, outputs, meta), nil
}

// stageVars builds a stage's variables from the caller's original inputs
// plus the previous stage's validated output, serialized.
func (r *Runner) stageVars(stage StageSpec, callerVars map[string]any, previous map[string]any) (map[string]string, error) {
	available := make(map[string]any, len(callerVars)+1)
	for name, value := range callerVars {
		available[name] = value
	}
	if previous != nil {
		available[VarPreviousFindings] = previous
	}

	selected := make(map[string]any, len(stage.Inputs))
	for _, name := range stage.Inputs {
		value, ok := available[name]
		if !ok {
			return nil, fmt.Errorf("stage %s requires variable %s which is not available", stage.Name, name)
		}
		selected[name] = value
	}
	return SerializeVars(selected), nil
}

func (r *Runner) fail(writer *audit.Writer, meta *Metadata, start time.Time, stage StageSpec, traceID, rawOutput string, err error) *StageError {
	meta.Elapsed = time.Since(start)
	r.logger.Warn("pipeline failed",
		zap.String("run_id", meta.RunID),
		zap.String("stage", stage.Name),
		zap.String("trace_id", traceID),
		zap.Error(err))
	if writer != nil {
		record := audit.StageRecord{
			Name:           stage.Name,
			PromptID:       stage.PromptID,
			TraceID:        traceID,
			Output:         rawOutput,
			DurationMillis: meta.StageDurations[stage.Name].Milliseconds(),
			Error:          err.Error(),
		}
		if auditErr := writer.WriteStage(record); auditErr != nil {
			r.logger.Warn("audit write failed", zap.Error(auditErr))
		}
	}
	return &StageError{Stage: stage.Name, TraceID: traceID, Metadata: meta, Err: err}
}

func (r *Runner) newAuditWriter(runID string, input Input) *audit.Writer {
	if r.auditDir == "" {
		return nil
	}
	writer, err := audit.NewWriter(r.auditDir, runID)
	if err != nil {
		r.logger.Warn("audit writer unavailable", zap.Error(err))
		return nil
	}
	record := audit.RunRecord{
		ID:         runID,
		Timestamp:  time.Now().UTC(),
		Pipeline:   r.version.Name,
		InputHash:  audit.HashString(input.Notes),
		FocusQuery: input.Focus,
		StageCount: len(r.version.Stages),
	}
	if err := writer.WriteRun(record); err != nil {
		r.logger.Warn("audit write failed", zap.Error(err))
	}
	return writer
}

func (r *Runner) auditStage(writer *audit.Writer, stage StageSpec, traceID, rawOutput string, meta *Metadata) {
	if writer == nil {
		return
	}
	record := audit.StageRecord{
		Name:           stage.Name,
		PromptID:       stage.PromptID,
		TraceID:        traceID,
		Output:         rawOutput,
		DurationMillis: meta.StageDurations[stage.Name].Milliseconds(),
	}
	if err := writer.WriteStage(record); err != nil {
		r.logger.Warn("audit write failed", zap.Error(err))
	}
}

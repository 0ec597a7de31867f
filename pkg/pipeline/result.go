package pipeline

import (
	"fmt"
	"time"
)

// Metadata accumulates per-run diagnostics. TraceIDs is populated as soon
// as a stage call returns, so it is present even when a later step of that
// stage fails; StagesCompleted only grows once a stage's output validated.
type Metadata struct {
	RunID           string                   `json:"run_id"`
	TraceIDs        map[string]string        `json:"trace_ids"`
	StagesCompleted []string                 `json:"stages_completed"`
	StageDurations  map[string]time.Duration `json:"stage_durations"`
	Elapsed         time.Duration            `json:"elapsed"`
}

// StageError is the failure result of a pipeline run: which stage broke,
// the trace identifier for that stage's call when one exists, and the
// metadata of the stages completed before the failure. It never carries
// output for the failing stage or any stage after it.
type StageError struct {
	Stage    string
	TraceID  string
	Metadata *Metadata
	Err      error
}

func (e *StageError) Error() string {
	if e.TraceID != "" {
		return fmt.Sprintf("stage %s failed (trace %s): %v", e.Stage, e.TraceID, e.Err)
	}
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result is the success result of a pipeline run: every stage's validated
// output keyed by stage name, run metadata, and the legacy flattened
// fields existing callers read regardless of pipeline version.
type Result struct {
	Pipeline string                    `json:"pipeline"`
	Outputs  map[string]map[string]any `json:"outputs"`
	Metadata *Metadata                 `json:"metadata"`

	// Legacy aliases. Report is the flattened report text from the final
	// stage's summary field; ReasoningTrace is the flattened reasoning.
	Report         string `json:"report"`
	ReasoningTrace string `json:"reasoning_trace"`
}

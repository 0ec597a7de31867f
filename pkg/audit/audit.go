// Package audit writes per-run diagnostic records to disk. This is the
// developer-facing channel: raw model output (truncated, with a hash of the
// full text) is recorded here and only here; error values surfaced to
// callers never carry it. Clinical notes themselves are never written, only
// their hash.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const outputLimit = 4096

// RunRecord captures run-level metadata.
type RunRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Pipeline   string    `json:"pipeline"`
	InputHash  string    `json:"input_hash"`
	FocusQuery string    `json:"focus_query,omitempty"`
	StageCount int       `json:"stage_count"`
}

// StageRecord captures diagnostics for a single stage execution.
type StageRecord struct {
	Name           string `json:"name"`
	PromptID       string `json:"prompt_id"`
	TraceID        string `json:"trace_id,omitempty"`
	Output         string `json:"output,omitempty"`
	OutputHash     string `json:"output_hash,omitempty"`
	DurationMillis int64  `json:"duration_ms"`
	Error          string `json:"error,omitempty"`
}

// Writer writes audit bundles to disk, one directory per run.
type Writer struct {
	baseDir string
	runDir  string
}

// NewWriter creates a new audit writer rooted at baseDir/runID.
func NewWriter(baseDir, runID string) (*Writer, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}

	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0700); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(runDir, "stages"), 0700); err != nil {
		return nil, err
	}

	return &Writer{baseDir: baseDir, runDir: runDir}, nil
}

// RunDir returns the run directory path.
func (w *Writer) RunDir() string {
	return w.runDir
}

// WriteRun writes run metadata to run.json.
func (w *Writer) WriteRun(record RunRecord) error {
	return writeJSON(filepath.Join(w.runDir, "run.json"), record)
}

// WriteStage writes a stage record to stages/<stage>.json, truncating the
// raw output and recording its hash when truncation drops anything.
func (w *Writer) WriteStage(record StageRecord) error {
	if record.Name == "" {
		return fmt.Errorf("stage name is required")
	}
	if len(record.Output) > outputLimit {
		record.OutputHash = HashString(record.Output)
		record.Output = record.Output[:outputLimit]
	}
	path := filepath.Join(w.runDir, "stages", fmt.Sprintf("%s.json", record.Name))
	return writeJSON(path, record)
}

// HashString returns the hex sha256 of a string.
func HashString(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

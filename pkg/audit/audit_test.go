package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriterWritesRunAndStages(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir, "run-123")
	require.NoError(t, err)

	run := RunRecord{
		ID:         "run-123",
		Timestamp:  time.Now().UTC(),
		Pipeline:   "v2",
		InputHash:  HashString("notes"),
		StageCount: 4,
	}
	require.NoError(t, writer.WriteRun(run))

	stage := StageRecord{
		Name:     "extraction",
		PromptID: "dx.extract.v2",
		TraceID:  "t-1",
		Output:   `{"symptoms": []}`,
	}
	require.NoError(t, writer.WriteStage(stage))

	require.FileExists(t, filepath.Join(writer.RunDir(), "run.json"))

	data, err := os.ReadFile(filepath.Join(writer.RunDir(), "stages", "extraction.json"))
	require.NoError(t, err)
	var got StageRecord
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "t-1", got.TraceID)
	require.Empty(t, got.OutputHash)
}

func TestWriteStageTruncatesLargeOutput(t *testing.T) {
	writer, err := NewWriter(t.TempDir(), "run-1")
	require.NoError(t, err)

	full := strings.Repeat("x", outputLimit+100)
	require.NoError(t, writer.WriteStage(StageRecord{Name: "stage", Output: full}))

	data, err := os.ReadFile(filepath.Join(writer.RunDir(), "stages", "stage.json"))
	require.NoError(t, err)
	var got StageRecord
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Output, outputLimit)
	require.Equal(t, HashString(full), got.OutputHash)
}

func TestWriterRejectsMissingArguments(t *testing.T) {
	_, err := NewWriter("", "run")
	require.Error(t, err)

	_, err = NewWriter(t.TempDir(), "")
	require.Error(t, err)

	writer, err := NewWriter(t.TempDir(), "run")
	require.NoError(t, err)
	require.Error(t, writer.WriteStage(StageRecord{}))
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeVarsPrimitives(t *testing.T) {
	out := SerializeVars(map[string]any{
		"notes":   "chest pain since Tuesday",
		"count":   3,
		"score":   0.75,
		"urgent":  true,
		"nothing": nil,
	})

	require.Equal(t, "chest pain since Tuesday", out["notes"])
	require.Equal(t, "3", out["count"])
	require.Equal(t, "0.75", out["score"])
	require.Equal(t, "true", out["urgent"])
	require.Equal(t, "", out["nothing"])
}

func TestSerializeVarsObject(t *testing.T) {
	out := SerializeVars(map[string]any{
		"findings": map[string]any{"symptoms": []any{"cough"}},
	})

	require.JSONEq(t, `{"symptoms": ["cough"]}`, out["findings"])
	// pretty-printed
	require.Contains(t, out["findings"], "\n")
}

func TestSerializeVarsArray(t *testing.T) {
	out := SerializeVars(map[string]any{
		"flags": []any{"syncope", "dyspnea"},
	})
	require.JSONEq(t, `["syncope", "dyspnea"]`, out["flags"])
}

func TestSerializeVarsNeverPanics(t *testing.T) {
	// A value the encoder rejects still stringifies.
	out := SerializeVars(map[string]any{
		"bad": func() {},
	})
	require.NotEmpty(t, out["bad"])
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssembleV2Aliases(t *testing.T) {
	version := V2()
	outputs := map[string]map[string]any{
		"extraction": {"symptoms": []any{"cough"}},
		"triage":     {"urgency": "LOW"},
		"diagnostic": {"differential": []any{}},
		"summary": {
			"report":          "Findings consistent with viral bronchitis.",
			"reasoning_trace": "No red flags; symptoms self-limiting.",
		},
	}
	meta := &Metadata{StagesCompleted: []string{"extraction", "triage", "diagnostic", "summary"}}

	result := assemble(version, outputs, meta)
	require.Equal(t, "v2", result.Pipeline)
	require.Equal(t, "Findings consistent with viral bronchitis.", result.Report)
	require.Equal(t, "No red flags; symptoms self-limiting.", result.ReasoningTrace)
	require.Same(t, meta, result.Metadata)
}

func TestAssembleV1FlattensDifferential(t *testing.T) {
	version := V1()
	outputs := map[string]map[string]any{
		"extraction": {"symptoms": []any{"chest pain"}},
		"diagnostic": {
			"summary": "possible angina",
			"differential": []any{
				map[string]any{"condition": "angina", "likelihood": "high"},
				map[string]any{"condition": "GERD", "likelihood": "moderate"},
			},
		},
	}

	result := assemble(version, outputs, &Metadata{})
	require.Equal(t, "possible angina", result.Report)
	require.Equal(t,
		"condition: angina; likelihood: high\ncondition: GERD; likelihood: moderate",
		result.ReasoningTrace)
}

func TestFlatten(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "plain", "plain"},
		{"number", 0.5, "0.5"},
		{"list", []any{"a", "b"}, "a\nb"},
		{"map keys sorted", map[string]any{"b": "2", "a": "1"}, "a: 1; b: 2"},
		{"empty entries skipped", []any{"a", "", "b"}, "a\nb"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, flatten(tc.value))
		})
	}
}

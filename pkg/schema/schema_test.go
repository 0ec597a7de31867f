package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateFillsDefaults(t *testing.T) {
	out, err := ExtractionV1().Validate(map[string]any{
		"symptoms": []any{"cough", "fever"},
	})
	require.NoError(t, err)

	require.Equal(t, []any{"cough", "fever"}, out["symptoms"])
	require.Equal(t, "", out["duration"])
	require.Equal(t, "", out["severity"])
	require.Equal(t, []any{}, out["medical_history"])
	require.Equal(t, []any{}, out["medications"])
	require.Equal(t, []any{}, out["red_flags"])
}

func TestValidatePassesThroughUnknownFields(t *testing.T) {
	out, err := ExtractionV1().Validate(map[string]any{
		"symptoms":     []any{"cough"},
		"pain_quality": "dull", // not declared by v1
	})
	require.NoError(t, err)
	require.Equal(t, "dull", out["pain_quality"])
}

func TestValidateMissingRequiredField(t *testing.T) {
	s := &StageSchema{
		Name: "diagnostic",
		Fields: []FieldSpec{
			{Name: "diagnosis", Type: TypeString, Required: true},
		},
	}

	_, err := s.Validate(map[string]any{"urgency": "HIGH"})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	require.Equal(t, "diagnosis", valErr.Field)
}

func TestValidateTypeMismatch(t *testing.T) {
	_, err := ExtractionV1().Validate(map[string]any{
		"symptoms": "cough", // must be a list
	})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	require.Equal(t, "symptoms", valErr.Field)
}

func TestValidateStringListElementMistyped(t *testing.T) {
	_, err := ExtractionV1().Validate(map[string]any{
		"symptoms": []any{"cough", 42},
	})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	require.Equal(t, "symptoms[1]", valErr.Field)
}

func TestValidateConfidenceRange(t *testing.T) {
	base := map[string]any{"urgency": "LOW"}

	out, err := Triage().Validate(mergeWith(base, "confidence", 0.85))
	require.NoError(t, err)
	require.Equal(t, 0.85, out["confidence"])

	_, err = Triage().Validate(mergeWith(base, "confidence", 1.5))
	require.Error(t, err)

	_, err = Triage().Validate(mergeWith(base, "confidence", -0.1))
	require.Error(t, err)
}

func TestValidateObjectListElements(t *testing.T) {
	out, err := DiagnosticV1().Validate(map[string]any{
		"differential": []any{
			map[string]any{"condition": "angina"},
		},
		"summary": "possible angina",
	})
	require.NoError(t, err)

	diff := out["differential"].([]any)
	require.Len(t, diff, 1)
	entry := diff[0].(map[string]any)
	require.Equal(t, "angina", entry["condition"])
	// element-level optional fields default too
	require.Equal(t, "", entry["likelihood"])
	require.Equal(t, "", entry["reasoning"])
}

func TestValidateObjectListElementMissingRequired(t *testing.T) {
	_, err := DiagnosticV1().Validate(map[string]any{
		"differential": []any{
			map[string]any{"likelihood": "high"},
		},
	})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	require.Equal(t, "differential[0].condition", valErr.Field)
}

func TestValidateObjectListElementPassThrough(t *testing.T) {
	out, err := DiagnosticV2().Validate(map[string]any{
		"differential": []any{
			map[string]any{"condition": "angina", "novel_score": 0.4},
		},
	})
	require.NoError(t, err)

	entry := out["differential"].([]any)[0].(map[string]any)
	require.Equal(t, 0.4, entry["novel_score"])
}

func TestValidateNilObject(t *testing.T) {
	_, err := ExtractionV1().Validate(nil)
	require.Error(t, err)
}

func TestValidateIntegerAcceptedAsNumber(t *testing.T) {
	out, err := Triage().Validate(map[string]any{
		"urgency":    "LOW",
		"confidence": 1,
	})
	require.NoError(t, err)
	require.Equal(t, float64(1), out["confidence"])
}

func TestExtractionVersionsDiverge(t *testing.T) {
	// v1 and v2 extraction are deliberately distinct schemas.
	v1, v2 := ExtractionV1(), ExtractionV2()
	require.Equal(t, v1.Name, v2.Name)
	require.NotEqual(t, v1.Version, v2.Version)
	require.NotEqual(t, len(v1.Fields), len(v2.Fields))
}

func mergeWith(base map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out[key] = value
	return out
}

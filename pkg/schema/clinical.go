package schema

// Stage schemas for the clinical analysis pipelines. The extraction and
// diagnostic schemas exist in two explicit versions: v1 backs the original
// two-stage pipeline, v2 the four-stage one. The field sets differ on
// purpose; do not merge them.

func floatPtr(v float64) *float64 { return &v }

// ExtractionV1 is the findings-extraction schema of the two-stage pipeline.
func ExtractionV1() *StageSchema {
	return &StageSchema{
		Name:    "extraction",
		Version: "v1",
		Fields: []FieldSpec{
			{Name: "symptoms", Type: TypeStringList, Required: true},
			{Name: "duration", Type: TypeString},
			{Name: "severity", Type: TypeString},
			{Name: "medical_history", Type: TypeStringList},
			{Name: "medications", Type: TypeStringList},
			{Name: "red_flags", Type: TypeStringList},
		},
	}
}

// ExtractionV2 is the richer findings-extraction schema of the four-stage
// pipeline.
func ExtractionV2() *StageSchema {
	return &StageSchema{
		Name:    "extraction",
		Version: "v2",
		Fields: []FieldSpec{
			{Name: "symptoms", Type: TypeStringList, Required: true},
			{Name: "onset", Type: TypeString},
			{Name: "duration", Type: TypeString},
			{Name: "modifying_factors", Type: TypeStringList},
			{Name: "associated_symptoms", Type: TypeStringList},
			{Name: "medical_history", Type: TypeStringList},
			{Name: "medications", Type: TypeStringList},
			{Name: "allergies", Type: TypeStringList},
			{Name: "red_flags", Type: TypeStringList},
			{Name: "vitals", Type: TypeObject},
		},
	}
}

// Triage is the urgency-assessment schema of the four-stage pipeline.
func Triage() *StageSchema {
	return &StageSchema{
		Name:    "triage",
		Version: "v2",
		Fields: []FieldSpec{
			{Name: "urgency", Type: TypeString, Required: true},
			{Name: "red_flags", Type: TypeStringList},
			{Name: "rationale", Type: TypeString},
			{Name: "confidence", Type: TypeNumber, Min: floatPtr(0), Max: floatPtr(1)},
		},
	}
}

// DiagnosticV1 is the differential-diagnosis schema of the two-stage
// pipeline. Its summary field is the flattened report legacy callers read.
func DiagnosticV1() *StageSchema {
	return &StageSchema{
		Name:    "diagnostic",
		Version: "v1",
		Fields: []FieldSpec{
			{
				Name:     "differential",
				Type:     TypeObjectList,
				Required: true,
				Elem: []FieldSpec{
					{Name: "condition", Type: TypeString, Required: true},
					{Name: "likelihood", Type: TypeString},
					{Name: "reasoning", Type: TypeString},
				},
			},
			{Name: "summary", Type: TypeString},
			{Name: "recommended_tests", Type: TypeStringList},
			{Name: "confidence", Type: TypeNumber, Min: floatPtr(0), Max: floatPtr(1)},
		},
	}
}

// DiagnosticV2 is the differential-diagnosis schema of the four-stage
// pipeline.
func DiagnosticV2() *StageSchema {
	return &StageSchema{
		Name:    "diagnostic",
		Version: "v2",
		Fields: []FieldSpec{
			{
				Name:     "differential",
				Type:     TypeObjectList,
				Required: true,
				Elem: []FieldSpec{
					{Name: "condition", Type: TypeString, Required: true},
					{Name: "icd10_code", Type: TypeString},
					{Name: "likelihood", Type: TypeString},
					{Name: "supporting_evidence", Type: TypeStringList},
					{Name: "opposing_evidence", Type: TypeStringList},
				},
			},
			{Name: "reasoning", Type: TypeString},
			{Name: "recommended_tests", Type: TypeStringList},
			{Name: "confidence", Type: TypeNumber, Min: floatPtr(0), Max: floatPtr(1)},
		},
	}
}

// Summary is the report-composition schema of the four-stage pipeline.
func Summary() *StageSchema {
	return &StageSchema{
		Name:    "summary",
		Version: "v2",
		Fields: []FieldSpec{
			{Name: "report", Type: TypeString, Required: true},
			{Name: "reasoning_trace", Type: TypeString},
			{Name: "follow_up", Type: TypeStringList},
			{Name: "patient_instructions", Type: TypeString},
		},
	}
}

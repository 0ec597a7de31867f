package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/clinipath/dxscribe/pkg/pipeline"
	"github.com/clinipath/dxscribe/pkg/provider"
)

// promptsFile represents the structure of ~/.dxscribe/prompts.yaml.
type promptsFile struct {
	Prompts provider.Catalog `yaml:"prompts"`
}

// LoadCatalog returns the managed-prompt catalog: the built-in defaults
// overlaid with any entries from prompts.yaml in the config directory.
// Operators adjust adapter, model, or template per prompt ID there.
func LoadCatalog(configDir string) (provider.Catalog, error) {
	catalog := DefaultCatalog()

	path := filepath.Join(configDir, "prompts.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return catalog, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var file promptsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for id, spec := range file.Prompts {
		catalog[id] = spec
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// DefaultCatalog binds the built-in prompt identifiers to their default
// adapter and templates. Prompt wording is operator-configurable; these
// templates are only the shipped baseline.
func DefaultCatalog() provider.Catalog {
	return provider.Catalog{
		pipeline.PromptExtractV1: {
			Adapter: "anthropic",
			Template: "Extract structured clinical findings from the notes below as a JSON object " +
				"with fields symptoms, duration, severity, medical_history, medications, red_flags.\n\n" +
				"Focus: {{.focus_query}}\n\nNotes:\n{{.clinical_notes}}",
		},
		pipeline.PromptDiagnoseV1: {
			Adapter: "anthropic",
			Template: "Produce a differential diagnosis as a JSON object with fields differential " +
				"(condition, likelihood, reasoning per entry), summary, recommended_tests, confidence.\n\n" +
				"Focus: {{.focus_query}}\n\nFindings:\n{{.previous_findings}}\n\nNotes:\n{{.clinical_notes}}",
		},
		pipeline.PromptExtractV2: {
			Adapter: "anthropic",
			Template: "Extract structured clinical findings from the notes below as a JSON object " +
				"with fields symptoms, onset, duration, modifying_factors, associated_symptoms, " +
				"medical_history, medications, allergies, red_flags, vitals.\n\n" +
				"Focus: {{.focus_query}}\n\nNotes:\n{{.clinical_notes}}",
		},
		pipeline.PromptTriageV2: {
			Adapter: "anthropic",
			Template: "Assess urgency from the findings below. Respond with a JSON object with " +
				"fields urgency, red_flags, rationale, confidence.\n\n" +
				"Focus: {{.focus_query}}\n\nFindings:\n{{.previous_findings}}",
		},
		pipeline.PromptDiagnoseV2: {
			Adapter: "anthropic",
			Template: "Produce a differential diagnosis as a JSON object with fields differential " +
				"(condition, icd10_code, likelihood, supporting_evidence, opposing_evidence per entry), " +
				"reasoning, recommended_tests, confidence.\n\n" +
				"Focus: {{.focus_query}}\n\nTriage:\n{{.previous_findings}}\n\nNotes:\n{{.clinical_notes}}",
		},
		pipeline.PromptSummaryV2: {
			Adapter: "anthropic",
			Template: "Compose the clinician-facing report from the differential below as a JSON " +
				"object with fields report, reasoning_trace, follow_up, patient_instructions.\n\n" +
				"Focus: {{.focus_query}}\n\nDifferential:\n{{.previous_findings}}",
		},
	}
}

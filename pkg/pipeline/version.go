package pipeline

import (
	"fmt"
	"sort"

	"github.com/clinipath/dxscribe/pkg/schema"
)

// Default prompt identifiers. Operators repoint a stage at a different
// remote prompt through configuration; these are only the out-of-the-box
// bindings.
const (
	PromptExtractV1  = "dx.extract.v1"
	PromptDiagnoseV1 = "dx.diagnose.v1"
	PromptExtractV2  = "dx.extract.v2"
	PromptTriageV2   = "dx.triage.v2"
	PromptDiagnoseV2 = "dx.diagnose.v2"
	PromptSummaryV2  = "dx.summary.v2"
)

// FieldRef points at one field of one stage's validated output.
type FieldRef struct {
	Stage string
	Field string
}

// Aliases declares where a version's legacy result fields come from, so
// the assembler can map any version's outputs onto the one stable external
// result shape.
type Aliases struct {
	Report    FieldRef
	Reasoning FieldRef
}

// Version is an immutable, ordered list of stage specs plus the alias
// declarations for the assembler.
type Version struct {
	Name    string
	Stages  []StageSpec
	Aliases Aliases
}

// Validate checks the version definition for structural errors.
func (v *Version) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("version name is required")
	}
	if len(v.Stages) == 0 {
		return fmt.Errorf("version %s must define at least one stage", v.Name)
	}
	seen := make(map[string]struct{})
	for _, stage := range v.Stages {
		if err := stage.validate(); err != nil {
			return err
		}
		if _, ok := seen[stage.Name]; ok {
			return fmt.Errorf("duplicate stage name: %s", stage.Name)
		}
		seen[stage.Name] = struct{}{}
	}
	if _, ok := seen[v.Aliases.Report.Stage]; v.Aliases.Report.Stage != "" && !ok {
		return fmt.Errorf("version %s report alias references unknown stage %s", v.Name, v.Aliases.Report.Stage)
	}
	if _, ok := seen[v.Aliases.Reasoning.Stage]; v.Aliases.Reasoning.Stage != "" && !ok {
		return fmt.Errorf("version %s reasoning alias references unknown stage %s", v.Name, v.Aliases.Reasoning.Stage)
	}
	return nil
}

// WithPromptOverrides returns a copy of the version with stage prompt IDs
// replaced per the override map (stage name -> prompt id). Unknown stage
// names are rejected so a typo in operator config fails loudly.
func (v *Version) WithPromptOverrides(overrides map[string]string) (*Version, error) {
	if len(overrides) == 0 {
		return v, nil
	}
	known := make(map[string]struct{}, len(v.Stages))
	for _, stage := range v.Stages {
		known[stage.Name] = struct{}{}
	}
	for name := range overrides {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("prompt override for unknown stage %s", name)
		}
	}

	out := &Version{Name: v.Name, Aliases: v.Aliases, Stages: make([]StageSpec, len(v.Stages))}
	copy(out.Stages, v.Stages)
	for i := range out.Stages {
		if promptID, ok := overrides[out.Stages[i].Name]; ok {
			out.Stages[i].PromptID = promptID
		}
	}
	return out, nil
}

// V1 is the original two-stage pipeline: extraction feeding differential
// diagnosis.
func V1() *Version {
	return &Version{
		Name: "v1",
		Stages: []StageSpec{
			{
				Name:     "extraction",
				PromptID: PromptExtractV1,
				Inputs:   []string{VarClinicalNotes, VarFocusQuery},
				Schema:   schema.ExtractionV1(),
			},
			{
				Name:     "diagnostic",
				PromptID: PromptDiagnoseV1,
				Inputs:   []string{VarClinicalNotes, VarFocusQuery, VarPreviousFindings},
				Schema:   schema.DiagnosticV1(),
			},
		},
		Aliases: Aliases{
			Report:    FieldRef{Stage: "diagnostic", Field: "summary"},
			Reasoning: FieldRef{Stage: "diagnostic", Field: "differential"},
		},
	}
}

// V2 is the four-stage pipeline: extraction, triage, differential
// diagnosis, report composition.
func V2() *Version {
	return &Version{
		Name: "v2",
		Stages: []StageSpec{
			{
				Name:     "extraction",
				PromptID: PromptExtractV2,
				Inputs:   []string{VarClinicalNotes, VarFocusQuery},
				Schema:   schema.ExtractionV2(),
			},
			{
				Name:     "triage",
				PromptID: PromptTriageV2,
				Inputs:   []string{VarFocusQuery, VarPreviousFindings},
				Schema:   schema.Triage(),
			},
			{
				Name:     "diagnostic",
				PromptID: PromptDiagnoseV2,
				Inputs:   []string{VarClinicalNotes, VarFocusQuery, VarPreviousFindings},
				Schema:   schema.DiagnosticV2(),
			},
			{
				Name:     "summary",
				PromptID: PromptSummaryV2,
				Inputs:   []string{VarFocusQuery, VarPreviousFindings},
				Schema:   schema.Summary(),
			},
		},
		Aliases: Aliases{
			Report:    FieldRef{Stage: "summary", Field: "report"},
			Reasoning: FieldRef{Stage: "summary", Field: "reasoning_trace"},
		},
	}
}

// DefaultVersion is the pipeline used when configuration names none.
const DefaultVersion = "v2"

func registry() map[string]func() *Version {
	return map[string]func() *Version{
		"v1": V1,
		"v2": V2,
	}
}

// Lookup returns a fresh copy of the named pipeline version.
func Lookup(name string) (*Version, error) {
	if name == "" {
		name = DefaultVersion
	}
	build, ok := registry()[name]
	if !ok {
		return nil, fmt.Errorf("unknown pipeline version %s", name)
	}
	return build(), nil
}

// VersionNames lists the known pipeline versions in sorted order.
func VersionNames() []string {
	names := make([]string, 0, len(registry()))
	for name := range registry() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package pipeline

import (
	"fmt"

	"github.com/clinipath/dxscribe/pkg/schema"
)

// Variable names the runner provides to stages. Caller inputs are always
// available; the previous stage's validated output is exposed under
// VarPreviousFindings (and under the previous stage's own name).
const (
	VarClinicalNotes    = "clinical_notes"
	VarFocusQuery       = "focus_query"
	VarPreviousFindings = "previous_findings"
)

// StageSpec identifies one pipeline stage: a stable name, the managed
// prompt it invokes, the variables it requires, and the schema its output
// must satisfy. Immutable, defined once per pipeline version.
type StageSpec struct {
	Name     string
	PromptID string
	Inputs   []string
	Schema   *schema.StageSchema
}

func (s StageSpec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("stage name is required")
	}
	if s.PromptID == "" {
		return fmt.Errorf("stage %s must have a prompt id", s.Name)
	}
	if s.Schema == nil {
		return fmt.Errorf("stage %s must have a schema", s.Name)
	}
	if len(s.Inputs) == 0 {
		return fmt.Errorf("stage %s must declare its inputs", s.Name)
	}
	return nil
}

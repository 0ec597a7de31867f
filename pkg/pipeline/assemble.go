package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// assemble merges the validated stage outputs and final metadata into one
// Result, filling the legacy aliases from the version's declarations. Pure
// mapping, no I/O, cannot fail: anything that could go wrong was caught by
// the stages themselves.
func assemble(version *Version, outputs map[string]map[string]any, meta *Metadata) *Result {
	return &Result{
		Pipeline:       version.Name,
		Outputs:        outputs,
		Metadata:       meta,
		Report:         flattenRef(version.Aliases.Report, outputs),
		ReasoningTrace: flattenRef(version.Aliases.Reasoning, outputs),
	}
}

func flattenRef(ref FieldRef, outputs map[string]map[string]any) string {
	if ref.Stage == "" {
		return ""
	}
	stage, ok := outputs[ref.Stage]
	if !ok {
		return ""
	}
	return flatten(stage[ref.Field])
}

// flatten renders a validated value as plain text for the legacy string
// fields: strings pass through, lists become one line per entry, objects
// become "key: value" lines in key order.
func flatten(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			if line := flatten(item); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			if line := flatten(v[key]); line != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", key, line))
			}
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Package schema validates recovered stage output against per-stage
// structural schemas. Validation is shape-only: types, element shape,
// numeric ranges. Missing optional fields take declared defaults, and
// unknown fields pass through untouched so a newer pipeline version can
// rely on structure an older validator never declared.
package schema

import "fmt"

// FieldType enumerates the value shapes a field may declare.
type FieldType int

const (
	TypeString FieldType = iota
	TypeNumber
	TypeBool
	TypeStringList
	TypeObject
	TypeObjectList
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "bool"
	case TypeStringList:
		return "string list"
	case TypeObject:
		return "object"
	case TypeObjectList:
		return "object list"
	default:
		return "unknown"
	}
}

// FieldSpec declares one field of a stage schema.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool
	// Default replaces a missing optional field. Nil means the type's
	// empty value ("" / 0 / false / empty list / empty object).
	Default any
	// Min and Max bound numeric fields when set.
	Min *float64
	Max *float64
	// Elem declares the fields of object and object-list values.
	Elem []FieldSpec
}

// StageSchema is the full shape contract for one stage's output.
type StageSchema struct {
	Name    string
	Version string
	Fields  []FieldSpec
}

// ValidationError reports a structural schema violation. It is distinct
// from a parse failure: the model produced JSON, just the wrong shape.
type ValidationError struct {
	Schema string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema %s: field %s: %s", e.Schema, e.Field, e.Reason)
}

// Validate checks obj against the schema. The result contains every
// declared field (defaults filled for missing optional ones) plus any
// undeclared fields obj carried, unmodified.
func (s *StageSchema) Validate(obj map[string]any) (map[string]any, error) {
	if obj == nil {
		return nil, &ValidationError{Schema: s.Name, Field: "", Reason: "object is nil"}
	}

	out := make(map[string]any, len(obj)+len(s.Fields))
	for key, value := range obj {
		out[key] = value
	}

	for _, field := range s.Fields {
		value, present := obj[field.Name]
		if !present || value == nil {
			if field.Required {
				return nil, &ValidationError{Schema: s.Name, Field: field.Name, Reason: "required field is missing"}
			}
			out[field.Name] = defaultFor(field)
			continue
		}

		checked, err := s.checkField(field.Name, field, value)
		if err != nil {
			return nil, err
		}
		out[field.Name] = checked
	}

	return out, nil
}

func (s *StageSchema) checkField(path string, field FieldSpec, value any) (any, error) {
	switch field.Type {
	case TypeString:
		str, ok := value.(string)
		if !ok {
			return nil, s.typeError(path, field, value)
		}
		return str, nil

	case TypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, s.typeError(path, field, value)
		}
		return b, nil

	case TypeNumber:
		num, ok := asNumber(value)
		if !ok {
			return nil, s.typeError(path, field, value)
		}
		if field.Min != nil && num < *field.Min {
			return nil, &ValidationError{Schema: s.Name, Field: path, Reason: fmt.Sprintf("value %v below minimum %v", num, *field.Min)}
		}
		if field.Max != nil && num > *field.Max {
			return nil, &ValidationError{Schema: s.Name, Field: path, Reason: fmt.Sprintf("value %v above maximum %v", num, *field.Max)}
		}
		return num, nil

	case TypeStringList:
		items, ok := value.([]any)
		if !ok {
			if strs, ok := value.([]string); ok {
				converted := make([]any, len(strs))
				for i, str := range strs {
					converted[i] = str
				}
				return converted, nil
			}
			return nil, s.typeError(path, field, value)
		}
		for i, item := range items {
			if _, ok := item.(string); !ok {
				return nil, &ValidationError{Schema: s.Name, Field: fmt.Sprintf("%s[%d]", path, i), Reason: fmt.Sprintf("expected string, got %T", item)}
			}
		}
		return items, nil

	case TypeObject:
		nested, ok := value.(map[string]any)
		if !ok {
			return nil, s.typeError(path, field, value)
		}
		return s.checkObject(path, field.Elem, nested)

	case TypeObjectList:
		items, ok := value.([]any)
		if !ok {
			return nil, s.typeError(path, field, value)
		}
		checked := make([]any, 0, len(items))
		for i, item := range items {
			nested, ok := item.(map[string]any)
			if !ok {
				return nil, &ValidationError{Schema: s.Name, Field: fmt.Sprintf("%s[%d]", path, i), Reason: fmt.Sprintf("expected object, got %T", item)}
			}
			out, err := s.checkObject(fmt.Sprintf("%s[%d]", path, i), field.Elem, nested)
			if err != nil {
				return nil, err
			}
			checked = append(checked, out)
		}
		return checked, nil

	default:
		return nil, &ValidationError{Schema: s.Name, Field: path, Reason: "unknown field type"}
	}
}

// checkObject applies element field specs with the same defaulting and
// pass-through rules as top-level validation.
func (s *StageSchema) checkObject(path string, fields []FieldSpec, obj map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(obj)+len(fields))
	for key, value := range obj {
		out[key] = value
	}

	for _, field := range fields {
		value, present := obj[field.Name]
		fieldPath := path + "." + field.Name
		if !present || value == nil {
			if field.Required {
				return nil, &ValidationError{Schema: s.Name, Field: fieldPath, Reason: "required field is missing"}
			}
			out[field.Name] = defaultFor(field)
			continue
		}
		checked, err := s.checkField(fieldPath, field, value)
		if err != nil {
			return nil, err
		}
		out[field.Name] = checked
	}

	return out, nil
}

func (s *StageSchema) typeError(path string, field FieldSpec, value any) *ValidationError {
	return &ValidationError{
		Schema: s.Name,
		Field:  path,
		Reason: fmt.Sprintf("expected %s, got %T", field.Type, value),
	}
}

func defaultFor(field FieldSpec) any {
	if field.Default != nil {
		return field.Default
	}
	switch field.Type {
	case TypeString:
		return ""
	case TypeNumber:
		return float64(0)
	case TypeBool:
		return false
	case TypeStringList, TypeObjectList:
		return []any{}
	case TypeObject:
		return map[string]any{}
	default:
		return nil
	}
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

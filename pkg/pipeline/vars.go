package pipeline

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// SerializeVars flattens named inputs into the string-keyed string mapping
// a managed prompt call expects. Strings pass through, primitives are
// stringified, objects and arrays become pretty-printed JSON. Pure and
// total: a value the encoder rejects falls back to fmt stringification
// rather than failing.
func SerializeVars(vars map[string]any) map[string]string {
	out := make(map[string]string, len(vars))
	for name, value := range vars {
		out[name] = serializeValue(value)
	}
	return out
}

func serializeValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(data)
	}
}

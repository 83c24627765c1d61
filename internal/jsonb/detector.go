package jsonb

import (
	"encoding/json"
	"strings"
)

// IsJSON reports whether value holds a JSON object or array. Bare scalars
// are not treated as JSON since every number or "true" would qualify.
func IsJSON(value string) bool {
	value = strings.TrimSpace(value)
	if len(value) < 2 {
		return false
	}
	if first := value[0]; first != '{' && first != '[' {
		return false
	}
	return json.Valid([]byte(value))
}

// Kind returns the JSON type of a document: object, array, string, number,
// boolean or null. Invalid input yields "unknown".
func Kind(value string) string {
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		return "unknown"
	}

	switch parsed.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "unknown"
	}
}

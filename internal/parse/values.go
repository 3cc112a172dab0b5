package parse

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/statement-extractor/internal/entity"
)

// toRecord flattens a decoded object into string values.
func toRecord(obj map[string]any) entity.Record {
	rec := make(entity.Record, len(obj))
	for k, v := range obj {
		rec[strings.TrimSpace(k)] = stringify(v)
	}
	return rec
}

// stringify keeps numbers in their literal form, renders booleans as
// true/false, null as empty and nested values as compact JSON.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

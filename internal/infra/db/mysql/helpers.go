package mysql

import (
	"encoding/json"
	"strings"
)

// marshalJSON serializes v for a JSON column, defaulting to an empty
// object so the column constraint never trips on nil.
func marshalJSON(v any) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// unmarshalJSON decodes a JSON column into out, tolerating empty values.
func unmarshalJSON(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

// stringOrDash keeps non-nullable string columns populated.
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

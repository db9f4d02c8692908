package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DecodeImages normalizes the images column. Anything that is not a JSON
// array yields an empty list; non-string and blank entries are skipped.
func DecodeImages(raw []byte) []string {
	out := []string{}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// DecodeSpecifications normalizes the specifications column to flat strings.
// Nested values are dropped.
func DecodeSpecifications(raw []byte) map[string]string {
	out := map[string]string{}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return out
	}
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		}
	}
	return out
}

// Package rawconfig reads values decoded from JSON or YAML configuration
// files, where mappings and numbers may arrive in several Go shapes.
package rawconfig

import (
	"fmt"
	"strconv"
)

// Map returns v as a mapping with string keys. YAML mappings with non-string
// keys are converted, formatting each key with fmt.Sprint.
func Map(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = val
		}
		return m, true
	}
	return nil, false
}

// Scalar formats strings, booleans and numbers the way a contributor would
// type them. Other values are rejected.
func Scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

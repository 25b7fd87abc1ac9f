package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FlattenArguments decodes a JSON object into a flat string map.
// Scalars are stringified, null is dropped, nested values keep their JSON text.
func FlattenArguments(raw []byte) (map[string]string, error) {
	args := make(map[string]string)
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return args, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return nil, errors.Wrap(err, "arguments must be a JSON object")
	}
	for key, value := range fields {
		v, ok, err := flattenValue(value)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %q", key)
		}
		if ok {
			args[key] = v
		}
	}
	return args, nil
}

func flattenValue(value json.RawMessage) (string, bool, error) {
	var decoded interface{}
	if err := json.Unmarshal(value, &decoded); err != nil {
		return "", false, err
	}
	switch v := decoded.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case bool, float64:
		return fmt.Sprint(v), true, nil
	default:
		return string(value), true, nil
	}
}

// Argument returns the first non-empty value among keys.
func Argument(args map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(args[key]); v != "" {
			return v
		}
	}
	return ""
}

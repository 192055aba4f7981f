package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseToolArgs turns key=value pairs into tool arguments. Values that parse
// as JSON (numbers, booleans, null, quoted strings) keep their JSON type;
// anything else is a string.
func parseToolArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", p)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		args[key] = v
	}
	return args, nil
}

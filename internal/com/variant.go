package com

import (
	"fmt"

	"github.com/deixis/vsbridge/internal/automation"
)

// vsBuildErrorLevel values.
const (
	vsBuildErrorLevelLow    = 1
	vsBuildErrorLevelMedium = 2
	vsBuildErrorLevelHigh   = 4
)

// Frame properties in lookup order. StackFrame2 has FileName and
// LineNumber; some debug engines only expose the older names.
var (
	frameFileProps = []string{"FileName", "File"}
	frameLineProps = []string{"LineNumber", "LineCharOffset"}
)

// severityFromLevel maps vsBuildErrorLevel. Unknown levels return "" so
// the caller falls back to inference.
func severityFromLevel(level int) automation.Severity {
	switch level {
	case vsBuildErrorLevelHigh:
		return automation.SeverityError
	case vsBuildErrorLevelMedium:
		return automation.SeverityWarning
	case vsBuildErrorLevelLow:
		return automation.SeverityMessage
	}
	return ""
}

// variantInt converts the integer kinds a VARIANT can carry.
func variantInt(val any) (int, error) {
	switch n := val.(type) {
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case int:
		return n, nil
	case float64:
		return int(n), nil
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("unexpected variant value %T", val)
}

// firstString returns the first non-empty property among names.
func firstString(read func(name string) (string, error), names ...string) string {
	for _, name := range names {
		if s, err := read(name); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// firstInt returns the first non-zero property among names.
func firstInt(read func(name string) (int, error), names ...string) int {
	for _, name := range names {
		if n, err := read(name); err == nil && n != 0 {
			return n
		}
	}
	return 0
}

// collectReadable reads elements 0..n-1 and keeps those that read without
// error.
func collectReadable[T any](n int, read func(i int) (T, error)) []T {
	out := make([]T, 0, max(n, 0))
	for i := range n {
		v, err := read(i)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

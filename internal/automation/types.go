package automation

import (
	"fmt"
	"strings"
)

// Severity classifies an Error List entry.
type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
	SeverityMessage Severity = "Message"
)

// ErrorItem is one entry of the IDE's Error List.
type ErrorItem struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	FileName    string   `json:"file_name"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	Project     string   `json:"project"`
}

func (e ErrorItem) String() string {
	return fmt.Sprintf("[%s] %s (%s:%d)", e.Severity, e.Description, BaseName(e.FileName), e.Line)
}

// SolutionInfo describes the open solution.
type SolutionInfo struct {
	SolutionPath string   `json:"solution_path"`
	SolutionName string   `json:"solution_name"`
	Projects     []string `json:"projects"`
}

// BuildResult is the outcome of a solution build request.
type BuildResult struct {
	Success    bool   `json:"success"`
	ErrorCount int    `json:"error_count"`
	Message    string `json:"message"`
}

// DebugMode is the debugger's current mode. Values other than the three
// constants are passed through as reported by the IDE.
type DebugMode string

const (
	DesignMode DebugMode = "design"
	RunMode    DebugMode = "run"
	BreakMode  DebugMode = "break"
)

// DebuggerState is a snapshot of the debugger. The Current* fields are set
// only in BreakMode.
type DebuggerState struct {
	Mode            DebugMode `json:"mode"`
	Message         string    `json:"message"`
	IsDebugging     bool      `json:"is_debugging"`
	IsRunning       bool      `json:"is_running"`
	IsAtBreakpoint  bool      `json:"is_at_breakpoint"`
	CurrentFunction *string   `json:"current_function,omitempty"`
	CurrentFile     *string   `json:"current_file,omitempty"`
	CurrentLine     *int      `json:"current_line,omitempty"`
}

// StackFrame is one frame of the current thread's call stack.
type StackFrame struct {
	FunctionName string `json:"function_name"`
	FileName     string `json:"file_name"`
	LineNumber   int    `json:"line_number"`
	Language     string `json:"language"`
}

// newDebuggerState derives the flags and message for mode. frame is used
// only in BreakMode.
func newDebuggerState(mode DebugMode, frame StackFrame) DebuggerState {
	s := DebuggerState{
		Mode:           mode,
		IsDebugging:    mode != DesignMode,
		IsRunning:      mode == RunMode,
		IsAtBreakpoint: mode == BreakMode,
	}

	switch mode {
	case DesignMode:
		s.Message = "Not debugging (Design mode)"
	case RunMode:
		s.Message = "Running (no breakpoint)"
	case BreakMode:
		fn, file, line := frame.FunctionName, BaseName(frame.FileName), frame.LineNumber
		s.CurrentFunction = &fn
		s.CurrentFile = &file
		s.CurrentLine = &line
		s.Message = fmt.Sprintf("At breakpoint: %s (%s:%d)", fn, file, line)
	default:
		s.Message = string(mode)
	}
	return s
}

// BaseName returns the last element of a Windows or slash-separated path.
// filepath.Base is not used because IDE paths keep backslashes on every host.
func BaseName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// inferSeverity guesses a severity from description text. It is only used
// when the automation object model does not report an error level.
func inferSeverity(description string) Severity {
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "warning"):
		return SeverityWarning
	case strings.Contains(desc, "message"), strings.Contains(desc, "info"):
		return SeverityMessage
	}
	return SeverityError
}

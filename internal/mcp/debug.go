package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/deixis/vsbridge/internal/automation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// control adapts a connector action returning a status message.
func control(action func() (string, error)) (*mcp.CallToolResult, any, error) {
	msg, err := action()
	if err != nil {
		return failure(err)
	}
	return textResult(msg)
}

func (h *handler) startDebuggingHandler(ctx context.Context, req *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	return control(h.conn.StartDebugging)
}

func (h *handler) startWithoutDebuggingHandler(ctx context.Context, req *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	return control(h.conn.StartWithoutDebugging)
}

func (h *handler) continueDebuggingHandler(ctx context.Context, req *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	return control(h.conn.ContinueDebugging)
}

func (h *handler) stopDebuggingHandler(ctx context.Context, req *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	return control(h.conn.StopDebugging)
}

func (h *handler) debuggerStateHandler(ctx context.Context, req *mcp.CallToolRequest, params formatParams) (*mcp.CallToolResult, any, error) {
	state, err := h.conn.DebuggerState()
	if err != nil {
		return failure(err)
	}
	if wantJSON(params.Format) {
		return jsonResult(state)
	}
	return textResult(state.Message)
}

func (h *handler) callStackHandler(ctx context.Context, req *mcp.CallToolRequest, params formatParams) (*mcp.CallToolResult, any, error) {
	frames, err := h.conn.CallStack()
	if err != nil {
		return failure(err)
	}
	if wantJSON(params.Format) {
		return jsonResult(frames)
	}
	if len(frames) == 0 {
		return textResult("No call stack available (not at a breakpoint or not debugging).")
	}
	return textResult(formatCallStack(frames))
}

func formatCallStack(frames []automation.StackFrame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Call Stack (%d frames):\n", len(frames))
	for i, f := range frames {
		fmt.Fprintf(&b, "\n  [%d] %s at %s:%d", i, f.FunctionName, f.FileName, f.LineNumber)
	}
	return b.String()
}

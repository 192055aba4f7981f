// Package mcp provides the vsbridge MCP server, registering all Visual
// Studio tools and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/deixis/vsbridge"
	"github.com/deixis/vsbridge/internal/automation"
	"github.com/deixis/vsbridge/internal/config"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// NotConnected is returned by every tool when no Visual Studio instance can
// be reached.
const NotConnected = "No Visual Studio instance found. Start Visual Studio with a solution open and try again."

// handler holds shared dependencies for all tool handlers.
type handler struct {
	conn     *automation.Connector
	maxLines int
}

// NewServer creates an MCP server with all vsbridge tools registered.
func NewServer(cfg *config.Config, conn *automation.Connector, opts ...ServerOption) *mcp.Server {
	h := &handler{
		conn:     conn,
		maxLines: cfg.MaxLines(),
	}

	var so serverOptions
	for _, o := range opts {
		o(&so)
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "vsbridge", Version: vsbridge.Version}, mcpOpts)

	if so.callLog != nil {
		s.AddReceivingMiddleware(logCalls(so.callLog))
	}

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_output_panes",
		Description: "List the Output window panes in Visual Studio (e.g. Build, Debug, Package Manager).",
	}, h.listPanesHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "read_output_pane",
		Description: `Read the content of an Output window pane.

pane_name matches case-insensitively against pane names; the first pane containing it is read.
Only the last max_lines lines are returned (default 50); set max_lines to 0 for everything.
Use list_output_panes first to see available panes.`,
	}, h.readPaneHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_error_list",
		Description: "Return the errors, warnings and messages currently shown in the Visual Studio Error List, grouped by severity.",
	}, h.errorListHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_solution_info",
		Description: "Return the path of the open Visual Studio solution and the projects it contains.",
	}, h.solutionHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "build_solution",
		Description: `Build the open Visual Studio solution.

By default waits for the build to finish and reports success and the number of failed projects.
Set wait=false to start the build and return immediately; read the Build pane or the error list afterwards.`,
	}, h.buildHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "start_debugging",
		Description: "Start debugging the startup project (F5). If stopped at a breakpoint, continue execution.",
	}, h.startDebuggingHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "start_without_debugging",
		Description: "Start the startup project without the debugger (Ctrl+F5).",
	}, h.startWithoutDebuggingHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "continue_debugging",
		Description: "Continue execution when the debugger is stopped at a breakpoint.",
	}, h.continueDebuggingHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "stop_debugging",
		Description: "Stop the current debugging session (Shift+F5).",
	}, h.stopDebuggingHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_debugger_state",
		Description: "Return the debugger mode (design, run or break) and, at a breakpoint, the current function, file and line.",
	}, h.debuggerStateHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_call_stack",
		Description: "Return the current thread's call stack when the debugger is stopped at a breakpoint.",
	}, h.callStackHandler)

	return s
}

// ServerOption configures the vsbridge MCP server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	callLog *log.Logger
}

// WithCallLog logs every request the server receives to l.
func WithCallLog(l *log.Logger) ServerOption {
	return func(o *serverOptions) {
		o.callLog = l
	}
}

// logCalls tags each request with an ID and logs its method, tool and
// duration once it completes.
func logCalls(l *log.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			id := uuid.New().String()
			what := method
			if call, ok := req.(*mcp.CallToolRequest); ok && call.Params != nil {
				what = method + " " + call.Params.Name
			}
			start := time.Now()
			res, err := next(ctx, method, req)
			elapsed := time.Since(start).Round(time.Millisecond)
			if err != nil {
				l.Printf("%s %s failed after %s: %v", id, what, elapsed, err)
			} else {
				l.Printf("%s %s ok in %s", id, what, elapsed)
			}
			return res, err
		}
	}
}

// formatParams is shared by tools that can render text or JSON.
type formatParams struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: text for a human-readable summary or json for structured data. Default: text."`
}

type noParams struct{}

// wantJSON reports whether format selects JSON output. Anything other than
// json, in any case, selects text.
func wantJSON(format string) bool {
	return strings.EqualFold(strings.TrimSpace(format), "json")
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("encoding result: %v", err))
	}
	return textResult(string(data))
}

// failure turns a connector error into a tool result. A missing instance is
// an ordinary answer; anything else is an automation fault.
func failure(err error) (*mcp.CallToolResult, any, error) {
	if errors.Is(err, automation.ErrNotConnected) {
		return textResult(NotConnected)
	}
	return errorResult(fmt.Sprintf("Visual Studio automation call failed: %v", err))
}

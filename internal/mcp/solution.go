package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deixis/vsbridge/internal/automation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (h *handler) solutionHandler(ctx context.Context, req *mcp.CallToolRequest, params formatParams) (*mcp.CallToolResult, any, error) {
	info, err := h.conn.SolutionInfo()
	if errors.Is(err, automation.ErrNoSolution) {
		return textResult("No solution is currently open in Visual Studio.")
	}
	if err != nil {
		return failure(err)
	}

	if wantJSON(params.Format) {
		return jsonResult(info)
	}

	var b strings.Builder
	fmt.Fprintln(&b, "Current Solution:")
	fmt.Fprintf(&b, "  Name: %s\n", info.SolutionName)
	fmt.Fprintf(&b, "  Path: %s\n", info.SolutionPath)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Projects (%d):", len(info.Projects))
	for _, p := range info.Projects {
		fmt.Fprintf(&b, "\n  - %s", p)
	}
	return textResult(b.String())
}

type buildParams struct {
	Wait   *bool  `json:"wait,omitempty" jsonschema:"Wait for the build to finish before returning. Default: true."`
	Format string `json:"format,omitempty" jsonschema:"Output format: text for a human-readable summary or json for structured data. Default: text."`
}

func (h *handler) buildHandler(ctx context.Context, req *mcp.CallToolRequest, params buildParams) (*mcp.CallToolResult, any, error) {
	// Default wait=true when nil (MCP default).
	wait := true
	if params.Wait != nil {
		wait = *params.Wait
	}

	res, err := h.conn.BuildSolution(wait)
	if err != nil {
		return failure(err)
	}

	if wantJSON(params.Format) {
		return jsonResult(res)
	}
	return textResult(res.Message)
}

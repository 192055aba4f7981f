package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deixis/vsbridge/internal/automation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (h *handler) listPanesHandler(ctx context.Context, req *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	names, err := h.conn.PaneNames()
	if err != nil {
		return failure(err)
	}
	if len(names) == 0 {
		return textResult("No output panes available.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Output Panes (%d):\n", len(names))
	for _, n := range names {
		fmt.Fprintf(&b, "  - %s\n", n)
	}
	return textResult(strings.TrimSuffix(b.String(), "\n"))
}

type readPaneParams struct {
	PaneName string `json:"pane_name" jsonschema:"Name or partial name of the Output window pane (e.g. Build, Debug). Matched case-insensitively."`
	MaxLines *int   `json:"max_lines,omitempty" jsonschema:"Maximum number of lines to return from the end of the pane. 0 returns all content. Default: 50."`
}

func (h *handler) readPaneHandler(ctx context.Context, req *mcp.CallToolRequest, params readPaneParams) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(params.PaneName) == "" {
		return errorResult("pane_name is required. Use list_output_panes to see available panes.")
	}

	maxLines := h.maxLines
	if params.MaxLines != nil {
		maxLines = *params.MaxLines
	}

	text, err := h.conn.ReadPane(params.PaneName, maxLines)
	if errors.Is(err, automation.ErrPaneNotFound) {
		return textResult(fmt.Sprintf("Could not find an output pane matching %q. Use list_output_panes to see available panes.", params.PaneName))
	}
	if err != nil {
		return failure(err)
	}
	if strings.TrimSpace(text) == "" {
		return textResult(fmt.Sprintf("Output pane %q is empty.", params.PaneName))
	}
	return textResult(text)
}

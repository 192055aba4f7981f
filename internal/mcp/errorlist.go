package mcp

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/deixis/vsbridge/internal/automation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// severityOrder is the order severity groups are printed in. Severities not
// listed follow alphabetically.
var severityOrder = []automation.Severity{
	automation.SeverityError,
	automation.SeverityWarning,
	automation.SeverityMessage,
}

func (h *handler) errorListHandler(ctx context.Context, req *mcp.CallToolRequest, params formatParams) (*mcp.CallToolResult, any, error) {
	items, err := h.conn.ErrorItems()
	if err != nil {
		return failure(err)
	}

	if wantJSON(params.Format) {
		if items == nil {
			items = []automation.ErrorItem{}
		}
		return jsonResult(items)
	}
	if len(items) == 0 {
		return textResult("No errors or warnings in the Error List.")
	}
	return textResult(formatErrorList(items))
}

func formatErrorList(items []automation.ErrorItem) string {
	groups := make(map[automation.Severity][]automation.ErrorItem)
	var extra []automation.Severity
	for _, it := range items {
		if _, ok := groups[it.Severity]; !ok && !slices.Contains(severityOrder, it.Severity) {
			extra = append(extra, it.Severity)
		}
		groups[it.Severity] = append(groups[it.Severity], it)
	}
	slices.Sort(extra)

	var b strings.Builder
	fmt.Fprintf(&b, "Error List (%d items):\n", len(items))
	fmt.Fprintln(&b)

	for _, sev := range append(slices.Clone(severityOrder), extra...) {
		group := groups[sev]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "=== %ss (%d) ===\n", sev, len(group))
		for _, it := range group {
			fmt.Fprintln(&b, it.String())
		}
		fmt.Fprintln(&b)
	}

	return strings.TrimRight(b.String(), "\n")
}

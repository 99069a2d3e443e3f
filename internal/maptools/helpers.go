// Package maptools implements the MCP tool handlers for the lifecycle map.
//
// Each tool is a small struct holding its dependencies, with a Definition
// describing the schema and a Handle processing calls. The read tools wrap
// the query service, the write tools wrap the mutation service — handlers
// never touch the store directly.
package maptools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rdlmap/rdlmap/internal/lifecycle"
)

// jsonResult renders v as an indented JSON tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// domainResult maps the lifecycle error taxonomy to tool-result errors so
// the host sees validation, conflict and not-found as actionable messages
// rather than protocol failures. Anything else propagates as a real error.
func domainResult(err error) (*mcp.CallToolResult, error) {
	if lifecycle.IsValidation(err) || lifecycle.IsConflict(err) || lifecycle.IsNotFound(err) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

// optionalString returns a pointer to the named argument when the caller
// supplied it, nil when absent. Patch semantics need the distinction
// between "not given" and "set to empty".
func optionalString(req mcp.CallToolRequest, key string) *string {
	args := req.GetArguments()
	raw, ok := args[key]
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil
	}
	return &s
}

package maptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rdlmap/rdlmap/internal/lifecycle"
	"github.com/rdlmap/rdlmap/internal/query"
)

// SubstagesTool handles the stage_substages MCP tool.
type SubstagesTool struct {
	queries *query.Service
}

// NewSubstagesTool creates a SubstagesTool over the query service.
func NewSubstagesTool(queries *query.Service) *SubstagesTool {
	return &SubstagesTool{queries: queries}
}

// Definition returns the MCP tool definition for stage_substages.
func (t *SubstagesTool) Definition() mcp.Tool {
	return mcp.NewTool("stage_substages",
		mcp.WithDescription(
			"List the substages of a lifecycle stage with their descriptions and "+
				"exemplar tools. A stage without substages yields an empty list.",
		),
		mcp.WithString("stage_id",
			mcp.Required(),
			mcp.Description("Stage name to inspect (e.g. COLLECT)"),
		),
	)
}

// Handle processes the stage_substages tool call.
func (t *SubstagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stageID := req.GetString("stage_id", "")
	if stageID == "" {
		return mcp.NewToolResultError("'stage_id' is required"), nil
	}

	subs, err := t.queries.SubstagesOf(stageID)
	if err != nil {
		return nil, fmt.Errorf("listing substages of %s: %w", stageID, err)
	}

	type substageResponse struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Exemplars   []string `json:"exemplars,omitempty"`
	}
	resp := make([]substageResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, substageResponse{
			Name:        sub.Name,
			Description: sub.Description,
			Exemplars:   sub.ExemplarList(),
		})
	}
	return jsonResult(resp)
}

// ToolsTool handles the stage_tools MCP tool.
type ToolsTool struct {
	queries *query.Service
}

// NewToolsTool creates a ToolsTool over the query service.
func NewToolsTool(queries *query.Service) *ToolsTool {
	return &ToolsTool{queries: queries}
}

// Definition returns the MCP tool definition for stage_tools.
func (t *ToolsTool) Definition() mcp.Tool {
	return mcp.NewTool("stage_tools",
		mcp.WithDescription(
			"List the tools of a lifecycle stage in name order, with description, "+
				"link and provider. A stage without tools yields an empty list.",
		),
		mcp.WithString("stage_id",
			mcp.Required(),
			mcp.Description("Stage name to inspect (e.g. COLLECT)"),
		),
	)
}

// Handle processes the stage_tools tool call.
func (t *ToolsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stageID := req.GetString("stage_id", "")
	if stageID == "" {
		return mcp.NewToolResultError("'stage_id' is required"), nil
	}

	tools, err := t.queries.ToolsOf(stageID)
	if err != nil {
		return nil, fmt.Errorf("listing tools of %s: %w", stageID, err)
	}
	if tools == nil {
		tools = []lifecycle.Tool{}
	}
	return jsonResult(tools)
}

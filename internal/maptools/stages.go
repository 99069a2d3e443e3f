package maptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rdlmap/rdlmap/internal/graph"
	"github.com/rdlmap/rdlmap/internal/query"
)

// StagesTool handles the lifecycle_stages MCP tool.
type StagesTool struct {
	queries *query.Service
}

// NewStagesTool creates a StagesTool over the query service.
func NewStagesTool(queries *query.Service) *StagesTool {
	return &StagesTool{queries: queries}
}

// Definition returns the MCP tool definition for lifecycle_stages.
func (t *StagesTool) Definition() mcp.Tool {
	return mcp.NewTool("lifecycle_stages",
		mcp.WithDescription(
			"List all stages of the research data lifecycle in display order, "+
				"with their descriptions. Pass stage_id to fetch a single stage instead.",
		),
		mcp.WithString("stage_id",
			mcp.Description("Optional stage name (e.g. COLLECT) to fetch just that stage"),
		),
	)
}

// Handle processes the lifecycle_stages tool call.
func (t *StagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if stageID := req.GetString("stage_id", ""); stageID != "" {
		st, err := t.queries.StageByID(stageID)
		if err != nil {
			return domainResult(err)
		}
		return jsonResult(st)
	}

	stages, err := t.queries.Stages()
	if err != nil {
		return nil, fmt.Errorf("listing stages: %w", err)
	}
	return jsonResult(stages)
}

// NeighborsTool handles the stage_neighbors MCP tool.
type NeighborsTool struct {
	queries *query.Service
}

// NewNeighborsTool creates a NeighborsTool over the query service.
func NewNeighborsTool(queries *query.Service) *NeighborsTool {
	return &NeighborsTool{queries: queries}
}

// Definition returns the MCP tool definition for stage_neighbors.
func (t *NeighborsTool) Definition() mcp.Tool {
	return mcp.NewTool("stage_neighbors",
		mcp.WithDescription(
			"List the stages reachable from a stage, each with the kind of path "+
				"(normal = default lifecycle path, alternate = optional dashed path). "+
				"Outgoing edges only; set include_incoming for the reverse direction too.",
		),
		mcp.WithString("stage_id",
			mcp.Required(),
			mcp.Description("Stage name to inspect (e.g. COLLECT)"),
		),
		mcp.WithBoolean("include_incoming",
			mcp.Description("Also list stages with an edge pointing at this stage"),
		),
	)
}

// Handle processes the stage_neighbors tool call.
func (t *NeighborsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stageID := req.GetString("stage_id", "")
	if stageID == "" {
		return mcp.NewToolResultError("'stage_id' is required"), nil
	}
	if _, err := t.queries.StageByID(stageID); err != nil {
		return domainResult(err)
	}

	type neighborsResponse struct {
		StageID  string           `json:"stage_id"`
		Outgoing []graph.Neighbor `json:"outgoing"`
		Incoming []graph.Neighbor `json:"incoming,omitempty"`
	}
	resp := neighborsResponse{
		StageID:  stageID,
		Outgoing: t.queries.NeighborsOf(stageID),
	}
	if req.GetBool("include_incoming", false) {
		resp.Incoming = t.queries.IncomingOf(stageID)
	}
	return jsonResult(resp)
}

package maptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rdlmap/rdlmap/internal/lifecycle"
	"github.com/rdlmap/rdlmap/internal/mutate"
)

// ToolCreate handles the tool_create MCP tool.
type ToolCreate struct {
	mutations *mutate.Service
}

// NewToolCreate creates a ToolCreate over the mutation service.
func NewToolCreate(mutations *mutate.Service) *ToolCreate {
	return &ToolCreate{mutations: mutations}
}

// Definition returns the MCP tool definition for tool_create.
func (t *ToolCreate) Definition() mcp.Tool {
	return mcp.NewTool("tool_create",
		mcp.WithDescription(
			"Add a tool to a lifecycle stage. Tool names are unique per stage, "+
				"case-insensitively; a duplicate name is rejected as a conflict.",
		),
		mcp.WithString("stage_id",
			mcp.Required(),
			mcp.Description("Owning stage name (e.g. COLLECT)"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Tool name (e.g. ODK)"),
		),
		mcp.WithString("description",
			mcp.Description("Short description of the tool"),
		),
		mcp.WithString("link",
			mcp.Description("Absolute URL of the tool's website"),
		),
		mcp.WithString("provider",
			mcp.Description("Organisation or category providing the tool"),
		),
	)
}

// Handle processes the tool_create tool call.
func (t *ToolCreate) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	created, err := t.mutations.CreateTool(lifecycle.NewToolParams{
		StageID:     req.GetString("stage_id", ""),
		Name:        req.GetString("name", ""),
		Description: req.GetString("description", ""),
		Link:        req.GetString("link", ""),
		Provider:    req.GetString("provider", ""),
	})
	if err != nil {
		return domainResult(err)
	}
	return jsonResult(created)
}

// ToolUpdate handles the tool_update MCP tool.
type ToolUpdate struct {
	mutations *mutate.Service
}

// NewToolUpdate creates a ToolUpdate over the mutation service.
func NewToolUpdate(mutations *mutate.Service) *ToolUpdate {
	return &ToolUpdate{mutations: mutations}
}

// Definition returns the MCP tool definition for tool_update.
func (t *ToolUpdate) Definition() mcp.Tool {
	return mcp.NewTool("tool_update",
		mcp.WithDescription(
			"Update fields of an existing tool, identified by its stage and name. "+
				"Only the fields given are changed; omitted fields keep their value.",
		),
		mcp.WithString("stage_id",
			mcp.Required(),
			mcp.Description("Owning stage name"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Current tool name (case-insensitive match)"),
		),
		mcp.WithString("new_name",
			mcp.Description("New tool name; must not collide with another tool of the stage"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("link",
			mcp.Description("New link (absolute URL, or empty to clear)"),
		),
		mcp.WithString("provider",
			mcp.Description("New provider"),
		),
	)
}

// Handle processes the tool_update tool call.
func (t *ToolUpdate) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := lifecycle.ToolKey{
		StageID: req.GetString("stage_id", ""),
		Name:    req.GetString("name", ""),
	}
	patch := lifecycle.ToolPatch{
		Name:        optionalString(req, "new_name"),
		Description: optionalString(req, "description"),
		Link:        optionalString(req, "link"),
		Provider:    optionalString(req, "provider"),
	}

	updated, err := t.mutations.UpdateTool(key, patch)
	if err != nil {
		return domainResult(err)
	}
	return jsonResult(updated)
}

// ToolDelete handles the tool_delete MCP tool.
type ToolDelete struct {
	mutations *mutate.Service
}

// NewToolDelete creates a ToolDelete over the mutation service.
func NewToolDelete(mutations *mutate.Service) *ToolDelete {
	return &ToolDelete{mutations: mutations}
}

// Definition returns the MCP tool definition for tool_delete.
func (t *ToolDelete) Definition() mcp.Tool {
	return mcp.NewTool("tool_delete",
		mcp.WithDescription(
			"Delete a tool from a lifecycle stage. Deleting a tool that does not "+
				"exist is a reported no-op, not an error.",
		),
		mcp.WithString("stage_id",
			mcp.Required(),
			mcp.Description("Owning stage name"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Tool name (case-insensitive match)"),
		),
	)
}

// Handle processes the tool_delete tool call.
func (t *ToolDelete) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := lifecycle.ToolKey{
		StageID: req.GetString("stage_id", ""),
		Name:    req.GetString("name", ""),
	}

	deleted, err := t.mutations.DeleteTool(key)
	if err != nil {
		return domainResult(err)
	}
	if !deleted {
		return mcp.NewToolResultText(fmt.Sprintf("No tool %q under stage %s — nothing to delete.", key.Name, key.StageID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted tool %q from stage %s.", key.Name, key.StageID)), nil
}

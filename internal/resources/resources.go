// Package resources implements MCP resource handlers for the lifecycle map.
//
// Resources provide read-only data the host can consume for context. They
// use URI-based addressing (lifecycle://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rdlmap/rdlmap/internal/query"
)

// Handler manages lifecycle resource endpoints.
type Handler struct {
	queries *query.Service
}

// NewHandler creates a resource Handler over the query service.
func NewHandler(queries *query.Service) *Handler {
	return &Handler{queries: queries}
}

// GraphResource returns the MCP resource definition for the lifecycle map.
func (h *Handler) GraphResource() mcp.Resource {
	return mcp.NewResource(
		"lifecycle://graph",
		"Research Data Lifecycle Graph",
		mcp.WithResourceDescription(
			"The lifecycle map as nodes and styled edges: solid edges are the "+
				"default path, dashed edges are alternate paths.",
		),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleGraph returns the render-ready lifecycle map document as JSON.
func (h *Handler) HandleGraph(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	doc, err := h.queries.Document()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, doc)
}

// StagesResource returns the MCP resource definition for the stage list.
func (h *Handler) StagesResource() mcp.Resource {
	return mcp.NewResource(
		"lifecycle://stages",
		"Research Data Lifecycle Stages",
		mcp.WithResourceDescription("All lifecycle stages with descriptions, in display order"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStages returns all stage rows as JSON.
func (h *Handler) HandleStages(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stages, err := h.queries.Stages()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, stages)
}

// jsonResource marshals v into a single JSON resource content entry.
func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}

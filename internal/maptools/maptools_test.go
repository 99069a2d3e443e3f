package maptools

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rdlmap/rdlmap/internal/lifecycle"
	"github.com/rdlmap/rdlmap/internal/mutate"
	"github.com/rdlmap/rdlmap/internal/query"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

// newTestServices creates a seeded store with both services for handler tests.
func newTestServices(t *testing.T) (*query.Service, *mutate.Service) {
	t.Helper()
	store, err := lifecycle.New(lifecycle.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := store.Seed(); err != nil {
		t.Fatalf("failed to seed test store: %v", err)
	}

	queries, err := query.New(store)
	if err != nil {
		t.Fatalf("failed to create query service: %v", err)
	}
	return queries, mutate.New(store, queries)
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// ─── StagesTool ─────────────────────────────────────────────────────────────

func TestStagesTool_ListsSeededStages(t *testing.T) {
	queries, _ := newTestServices(t)
	tool := NewStagesTool(queries)

	if tool.Definition().Name != "lifecycle_stages" {
		t.Errorf("tool name = %q", tool.Definition().Name)
	}

	res, err := tool.Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	text := resultText(res)
	for _, id := range []string{"CONCEPTUALISE", "COLLECT", "TRANSFORM"} {
		if !strings.Contains(text, id) {
			t.Errorf("result missing stage %s", id)
		}
	}
}

func TestStagesTool_UnknownStageIsToolError(t *testing.T) {
	queries, _ := newTestServices(t)
	tool := NewStagesTool(queries)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"stage_id": "NONEXISTENT"}))
	if err != nil {
		t.Fatalf("domain errors must not become protocol errors: %v", err)
	}
	if !res.IsError {
		t.Error("expected an error result for an unknown stage")
	}
}

// ─── NeighborsTool ──────────────────────────────────────────────────────────

func TestNeighborsTool_OutgoingOnly(t *testing.T) {
	queries, _ := newTestServices(t)
	tool := NewNeighborsTool(queries)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"stage_id": "CONCEPTUALISE"}))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	text := resultText(res)
	if !strings.Contains(text, "PLAN") {
		t.Errorf("result missing outgoing neighbor PLAN: %s", text)
	}
	// TRANSFORM points at CONCEPTUALISE; it must not appear without include_incoming.
	if strings.Contains(text, "TRANSFORM") {
		t.Errorf("incoming edge leaked into directed result: %s", text)
	}

	res, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"stage_id":         "CONCEPTUALISE",
		"include_incoming": true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(res), "TRANSFORM") {
		t.Error("include_incoming did not surface the incoming edge")
	}
}

// ─── Tool CRUD handlers ─────────────────────────────────────────────────────

func TestToolHandlers_CreateUpdateDelete(t *testing.T) {
	queries, mutations := newTestServices(t)

	create := NewToolCreate(mutations)
	res, err := create.Handle(context.Background(), makeReq(map[string]interface{}{
		"stage_id":    "COLLECT",
		"name":        "ODK",
		"description": "Open Data Kit",
		"link":        "https://getodk.org",
		"provider":    "ODK Inc",
	}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.IsError {
		t.Fatalf("create failed: %s", resultText(res))
	}

	// Conflicting create surfaces as a tool error.
	res, err = create.Handle(context.Background(), makeReq(map[string]interface{}{
		"stage_id": "COLLECT",
		"name":     "odk",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("case-insensitive duplicate should be a conflict")
	}

	update := NewToolUpdate(mutations)
	res, err = update.Handle(context.Background(), makeReq(map[string]interface{}{
		"stage_id":    "COLLECT",
		"name":        "ODK",
		"description": "Offline data collection",
	}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.IsError {
		t.Fatalf("update failed: %s", resultText(res))
	}

	tools, err := queries.ToolsOf("COLLECT")
	if err != nil {
		t.Fatal(err)
	}
	if len(tools) != 1 || tools[0].Description != "Offline data collection" {
		t.Errorf("tools after update = %+v", tools)
	}
	if tools[0].Name != "ODK" {
		t.Errorf("name changed by patch without new_name: %q", tools[0].Name)
	}

	del := NewToolDelete(mutations)
	res, err = del.Handle(context.Background(), makeReq(map[string]interface{}{
		"stage_id": "COLLECT",
		"name":     "odk",
	}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(resultText(res), "Deleted") {
		t.Errorf("first delete = %q", resultText(res))
	}

	res, err = del.Handle(context.Background(), makeReq(map[string]interface{}{
		"stage_id": "COLLECT",
		"name":     "odk",
	}))
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if res.IsError || !strings.Contains(resultText(res), "nothing to delete") {
		t.Errorf("second delete should be a no-op message, got %q", resultText(res))
	}
}

func TestToolCreate_UnknownStage(t *testing.T) {
	_, mutations := newTestServices(t)
	create := NewToolCreate(mutations)

	res, err := create.Handle(context.Background(), makeReq(map[string]interface{}{
		"stage_id": "NONEXISTENT",
		"name":     "ODK",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("unknown stage should be a validation error result")
	}
}

// ─── SubstagesTool / ToolsTool ──────────────────────────────────────────────

func TestSubstagesTool_EmptyForStageWithoutSubstages(t *testing.T) {
	queries, _ := newTestServices(t)
	tool := NewSubstagesTool(queries)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"stage_id": "COLLECT"}))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if strings.TrimSpace(resultText(res)) != "[]" {
		t.Errorf("expected empty list, got %q", resultText(res))
	}
}

func TestToolsTool_RequiresStageID(t *testing.T) {
	queries, _ := newTestServices(t)
	tool := NewToolsTool(queries)

	res, err := tool.Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("missing stage_id should be a tool error")
	}
}

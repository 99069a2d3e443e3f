package mutate_test

import (
	"testing"

	"github.com/rdlmap/rdlmap/internal/lifecycle"
	"github.com/rdlmap/rdlmap/internal/mutate"
	"github.com/rdlmap/rdlmap/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServices wires a store, query service and mutation service the way
// the composition root does.
func newServices(t *testing.T) (*query.Service, *mutate.Service) {
	t.Helper()
	store, err := lifecycle.New(lifecycle.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	for _, id := range []string{"CONCEPTUALISE", "COLLECT"} {
		_, err := store.InsertStage(lifecycle.Stage{ID: id, Description: id + " stage"})
		require.NoError(t, err)
	}
	_, err = store.InsertConnection(lifecycle.Connection{
		StartStageID: "CONCEPTUALISE", EndStageID: "COLLECT", Kind: lifecycle.KindNormal,
	})
	require.NoError(t, err)

	queries, err := query.New(store)
	require.NoError(t, err)
	return queries, mutate.New(store, queries)
}

// TestToolLifecycle walks the full create → query → update → delete path.
func TestToolLifecycle(t *testing.T) {
	queries, mutations := newServices(t)

	created, err := mutations.CreateTool(lifecycle.NewToolParams{
		StageID:     "COLLECT",
		Name:        "ODK",
		Description: "Open Data Kit",
		Link:        "https://getodk.org",
		Provider:    "ODK Inc",
	})
	require.NoError(t, err)

	tools, err := queries.ToolsOf("COLLECT")
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, *created, tools[0])

	desc := "Offline data collection"
	_, err = mutations.UpdateTool(lifecycle.ToolKey{StageID: "COLLECT", Name: "ODK"}, lifecycle.ToolPatch{Description: &desc})
	require.NoError(t, err)

	tools, err = queries.ToolsOf("COLLECT")
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, desc, tools[0].Description)

	deleted, err := mutations.DeleteTool(lifecycle.ToolKey{StageID: "COLLECT", Name: "ODK"})
	require.NoError(t, err)
	assert.True(t, deleted)

	tools, err = queries.ToolsOf("COLLECT")
	require.NoError(t, err)
	assert.Empty(t, tools)

	// Second delete is a reported no-op, never an error.
	deleted, err = mutations.DeleteTool(lifecycle.ToolKey{StageID: "COLLECT", Name: "ODK"})
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCreateTool_Errors(t *testing.T) {
	_, mutations := newServices(t)

	_, err := mutations.CreateTool(lifecycle.NewToolParams{StageID: "NONEXISTENT", Name: "ODK"})
	assert.True(t, lifecycle.IsValidation(err), "err = %v, want ValidationError", err)

	_, err = mutations.CreateTool(lifecycle.NewToolParams{StageID: "COLLECT", Name: ""})
	assert.True(t, lifecycle.IsValidation(err), "err = %v, want ValidationError", err)

	_, err = mutations.CreateTool(lifecycle.NewToolParams{StageID: "COLLECT", Name: "REDCap"})
	require.NoError(t, err)
	_, err = mutations.CreateTool(lifecycle.NewToolParams{StageID: "COLLECT", Name: "redcap"})
	assert.True(t, lifecycle.IsConflict(err), "err = %v, want ConflictError", err)
}

func TestUpdateTool_NotFound(t *testing.T) {
	_, mutations := newServices(t)

	desc := "whatever"
	_, err := mutations.UpdateTool(lifecycle.ToolKey{StageID: "COLLECT", Name: "missing"}, lifecycle.ToolPatch{Description: &desc})
	assert.True(t, lifecycle.IsNotFound(err), "err = %v, want NotFoundError", err)
}

func TestReplaceConnections_RefreshesSnapshot(t *testing.T) {
	queries, mutations := newServices(t)

	require.Equal(t, 1, queries.Graph().EdgeCount())

	err := mutations.ReplaceConnections([]lifecycle.Connection{
		{StartStageID: "COLLECT", EndStageID: "CONCEPTUALISE", Kind: lifecycle.KindNormal},
		{StartStageID: "CONCEPTUALISE", EndStageID: "COLLECT", Kind: lifecycle.KindAlternate},
	})
	require.NoError(t, err)

	// The snapshot was rebuilt without an explicit Refresh call.
	assert.Equal(t, 2, queries.Graph().EdgeCount())
	assert.Len(t, queries.NeighborsOf("COLLECT"), 1)

	// Invalid sets leave both store and snapshot untouched.
	err = mutations.ReplaceConnections([]lifecycle.Connection{
		{StartStageID: "COLLECT", EndStageID: "COLLECT", Kind: lifecycle.KindNormal},
	})
	assert.True(t, lifecycle.IsValidation(err), "err = %v, want ValidationError", err)
	assert.Equal(t, 2, queries.Graph().EdgeCount())
}

package query_test

import (
	"testing"

	"github.com/rdlmap/rdlmap/internal/graph"
	"github.com/rdlmap/rdlmap/internal/lifecycle"
	"github.com/rdlmap/rdlmap/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFixture creates a store with a minimal seeded topology and a query
// service over it.
func newFixture(t *testing.T) (*lifecycle.Store, *query.Service) {
	t.Helper()
	store, err := lifecycle.New(lifecycle.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	for _, id := range []string{"CONCEPTUALISE", "COLLECT", "ANALYSE"} {
		_, err := store.InsertStage(lifecycle.Stage{ID: id, Description: id + " stage"})
		require.NoError(t, err)
	}
	for _, c := range []lifecycle.Connection{
		{StartStageID: "CONCEPTUALISE", EndStageID: "COLLECT", Kind: lifecycle.KindNormal},
		{StartStageID: "COLLECT", EndStageID: "ANALYSE", Kind: lifecycle.KindNormal},
		{StartStageID: "ANALYSE", EndStageID: "CONCEPTUALISE", Kind: lifecycle.KindNormal},
		{StartStageID: "CONCEPTUALISE", EndStageID: "ANALYSE", Kind: lifecycle.KindAlternate},
	} {
		_, err := store.InsertConnection(c)
		require.NoError(t, err)
	}

	svc, err := query.New(store)
	require.NoError(t, err)
	return store, svc
}

func TestStageByID(t *testing.T) {
	_, svc := newFixture(t)

	st, err := svc.StageByID("COLLECT")
	require.NoError(t, err)
	assert.Equal(t, "COLLECT", st.ID)

	_, err = svc.StageByID("NONEXISTENT")
	assert.True(t, lifecycle.IsNotFound(err), "err = %v, want NotFoundError", err)
}

func TestStages_DisplayOrder(t *testing.T) {
	_, svc := newFixture(t)

	stages, err := svc.Stages()
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, "CONCEPTUALISE", stages[0].ID)
}

func TestSubstagesOf_EmptyForUnknownStage(t *testing.T) {
	store, svc := newFixture(t)

	_, err := store.InsertSubstage(lifecycle.Substage{StageID: "COLLECT", Name: "Data capture"})
	require.NoError(t, err)

	subs, err := svc.SubstagesOf("COLLECT")
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	none, err := svc.SubstagesOf("NONEXISTENT")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNeighborsOf_FromSnapshot(t *testing.T) {
	_, svc := newFixture(t)

	assert.Equal(t, []graph.Neighbor{
		{StageID: "COLLECT", Kind: lifecycle.KindNormal},
		{StageID: "ANALYSE", Kind: lifecycle.KindAlternate},
	}, svc.NeighborsOf("CONCEPTUALISE"))

	assert.Equal(t, []graph.Neighbor{
		{StageID: "ANALYSE", Kind: lifecycle.KindNormal},
	}, svc.IncomingOf("CONCEPTUALISE"))

	assert.Empty(t, svc.NeighborsOf("NONEXISTENT"))
}

func TestRefresh_SwapsSnapshot(t *testing.T) {
	store, svc := newFixture(t)

	before := svc.Graph()
	require.NoError(t, store.ReplaceConnections([]lifecycle.Connection{
		{StartStageID: "COLLECT", EndStageID: "CONCEPTUALISE", Kind: lifecycle.KindNormal},
	}))

	// The old snapshot is immutable; readers see it until Refresh.
	assert.Equal(t, 4, svc.Graph().EdgeCount())
	assert.Same(t, before, svc.Graph())

	require.NoError(t, svc.Refresh())
	assert.Equal(t, 1, svc.Graph().EdgeCount())
	assert.Equal(t, []graph.Neighbor{
		{StageID: "CONCEPTUALISE", Kind: lifecycle.KindNormal},
	}, svc.NeighborsOf("COLLECT"))
}

func TestToolsOf_ReadYourWrites(t *testing.T) {
	store, svc := newFixture(t)

	// No caching layer sits between store and queries: a write is visible
	// on the very next call.
	_, err := store.InsertTool(lifecycle.NewToolParams{StageID: "COLLECT", Name: "ODK"})
	require.NoError(t, err)

	tools, err := svc.ToolsOf("COLLECT")
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "ODK", tools[0].Name)
}

func TestDocument(t *testing.T) {
	_, svc := newFixture(t)

	doc, err := svc.Document()
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 3)
	require.Len(t, doc.Edges, 4)
	assert.Equal(t, graph.StyleDashed, doc.Edges[3].Style)
	assert.Equal(t, graph.StyleSolid, doc.Edges[0].Style)
}

// Package query answers read requests against the entity store and the
// current graph snapshot.
//
// Every method is a pure read and safe to call concurrently with other
// reads. The snapshot is rebuilt through Refresh, which the mutation
// service calls whenever connection data changes; nothing is cached
// between the store and these queries, so a successful mutation is visible
// to the very next call.
package query

import (
	"sync"

	"github.com/rdlmap/rdlmap/internal/graph"
	"github.com/rdlmap/rdlmap/internal/lifecycle"
)

// Service answers queries over the store and graph snapshot.
type Service struct {
	store *lifecycle.Store

	mu       sync.RWMutex
	snapshot *graph.Graph
}

// New creates a Service and builds the initial snapshot from the stored
// connections.
func New(store *lifecycle.Store) (*Service, error) {
	s := &Service{store: store}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh rebuilds the graph snapshot from the stored connection rows.
// Readers keep the old snapshot until the swap; they never observe a
// half-built graph.
func (s *Service) Refresh() error {
	conns, err := s.store.ListConnections()
	if err != nil {
		return err
	}
	g := graph.Build(conns)

	s.mu.Lock()
	s.snapshot = g
	s.mu.Unlock()
	return nil
}

// Graph returns the current immutable snapshot.
func (s *Service) Graph() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Stages returns all stages in display order.
func (s *Service) Stages() ([]lifecycle.Stage, error) {
	return s.store.ListStages()
}

// StageByID returns one stage. A missing stage is a NotFoundError — this
// is the one targeted lookup where absence is an error rather than an
// empty result.
func (s *Service) StageByID(stageID string) (*lifecycle.Stage, error) {
	st, err := s.store.FindStage(stageID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, &lifecycle.NotFoundError{Entity: "stage", Key: stageID}
	}
	return st, nil
}

// SubstagesOf returns the substages of a stage in insertion order. A stage
// with none, or an unknown stage, yields an empty result.
func (s *Service) SubstagesOf(stageID string) ([]lifecycle.Substage, error) {
	return s.store.SubstagesOf(stageID)
}

// ToolsOf returns the tools of a stage in name order. A stage with none,
// or an unknown stage, yields an empty result.
func (s *Service) ToolsOf(stageID string) ([]lifecycle.Tool, error) {
	return s.store.ToolsOf(stageID)
}

// NeighborsOf returns the outgoing neighbors of a stage with their edge
// kinds, from the current snapshot.
func (s *Service) NeighborsOf(stageID string) []graph.Neighbor {
	return s.Graph().NeighborsOf(stageID)
}

// IncomingOf returns the stages pointing at stageID, for renderers that
// want undirected display.
func (s *Service) IncomingOf(stageID string) []graph.Neighbor {
	return s.Graph().IncomingOf(stageID)
}

// Connections returns all connection rows in insertion order.
func (s *Service) Connections() ([]lifecycle.Connection, error) {
	return s.store.ListConnections()
}

// Document returns the render-ready lifecycle map document.
func (s *Service) Document() (*graph.Document, error) {
	stages, err := s.store.ListStages()
	if err != nil {
		return nil, err
	}
	return graph.BuildDocument(stages, s.Graph()), nil
}

// Package mutate is the single write path into the entity store.
//
// Every UI entry point funnels through this service, so validation and
// conflict rules are enforced in one place no matter how many surfaces
// trigger a write. Each operation either fully succeeds — and is visible
// to the query service on the very next call — or fully fails with one of
// the lifecycle error kinds.
package mutate

import (
	"github.com/rdlmap/rdlmap/internal/lifecycle"
)

// Refresher is notified after mutations that change graph topology. The
// query service satisfies it.
type Refresher interface {
	Refresh() error
}

// Service validates and applies writes against the store.
type Service struct {
	store     *lifecycle.Store
	refresher Refresher
}

// New creates a mutation Service. refresher may be nil when no snapshot
// consumer exists (e.g. one-shot CLI commands).
func New(store *lifecycle.Store, refresher Refresher) *Service {
	return &Service{store: store, refresher: refresher}
}

// CreateTool validates and stores a new tool. Fails with ValidationError
// for an empty name or unknown stage, ConflictError when the stage already
// has a tool with that name (case-insensitive).
func (s *Service) CreateTool(p lifecycle.NewToolParams) (*lifecycle.Tool, error) {
	return s.store.InsertTool(p)
}

// UpdateTool applies a partial patch to an existing tool. Fails with
// NotFoundError when the key is absent, ConflictError when the patch would
// rename the tool onto another existing name of the same stage.
func (s *Service) UpdateTool(key lifecycle.ToolKey, patch lifecycle.ToolPatch) (*lifecycle.Tool, error) {
	return s.store.UpdateTool(key, patch)
}

// DeleteTool removes a tool. Idempotent: deleting an absent tool reports
// (false, nil), never an error. Tools have no dependents, so nothing
// cascades.
func (s *Service) DeleteTool(key lifecycle.ToolKey) (bool, error) {
	return s.store.DeleteTool(key)
}

// ReplaceConnections swaps the connection set and rebuilds the graph
// snapshot. Connections are not user-editable today; this exists so future
// connection editing keeps the same validation taxonomy and the snapshot
// consumers stay consistent.
func (s *Service) ReplaceConnections(conns []lifecycle.Connection) error {
	if err := s.store.ReplaceConnections(conns); err != nil {
		return err
	}
	if s.refresher != nil {
		return s.refresher.Refresh()
	}
	return nil
}

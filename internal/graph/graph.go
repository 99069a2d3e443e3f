// Package graph assembles the lifecycle connection rows into an immutable
// directed multigraph snapshot.
//
// The snapshot answers adjacency lookups for the query service and carries
// everything the rendering collaborator needs: edge order matching row
// insertion order (so layout stays stable across rebuilds) and the edge
// kind that decides solid versus dashed display.
package graph

import "github.com/rdlmap/rdlmap/internal/lifecycle"

// Edge is one directed edge of the snapshot.
type Edge struct {
	Start string                   `json:"start"`
	End   string                   `json:"end"`
	Kind  lifecycle.ConnectionKind `json:"kind"`
}

// Neighbor is an adjacent stage together with the kind of the edge that
// reaches it.
type Neighbor struct {
	StageID string                   `json:"stage_id"`
	Kind    lifecycle.ConnectionKind `json:"kind"`
}

// Graph is an immutable snapshot of the lifecycle topology. Build returns
// it fully populated; it is never mutated afterwards, so concurrent reads
// need no locking.
type Graph struct {
	edges      []Edge
	alternates []Edge
	out        map[string][]Neighbor
	in         map[string][]Neighbor
	nodes      []string
}

// Build derives a snapshot from connection rows. Deterministic: edges keep
// the input order and nodes appear in first-mention order. Rebuilding is
// linear in the edge count.
func Build(conns []lifecycle.Connection) *Graph {
	g := &Graph{
		out: make(map[string][]Neighbor),
		in:  make(map[string][]Neighbor),
	}
	seen := make(map[string]bool)

	note := func(stageID string) {
		if !seen[stageID] {
			seen[stageID] = true
			g.nodes = append(g.nodes, stageID)
		}
	}

	for _, c := range conns {
		kind := c.Kind
		if kind == "" {
			kind = lifecycle.KindNormal
		}
		e := Edge{Start: c.StartStageID, End: c.EndStageID, Kind: kind}

		g.edges = append(g.edges, e)
		if kind == lifecycle.KindAlternate {
			g.alternates = append(g.alternates, e)
		}
		g.out[e.Start] = append(g.out[e.Start], Neighbor{StageID: e.End, Kind: kind})
		g.in[e.End] = append(g.in[e.End], Neighbor{StageID: e.Start, Kind: kind})
		note(e.Start)
		note(e.End)
	}

	return g
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Alternates returns only the alternate (dashed) edges, in insertion order.
func (g *Graph) Alternates() []Edge {
	out := make([]Edge, len(g.alternates))
	copy(out, g.alternates)
	return out
}

// Nodes returns the stage IDs mentioned by any edge, in first-mention order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NeighborsOf returns the outgoing neighbors of a stage. The adjacency is
// directed-only: incoming edges are reported by IncomingOf, so the choice
// of undirected display stays with the renderer. An unknown stage yields
// an empty slice.
func (g *Graph) NeighborsOf(stageID string) []Neighbor {
	return copyNeighbors(g.out[stageID])
}

// IncomingOf returns the stages with an edge pointing at stageID.
func (g *Graph) IncomingOf(stageID string) []Neighbor {
	return copyNeighbors(g.in[stageID])
}

// EdgeCount returns the number of edges in the snapshot.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

func copyNeighbors(ns []Neighbor) []Neighbor {
	out := make([]Neighbor, len(ns))
	copy(out, ns)
	return out
}

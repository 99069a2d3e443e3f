package graph

import "github.com/rdlmap/rdlmap/internal/lifecycle"

// Edge styles consumed by the renderer.
const (
	StyleSolid  = "solid"
	StyleDashed = "dashed"
)

// Document is the render-ready form of the lifecycle map: one node per
// stage and one styled edge per connection.
type Document struct {
	Nodes []Node    `json:"nodes"`
	Edges []DocEdge `json:"edges"`
}

// Node is one stage of the map. Label is the short name shown inside the
// node, Title the full description shown on focus.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title,omitempty"`
}

// DocEdge is one rendered edge with its display style.
type DocEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Style  string `json:"style"`
}

// BuildDocument combines the stage rows with a graph snapshot into the
// document the rendering collaborator consumes. Stage order and edge order
// are preserved from the inputs.
func BuildDocument(stages []lifecycle.Stage, g *Graph) *Document {
	doc := &Document{
		Nodes: []Node{},
		Edges: []DocEdge{},
	}
	for _, st := range stages {
		doc.Nodes = append(doc.Nodes, Node{ID: st.ID, Label: st.ID, Title: st.Description})
	}
	for _, e := range g.Edges() {
		style := StyleSolid
		if e.Kind == lifecycle.KindAlternate {
			style = StyleDashed
		}
		doc.Edges = append(doc.Edges, DocEdge{Source: e.Start, Target: e.End, Style: style})
	}
	return doc
}

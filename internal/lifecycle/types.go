package lifecycle

import "strings"

// ConnectionKind distinguishes the default lifecycle path from optional
// shortcut paths. The rendering collaborator draws normal edges solid and
// alternate edges dashed.
type ConnectionKind string

const (
	KindNormal    ConnectionKind = "normal"
	KindAlternate ConnectionKind = "alternate"
)

// Valid reports whether k is one of the closed set of connection kinds.
func (k ConnectionKind) Valid() bool {
	return k == KindNormal || k == KindAlternate
}

// Stage is one phase of the research data lifecycle, identified by its
// stable short name (e.g. "CONCEPTUALISE"). Stages are seeded once and
// never deleted through the service.
type Stage struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

// Substage is a named sub-activity within a Stage. Read-only after seeding.
type Substage struct {
	ID          int64  `json:"id"`
	StageID     string `json:"stage_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Exemplars   string `json:"exemplars,omitempty"`
}

// ExemplarList splits the comma-separated exemplars column into trimmed
// entries, dropping empties.
func (s Substage) ExemplarList() []string {
	var out []string
	for _, e := range strings.Split(s.Exemplars, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Tool is an external resource associated with a Stage. Tools are the only
// entity with a full create/update/delete lifecycle. Names are unique per
// stage, case-insensitively, but not globally.
type Tool struct {
	ID          int64  `json:"id"`
	StageID     string `json:"stage_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// ToolKey identifies a tool for callers: the owning stage plus the tool
// name, matched case-insensitively.
type ToolKey struct {
	StageID string `json:"stage_id"`
	Name    string `json:"name"`
}

// NewToolParams holds the input for creating a tool.
type NewToolParams struct {
	StageID     string `json:"stage_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// ToolPatch holds partial update fields for a tool. Nil fields are left
// unchanged.
type ToolPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Link        *string `json:"link,omitempty"`
	Provider    *string `json:"provider,omitempty"`
}

// Connection is a directed edge between two stages in the lifecycle graph.
type Connection struct {
	ID           int64          `json:"id"`
	StartStageID string         `json:"start_stage_id"`
	EndStageID   string         `json:"end_stage_id"`
	Kind         ConnectionKind `json:"kind"`
}

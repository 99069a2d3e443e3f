// Package lifecycle implements the entity store for the research data
// lifecycle map.
//
// It uses SQLite to persist the four relations — stages, substages, tools
// and connections — and is the sole owner of the database handle: every
// read and write goes through a *Store, and field validation happens at
// this boundary so no raw rows cross into other packages.
package lifecycle

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// schema contains the DDL executed on every open. IF NOT EXISTS makes it
// safe to run on startup against an existing database.
const schema = `
	CREATE TABLE IF NOT EXISTS stages (
		id          TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		position    INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS substages (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		stage_id    TEXT NOT NULL,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		exemplars   TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (stage_id) REFERENCES stages(id)
	);

	CREATE INDEX IF NOT EXISTS idx_substages_stage ON substages(stage_id);

	CREATE TABLE IF NOT EXISTS tools (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		stage_id    TEXT NOT NULL,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		link        TEXT NOT NULL DEFAULT '',
		provider    TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (stage_id) REFERENCES stages(id)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_tools_stage_name ON tools(stage_id, lower(name));

	CREATE TABLE IF NOT EXISTS connections (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		start_stage_id TEXT NOT NULL,
		end_stage_id   TEXT NOT NULL,
		kind           TEXT NOT NULL DEFAULT 'normal' CHECK (kind IN ('normal', 'alternate')),
		FOREIGN KEY (start_stage_id) REFERENCES stages(id),
		FOREIGN KEY (end_stage_id)   REFERENCES stages(id)
	);

	CREATE INDEX IF NOT EXISTS idx_connections_start ON connections(start_stage_id);
`

// Config holds entity store configuration.
type Config struct {
	DataDir      string
	DatabaseFile string
}

// DefaultConfig returns the default configuration for the store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:      filepath.Join(home, ".rdlmap"),
		DatabaseFile: "lifecycle.db",
	}
}

// Store is the entity store backed by SQLite.
type Store struct {
	db  *sql.DB
	cfg Config
}

// Stats holds row counts per relation.
type Stats struct {
	Stages      int `json:"stages"`
	Substages   int `json:"substages"`
	Tools       int `json:"tools"`
	Connections int `json:"connections"`
}

// New creates a Store with the given configuration. It creates the data
// directory if needed, opens SQLite with WAL mode, and applies the schema.
func New(cfg Config) (*Store, error) {
	if cfg.DatabaseFile == "" {
		cfg.DatabaseFile = "lifecycle.db"
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("lifecycle: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, cfg.DatabaseFile)
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: open database: %w", err)
	}

	// SQLite supports a single writer; one pooled connection avoids
	// SQLITE_BUSY contention between connections that each need their
	// own PRAGMA setup.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("lifecycle: pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("lifecycle: create schema: %w", err)
	}

	return &Store{db: db, cfg: cfg}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Stages ──────────────────────────────────────────────────────────────────

// ListStages returns all stages in display order.
func (s *Store) ListStages() ([]Stage, error) {
	rows, err := s.db.Query(`SELECT id, description, position FROM stages ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: list stages: %w", err)
	}
	defer rows.Close()

	var result []Stage
	for rows.Next() {
		var st Stage
		if err := rows.Scan(&st.ID, &st.Description, &st.Position); err != nil {
			return nil, fmt.Errorf("lifecycle: scan stage: %w", err)
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

// FindStage returns the stage with the given ID, or (nil, nil) if absent.
func (s *Store) FindStage(id string) (*Stage, error) {
	row := s.db.QueryRow(`SELECT id, description, position FROM stages WHERE id = ?`, id)
	var st Stage
	if err := row.Scan(&st.ID, &st.Description, &st.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lifecycle: find stage %q: %w", id, err)
	}
	return &st, nil
}

// StageExists reports whether a stage with the given ID is stored.
func (s *Store) StageExists(id string) (bool, error) {
	st, err := s.FindStage(id)
	return st != nil, err
}

// InsertStage stores a new stage. Position 0 means "append after the
// current last stage". Used by seeding; stages are not user-editable.
func (s *Store) InsertStage(st Stage) (*Stage, error) {
	st.ID = strings.TrimSpace(st.ID)
	if st.ID == "" {
		return nil, &ValidationError{Field: "stage.id", Reason: "must not be empty"}
	}

	if st.Position == 0 {
		if err := s.db.QueryRow(`SELECT COALESCE(MAX(position), 0) + 1 FROM stages`).Scan(&st.Position); err != nil {
			return nil, fmt.Errorf("lifecycle: next stage position: %w", err)
		}
	}

	_, err := s.db.Exec(
		`INSERT INTO stages (id, description, position) VALUES (?, ?, ?)`,
		st.ID, st.Description, st.Position,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ValidationError{Field: "stage.id", Reason: fmt.Sprintf("stage %q already exists", st.ID)}
		}
		return nil, fmt.Errorf("lifecycle: insert stage %q: %w", st.ID, err)
	}
	return &st, nil
}

// ─── Substages ───────────────────────────────────────────────────────────────

// ListSubstages returns all substages in insertion order.
func (s *Store) ListSubstages() ([]Substage, error) {
	return s.querySubstages(`SELECT id, stage_id, name, description, exemplars FROM substages ORDER BY id`)
}

// SubstagesOf returns the substages of one stage in insertion order. An
// unknown stage yields an empty result, not an error.
func (s *Store) SubstagesOf(stageID string) ([]Substage, error) {
	return s.querySubstages(
		`SELECT id, stage_id, name, description, exemplars FROM substages WHERE stage_id = ? ORDER BY id`,
		stageID,
	)
}

// InsertSubstage stores a new substage under an existing stage.
func (s *Store) InsertSubstage(sub Substage) (*Substage, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return nil, &ValidationError{Field: "substage.name", Reason: "must not be empty"}
	}
	if err := s.requireStage("substage.stageId", sub.StageID); err != nil {
		return nil, err
	}

	res, err := s.db.Exec(
		`INSERT INTO substages (stage_id, name, description, exemplars) VALUES (?, ?, ?, ?)`,
		sub.StageID, sub.Name, sub.Description, sub.Exemplars,
	)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: insert substage %q: %w", sub.Name, err)
	}
	sub.ID, _ = res.LastInsertId()
	return &sub, nil
}

// ─── Tools ───────────────────────────────────────────────────────────────────

// ListTools returns all tools ordered by stage and name.
func (s *Store) ListTools() ([]Tool, error) {
	return s.queryTools(
		`SELECT id, stage_id, name, description, link, provider FROM tools ORDER BY stage_id, lower(name)`,
	)
}

// ToolsOf returns the tools of one stage in name order. An unknown stage
// yields an empty result, not an error.
func (s *Store) ToolsOf(stageID string) ([]Tool, error) {
	return s.queryTools(
		`SELECT id, stage_id, name, description, link, provider FROM tools WHERE stage_id = ? ORDER BY lower(name)`,
		stageID,
	)
}

// FindTool returns the tool matching the key (name compared
// case-insensitively), or (nil, nil) if absent.
func (s *Store) FindTool(key ToolKey) (*Tool, error) {
	row := s.db.QueryRow(
		`SELECT id, stage_id, name, description, link, provider
		 FROM tools WHERE stage_id = ? AND lower(name) = lower(?)`,
		key.StageID, key.Name,
	)
	var t Tool
	if err := row.Scan(&t.ID, &t.StageID, &t.Name, &t.Description, &t.Link, &t.Provider); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lifecycle: find tool %s/%s: %w", key.StageID, key.Name, err)
	}
	return &t, nil
}

// InsertTool validates and stores a new tool. It fails with ValidationError
// for an empty name, a malformed link, or an unknown stage, and with
// ConflictError when a tool with the same name (case-insensitive) already
// exists under the stage. Nothing is written on failure.
func (s *Store) InsertTool(p NewToolParams) (*Tool, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, &ValidationError{Field: "tool.name", Reason: "must not be empty"}
	}
	if err := validateLink(p.Link); err != nil {
		return nil, err
	}
	if err := s.requireStage("tool.stageId", p.StageID); err != nil {
		return nil, err
	}

	existing, err := s.FindTool(ToolKey{StageID: p.StageID, Name: p.Name})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ConflictError{StageID: p.StageID, Name: p.Name}
	}

	res, err := s.db.Exec(
		`INSERT INTO tools (stage_id, name, description, link, provider) VALUES (?, ?, ?, ?, ?)`,
		p.StageID, p.Name, p.Description, p.Link, p.Provider,
	)
	if err != nil {
		// Backstop: the unique index catches races the pre-check missed.
		if isUniqueViolation(err) {
			return nil, &ConflictError{StageID: p.StageID, Name: p.Name}
		}
		return nil, fmt.Errorf("lifecycle: insert tool %q: %w", p.Name, err)
	}

	id, _ := res.LastInsertId()
	return &Tool{ID: id, StageID: p.StageID, Name: p.Name, Description: p.Description, Link: p.Link, Provider: p.Provider}, nil
}

// UpdateTool applies a partial patch to the tool identified by key. Absence
// is a NotFoundError; renaming onto another existing tool of the same stage
// is a ConflictError. The update is a single statement, applied fully or
// not at all.
func (s *Store) UpdateTool(key ToolKey, patch ToolPatch) (*Tool, error) {
	t, err := s.FindTool(key)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &NotFoundError{Entity: "tool", Key: key.StageID + "/" + key.Name}
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, &ValidationError{Field: "tool.name", Reason: "must not be empty"}
		}
		if !strings.EqualFold(name, t.Name) {
			other, err := s.FindTool(ToolKey{StageID: t.StageID, Name: name})
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != t.ID {
				return nil, &ConflictError{StageID: t.StageID, Name: name}
			}
		}
		t.Name = name
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Link != nil {
		if err := validateLink(*patch.Link); err != nil {
			return nil, err
		}
		t.Link = *patch.Link
	}
	if patch.Provider != nil {
		t.Provider = *patch.Provider
	}

	if _, err := s.db.Exec(
		`UPDATE tools SET name = ?, description = ?, link = ?, provider = ? WHERE id = ?`,
		t.Name, t.Description, t.Link, t.Provider, t.ID,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{StageID: t.StageID, Name: t.Name}
		}
		return nil, fmt.Errorf("lifecycle: update tool %d: %w", t.ID, err)
	}
	return t, nil
}

// DeleteTool removes the tool identified by key. Deleting an absent tool
// is a no-op reported as (false, nil), never an error.
func (s *Store) DeleteTool(key ToolKey) (bool, error) {
	res, err := s.db.Exec(
		`DELETE FROM tools WHERE stage_id = ? AND lower(name) = lower(?)`,
		key.StageID, key.Name,
	)
	if err != nil {
		return false, fmt.Errorf("lifecycle: delete tool %s/%s: %w", key.StageID, key.Name, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ─── Connections ─────────────────────────────────────────────────────────────

// ListConnections returns all connections in insertion order. Edge order is
// meaningful: the graph builder preserves it so layout stays stable across
// rebuilds.
func (s *Store) ListConnections() ([]Connection, error) {
	rows, err := s.db.Query(`SELECT id, start_stage_id, end_stage_id, kind FROM connections ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: list connections: %w", err)
	}
	defer rows.Close()

	var result []Connection
	for rows.Next() {
		var c Connection
		if err := rows.Scan(&c.ID, &c.StartStageID, &c.EndStageID, &c.Kind); err != nil {
			return nil, fmt.Errorf("lifecycle: scan connection: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// InsertConnection validates and stores a directed edge between two
// existing stages. Self-loops are rejected for every kind.
func (s *Store) InsertConnection(c Connection) (*Connection, error) {
	if err := s.validateConnection(c); err != nil {
		return nil, err
	}

	res, err := s.db.Exec(
		`INSERT INTO connections (start_stage_id, end_stage_id, kind) VALUES (?, ?, ?)`,
		c.StartStageID, c.EndStageID, string(c.Kind),
	)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: insert connection %s→%s: %w", c.StartStageID, c.EndStageID, err)
	}
	c.ID, _ = res.LastInsertId()
	return &c, nil
}

// ReplaceConnections swaps the whole connection set in one transaction.
// All rows are validated before anything is written; on any failure the
// previous set stays intact.
func (s *Store) ReplaceConnections(conns []Connection) error {
	for _, c := range conns {
		if err := s.validateConnection(c); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("lifecycle: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM connections`); err != nil {
		return fmt.Errorf("lifecycle: clear connections: %w", err)
	}
	for _, c := range conns {
		if _, err := tx.Exec(
			`INSERT INTO connections (start_stage_id, end_stage_id, kind) VALUES (?, ?, ?)`,
			c.StartStageID, c.EndStageID, string(c.Kind),
		); err != nil {
			return fmt.Errorf("lifecycle: insert connection %s→%s: %w", c.StartStageID, c.EndStageID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("lifecycle: commit connections: %w", err)
	}
	return nil
}

func (s *Store) validateConnection(c Connection) error {
	kind := c.Kind
	if kind == "" {
		kind = KindNormal
	}
	if !kind.Valid() {
		return &ValidationError{Field: "connection.kind", Reason: fmt.Sprintf("must be %q or %q", KindNormal, KindAlternate)}
	}
	if c.StartStageID == c.EndStageID {
		return &ValidationError{Field: "connection", Reason: fmt.Sprintf("self-loop on stage %q not allowed", c.StartStageID)}
	}
	if err := s.requireStage("connection.startStageId", c.StartStageID); err != nil {
		return err
	}
	return s.requireStage("connection.endStageId", c.EndStageID)
}

// ─── Stats ───────────────────────────────────────────────────────────────────

// Stats returns row counts for all four relations.
func (s *Store) Stats() (*Stats, error) {
	var st Stats
	row := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM stages),
			(SELECT COUNT(*) FROM substages),
			(SELECT COUNT(*) FROM tools),
			(SELECT COUNT(*) FROM connections)
	`)
	if err := row.Scan(&st.Stages, &st.Substages, &st.Tools, &st.Connections); err != nil {
		return nil, fmt.Errorf("lifecycle: stats: %w", err)
	}
	return &st, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Store) querySubstages(query string, args ...any) ([]Substage, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: query substages: %w", err)
	}
	defer rows.Close()

	var result []Substage
	for rows.Next() {
		var sub Substage
		if err := rows.Scan(&sub.ID, &sub.StageID, &sub.Name, &sub.Description, &sub.Exemplars); err != nil {
			return nil, fmt.Errorf("lifecycle: scan substage: %w", err)
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

func (s *Store) queryTools(query string, args ...any) ([]Tool, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: query tools: %w", err)
	}
	defer rows.Close()

	var result []Tool
	for rows.Next() {
		var t Tool
		if err := rows.Scan(&t.ID, &t.StageID, &t.Name, &t.Description, &t.Link, &t.Provider); err != nil {
			return nil, fmt.Errorf("lifecycle: scan tool: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// requireStage returns a ValidationError when the referenced stage does
// not exist.
func (s *Store) requireStage(field, stageID string) error {
	exists, err := s.StageExists(stageID)
	if err != nil {
		return err
	}
	if !exists {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown stage %q", stageID)}
	}
	return nil
}

// validateLink rejects non-empty links that do not parse as absolute URLs.
// Empty links are fine; most seeded tools have none.
func validateLink(link string) error {
	if link == "" {
		return nil
	}
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: "tool.link", Reason: fmt.Sprintf("not an absolute URL: %q", link)}
	}
	return nil
}

// isUniqueViolation checks if an error is a SQLite UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the store and the two services
// and injects them into the tool and resource handlers. No business logic
// lives here — only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rdlmap/rdlmap/internal/config"
	"github.com/rdlmap/rdlmap/internal/lifecycle"
	"github.com/rdlmap/rdlmap/internal/maptools"
	"github.com/rdlmap/rdlmap/internal/mutate"
	"github.com/rdlmap/rdlmap/internal/query"
	"github.com/rdlmap/rdlmap/internal/resources"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools and resources
// registered. An empty store is seeded with the built-in lifecycle before
// the first query.
//
// The returned cleanup function closes the store's database connection and
// must be called on shutdown (typically via defer). It is always non-nil
// and safe to call.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	store, err := lifecycle.New(lifecycle.Config{
		DataDir:      cfg.DataDir,
		DatabaseFile: cfg.DatabaseFile,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Printf("WARNING: store close: %v", err)
		}
	}

	report, err := store.Seed()
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("seeding store: %w", err)
	}
	if report.Stages > 0 {
		// stderr only — stdout is the MCP transport.
		log.Printf("seeded lifecycle: %d stages, %d connections", report.Stages, report.Connections)
	}

	queries, err := query.New(store)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("building graph snapshot: %w", err)
	}
	mutations := mutate.New(store, queries)

	s := server.NewMCPServer(
		"rdlmap",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Read surface ---

	stagesTool := maptools.NewStagesTool(queries)
	s.AddTool(stagesTool.Definition(), stagesTool.Handle)

	substagesTool := maptools.NewSubstagesTool(queries)
	s.AddTool(substagesTool.Definition(), substagesTool.Handle)

	toolsTool := maptools.NewToolsTool(queries)
	s.AddTool(toolsTool.Definition(), toolsTool.Handle)

	neighborsTool := maptools.NewNeighborsTool(queries)
	s.AddTool(neighborsTool.Definition(), neighborsTool.Handle)

	// --- Write surface ---
	//
	// Tools are the only user-editable entity; everything else is seeded
	// and read-only for the session.

	toolCreate := maptools.NewToolCreate(mutations)
	s.AddTool(toolCreate.Definition(), toolCreate.Handle)

	toolUpdate := maptools.NewToolUpdate(mutations)
	s.AddTool(toolUpdate.Definition(), toolUpdate.Handle)

	toolDelete := maptools.NewToolDelete(mutations)
	s.AddTool(toolDelete.Definition(), toolDelete.Handle)

	// --- Resources ---

	res := resources.NewHandler(queries)
	s.AddResource(res.GraphResource(), res.HandleGraph)
	s.AddResource(res.StagesResource(), res.HandleStages)

	return s, cleanup, nil
}

func noop() {}

func serverInstructions() string {
	return `rdlmap serves the Research Data Lifecycle map: twelve stages arranged
in a cycle, each with substages and tools. Use lifecycle_stages to list
stages, stage_substages / stage_tools to inspect one stage, and
stage_neighbors to follow the cycle (normal = default path, alternate =
optional dashed path). Tools are editable through tool_create,
tool_update and tool_delete; stages, substages and connections are fixed.
The lifecycle://graph resource holds the full render-ready map.`
}

// rdlmap: Research Data Lifecycle map server
//
// Serves the lifecycle graph — stages, substages, tools and the
// connections between stages — from a local SQLite database, over an MCP
// stdio transport, with CLI commands for seeding and export.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

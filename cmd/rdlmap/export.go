package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rdlmap/rdlmap/internal/config"
	"github.com/rdlmap/rdlmap/internal/lifecycle"
	"github.com/rdlmap/rdlmap/internal/query"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the render-ready lifecycle map as JSON",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store, err := lifecycle.New(lifecycle.Config{
		DataDir:      cfg.DataDir,
		DatabaseFile: cfg.DatabaseFile,
	})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	queries, err := query.New(store)
	if err != nil {
		return fmt.Errorf("building graph snapshot: %w", err)
	}
	doc, err := queries.Document()
	if err != nil {
		return fmt.Errorf("building document: %w", err)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rdlmap/rdlmap/internal/config"
	"github.com/rdlmap/rdlmap/internal/lifecycle"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Initialize the database with the built-in lifecycle",
	Long: `Seed creates the lifecycle database and populates it with the twelve
stages, their connections, and — when a CSV file is given — substages and
tools from the lifecycle tools spreadsheet. Seeding an already-populated
database only adds CSV rows; the stage cycle is never written twice.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().String("csv", "", "lifecycle tools CSV to load substages and tools from")
	_ = viper.BindPFlag("seed_csv", seedCmd.Flags().Lookup("csv"))
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store, err := lifecycle.New(lifecycle.Config{
		DataDir:      cfg.DataDir,
		DatabaseFile: cfg.DatabaseFile,
	})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	var report *lifecycle.SeedReport
	if cfg.SeedCSV != "" {
		f, err := os.Open(cfg.SeedCSV)
		if err != nil {
			return fmt.Errorf("opening seed csv: %w", err)
		}
		defer f.Close()
		report, err = store.SeedFromCSV(f)
		if err != nil {
			return fmt.Errorf("seeding from %s: %w", cfg.SeedCSV, err)
		}
	} else {
		report, err = store.Seed()
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Seeded %d stages, %d substages, %d tools, %d connections.\nDatabase now holds %d stages, %d substages, %d tools, %d connections.\n",
		report.Stages, report.Substages, report.Tools, report.Connections,
		stats.Stages, stats.Substages, stats.Tools, stats.Connections,
	)
	return nil
}

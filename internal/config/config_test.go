package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := Load()

	if !strings.HasSuffix(cfg.DataDir, ".rdlmap") {
		t.Errorf("DataDir = %q, want a ~/.rdlmap default", cfg.DataDir)
	}
	if cfg.DatabaseFile != "lifecycle.db" {
		t.Errorf("DatabaseFile = %q, want %q", cfg.DatabaseFile, "lifecycle.db")
	}
	if cfg.SeedCSV != "" {
		t.Errorf("SeedCSV = %q, want empty", cfg.SeedCSV)
	}
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("data_dir", "/var/lib/rdlmap")
	viper.Set("database_file", "map.db")

	cfg := Load()

	if cfg.DataDir != "/var/lib/rdlmap" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.DatabaseFile != "map.db" {
		t.Errorf("DatabaseFile = %q", cfg.DatabaseFile)
	}
}

// Package config loads runtime configuration for rdlmap.
//
// Values come from .rdlmap.yaml, RDLMAP_* env vars, and CLI flags, in
// ascending precedence, with built-in defaults for anything unset.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for an rdlmap session.
type Config struct {
	DataDir      string `mapstructure:"data_dir"`
	DatabaseFile string `mapstructure:"database_file"`
	SeedCSV      string `mapstructure:"seed_csv"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	home, _ := os.UserHomeDir()

	viper.SetDefault("data_dir", filepath.Join(home, ".rdlmap"))
	viper.SetDefault("database_file", "lifecycle.db")
	viper.SetDefault("seed_csv", "")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

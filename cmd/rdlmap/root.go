package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rdlmap/rdlmap/internal/server"
)

var rootCmd = &cobra.Command{
	Use:     "rdlmap",
	Short:   "Research Data Lifecycle map server",
	Long:    "rdlmap stores the Research Data Lifecycle — stages, substages, tools and connections — in SQLite and serves it to MCP hosts.",
	Version: server.Version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .rdlmap.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the lifecycle database")
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".rdlmap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("RDLMAP")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

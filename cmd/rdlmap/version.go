package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rdlmap/rdlmap/internal/server"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the rdlmap version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rdlmap %s (%s/%s)\n", server.Version, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

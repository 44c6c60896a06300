// Command terrainctl is a client for a running terrainforge service: list,
// inspect, and cancel jobs, and interactively consult the service's AI-CLI
// handler, all via POST /mcp/execute. Grounded on the teacher's separate
// cmd/ CLI surface (table-rendered resource commands plus an interactive
// REPL) reimplemented as a thin HTTP client instead of an in-process
// aggregator client.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set during build with -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:          "terrainctl",
	Short:        "Operate a running terrainforge service",
	SilenceUsage: true,
	Version:      version,
}

func main() {
	rootCmd.SetVersionTemplate(`{{printf "terrainctl version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

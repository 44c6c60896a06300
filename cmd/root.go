// Package cmd implements the terrainforge service process's command-line
// surface: serve, validate, version, and self-update. Grounded on the
// teacher's cmd/root.go cobra construction and exit-code mapping.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"terrainforge/internal/apperr"
)

// rootCmd is the entry point when terrainforge is invoked without a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "terrainforge",
	Short: "Serve and operate the terrainforge terrain-workflow MCP service",
	Long: `terrainforge exposes terrain-workflow validation, repair, and
generation as a set of MCP tools reachable over HTTP and stdio, built around
the same node/property/pattern knowledge a human terrain artist would use.`,
	SilenceUsage: true,
}

// SetVersion injects the build-time version string into the root command,
// called from main() before Execute().
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the version previously set with SetVersion.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and maps any returned error to a process
// exit code via apperr.ExitCode.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "terrainforge version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(apperr.ExitCode(err))
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newValidateCmd())
}

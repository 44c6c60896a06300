package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// versionCheckTimeout bounds the optional live /health probe below.
const versionCheckTimeout = 2 * time.Second

var versionEndpoint string

// newVersionCmd mirrors the teacher's version command shape: print the
// build-injected CLI version, then attempt to reach a running service's
// /health endpoint to report its version too.
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the terrainforge CLI version and probe a running service",
		Long: `Displays the terrainforge CLI version and, if a service is reachable at
--endpoint, also displays the version it reports on /health.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "terrainforge version %s\n", rootCmd.Version)

			serverVersion, err := probeServiceVersion(versionEndpoint)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\nService: (not reachable at %s)\n", versionEndpoint)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nService: %s\n", serverVersion)
		},
	}

	cmd.Flags().StringVar(&versionEndpoint, "endpoint", "http://localhost:8080", "base URL of a running terrainforge service")
	return cmd
}

type healthProbe struct {
	Version string `json:"version"`
	Server  string `json:"server"`
}

func probeServiceVersion(endpoint string) (string, error) {
	client := http.Client{Timeout: versionCheckTimeout}
	resp, err := client.Get(endpoint + "/health")
	if err != nil {
		return "", fmt.Errorf("version: probing %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	var body healthProbe
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("version: decoding health response: %w", err)
	}
	return fmt.Sprintf("%s (%s)", body.Version, body.Server), nil
}

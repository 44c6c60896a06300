package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	consultEndpoint  string
	consultSessionID string
)

// newConsultCmd starts an interactive REPL that sends each typed line to
// the service's ai_consult tool and prints the response, preserving
// session_id across lines so the service-side rolling history
// accumulates. Grounded on the teacher's internal/agent/repl.go
// readline.NewEx/Readline loop, stripped of MCP-notification handling this
// single-tool REPL has no use for.
func newConsultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consult",
		Short: "Interactively consult the service's AI-CLI handler",
		RunE:  runConsult,
	}
	cmd.Flags().StringVar(&consultEndpoint, "endpoint", "http://localhost:8080", "base URL of the terrainforge service")
	cmd.Flags().StringVar(&consultSessionID, "session", "terrainctl-repl", "session id for the rolling conversation history")
	return cmd
}

func runConsult(cmd *cobra.Command, args []string) error {
	c := newClient(consultEndpoint, 0)

	historyFile := filepath.Join(os.TempDir(), ".terrainctl_consult_history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          text.Colors{text.FgHiCyan, text.Bold}.Sprint("terrainforge» "),
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("consult: creating readline instance: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "Type a prompt and press enter; Ctrl+D to quit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if line == "" {
			continue
		}

		var result struct {
			Status        string  `json:"status"`
			Response      string  `json:"response"`
			ExecutionTime float64 `json:"execution_time"`
		}
		if err := c.call("ai_consult", map[string]interface{}{
			"prompt":     line,
			"session_id": consultSessionID,
		}, &result); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), text.Colors{text.FgHiRed}.Sprint(err.Error()))
			continue
		}

		if result.Status != "success" {
			fmt.Fprintln(cmd.OutOrStdout(), text.Colors{text.FgHiRed}.Sprint("consultation failed"))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", result.Response)
	}
}

func init() {
	rootCmd.AddCommand(newConsultCmd())
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"terrainforge/internal/apperr"
	"terrainforge/internal/terrain/validate"
)

var validateStrict bool

// newValidateCmd builds a one-shot local validation subcommand: read a
// canonical graph JSON file, run the validator, print a table of
// errors/warnings, and exit 1 if the graph is invalid. Grounded on the
// teacher's cmd/check.go (resource validity check against a single target)
// adapted to local file input and go-pretty table rendering from
// cmd/list.go.
func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <graph.json>",
		Short: "Validate a terrain workflow graph file without starting a service",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidateFile,
	}
	cmd.Flags().BoolVar(&validateStrict, "strict", false, "treat port-type incompatibility as an error")
	return cmd
}

func runValidateFile(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("validate: reading %s: %w", args[0], err)
	}

	var graph validate.Graph
	if err := json.Unmarshal(data, &graph); err != nil {
		return fmt.Errorf("validate: parsing %s: %w", args[0], err)
	}

	validator := validate.New()
	validator.StrictMode = validateStrict
	result := validator.Validate(graph)

	printValidationResult(cmd, result)

	if !result.Valid {
		return fmt.Errorf("%w: %s", apperr.ErrValidation, args[0])
	}
	return nil
}

func printValidationResult(cmd *cobra.Command, result validate.Result) {
	out := cmd.OutOrStdout()

	if len(result.Errors) == 0 && len(result.Warnings) == 0 {
		fmt.Fprintln(out, text.Colors{text.FgHiGreen, text.Bold}.Sprint("graph is valid, no warnings"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("SEVERITY"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("MESSAGE"),
	})

	for _, e := range result.Errors {
		t.AppendRow(table.Row{text.Colors{text.FgHiRed, text.Bold}.Sprint("error"), e})
	}
	for _, w := range result.Warnings {
		t.AppendRow(table.Row{text.Colors{text.FgHiYellow, text.Bold}.Sprint("warning"), w})
	}
	t.Render()

	validity := text.Colors{text.FgHiGreen, text.Bold}.Sprint("valid")
	if !result.Valid {
		validity = text.Colors{text.FgHiRed, text.Bold}.Sprint("invalid")
	}
	fmt.Fprintf(out, "\ngraph is %s\n", validity)
}

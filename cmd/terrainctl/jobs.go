package main

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	jobsEndpoint string
	jobsTimeout  time.Duration
	jobsStatus   string
	jobsType     string
	jobsLimit    int
	jobsWait     bool
)

// job mirrors the fields of jobstore.Job this CLI displays; it is decoded
// independently of the service's internal type so terrainctl has no
// compile-time dependency on the service's packages.
type job struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Status    string                 `json:"status"`
	Progress  int                    `json:"progress"`
	Message   string                 `json:"message"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Error     string                 `json:"error,omitempty"`
	Result    map[string]interface{} `json:"result,omitempty"`
}

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List, inspect, and cancel jobs on a running terrainforge service",
	}
	cmd.PersistentFlags().StringVar(&jobsEndpoint, "endpoint", "http://localhost:8080", "base URL of the terrainforge service")
	cmd.PersistentFlags().DurationVar(&jobsTimeout, "timeout", 10*time.Second, "HTTP request timeout")

	cmd.AddCommand(newJobsListCmd())
	cmd.AddCommand(newJobsGetCmd())
	cmd.AddCommand(newJobsCancelCmd())
	return cmd
}

func newJobsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE:  runJobsList,
	}
	cmd.Flags().StringVar(&jobsStatus, "status", "", "filter by status (QUEUED, RUNNING, COMPLETED, FAILED, CANCELLED)")
	cmd.Flags().StringVar(&jobsType, "type", "", "filter by job type")
	cmd.Flags().IntVar(&jobsLimit, "limit", 0, "maximum number of jobs to return (0 = unlimited)")
	return cmd
}

func runJobsList(cmd *cobra.Command, args []string) error {
	c := newClient(jobsEndpoint, jobsTimeout)

	var result struct {
		Jobs []job `json:"jobs"`
	}
	if err := c.call("jobs_list", map[string]interface{}{
		"status": jobsStatus,
		"type":   jobsType,
		"limit":  jobsLimit,
	}, &result); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(result.Jobs) == 0 {
		fmt.Fprintln(out, text.Colors{text.FgHiYellow, text.Bold}.Sprint("no jobs found"))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("ID"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("TYPE"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("STATUS"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("PROGRESS"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("UPDATED"),
	})
	for _, j := range result.Jobs {
		t.AppendRow(table.Row{j.ID, j.Type, statusColor(j.Status), j.Progress, j.UpdatedAt.Format(time.RFC3339)})
	}
	t.Render()
	return nil
}

func newJobsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <job-id>",
		Short: "Fetch a job record, optionally waiting for it to reach a terminal status",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsGet,
	}
	cmd.Flags().BoolVar(&jobsWait, "wait", false, "poll until the job reaches a terminal status")
	return cmd
}

func runJobsGet(cmd *cobra.Command, args []string) error {
	c := newClient(jobsEndpoint, jobsTimeout)
	id := args[0]

	j, err := fetchJob(c, id)
	if err != nil {
		return err
	}

	if jobsWait && !isTerminal(j.Status) {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = fmt.Sprintf(" waiting for job %s to finish...", id)
		s.Start()
		for !isTerminal(j.Status) {
			time.Sleep(time.Second)
			j, err = fetchJob(c, id)
			if err != nil {
				s.Stop()
				return err
			}
		}
		s.Stop()
	}

	printJob(cmd, j)
	return nil
}

func fetchJob(c *client, id string) (job, error) {
	var result struct {
		Job job `json:"job"`
	}
	if err := c.call("jobs_get", map[string]interface{}{"job_id": id}, &result); err != nil {
		return job{}, err
	}
	return result.Job, nil
}

func isTerminal(status string) bool {
	switch status {
	case "COMPLETED", "FAILED", "CANCELLED":
		return true
	default:
		return false
	}
}

func printJob(cmd *cobra.Command, j job) {
	out := cmd.OutOrStdout()
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendRow(table.Row{"ID", j.ID})
	t.AppendRow(table.Row{"Type", j.Type})
	t.AppendRow(table.Row{"Status", statusColor(j.Status)})
	t.AppendRow(table.Row{"Progress", j.Progress})
	t.AppendRow(table.Row{"Message", j.Message})
	if j.Error != "" {
		t.AppendRow(table.Row{"Error", text.Colors{text.FgHiRed}.Sprint(j.Error)})
	}
	t.AppendRow(table.Row{"Created", j.CreatedAt.Format(time.RFC3339)})
	t.AppendRow(table.Row{"Updated", j.UpdatedAt.Format(time.RFC3339)})
	t.Render()
}

func newJobsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsCancel,
	}
}

func runJobsCancel(cmd *cobra.Command, args []string) error {
	c := newClient(jobsEndpoint, jobsTimeout)

	var result struct {
		Job job `json:"job"`
	}
	if err := c.call("jobs_cancel", map[string]interface{}{"job_id": args[0]}, &result); err != nil {
		return err
	}
	printJob(cmd, result.Job)
	return nil
}

func statusColor(status string) string {
	switch status {
	case "COMPLETED":
		return text.Colors{text.FgHiGreen, text.Bold}.Sprint(status)
	case "FAILED":
		return text.Colors{text.FgHiRed, text.Bold}.Sprint(status)
	case "CANCELLED":
		return text.Colors{text.FgHiYellow, text.Bold}.Sprint(status)
	case "RUNNING":
		return text.Colors{text.FgHiCyan, text.Bold}.Sprint(status)
	default:
		return text.Colors{text.FgHiBlue, text.Bold}.Sprint(status)
	}
}

func init() {
	rootCmd.AddCommand(newJobsCmd())
}

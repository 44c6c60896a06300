package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/spf13/cobra"

	"terrainforge/internal/config"
	"terrainforge/internal/handlers"
	"terrainforge/internal/jobstore"
	"terrainforge/internal/orchestrator"
	"terrainforge/internal/pathsafe"
	"terrainforge/internal/runtime"
	terrainhandlers "terrainforge/internal/terrain/handlers"
	"terrainforge/internal/terrain/validate"
	"terrainforge/pkg/logging"
)

var (
	serveConfigPath    string
	serveServicePrefix string
	serveTransport     string
	serveScriptRoot    string
	serveBinary        string
)

// newServeCmd builds the "serve" subcommand: wire config, job store,
// orchestrator, path-safety gate, and validator into a runtime.Registry and
// run it over the chosen transport until interrupted, grounded on the
// teacher's cmd/serve.go RunE shape.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the terrainforge service (HTTP, line-delimited stdio, or MCP stdio)",
		Long: `serve starts the terrainforge tool-dispatch surface: the graph
validator/repair/template tools, the subprocess orchestrator handlers, and
the AI-CLI consultation handler, reachable over HTTP, a bespoke
line-delimited stdio protocol, or the genuine MCP stdio protocol.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveConfigPath, "config", "", "path to a YAML configuration override file")
	cmd.Flags().StringVar(&serveServicePrefix, "env-prefix", "TERRAINFORGE", "environment variable prefix for configuration overrides")
	cmd.Flags().StringVar(&serveTransport, "transport", "http", "transport to serve: http, stdio, or mcp-stdio")
	cmd.Flags().StringVar(&serveScriptRoot, "script-root", ".", "sandboxed root directory renderer/builder scripts are resolved against")
	cmd.Flags().StringVar(&serveBinary, "binary", "", "path to the external terrain-tool binary invoked by the orchestrator (overrides config/env)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveServicePrefix, serveConfigPath)
	if err != nil {
		return fmt.Errorf("serve: loading config: %w", err)
	}
	if serveBinary != "" {
		cfg.BinaryPath = serveBinary
	}

	watcher, err := config.NewWatcher(serveServicePrefix, serveConfigPath)
	if err != nil {
		return fmt.Errorf("serve: starting config watcher: %w", err)
	}
	defer watcher.Stop()

	logDir := cfg.LogDir
	if logDir == "" {
		logDir = os.TempDir()
	}

	jobDir := cfg.JobStoreDir
	if jobDir == "" {
		jobDir = logDir
	}

	store, err := jobstore.Open(jobDir)
	if err != nil {
		return fmt.Errorf("serve: opening job store: %w", err)
	}

	statusWatcher, err := jobstore.NewStatusWatcher(store)
	if err != nil {
		return fmt.Errorf("serve: starting job status watcher: %w", err)
	}
	defer statusWatcher.Stop()

	stopReaper := make(chan struct{})
	defer close(stopReaper)
	go store.RunReaper(24*time.Hour, stopReaper)

	root, err := pathsafe.NewRoot("scripts", serveScriptRoot)
	if err != nil {
		return fmt.Errorf("serve: resolving script root: %w", err)
	}

	orch := orchestrator.New(cfg.BinaryPath, logDir, store)
	consultant := handlers.NewConsultant(cfg.BinaryPath, time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.MaxHistory)
	validator := validate.New()

	registry := runtime.NewRegistry("terrainforge", GetVersion())
	registerTools(registry, validator, root, orch, store, consultant)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch serveTransport {
	case "http":
		return serveHTTP(ctx, registry, cfg.Port)
	case "stdio":
		logging.Info("serve", "serving line-delimited stdio transport")
		return registry.StdioServe(ctx, os.Stdin, os.Stdout)
	case "mcp-stdio":
		logging.Info("serve", "serving MCP stdio transport")
		return registry.ServeMCPStdio(ctx, os.Stdin, os.Stdout)
	default:
		return fmt.Errorf("serve: unknown transport %q (want http, stdio, or mcp-stdio)", serveTransport)
	}
}

// registerTools wires every tool descriptor this service publishes (spec
// §4.9) into registry, grounded on the teacher's init()-time command
// registration pattern adapted to runtime tool registration.
func registerTools(registry *runtime.Registry, validator *validate.Validator, root *pathsafe.Root, orch *orchestrator.Orchestrator, store *jobstore.Store, consultant *handlers.Consultant) {
	registry.Register(runtime.Descriptor{
		Name:        "validate_workflow",
		Description: "Validate a terrain workflow graph against the node/property/connection schema",
	}, terrainhandlers.ValidateWorkflow(validator))

	registry.Register(runtime.Descriptor{
		Name:        "repair_workflow",
		Description: "Repair a terrain workflow graph (dedup, coerce, prune, optionally auto-connect orphans)",
	}, terrainhandlers.RepairWorkflow(validator))

	registry.Register(runtime.Descriptor{
		Name:        "create_project",
		Description: "Assemble a terrain project payload from a node/connection list, optionally validating and repairing first",
	}, terrainhandlers.CreateProject(validator))

	registry.Register(runtime.Descriptor{
		Name:        "create_from_template",
		Description: "Assemble a terrain project payload from a named workflow template",
	}, terrainhandlers.CreateFromTemplate(validator))

	registry.Register(runtime.Descriptor{
		Name:        "analyze_patterns",
		Description: "Suggest a workflow template for an intent and successor nodes for the given graph",
	}, terrainhandlers.AnalyzePatterns)

	registry.Register(runtime.Descriptor{
		Name:        "render_terrain",
		Description: "Render a terrain project by invoking the external terrain-tool binary as a subprocess",
	}, handlers.SubprocessHandler("render", root, orch, store))

	registry.Register(runtime.Descriptor{
		Name:        "build_terrain",
		Description: "Build terrain textures/exports by invoking the external terrain-tool binary as a subprocess",
	}, handlers.SubprocessHandler("build", root, orch, store))

	registry.Register(runtime.Descriptor{
		Name:        "ai_consult",
		Description: "Consult the configured AI CLI binary with a bounded rolling per-session conversation history",
	}, consultant.Consult)

	registry.Register(runtime.Descriptor{
		Name:        "jobs_list",
		Description: "List jobs, optionally filtered by status/type and capped by limit",
	}, handlers.JobsList(store))

	registry.Register(runtime.Descriptor{
		Name:        "jobs_get",
		Description: "Fetch a single job record by id",
	}, handlers.JobsGet(store))

	registry.Register(runtime.Descriptor{
		Name:        "jobs_cancel",
		Description: "Cancel a queued or running job by id",
	}, handlers.JobsCancel(store))
}

// serveHTTP listens on cfg.Port unless a systemd-provided socket-activated
// listener is present, in which case that listener is used instead
// (grounded on the teacher's internal/aggregator/server.go activation
// handling).
func serveHTTP(ctx context.Context, registry *runtime.Registry, port int) error {
	listener, err := systemdListener()
	if err != nil {
		logging.Warn("serve", "systemd activation check failed: %v", err)
	}

	addr := fmt.Sprintf(":%d", port)
	if listener == nil {
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("serve: listening on %s: %w", addr, err)
		}
		logging.Info("serve", "listening on %s", addr)
	} else {
		logging.Info("serve", "using systemd-provided socket listener")
	}

	server := &http.Server{Handler: registry.HTTPHandler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// systemdListener returns the first named listener handed to this process
// by systemd socket activation, or nil if none was provided.
func systemdListener() (net.Listener, error) {
	listenersWithNames, err := activation.ListenersWithNames()
	if err != nil {
		return nil, err
	}
	for name, listeners := range listenersWithNames {
		for i, l := range listeners {
			if l == nil {
				continue
			}
			logging.Info("serve", "systemd listener %d for %s", i, name)
			return l, nil
		}
	}
	return nil, nil
}

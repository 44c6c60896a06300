// Package handlers implements the renderer/builder/trainer subprocess
// handlers and the AI-CLI consultation handler (spec §4.9). Each is a thin,
// deterministic marshaling layer with no hard logic of its own: validate
// paths, invoke the orchestrator or an AI CLI, format the response.
// Grounded on the original Python tools/mcp/blender/handlers/*.py (path
// validation then ExecuteScript) and tools/mcp/core's AI-CLI consultation
// handler pattern.
package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"terrainforge/internal/jobstore"
	"terrainforge/internal/orchestrator"
	"terrainforge/internal/pathsafe"
)

// SubprocessHandler builds a runtime.Handler-compatible function for a
// renderer/builder/trainer-style tool: resolve "script_path" against root,
// create a job record, and hand off to orch.ExecuteScript. The job id is
// returned immediately; the eventual result is visible only via job status
// polling (spec §7 "Subprocess runtime errors").
func SubprocessHandler(jobType string, root *pathsafe.Root, orch *orchestrator.Orchestrator, store *jobstore.Store) func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		rawPath, _ := args["script_path"].(string)
		scriptPath, err := root.Resolve(rawPath)
		if err != nil {
			return nil, err
		}

		headless, _ := args["headless"].(bool)

		job, err := store.Create(jobType, args)
		if err != nil {
			return nil, fmt.Errorf("%s: creating job record: %w", jobType, err)
		}

		if err := orch.ExecuteScript(ctx, scriptPath, args, job.ID, headless); err != nil {
			return nil, fmt.Errorf("%s: launching subprocess: %w", jobType, err)
		}

		return map[string]interface{}{"job_id": job.ID, "status": string(jobstore.StatusQueued)}, nil
	}
}

// aiSessionID extracts the conversation-history key from args, defaulting to
// a fresh id per call when none is supplied (stateless single-shot use).
func aiSessionID(args map[string]interface{}) string {
	if id, ok := args["session_id"].(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

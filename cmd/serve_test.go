package cmd

import (
	"testing"

	"terrainforge/internal/handlers"
	"terrainforge/internal/jobstore"
	"terrainforge/internal/orchestrator"
	"terrainforge/internal/pathsafe"
	"terrainforge/internal/runtime"
	"terrainforge/internal/terrain/validate"
)

func TestRegisterToolsRegistersEveryDescriptor(t *testing.T) {
	dir := t.TempDir()
	store, err := jobstore.Open(dir)
	if err != nil {
		t.Fatalf("opening job store: %v", err)
	}
	root, err := pathsafe.NewRoot("scripts", dir)
	if err != nil {
		t.Fatalf("resolving root: %v", err)
	}
	orch := orchestrator.New("/bin/true", dir, store)
	consultant := handlers.NewConsultant("/bin/true", 0, 5)
	registry := runtime.NewRegistry("terrainforge", "test")

	registerTools(registry, validate.New(), root, orch, store, consultant)

	want := []string{
		"validate_workflow", "repair_workflow", "create_project", "create_from_template",
		"analyze_patterns", "render_terrain", "build_terrain", "ai_consult",
		"jobs_list", "jobs_get", "jobs_cancel",
	}

	got := make(map[string]bool)
	for _, d := range registry.Tools() {
		got[d.Name] = true
	}

	for _, name := range want {
		if !got[name] {
			t.Errorf("expected tool %q to be registered", name)
		}
	}
}

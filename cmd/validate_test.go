package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"terrainforge/internal/terrain/validate"
)

func writeGraphFile(t *testing.T, g validate.Graph) string {
	t.Helper()
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshaling graph: %v", err)
	}
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing graph file: %v", err)
	}
	return path
}

func TestRunValidateFileAcceptsValidGraph(t *testing.T) {
	path := writeGraphFile(t, validate.Graph{
		Nodes: []validate.Node{{ID: 1, Type: "Mountain"}},
	})

	cmd := newValidateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected no error for a valid graph, got %v", err)
	}
}

func TestRunValidateFileRejectsInvalidNodeType(t *testing.T) {
	path := writeGraphFile(t, validate.Graph{
		Nodes: []validate.Node{{ID: 1, Type: "NotARealType"}},
	})

	cmd := newValidateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an invalid graph")
	}
}

func TestRunValidateFileMissingFileErrors(t *testing.T) {
	cmd := newValidateCmd()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.json")})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

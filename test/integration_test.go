// ABOUTME: Integration tests for the liftlog CLI.
// ABOUTME: Builds the binary and runs a full add, list, progress, and export workflow.
package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	// Build the binary
	projectRoot, _ := filepath.Abs("..")
	binary := filepath.Join(t.TempDir(), "liftlog")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/liftlog")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}

	// Isolated config and data, sqlite backend, no completion keys.
	tmpDir := t.TempDir()
	env := append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(tmpDir, "config"),
		"LIFTLOG_DATA_DIR="+filepath.Join(tmpDir, "data"),
		"LIFTLOG_BACKEND=sqlite",
		"LIFTLOG_LLM_API_KEY=",
		"GEMINI_API_KEY=",
		"OPENAI_API_KEY=",
		"NO_COLOR=1",
	)

	run := func(args ...string) (string, error) {
		cmd := exec.Command(binary, append([]string{"--user", "lifter"}, args...)...)
		cmd.Env = env
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	output, err := run("add", "Bench Press", "135", "8", "3", "--at", "2025-01-10")
	if err != nil {
		t.Fatalf("Failed to add: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Added") {
		t.Errorf("Expected 'Added' in output, got: %s", output)
	}

	if output, err = run("add", "bench press", "145.5", "6", "3", "--at", "2025-01-12"); err != nil {
		t.Fatalf("Failed to add: %v\n%s", err, output)
	}

	output, err = run("list")
	if err != nil {
		t.Fatalf("Failed to list: %v\n%s", err, output)
	}
	for _, want := range []string{"2025-01-10", "2025-01-12", "bench press"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in list output, got: %s", want, output)
		}
	}

	output, err = run("progress", "bench", "press")
	if err != nil {
		t.Fatalf("Failed to show progress: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Best: 145.5 on 2025-01-12") {
		t.Errorf("Expected best set in progress output, got: %s", output)
	}

	output, err = run("export", "json")
	if err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}
	if !strings.Contains(output, `"weight": 145.5`) {
		t.Errorf("Expected exact weight in export, got: %s", output)
	}

	// parse needs a completion backend.
	if output, err = run("parse", "squat 225 5x5"); err == nil {
		t.Errorf("Expected parse to fail without an API key, got: %s", output)
	}
}

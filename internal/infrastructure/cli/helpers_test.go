package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// resetFlags restores package flag variables between command runs; cobra
// only writes a variable when its flag is passed.
func resetFlags() {
	projectPath = ""
	goalTitle, goalStart, goalReference = "", "", ""
	goalDays, goalHours = 7, 1
	goalJSONOutput, progressJSONOutput, auditJSONOutput = false, false, false
	auditGoalID = ""
	mcpTransport, mcpAddr = "stdio", ":8080"
	serveAddr, serveNoWatch = "", false
	webhookSecret, webhookEvents, webhookJSONOutput = "", nil, false
}

// runCLI executes the root command against the workspace at root.
func runCLI(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(append([]string{"--project", root}, args...))
	err := RootCmd.Execute()
	return out.String(), err
}

// newWorkspace returns an initialized workspace that plans with the mock provider.
func newWorkspace(t *testing.T) string {
	t.Helper()
	t.Setenv("GOALGENIE_AI_PROVIDER", "mock")
	t.Setenv("GOALGENIE_AI_MODEL", "test-model")

	root := t.TempDir()
	if _, err := runCLI(t, root, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	return root
}

func readWorkspaceFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, ".goalgenie", name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLoggingConfig(t *testing.T, ws, content string) {
	t.Helper()
	dir := filepath.Join(ws, ".niva")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInitializeProductionModeIsSilent(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	// No .niva/config.json means production mode: no logs directory.
	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if IsDebugMode() {
		t.Error("debug mode should be off without a config file")
	}
	if _, err := os.Stat(filepath.Join(ws, ".niva", "logs")); !os.IsNotExist(err) {
		t.Error("logs directory should not exist in production mode")
	}

	// Logging calls are no-ops, not panics.
	Agent("should be dropped: %d", 42)
}

func TestInitializeDebugModeWritesCategoryFiles(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)
	writeLoggingConfig(t, ws, `{"logging":{"debug_mode":true,"level":"debug"}}`)

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("debug mode should be on")
	}

	Routing("intent=%s -> executor", "search")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(ws, ".niva", "logs"))
	if err != nil {
		t.Fatalf("read logs dir: %v", err)
	}
	var found bool
	for _, e := range entries {
		if strings.Contains(e.Name(), "routing") {
			found = true
			data, err := os.ReadFile(filepath.Join(ws, ".niva", "logs", e.Name()))
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), "intent=search -> executor") {
				t.Errorf("routing log missing entry: %s", data)
			}
		}
	}
	if !found {
		t.Error("no routing log file created")
	}
}

func TestCategoryFilter(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)
	writeLoggingConfig(t, ws, `{"logging":{"debug_mode":true,"categories":{"tools":false}}}`)

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if IsCategoryEnabled(CategoryTools) {
		t.Error("tools category should be disabled")
	}
	if !IsCategoryEnabled(CategoryAgent) {
		t.Error("unlisted categories default to enabled")
	}
}

func TestInitializeRequiresWorkspace(t *testing.T) {
	if err := Initialize(""); err == nil {
		t.Error("expected error for empty workspace")
	}
}

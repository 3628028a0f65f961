package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Listen != ":8080" {
		t.Errorf("Unexpected default listen: %q", cfg.Listen)
	}
	if cfg.HistoryWindow != 30 || cfg.TurnWindow != 10 || cfg.MaxToolRounds != 5 {
		t.Errorf("Unexpected default windows: %+v", cfg)
	}
	if cfg.RateLimit.WindowSeconds != 10 || cfg.RateLimit.MaxRequests != 10 {
		t.Errorf("Unexpected default rate limit: %+v", cfg.RateLimit)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
listen: ":9999"
model: "claude-opus-4"
rate_limit:
  window_seconds: 60
  max_requests: 5
embedder:
  model_path: "/opt/models/all-MiniLM-L6-v2.onnx"
  tokenizer_path: "/opt/models/tokenizer.json"
  library_path: "/usr/lib/libonnxruntime.so"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != ":9999" || cfg.Model != "claude-opus-4" {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.RateLimit.WindowSeconds != 60 || cfg.RateLimit.MaxRequests != 5 {
		t.Errorf("Rate limit not applied: %+v", cfg.RateLimit)
	}
	if cfg.Embedder.ModelPath != "/opt/models/all-MiniLM-L6-v2.onnx" ||
		cfg.Embedder.TokenizerPath != "/opt/models/tokenizer.json" ||
		cfg.Embedder.LibraryPath != "/usr/lib/libonnxruntime.so" {
		t.Errorf("Embedder paths not applied: %+v", cfg.Embedder)
	}
	// Unset values still take defaults.
	if cfg.TurnWindow != 10 {
		t.Errorf("Expected default turn window, got %d", cfg.TurnWindow)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/coachd"}
	if got := cfg.DatabasePath("tasks.db"); got != "/var/lib/coachd/tasks.db" {
		t.Errorf("Unexpected path: %q", got)
	}
}

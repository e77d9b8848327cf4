// ABOUTME: Tests for liftlog configuration management.
// ABOUTME: Covers defaults, file load/save, environment overrides, and factories.
package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/liftlog/internal/completion"
	"github.com/harperreed/liftlog/internal/storage"
)

// isolate points config and env lookups at a clean state.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{
		"LIFTLOG_BACKEND", "LIFTLOG_DATA_DIR", "LIFTLOG_HTTP_ADDRESS",
		"LIFTLOG_LLM_PROVIDER", "LIFTLOG_LLM_MODEL", "LIFTLOG_LLM_API_KEY",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "LIFTLOG_OPENAI_BASE_URL",
		"LIFTLOG_COMPLETION_TIMEOUT", "CHARM_HOST",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	if got := cfg.GetBackend(); got != BackendBadger {
		t.Errorf("GetBackend() = %q, want %q", got, BackendBadger)
	}
	if got := cfg.GetHTTPAddress(); got != ":8080" {
		t.Errorf("GetHTTPAddress() = %q, want %q", got, ":8080")
	}
	if got := cfg.GetLLMProvider(); got != ProviderGemini {
		t.Errorf("GetLLMProvider() = %q, want %q", got, ProviderGemini)
	}
	if got := cfg.GetCompletionTimeout(); got != 30*time.Second {
		t.Errorf("GetCompletionTimeout() = %v, want 30s", got)
	}
	if got := cfg.GetDataDir(); got == "" {
		t.Error("GetDataDir() returned empty string")
	}
}

func TestGetAPIKey(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "gemini key", cfg: Config{GeminiAPIKey: "g"}, want: "g"},
		{name: "openai key", cfg: Config{LLMProvider: "openai", OpenAIAPIKey: "o", GeminiAPIKey: "g"}, want: "o"},
		{name: "explicit wins", cfg: Config{LLMAPIKey: "x", GeminiAPIKey: "g"}, want: "x"},
		{name: "none", cfg: Config{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.GetAPIKey(); got != tt.want {
				t.Errorf("GetAPIKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "/tmp/foo", want: "/tmp/foo"},
		{in: "~", want: home},
		{in: "~/data/liftlog", want: filepath.Join(home, "data/liftlog")},
		{in: "data/liftlog", want: "data/liftlog"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/liftlog-data"}
	want := filepath.Join(home, "liftlog-data")
	if got := cfg.GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	dir := isolate(t)

	want := filepath.Join(dir, "liftlog", "config.json")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Backend != "" || cfg.DataDir != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := &Config{
		Backend:      "sqlite",
		DataDir:      "/tmp/liftlog-data",
		LLMProvider:  "openai",
		LLMAPIKey:    "secret",
		OpenAIAPIKey: "also-secret",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	raw, err := os.ReadFile(GetConfigPath())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var onDisk map[string]any
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for key := range onDisk {
		if key != "backend" && key != "data_dir" && key != "llm_provider" {
			t.Errorf("unexpected key %q written to config file", key)
		}
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Backend != "sqlite" {
		t.Errorf("Backend mismatch: got %q, want %q", loaded.Backend, "sqlite")
	}
	if loaded.DataDir != "/tmp/liftlog-data" {
		t.Errorf("DataDir mismatch: got %q, want %q", loaded.DataDir, "/tmp/liftlog-data")
	}
	if loaded.LLMAPIKey != "" {
		t.Error("API key should not round-trip through the config file")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolate(t)

	if err := (&Config{Backend: "sqlite", HTTPAddress: ":9000"}).Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	t.Setenv("LIFTLOG_BACKEND", "charm")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("LIFTLOG_COMPLETION_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.GetBackend() != BackendCharm {
		t.Errorf("Backend = %q, want env override %q", cfg.GetBackend(), BackendCharm)
	}
	if cfg.GetHTTPAddress() != ":9000" {
		t.Errorf("HTTPAddress = %q, want file value %q", cfg.GetHTTPAddress(), ":9000")
	}
	if cfg.GetAPIKey() != "from-env" {
		t.Errorf("GetAPIKey() = %q, want %q", cfg.GetAPIKey(), "from-env")
	}
	if cfg.GetCompletionTimeout() != 5*time.Second {
		t.Errorf("GetCompletionTimeout() = %v, want 5s", cfg.GetCompletionTimeout())
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := isolate(t)

	configDir := filepath.Join(dir, "liftlog")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}

func TestOpenStorage(t *testing.T) {
	tests := []struct {
		backend string
		check   func(t *testing.T, dir string, repo storage.Repository)
	}{
		{
			backend: "",
			check: func(t *testing.T, dir string, repo storage.Repository) {
				if _, ok := repo.(*storage.BadgerStore); !ok {
					t.Errorf("default backend = %T, want *storage.BadgerStore", repo)
				}
				if _, err := os.Stat(filepath.Join(dir, "badger")); err != nil {
					t.Errorf("expected badger directory: %v", err)
				}
			},
		},
		{
			backend: "sqlite",
			check: func(t *testing.T, dir string, repo storage.Repository) {
				if _, ok := repo.(*storage.DB); !ok {
					t.Errorf("sqlite backend = %T, want *storage.DB", repo)
				}
				if _, err := os.Stat(filepath.Join(dir, "liftlog.db")); err != nil {
					t.Errorf("expected liftlog.db: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run("backend="+tt.backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := &Config{Backend: tt.backend, DataDir: dir}

			repo, err := cfg.OpenStorage(nil)
			if err != nil {
				t.Fatalf("OpenStorage() failed: %v", err)
			}
			defer repo.Close()
			tt.check(t, dir, repo)
		})
	}
}

func TestOpenStorageInvalidBackend(t *testing.T) {
	cfg := &Config{Backend: "invalid", DataDir: t.TempDir()}
	if _, err := cfg.OpenStorage(nil); err == nil {
		t.Error("Expected error for invalid backend")
	}
}

func TestOpenCompleter(t *testing.T) {
	cfg := &Config{LLMProvider: "openai", LLMAPIKey: "k", OpenAIBaseURL: "http://localhost:1"}
	c, err := cfg.OpenCompleter(context.Background(), nil)
	if err != nil {
		t.Fatalf("OpenCompleter() failed: %v", err)
	}
	if _, ok := c.(*completion.OpenAI); !ok {
		t.Errorf("OpenCompleter() = %T, want *completion.OpenAI", c)
	}

	if _, err := (&Config{LLMProvider: "openai"}).OpenCompleter(context.Background(), nil); err == nil {
		t.Error("Expected error without an API key")
	}
	if _, err := (&Config{}).OpenCompleter(context.Background(), nil); err == nil {
		t.Error("Expected error for gemini without an API key")
	}
	if _, err := (&Config{LLMProvider: "bogus", LLMAPIKey: "k"}).OpenCompleter(context.Background(), nil); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

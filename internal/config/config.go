// ABOUTME: liftlog configuration: JSON file plus environment overrides.
// ABOUTME: Also builds the storage backend and completion client it describes.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/harperreed/liftlog/internal/completion"
	"github.com/harperreed/liftlog/internal/storage"
	"go.uber.org/zap"
)

// Backends and providers.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// CharmDBName is the Charm KV database used by the charm backend.
const CharmDBName = "liftlog"

const (
	defaultHTTPAddress       = ":8080"
	defaultCompletionTimeout = 30 * time.Second
)

// Config stores liftlog settings. Environment variables win over the file.
type Config struct {
	// Backend selects the storage backend: "badger" (default), "sqlite", or "charm".
	Backend string `json:"backend,omitempty" env:"LIFTLOG_BACKEND"`

	// DataDir is the root directory for local backends.
	// Supports ~ expansion. Defaults to ~/.local/share/liftlog.
	DataDir string `json:"data_dir,omitempty" env:"LIFTLOG_DATA_DIR"`

	// CharmHost overrides the charm server for the charm backend.
	CharmHost string `json:"charm_host,omitempty" env:"CHARM_HOST"`

	HTTPAddress string `json:"http_address,omitempty" env:"LIFTLOG_HTTP_ADDRESS"`

	// LLMProvider selects the completion service: "gemini" (default) or "openai".
	LLMProvider string `json:"llm_provider,omitempty" env:"LIFTLOG_LLM_PROVIDER"`
	LLMModel    string `json:"llm_model,omitempty" env:"LIFTLOG_LLM_MODEL"`

	// LLMAPIKey is never written to the config file.
	LLMAPIKey    string `json:"-" env:"LIFTLOG_LLM_API_KEY"`
	GeminiAPIKey string `json:"-" env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `json:"-" env:"OPENAI_API_KEY"`

	OpenAIBaseURL string `json:"openai_base_url,omitempty" env:"LIFTLOG_OPENAI_BASE_URL"`
	GeminiBaseURL string `json:"gemini_base_url,omitempty" env:"LIFTLOG_GEMINI_BASE_URL"`

	CompletionTimeout time.Duration `json:"completion_timeout,omitempty" env:"LIFTLOG_COMPLETION_TIMEOUT"`
}

// GetBackend returns the configured backend, defaulting to badger.
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendBadger
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetHTTPAddress returns the listen address for `liftlog serve`.
func (c *Config) GetHTTPAddress() string {
	if c.HTTPAddress == "" {
		return defaultHTTPAddress
	}
	return c.HTTPAddress
}

// GetLLMProvider returns the completion provider, defaulting to gemini.
func (c *Config) GetLLMProvider() string {
	if c.LLMProvider == "" {
		return ProviderGemini
	}
	return strings.ToLower(c.LLMProvider)
}

// GetAPIKey returns the key for the configured provider. LIFTLOG_LLM_API_KEY
// wins over the provider's own variable.
func (c *Config) GetAPIKey() string {
	if c.LLMAPIKey != "" {
		return c.LLMAPIKey
	}
	if c.GetLLMProvider() == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// GetCompletionTimeout bounds one completion call.
func (c *Config) GetCompletionTimeout() time.Duration {
	if c.CompletionTimeout <= 0 {
		return defaultCompletionTimeout
	}
	return c.CompletionTimeout
}

// defaultDataDir is liftlog's directory under XDG_DATA_HOME.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "liftlog")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage(logger *zap.Logger) (storage.Repository, error) {
	dataDir := c.GetDataDir()

	switch backend := c.GetBackend(); backend {
	case BackendBadger:
		return storage.OpenBadger(filepath.Join(dataDir, "badger"), logger)
	case BackendSQLite:
		return storage.Open(filepath.Join(dataDir, "liftlog.db"))
	case BackendCharm:
		return storage.OpenCharm(CharmDBName, c.CharmHost)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// OpenCompleter creates the completion client for the configured provider.
func (c *Config) OpenCompleter(ctx context.Context, logger *zap.Logger) (completion.Completer, error) {
	switch provider := c.GetLLMProvider(); provider {
	case ProviderGemini:
		return completion.NewGemini(ctx, c.GetAPIKey(), c.LLMModel, c.GeminiBaseURL, logger)
	case ProviderOpenAI:
		return completion.NewOpenAI(c.GetAPIKey(), c.LLMModel, c.OpenAIBaseURL, c.GetCompletionTimeout())
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", provider)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "liftlog", "config.json")
}

// Load reads config from disk and applies environment overrides.
func Load() (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(GetConfigPath())
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Save writes config to disk. API keys are not persisted.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Package config loads the daemon configuration from YAML, with
// defaults for everything but the Anthropic key.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RateLimit is the per-identity admission window.
type RateLimit struct {
	WindowSeconds int `yaml:"window_seconds"`
	MaxRequests   int `yaml:"max_requests"`
}

// Embedder points at a local ONNX embedding model. Only honored by
// builds with the onnx tag; other builds use the hash embedder and
// ignore this section.
type Embedder struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string `yaml:"model_path"`

	// TokenizerPath is the path to the tokenizer.json file.
	TokenizerPath string `yaml:"tokenizer_path"`

	// LibraryPath is the path to libonnxruntime.so. Falls back to the
	// ONNXRUNTIME_LIB environment variable.
	LibraryPath string `yaml:"library_path"`
}

// Config is the daemon configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// DataDir holds the SQLite databases.
	DataDir string `yaml:"data_dir"`

	// AnthropicAPIKey authenticates model calls. Falls back to the
	// ANTHROPIC_API_KEY environment variable.
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	// Model is the model to converse with.
	Model string `yaml:"model"`

	// MaxTokens caps the response size per model round.
	MaxTokens int64 `yaml:"max_tokens"`

	// HistoryWindow is how many log entries the memory manager reads
	// back per turn.
	HistoryWindow int `yaml:"history_window"`

	// TurnWindow is how many parsed turns are replayed into the model.
	TurnWindow int `yaml:"turn_window"`

	// MaxToolRounds caps the model's tool-use loop per turn.
	MaxToolRounds int `yaml:"max_tool_rounds"`

	RateLimit RateLimit `yaml:"rate_limit"`

	Embedder Embedder `yaml:"embedder"`
}

// Load reads the configuration file at path. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.AnthropicAPIKey == "" {
		c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.Model == "" {
		c.Model = "claude-sonnet-4-20250514"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.HistoryWindow == 0 {
		c.HistoryWindow = 30
	}
	if c.TurnWindow == 0 {
		c.TurnWindow = 10
	}
	if c.MaxToolRounds == 0 {
		c.MaxToolRounds = 5
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 10
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 10
	}
}

// DatabasePath returns the path of a named SQLite database under the
// data directory.
func (c *Config) DatabasePath(name string) string {
	return filepath.Join(c.DataDir, name)
}

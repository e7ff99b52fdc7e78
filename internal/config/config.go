// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPort is the HTTP port used when none is configured
const DefaultPort = 8080

// Config represents settings that can be loaded from a JSON file.
// All fields are optional; flags and environment fill in the rest.
type Config struct {
	APIKey       string `json:"api_key,omitempty"`       // Gemini API key
	Port         int    `json:"port,omitempty"`          // HTTP listen port
	Model        string `json:"model,omitempty"`         // Overrides the analysis model name
	StrictSchema bool   `json:"strict_schema,omitempty"` // Validate model output against the declared schema
	Verbose      bool   `json:"verbose,omitempty"`       // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required values such as the API key are checked after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.Model != "" && strings.TrimSpace(c.Model) != c.Model {
		return fmt.Errorf("config error: 'model' must not have surrounding whitespace")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Port == 0 {
		if defaults.Port > 0 {
			result.Port = defaults.Port
		} else {
			result.Port = DefaultPort
		}
	}

	// Bools cannot distinguish unset from false; true wins from either side
	result.StrictSchema = result.StrictSchema || defaults.StrictSchema
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// APIKeyFromEnv returns the Gemini credential from the environment.
// GEMINI_API_KEY takes precedence over API_KEY.
func APIKeyFromEnv() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("API_KEY")
}

// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/aeroleads/internal/schemas"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
// Secrets never belong here, they are read from the environment (see Credentials).
type Config struct {
	Profiles ProfilesConfig `json:"profiles,omitempty"`
	Calls    CallsConfig    `json:"calls,omitempty"`
	Articles ArticlesConfig `json:"articles,omitempty"`
	Verbose  bool           `json:"verbose,omitempty"` // Print detailed debug information
}

// ProfilesConfig holds defaults for the profile collector.
type ProfilesConfig struct {
	URLsFile    string `json:"urls_file,omitempty"`    // File with one profile URL per line
	SearchURL   string `json:"search_url,omitempty"`   // Search results page to harvest profile links from
	Count       int    `json:"count,omitempty"`        // Maximum profiles to collect
	Output      string `json:"output,omitempty"`       // CSV output path
	Delay       string `json:"delay,omitempty"`        // Pause between page visits, e.g. "4s"
	Jitter      string `json:"jitter,omitempty"`       // Random extra pause added to Delay
	PageTimeout string `json:"page_timeout,omitempty"` // Per-page navigation timeout
	Headful     bool   `json:"headful,omitempty"`      // Show the browser window
}

// CallsConfig holds defaults for the call dispatcher.
type CallsConfig struct {
	NumbersFile string `json:"numbers_file,omitempty"` // Text or JSON file with phone numbers
	Message     string `json:"message,omitempty"`      // Spoken message
	TwimlURL    string `json:"twiml_url,omitempty"`    // Remote call script used instead of Message
	Output      string `json:"output,omitempty"`       // JSON result list path
}

// ArticlesConfig holds defaults for the article generator.
type ArticlesConfig struct {
	TopicsFile string `json:"topics_file,omitempty"` // YAML or text topics file
	Count      int    `json:"count,omitempty"`       // Number of topics to process
	OutputDir  string `json:"output_dir,omitempty"`  // Directory for generated markdown
	Model      string `json:"model,omitempty"`       // Model override for the generation tier
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read, does not match the config schema, or cannot be parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
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

	if !json.Valid(data) {
		return nil, fmt.Errorf("failed to parse config JSON: invalid JSON in %s", path)
	}
	if err := schemas.Validate(schemas.Config, data); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Profiles.Count < 0 {
		return fmt.Errorf("config error: 'profiles.count' must be non-negative")
	}
	if c.Articles.Count < 0 {
		return fmt.Errorf("config error: 'articles.count' must be non-negative")
	}
	if c.Profiles.URLsFile != "" && c.Profiles.SearchURL != "" {
		return fmt.Errorf("config error: 'profiles.urls_file' and 'profiles.search_url' are mutually exclusive")
	}

	for name, value := range map[string]string{
		"profiles.delay":        c.Profiles.Delay,
		"profiles.jitter":       c.Profiles.Jitter,
		"profiles.page_timeout": c.Profiles.PageTimeout,
	} {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d < 0 {
			return fmt.Errorf("config error: '%s' must be a non-negative duration, got %q", name, value)
		}
	}

	// Validate file paths exist (if specified)
	for name, path := range map[string]string{
		"profiles.urls_file":   c.Profiles.URLsFile,
		"calls.numbers_file":   c.Calls.NumbersFile,
		"articles.topics_file": c.Articles.TopicsFile,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s not found: %s", name, path)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// Profiles
	if result.Profiles.URLsFile == "" {
		result.Profiles.URLsFile = defaults.Profiles.URLsFile
	}
	if result.Profiles.SearchURL == "" {
		result.Profiles.SearchURL = defaults.Profiles.SearchURL
	}
	if result.Profiles.Count == 0 {
		result.Profiles.Count = defaults.Profiles.Count
	}
	if result.Profiles.Output == "" {
		result.Profiles.Output = defaults.Profiles.Output
	}
	if result.Profiles.Delay == "" {
		result.Profiles.Delay = defaults.Profiles.Delay
	}
	if result.Profiles.Jitter == "" {
		result.Profiles.Jitter = defaults.Profiles.Jitter
	}
	if result.Profiles.PageTimeout == "" {
		result.Profiles.PageTimeout = defaults.Profiles.PageTimeout
	}

	// Calls
	if result.Calls.NumbersFile == "" {
		result.Calls.NumbersFile = defaults.Calls.NumbersFile
	}
	if result.Calls.Message == "" {
		result.Calls.Message = defaults.Calls.Message
	}
	if result.Calls.TwimlURL == "" {
		result.Calls.TwimlURL = defaults.Calls.TwimlURL
	}
	if result.Calls.Output == "" {
		result.Calls.Output = defaults.Calls.Output
	}

	// Articles
	if result.Articles.TopicsFile == "" {
		result.Articles.TopicsFile = defaults.Articles.TopicsFile
	}
	if result.Articles.Count == 0 {
		result.Articles.Count = defaults.Articles.Count
	}
	if result.Articles.OutputDir == "" {
		result.Articles.OutputDir = defaults.Articles.OutputDir
	}
	if result.Articles.Model == "" {
		result.Articles.Model = defaults.Articles.Model
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// DurationOr parses value as a duration, returning fallback when value is empty or invalid.
func DurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

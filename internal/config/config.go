// Package config loads formscript settings from a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/formscript/internal/forms"
	"github.com/roach88/formscript/internal/formxml"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "formscript.yaml"

// Config holds the settings shared by all commands. Command-line flags
// override these values.
type Config struct {
	Database     string `yaml:"database"`
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
	DefaultForms string `yaml:"default_forms"` // main, quickcreate, all
	DefaultEvent string `yaml:"default_event"` // onload, onsave
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Database:     "formscript.db",
		LogLevel:     "info",
		DefaultForms: "main",
		DefaultEvent: "onload",
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// FORMSCRIPT_DB overrides the database path.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if db := os.Getenv("FORMSCRIPT_DB"); db != "" {
		c.Database = db
	}
}

// Validate checks every value that is parsed later.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.FormTypes(); err != nil {
		return fmt.Errorf("default_forms: %w", err)
	}
	if _, err := c.Event(); err != nil {
		return fmt.Errorf("default_event: %w", err)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: must be debug, info, warn or error", c.LogLevel)
	}
	return lvl, nil
}

// FormTypes parses DefaultForms.
func (c *Config) FormTypes() (forms.FormType, error) {
	return forms.ParseFormTypes(c.DefaultForms)
}

// Event parses DefaultEvent.
func (c *Config) Event() (formxml.EventType, error) {
	return formxml.ParseEventType(c.DefaultEvent)
}

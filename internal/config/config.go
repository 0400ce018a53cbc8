// Package config loads the deck CLI configuration from YAML, layering the
// user's file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/sky-flux/deck/fsrs/optimizer"
)

// FSRSConfig seeds the shared model of newly created FSRS decks.
type FSRSConfig struct {
	LearningSteps   []time.Duration           `yaml:"learning_steps,omitempty"`
	RelearningSteps []time.Duration           `yaml:"relearning_steps,omitempty"`
	MaximumInterval int                       `yaml:"maximum_interval,omitempty"` // days
	DisableFuzzing  bool                      `yaml:"disable_fuzzing,omitempty"`
	Optimizer       optimizer.OptimizerConfig `yaml:"optimizer,omitempty"`
}

// LeitnerConfig seeds the schedule of newly created Leitner decks.
type LeitnerConfig struct {
	Intervals []time.Duration `yaml:"intervals,omitempty"` // one per box
}

// LogConfig controls where the CLI logs.
type LogConfig struct {
	File   string `yaml:"file,omitempty"`   // empty logs to stderr
	Pretty bool   `yaml:"pretty,omitempty"` // console format, stderr only
}

// Config is the deck CLI configuration.
type Config struct {
	Database        string        `yaml:"database,omitempty"`         // SQLite file, ~ expanded
	Algorithm       string        `yaml:"algorithm,omitempty"`        // "fsrs" or "leitner" for new decks
	TargetRetention float64       `yaml:"target_retention,omitempty"` // for new decks
	Lookahead       time.Duration `yaml:"lookahead,omitempty"`

	FSRS    FSRSConfig    `yaml:"fsrs,omitempty"`
	Leitner LeitnerConfig `yaml:"leitner,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		Database:        filepath.Join(homeDir(), ".deck", "deck.db"),
		Algorithm:       "fsrs",
		TargetRetention: 0.9,
		Lookahead:       10 * time.Second,
	}
}

// GetConfigPath returns the default config file path.
// Can be overridden via DECK_CONFIG_PATH environment variable.
func GetConfigPath() string {
	if envPath := os.Getenv("DECK_CONFIG_PATH"); envPath != "" {
		return expandPath(envPath)
	}
	return filepath.Join(homeDir(), ".deck", "config.yaml")
}

// Load reads the config at path and merges it onto Defaults.
// Returns defaults if the file doesn't exist.
func Load(path string) (*Config, error) {
	defaults := Defaults()

	expandedPath := expandPath(path)
	if _, err := os.Stat(expandedPath); err != nil {
		return &defaults, nil
	}

	data, err := os.ReadFile(expandedPath) //#nosec G304 -- intentional file read for config
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", expandedPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := mergo.Merge(&defaults, cfg, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	defaults.Database = expandPath(defaults.Database)

	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	return &defaults, nil
}

// Validate checks the fields that would otherwise fail later at deck creation.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case "fsrs", "leitner":
	default:
		return fmt.Errorf("config: unknown algorithm %q", c.Algorithm)
	}
	if c.TargetRetention <= 0 || c.TargetRetention > 1 {
		return fmt.Errorf("config: target_retention %v out of range (0, 1]", c.TargetRetention)
	}
	if c.Lookahead < 0 {
		return fmt.Errorf("config: negative lookahead %s", c.Lookahead)
	}
	return nil
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(cfg *Config, path string) error {
	expandedPath := expandPath(path)

	if err := os.MkdirAll(filepath.Dir(expandedPath), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func homeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return dir
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds settings for the CLI and the API server
type Config struct {
	// DBPath is the SQLite database holding imported entries
	DBPath string `yaml:"db"`

	// Addr is the listen address for `cycles serve`
	Addr string `yaml:"addr"`

	// OutputDir receives CSV and report files
	OutputDir string `yaml:"output_dir"`

	// ReportTitle heads the HTML report
	ReportTitle string `yaml:"report_title"`

	Debug bool `yaml:"debug"`
}

// DefaultDir is where the database and config file live by default
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cycles")
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		DBPath:      filepath.Join(DefaultDir(), "cycles.db"),
		Addr:        ":8080",
		OutputDir:   "output_csv",
		ReportTitle: "Clue Period Tracker Report",
	}
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CYCLES_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CYCLES_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("CYCLES_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("CYCLES_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("CYCLES_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CYCLES_DEBUG: %w", err)
		}
		c.Debug = debug
	}
	return nil
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path must not be empty")
	}
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	return nil
}

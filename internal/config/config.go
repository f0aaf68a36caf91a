package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aspect/internal/data"
	"aspect/internal/errors"
	"aspect/internal/persist"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
// It defines viewer behaviour, catalog persistence and logging.
type Config struct {
	Viewer struct {
		DefaultSort      string `yaml:"default_sort"`      // name, last_modified or random
		SlideshowSeconds int    `yaml:"slideshow_seconds"` // Interval used when a slideshow is started
	} `yaml:"viewer"`
	Catalog struct {
		DatabaseName   string `yaml:"database_name"`   // Rating store file name inside the directory
		PersistRatings bool   `yaml:"persist_ratings"` // Open the rating store at all
		Watch          bool   `yaml:"watch"`           // Rescan when the directory changes
	} `yaml:"catalog"`
	Log struct {
		Level string `yaml:"level"` // debug, info, warn or error
		JSON  bool   `yaml:"json"`  // One JSON object per line
		File  string `yaml:"file"`  // Optional log file
	} `yaml:"log"`
}

// DefaultPath returns ~/.config/aspect/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "aspect", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location
// (~/.config/aspect/config.yaml).
func LoadConfig() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewConfigError("error reading config file", path, errors.ConfigNotFound, err)
	}

	// Keys absent from the file keep their defaults.
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Viewer.DefaultSort = data.SortByName.Key()
	cfg.Viewer.SlideshowSeconds = 5

	cfg.Catalog.DatabaseName = persist.DefaultDatabaseName
	cfg.Catalog.PersistRatings = true
	cfg.Catalog.Watch = true

	cfg.Log.Level = "info"
	cfg.Log.JSON = false
	cfg.Log.File = ""

	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns error if any settings are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	if _, err := data.ParseFileSort(c.Viewer.DefaultSort); err != nil {
		return errors.NewConfigError("invalid value", "viewer.default_sort", errors.InvalidConfig, err)
	}

	if c.Viewer.SlideshowSeconds < 1 {
		return errors.NewConfigError("invalid value", "viewer.slideshow_seconds", errors.InvalidConfig,
			fmt.Errorf("must be >= 1 second"))
	}

	if c.Catalog.DatabaseName == "" || filepath.Base(c.Catalog.DatabaseName) != c.Catalog.DatabaseName {
		return errors.NewConfigError("invalid value", "catalog.database_name", errors.InvalidConfig,
			fmt.Errorf("must be a plain file name"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewConfigError("invalid value", "log.level", errors.InvalidConfig,
			fmt.Errorf("unknown level %q", c.Log.Level))
	}

	return nil
}

// Sort returns the configured default sort method.
func (c *Config) Sort() data.FileSort {
	s, _ := data.ParseFileSort(c.Viewer.DefaultSort)
	return s
}

// SlideshowInterval returns the configured slideshow interval.
func (c *Config) SlideshowInterval() time.Duration {
	return time.Duration(c.Viewer.SlideshowSeconds) * time.Second
}

// NewTestConfig creates a configuration instance for testing purposes.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Catalog.Watch = false
	cfg.Viewer.SlideshowSeconds = 1
	cfg.Log.Level = "debug"
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

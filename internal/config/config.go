// ABOUTME: Configuration loading and parsing for fitcheck
// ABOUTME: Supports YAML files with environment variable expansion, duration parsing and defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
	DriverS3     = "s3"
)

// Config represents the complete fitcheck configuration
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Registry   RegistryConfig   `yaml:"registry"`
	Generation GenerationConfig `yaml:"generation"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// StorageConfig selects and configures the Durable Store
type StorageConfig struct {
	Driver string   `yaml:"driver"`
	Path   string   `yaml:"path"` // SQLite file; also holds the library when driver is s3
	S3     S3Config `yaml:"s3"`
}

// S3Config holds S3-compatible bucket settings
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// RegistryConfig holds asset registry limits
type RegistryConfig struct {
	MaxTransient int `yaml:"max_transient"`

	// OptimizeGrace keeps unreferenced assets younger than this during optimize
	OptimizeGrace time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	OptimizeGraceRaw string `yaml:"optimize_grace"`
}

// GenerationConfig holds the generation endpoint settings
type GenerationConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// CatalogConfig points at a wardrobe catalog to seed the library from
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// Default returns a configuration with every optional field filled in.
// dataDir is where the SQLite database lives.
func Default(dataDir string) *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join(dataDir, "studio.db"),
			S3:     S3Config{Region: "us-east-1"},
		},
		Registry: RegistryConfig{
			MaxTransient:     10,
			OptimizeGrace:    24 * time.Hour,
			OptimizeGraceRaw: "24h",
		},
		Generation: GenerationConfig{
			Model:      "gemini-2.5-flash-image",
			Timeout:    90 * time.Second,
			TimeoutRaw: "90s",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9464", Path: "/metrics"},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Fields absent from the file keep their Default values.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path, dataDir string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	cfg := Default(dataDir)
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if c.Generation.Timeout > 0 {
		c.Generation.TimeoutRaw = c.Generation.Timeout.String()
	}
	c.Registry.OptimizeGraceRaw = c.Registry.OptimizeGrace.String()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	// API keys may be present
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case DriverS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 driver")
		}
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the library database")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q is not one of sqlite, memory, s3", c.Storage.Driver)
	}

	if c.Registry.MaxTransient < 1 {
		return fmt.Errorf("registry.max_transient must be at least 1")
	}

	if c.Registry.OptimizeGrace < 0 {
		return fmt.Errorf("registry.optimize_grace must not be negative")
	}

	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("generation.timeout must be positive")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Generation.TimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Generation.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing timeout %q: %w", cfg.Generation.TimeoutRaw, err)
		}
		cfg.Generation.Timeout = d
	}
	if cfg.Registry.OptimizeGraceRaw != "" {
		d, err := time.ParseDuration(cfg.Registry.OptimizeGraceRaw)
		if err != nil {
			return fmt.Errorf("parsing optimize_grace %q: %w", cfg.Registry.OptimizeGraceRaw, err)
		}
		cfg.Registry.OptimizeGrace = d
	}
	return nil
}

// DefaultPath returns the config file location: FITCHECK_CONFIG if set,
// otherwise studio.yaml under the XDG config directory.
func DefaultPath() string {
	if p := os.Getenv("FITCHECK_CONFIG"); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fitcheck", "studio.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fitcheck", "studio.yaml")
}

// DataDir returns the directory for the database and other state.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fitcheck")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fitcheck")
}

// LoadOrDefault loads path if it exists and falls back to Default otherwise.
func LoadOrDefault(path, dataDir string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(dataDir), nil
	}
	return Load(path, dataDir)
}

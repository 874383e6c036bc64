package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDBPath is the default location of the database
	DefaultDBPath = "~/.fulltext/fulltext.db"

	// DefaultConfigPath is read when no config file is given
	DefaultConfigPath = "~/.fulltext/config.yaml"

	// Environment overrides
	EnvDBPath   = "FULLTEXT_DB_PATH"
	EnvLogLevel = "FULLTEXT_LOG_LEVEL"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the fulltext configuration
type Config struct {
	DBPath   string       `yaml:"db_path"`
	LogLevel string       `yaml:"log_level"`
	Search   SearchConfig `yaml:"search"`
	Index    IndexConfig  `yaml:"index"`
}

// SearchConfig controls search requests and the page cache
type SearchConfig struct {
	DefaultPageSize int           `yaml:"default_page_size"`
	MaxPageSize     int           `yaml:"max_page_size"`
	SnippetTokens   int           `yaml:"snippet_tokens"`
	PageCacheSize   int           `yaml:"page_cache_size"`
	PageCacheTTL    time.Duration `yaml:"page_cache_ttl"`
}

// IndexConfig controls record imports
type IndexConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DBPath:   DefaultDBPath,
		LogLevel: "info",
		Search: SearchConfig{
			DefaultPageSize: 12,
			MaxPageSize:     100,
			SnippetTokens:   32,
			PageCacheSize:   256,
			PageCacheTTL:    10 * time.Minute,
		},
		Index: IndexConfig{
			Workers:   runtime.NumCPU(),
			BatchSize: 20,
		},
	}
}

// Load reads the config file at path over the defaults and applies
// environment overrides. An empty path reads DefaultConfigPath if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
		// Defaults only
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate rejects out-of-range values
func (c *Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	s := c.Search
	if s.MaxPageSize < 1 {
		errs = append(errs, fmt.Errorf("search.max_page_size must be positive, got %d", s.MaxPageSize))
	}
	if s.DefaultPageSize < 1 || s.DefaultPageSize > s.MaxPageSize {
		errs = append(errs, fmt.Errorf("search.default_page_size must be in [1,%d], got %d", s.MaxPageSize, s.DefaultPageSize))
	}
	if s.SnippetTokens < 1 || s.SnippetTokens > 64 {
		errs = append(errs, fmt.Errorf("search.snippet_tokens must be in [1,64], got %d", s.SnippetTokens))
	}
	if s.PageCacheSize < 0 {
		errs = append(errs, fmt.Errorf("search.page_cache_size must not be negative, got %d", s.PageCacheSize))
	}
	if s.PageCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("search.page_cache_ttl must not be negative, got %s", s.PageCacheTTL))
	}

	if c.Index.Workers < 0 {
		errs = append(errs, fmt.Errorf("index.workers must not be negative, got %d", c.Index.Workers))
	}
	if c.Index.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("index.batch_size must not be negative, got %d", c.Index.BatchSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Level returns the slog level of LogLevel
func (c *Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps debug, info, warn and error to slog levels
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Save writes the config as YAML
func (c *Config) Save(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(expanded, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

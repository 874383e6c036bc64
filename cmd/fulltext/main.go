package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/fulltext-mcp/internal/config"
	"github.com/dshills/fulltext-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configPath string
	dbPath     string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "fulltext",
	Short: "Full-text search over annotated page transcriptions",
	Long: `fulltext stores digitized page transcriptions with their word, line,
block and page annotations, and maps full-text search hits back onto exact
character offsets and annotations.

Run "fulltext serve" to expose the store to MCP clients over stdio.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.fulltext/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config and "+config.EnvDBPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs to stderr; stdout is reserved for MCP protocol and command output
func newLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	return logger
}

// openStorage opens the configured database, creating its directory
func openStorage(cfg *config.Config) (*storage.SQLiteStorage, error) {
	path, err := config.ExpandPath(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store.SetSnippetTokens(cfg.Search.SnippetTokens)
	return store, nil
}

package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/fulltext-mcp/internal/config"
	"github.com/dshills/fulltext-mcp/internal/indexer"
	"github.com/dshills/fulltext-mcp/internal/searcher"
	"github.com/dshills/fulltext-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "fulltext-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	cfg      *config.Config
	logger   *slog.Logger

	importLock indexer.ImportLock
}

// NewServer opens the database named by cfg and creates a new MCP server instance
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	dbPath, err := config.ExpandPath(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if dbPath != ":memory:" {
		// Create directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	store.SetSnippetTokens(cfg.Search.SnippetTokens)

	s, err := NewServerWithStorage(store, cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return s, nil
}

// NewServerWithStorage creates a server on top of an open store. The server
// takes ownership of the store and closes it when Serve returns.
func NewServerWithStorage(store storage.Storage, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Create searcher
	srch, err := searcher.NewSearcher(store, searcher.Options{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
		CacheSize:       cfg.Search.PageCacheSize,
		CacheTTL:        cfg.Search.PageCacheTTL,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize searcher: %w", err)
	}

	// Create indexer
	idx := indexer.New(store, logger.With("component", "indexer"))

	// Create MCP server
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp:      mcpServer,
		storage:  store,
		indexer:  idx,
		searcher: srch,
		cfg:      cfg,
		logger:   logger.With("component", "mcp"),
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()

	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// Close releases the store without serving
func (s *Server) Close() error {
	return s.storage.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(searchFulltextTool(), s.handleSearchFulltext)
	s.mcp.AddTool(getAnnotationPageTool(), s.handleGetAnnotationPage)
	s.mcp.AddTool(getAnnotationTool(), s.handleGetAnnotation)
	s.mcp.AddTool(getResourceTool(), s.handleGetResource)
	s.mcp.AddTool(importRecordsTool(), s.handleImportRecords)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return nil
}

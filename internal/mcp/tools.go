package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/fulltext-mcp/internal/indexer"
	"github.com/dshills/fulltext-mcp/internal/reconcile"
	"github.com/dshills/fulltext-mcp/internal/searcher"
	"github.com/dshills/fulltext-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeRecordNotFound   = -32001 // Record has no pages
	ErrorCodeImportInProgress = -32002 // Another import is already running
	ErrorCodeNotFound         = -32003 // Page, annotation or resource does not exist
	ErrorCodeEmptyQuery       = -32004 // Query parameter is empty
	ErrorCodeIndexUnavailable = -32005 // Search index query failed
)

// handleSearchFulltext handles the search_fulltext tool invocation
func (s *Server) handleSearchFulltext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	rec, err := recordArg(args)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(getStringDefault(args, "query", ""))
	if query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	pageSize := getIntDefault(args, "page_size", s.cfg.Search.DefaultPageSize)
	if pageSize < 1 || pageSize > s.cfg.Search.MaxPageSize {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("page_size must be between 1 and %d", s.cfg.Search.MaxPageSize), map[string]interface{}{
			"param": "page_size",
			"value": pageSize,
		})
	}

	granularity, err := types.ParseGranularity(getStringDefault(args, "granularity", searcher.DefaultGranularity.String()))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid granularity", map[string]interface{}{
			"param":   "granularity",
			"reason":  err.Error(),
			"allowed": granularityNames,
		})
	}

	result, err := s.searcher.Search(ctx, searcher.SearchRequest{
		Record:      rec,
		Query:       query,
		PageSize:    pageSize,
		Granularity: granularity,
		Debug:       getBoolDefault(args, "debug", false),
	})
	if err != nil {
		return nil, s.toMCPError("search failed", err)
	}

	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleGetAnnotationPage handles the get_annotation_page tool invocation
func (s *Server) handleGetAnnotationPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	rec, err := recordArg(args)
	if err != nil {
		return nil, err
	}
	pageID, err := requiredString(args, "page_id")
	if err != nil {
		return nil, err
	}

	var granularities []types.Granularity
	if raw, ok := args["granularities"].([]interface{}); ok {
		for _, v := range raw {
			name, _ := v.(string)
			g, err := types.ParseGranularity(name)
			if err != nil {
				return nil, newMCPError(ErrorCodeInvalidParams, "invalid granularity", map[string]interface{}{
					"param":   "granularities",
					"reason":  err.Error(),
					"allowed": granularityNames,
				})
			}
			granularities = append(granularities, g)
		}
	}

	page, err := s.searcher.GetAnnotationPage(ctx, rec, pageID, granularities...)
	if err != nil {
		return nil, s.toMCPError("failed to get annotation page", err)
	}

	text := reconcile.NewText(page.FullText)
	items := make([]types.Item, 0, len(page.Annotations))
	for _, anno := range page.Annotations {
		items = append(items, types.Item{
			ID:          anno.ID,
			Record:      page.Record,
			PageID:      page.PageID,
			Granularity: anno.Granularity,
			From:        anno.From,
			To:          anno.To,
			Text:        text.Slice(anno.From, anno.To),
			Language:    anno.Language,
			Targets:     anno.Targets,
		})
	}

	response := map[string]interface{}{
		"record":      page.Record,
		"page_id":     page.PageID,
		"resource_id": page.ResourceID,
		"language":    page.Language,
		"image_url":   page.ImageURL,
		"annotations": items,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetAnnotation handles the get_annotation tool invocation
func (s *Server) handleGetAnnotation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	rec, err := recordArg(args)
	if err != nil {
		return nil, err
	}
	annotationID, err := requiredString(args, "annotation_id")
	if err != nil {
		return nil, err
	}

	item, err := s.searcher.FindAnnotation(ctx, rec, annotationID)
	if err != nil {
		return nil, s.toMCPError("failed to get annotation", err)
	}
	return mcp.NewToolResultText(formatJSON(item)), nil
}

// handleGetResource handles the get_resource tool invocation
func (s *Server) handleGetResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	rec, err := recordArg(args)
	if err != nil {
		return nil, err
	}
	resourceID, err := requiredString(args, "resource_id")
	if err != nil {
		return nil, err
	}

	res, err := s.searcher.GetResource(ctx, rec, resourceID)
	if err != nil {
		return nil, s.toMCPError("failed to get resource", err)
	}
	return mcp.NewToolResultText(formatJSON(res)), nil
}

// handleImportRecords handles the import_records tool invocation
func (s *Server) handleImportRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requiredString(args, "path")
	if err != nil {
		return nil, err
	}

	// Validate path exists and is accessible
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	if !s.importLock.TryAcquire() {
		return nil, newMCPError(ErrorCodeImportInProgress, "another import is already running", nil)
	}
	defer s.importLock.Release()

	stats, err := s.indexer.ImportRecords(ctx, path, &indexer.Config{
		Workers:         s.cfg.Index.Workers,
		BatchSize:       s.cfg.Index.BatchSize,
		OnRecordChanged: s.searcher.InvalidateRecord,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "import failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"imported":             true,
		"records_imported":     stats.RecordsImported,
		"records_skipped":      stats.RecordsSkipped,
		"records_failed":       stats.RecordsFailed,
		"pages_imported":       stats.PagesImported,
		"annotations_imported": stats.AnnotationsImported,
		"parse_warnings":       stats.ParseWarnings,
		"duration_ms":          stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"statistics": map[string]interface{}{
			"records_count":     status.Records,
			"pages_count":       status.Pages,
			"annotations_count": status.Annotations,
			"by_granularity":    status.ByGranularity,
			"index_size_mb":     fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"schema_version":     status.SchemaVersion,
		"build_mode":         status.BuildMode,
		"import_in_progress": s.importLock.Held(),
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"fts_index_built":     status.Health.FTSIndexBuilt,
		},
	}

	if run := status.LastImport; run != nil {
		response["last_import"] = map[string]interface{}{
			"path":             run.RootPath,
			"records_imported": run.RecordsImported,
			"records_skipped":  run.RecordsSkipped,
			"pages_imported":   run.PagesImported,
			"error_count":      run.ErrorCount,
			"duration_ms":      run.Duration.Milliseconds(),
			"finished_at":      run.FinishedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// toMCPError maps domain errors to MCP error codes
func (s *Server) toMCPError(message string, err error) error {
	data := map[string]interface{}{"error": err.Error()}

	switch {
	case errors.Is(err, types.ErrInvalidRequest), errors.Is(err, types.ErrInvalidGranularity):
		return newMCPError(ErrorCodeInvalidParams, message, data)
	case errors.Is(err, types.ErrRecordNotFound):
		return newMCPError(ErrorCodeRecordNotFound, "record not found", data)
	case errors.Is(err, types.ErrPageNotFound),
		errors.Is(err, types.ErrAnnotationNotFound),
		errors.Is(err, types.ErrResourceNotFound):
		return newMCPError(ErrorCodeNotFound, "not found", data)
	case errors.Is(err, types.ErrIndexQuery):
		s.logger.Warn("search index unavailable", "error", err)
		return newMCPError(ErrorCodeIndexUnavailable, "search index unavailable, retry later", data)
	default:
		s.logger.Error(message, "error", err)
		return newMCPError(ErrorCodeInternalError, message, data)
	}
}

// recordArg extracts and validates the dataset_id and local_id parameters
func recordArg(args map[string]interface{}) (types.RecordID, error) {
	datasetID, err := requiredString(args, "dataset_id")
	if err != nil {
		return types.RecordID{}, err
	}
	localID, err := requiredString(args, "local_id")
	if err != nil {
		return types.RecordID{}, err
	}
	return types.RecordID{DatasetID: datasetID, LocalID: localID}, nil
}

// requiredString extracts a non-empty string parameter
func requiredString(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || strings.TrimSpace(val) == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return strings.TrimSpace(val), nil
}

// validatePath checks if an import path exists and is accessible
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	// Check if path is absolute
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	// Check if path exists
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(path), ".json") {
			return ErrNotRecordSource
		}
		return nil
	}

	// Check if directory is readable
	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotRecordSource = errors.New("path is neither a directory nor a JSON file")
)

package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/fulltext-mcp/internal/parser"
	"github.com/dshills/fulltext-mcp/internal/storage"
	"github.com/dshills/fulltext-mcp/pkg/types"
)

// Indexer coordinates the import pipeline: discover -> parse -> store
type Indexer struct {
	parser  *parser.Parser
	storage storage.Storage
	logger  *slog.Logger

	// Worker pool configuration
	workers int
}

// Config contains configuration for an import
type Config struct {
	Workers   int // Number of concurrent workers (default: runtime.NumCPU())
	BatchSize int // Number of sources handed to a worker at once (default: 20)

	// OnRecordChanged is called after a record was written. Search caches
	// use it to drop stale pages.
	OnRecordChanged func(types.RecordID)
}

// Statistics contains statistics about the import operation
type Statistics struct {
	RecordsImported     int
	RecordsSkipped      int
	RecordsFailed       int
	PagesImported       int
	AnnotationsImported int
	ParseWarnings       int
	Duration            time.Duration
	ErrorMessages       []string
}

// sourceKind tells how a source is parsed
type sourceKind int

const (
	jsonSource sourceKind = iota
	textSource
)

// source is one unit of discovered input: a JSON file or a directory of
// plain text pages belonging to one record
type source struct {
	kind   sourceKind
	path   string
	record types.RecordID // text sources only
}

// counters are shared by all workers of one import
type counters struct {
	imported    atomic.Int32
	skipped     atomic.Int32
	failed      atomic.Int32
	pages       atomic.Int32
	annotations atomic.Int32
	warnings    atomic.Int32

	mu       sync.Mutex
	messages []string
}

func (c *counters) fail(path string, err error) {
	c.failed.Add(1)
	c.addMessage(fmt.Sprintf("%s: %v", path, err))
}

func (c *counters) addMessage(msg string) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

// New creates a new Indexer instance
func New(store storage.Storage, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		parser:  parser.New(),
		storage: store,
		logger:  logger,
		workers: runtime.NumCPU(),
	}
}

// ImportRecords imports every record document found under rootPath. rootPath
// may also name a single JSON file. Per-source failures are collected in the
// statistics and do not stop the import.
func (idx *Indexer) ImportRecords(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if config == nil {
		config = &Config{
			Workers:   runtime.NumCPU(),
			BatchSize: 20,
		}
	}

	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	idx.workers = config.Workers

	startTime := time.Now()

	sources, err := idx.discoverSources(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to discover sources: %w", err)
	}
	idx.logger.Info("import started", "root", rootPath, "sources", len(sources), "workers", idx.workers)

	c := &counters{}
	if err := idx.importSources(ctx, sources, config, c); err != nil {
		return nil, fmt.Errorf("failed to import sources: %w", err)
	}

	stats := &Statistics{
		RecordsImported:     int(c.imported.Load()),
		RecordsSkipped:      int(c.skipped.Load()),
		RecordsFailed:       int(c.failed.Load()),
		PagesImported:       int(c.pages.Load()),
		AnnotationsImported: int(c.annotations.Load()),
		ParseWarnings:       int(c.warnings.Load()),
		Duration:            time.Since(startTime),
		ErrorMessages:       c.messages,
	}
	if stats.ErrorMessages == nil {
		stats.ErrorMessages = make([]string, 0)
	}

	run := &storage.ImportRun{
		RootPath:            rootPath,
		RecordsImported:     stats.RecordsImported,
		RecordsSkipped:      stats.RecordsSkipped,
		PagesImported:       stats.PagesImported,
		AnnotationsImported: stats.AnnotationsImported,
		ErrorCount:          stats.RecordsFailed,
		Duration:            stats.Duration,
	}
	if err := idx.storage.RecordImportRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record import run: %w", err)
	}

	idx.logger.Info("import finished",
		"imported", stats.RecordsImported,
		"skipped", stats.RecordsSkipped,
		"failed", stats.RecordsFailed,
		"pages", stats.PagesImported,
		"duration", stats.Duration)
	return stats, nil
}

// discoverSources finds JSON record files anywhere below rootPath and plain
// text records laid out as <root>/<dataset>/<local>/<page>.txt
func (idx *Indexer) discoverSources(rootPath string) ([]source, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(rootPath), parser.JSONExt) {
			return nil, fmt.Errorf("%w: %s is neither a directory nor a JSON file", types.ErrInvalidRequest, rootPath)
		}
		return []source{{kind: jsonSource, path: rootPath}}, nil
	}

	var sources []source
	textDirs := make(map[string]bool)

	err = filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// Skip hidden directories
			if path != rootPath && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case parser.JSONExt:
			sources = append(sources, source{kind: jsonSource, path: path})
		case parser.TextExt:
			dir := filepath.Dir(path)
			if textDirs[dir] {
				return nil
			}
			rec, ok := textRecordID(rootPath, dir)
			if !ok {
				return nil
			}
			textDirs[dir] = true
			sources = append(sources, source{kind: textSource, path: dir, record: rec})
		}
		return nil
	})

	return sources, err
}

// textRecordID derives the record id of a text page directory, which must sit
// exactly two levels below the root
func textRecordID(rootPath, dir string) (types.RecordID, bool) {
	rel, err := filepath.Rel(rootPath, dir)
	if err != nil {
		return types.RecordID{}, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 {
		return types.RecordID{}, false
	}
	rec := types.RecordID{DatasetID: parts[0], LocalID: parts[1]}
	return rec, rec.Validate() == nil
}

// importSources imports sources concurrently, one batch per task
func (idx *Indexer) importSources(ctx context.Context, sources []source, config *Config, c *counters) error {
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)

	for i := 0; i < len(sources); i += batchSize {
		batch := sources[i:min(i+batchSize, len(sources))]
		g.Go(func() error {
			return idx.importBatch(gctx, batch, config, c)
		})
	}

	return g.Wait()
}

// importBatch parses and stores each source of a batch
func (idx *Indexer) importBatch(ctx context.Context, batch []source, config *Config, c *counters) error {
	for _, src := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := idx.parse(src)
		if err != nil {
			idx.logger.Warn("source skipped", "path", src.path, "error", err)
			c.fail(src.path, err)
			continue
		}

		for i := range result.Errors {
			c.warnings.Add(1)
			idx.logger.Debug("parse warning", "error", &result.Errors[i])
		}

		for i := range result.Documents {
			doc := &result.Documents[i]
			changed, err := idx.importRecord(ctx, doc, src.path, c)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				idx.logger.Warn("record failed", "record", doc.Record.String(), "error", err)
				c.fail(src.path, fmt.Errorf("record %s: %w", doc.Record, err))
				continue
			}
			if changed && config.OnRecordChanged != nil {
				config.OnRecordChanged(doc.Record)
			}
		}
	}
	return nil
}

func (idx *Indexer) parse(src source) (*types.ParseResult, error) {
	if src.kind == textSource {
		return idx.parser.ParseTextRecord(src.path, src.record)
	}
	return idx.parser.ParseFile(src.path)
}

// importRecord stores one record in its own transaction. It returns false when
// the stored record already has the same content.
func (idx *Indexer) importRecord(ctx context.Context, doc *types.RecordDocument, sourcePath string, c *counters) (bool, error) {
	hash, err := computeRecordHash(doc)
	if err != nil {
		return false, err
	}

	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	shouldSkip, err := checkRecordChanged(ctx, tx, doc.Record, hash)
	if err != nil {
		return false, err
	}
	if shouldSkip {
		c.skipped.Add(1)
		idx.logger.Debug("record unchanged", "record", doc.Record.String())
		return false, nil
	}

	record := &storage.Record{
		DatasetID:   doc.Record.DatasetID,
		LocalID:     doc.Record.LocalID,
		SourcePath:  sourcePath,
		ContentHash: hash,
		PageCount:   len(doc.Pages),
	}
	if len(doc.Pages) > 0 {
		record.Language = doc.Pages[0].Language
	}
	if err := tx.UpsertRecord(ctx, record); err != nil {
		return false, err
	}

	// Pages are rewritten as a whole; annotations follow through the cascade
	if err := tx.DeletePagesByRecord(ctx, record.ID); err != nil {
		return false, fmt.Errorf("failed to delete old pages: %w", err)
	}

	annotationCount := 0
	for i := range doc.Pages {
		page := storage.FromTypesPage(doc.Pages[i], record.ID, i, sha256.Sum256([]byte(doc.Pages[i].FullText)))
		if err := tx.UpsertPage(ctx, page); err != nil {
			return false, err
		}
		if err := tx.ReplaceAnnotations(ctx, page.ID, doc.Pages[i].Annotations); err != nil {
			return false, fmt.Errorf("failed to store annotations of page %s: %w", page.PageID, err)
		}
		annotationCount += len(doc.Pages[i].Annotations)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.imported.Add(1)
	c.pages.Add(int32(len(doc.Pages)))
	c.annotations.Add(int32(annotationCount))
	return true, nil
}

// checkRecordChanged reports whether the stored record has the same content hash
func checkRecordChanged(ctx context.Context, store storage.Storage, rec types.RecordID, hash [32]byte) (bool, error) {
	existing, err := store.GetRecord(ctx, rec)
	if errors.Is(err, storage.ErrNotFound) {
		// New record, needs importing
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ContentHash == hash, nil
}

// computeRecordHash computes a SHA-256 hash over the pages and annotations of a record
func computeRecordHash(doc *types.RecordDocument) ([32]byte, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for i := range doc.Pages {
		// FullText is not part of the JSON form of a page
		if err := enc.Encode(&doc.Pages[i]); err != nil {
			return [32]byte{}, fmt.Errorf("failed to hash page %s: %w", doc.Pages[i].PageID, err)
		}
		if err := enc.Encode(doc.Pages[i].FullText); err != nil {
			return [32]byte{}, fmt.Errorf("failed to hash page %s: %w", doc.Pages[i].PageID, err)
		}
	}

	var result [32]byte
	copy(result[:], h.Sum(nil))
	return result, nil
}

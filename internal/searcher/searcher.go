package searcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/fulltext-mcp/internal/reconcile"
	"github.com/dshills/fulltext-mcp/internal/storage"
	"github.com/dshills/fulltext-mcp/pkg/types"
)

const (
	// DefaultPageSize is the number of hits returned when a request sets none
	DefaultPageSize = 12

	// MaxPageSize is the upper bound of hits per request
	MaxPageSize = 100

	// DefaultGranularity is used when a request sets none
	DefaultGranularity = types.GranularityLine
)

// HighlightIndex is the full-text search index queried for snippets
type HighlightIndex interface {
	Highlights(ctx context.Context, rec types.RecordID, query string, maxSnippets int) ([]types.HighlightDocument, error)
}

// PageStore provides the authoritative page text and annotations of a record
type PageStore interface {
	PageExists(ctx context.Context, rec types.RecordID, pageID string) (bool, error)
	ListPages(ctx context.Context, rec types.RecordID) ([]*types.Page, error)
}

// RecordStore serves single pages, annotations and resources
type RecordStore interface {
	GetPage(ctx context.Context, rec types.RecordID, pageID string) (*types.Page, error)
	FindAnnotation(ctx context.Context, rec types.RecordID, annotationID string) (*types.Page, *types.Annotation, error)
	GetResource(ctx context.Context, rec types.RecordID, resourceID string) (*types.Resource, error)
}

// Store is everything the searcher reads from
type Store interface {
	HighlightIndex
	PageStore
	RecordStore
}

// Options configures a Searcher
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	CacheSize       int           // records kept in the page cache, 0 disables it
	CacheTTL        time.Duration // 0 keeps entries until evicted
	Logger          *slog.Logger
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     MaxPageSize,
		CacheSize:       256,
		CacheTTL:        10 * time.Minute,
	}
}

// SearchRequest contains parameters for a search within one record
type SearchRequest struct {
	ID          string // generated when empty
	Record      types.RecordID
	Query       string
	PageSize    int               // maximum number of hits, defaults to Options.DefaultPageSize
	Granularity types.Granularity // defaults to DefaultGranularity
	Debug       bool
}

// Searcher reconciles search index highlights with the stored page text and
// annotations. It is safe for concurrent use; the page cache is the only
// state shared between requests.
type Searcher struct {
	index   HighlightIndex
	records RecordStore
	pages   *PageCache
	opts    Options
	logger  *slog.Logger
}

// NewSearcher creates a new Searcher instance
func NewSearcher(store Store, opts Options) (*Searcher, error) {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = DefaultPageSize
	}
	if opts.MaxPageSize <= 0 || opts.MaxPageSize > MaxPageSize {
		opts.MaxPageSize = MaxPageSize
	}
	if opts.DefaultPageSize > opts.MaxPageSize {
		opts.DefaultPageSize = opts.MaxPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pages, err := NewPageCache(store, opts.CacheSize, opts.CacheTTL)
	if err != nil {
		return nil, err
	}

	return &Searcher{
		index:   store,
		records: store,
		pages:   pages,
		opts:    opts,
		logger:  logger.With("component", "searcher"),
	}, nil
}

// Search queries the highlight index for req.Query within req.Record and
// reconciles the snippets with the record's pages.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*types.SearchResult, error) {
	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	startTime := time.Now()
	docs, err := s.index.Highlights(ctx, req.Record, req.Query, req.PageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrIndexQuery, err)
	}

	result, err := s.reconcile(ctx, req, docs)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("search completed",
		"search_id", result.ID,
		"record", req.Record.String(),
		"documents", len(docs),
		"hits", len(result.Hits),
		"items", len(result.Items),
		"duration", time.Since(startTime))
	return result, nil
}

// Reconcile builds a search result from highlight documents that were
// obtained elsewhere.
func (s *Searcher) Reconcile(ctx context.Context, req SearchRequest, docs []types.HighlightDocument) (*types.SearchResult, error) {
	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}
	return s.reconcile(ctx, req, docs)
}

func (s *Searcher) reconcile(ctx context.Context, req SearchRequest, docs []types.HighlightDocument) (*types.SearchResult, error) {
	result := types.NewSearchResult(req.ID, req.Debug)
	if result.Debug != nil {
		result.Debug.Query = req.Query
	}

	if len(docs) == 0 {
		// No highlights either means no match or an unknown record
		exists, err := s.pages.PageExists(ctx, req.Record, types.FirstPageID)
		if err != nil {
			return nil, fmt.Errorf("failed to check record %s: %w", req.Record, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", types.ErrRecordNotFound, req.Record)
		}
		return &result, nil
	}

	keywords := reconcile.NewKeywordSet()
	for _, doc := range docs {
		for _, snippet := range doc.Snippets {
			keywords.AddSnippet(snippet)
			if result.Debug != nil {
				result.Debug.Snippets = append(result.Debug.Snippets, snippet)
			}
		}
	}
	hits := keywords.Hits()
	if result.Debug != nil {
		for _, hit := range hits {
			result.Debug.Keywords = append(result.Debug.Keywords, hit.String())
		}
	}
	if len(hits) == 0 {
		return &result, nil
	}

	pages, err := s.pages.ListPages(ctx, req.Record)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages of %s: %w", req.Record, err)
	}

	return s.collect(ctx, req, result, pages, hits)
}

// collect scans pages in store order and keywords in extraction order until
// req.PageSize hits were accepted.
func (s *Searcher) collect(ctx context.Context, req SearchRequest, result types.SearchResult,
	pages []*types.Page, hits []types.CandidateHit) (*types.SearchResult, error) {

	located := make([]bool, len(hits))
	accepted := 0
	misses := 0
	pagesScanned := 0

scan:
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pagesScanned++
		text := reconcile.NewText(page.FullText)
		annotations := page.FilterAnnotations(req.Granularity)

		for i, hit := range hits {
			for occurrence := range reconcile.Occurrences(hit, page.PageID, text) {
				located[i] = true

				matches := reconcile.Match(occurrence, annotations, req.Granularity)
				var ok bool
				result, ok = reconcile.Collect(result, page, text, occurrence, matches, req.Granularity)
				if !ok {
					misses++
					s.logger.Debug("hit outside annotations",
						"search_id", req.ID,
						"page", page.PageID,
						"exact", occurrence.Exact,
						"start", occurrence.Start,
						"granularity", req.Granularity.String())
					continue
				}

				accepted++
				if accepted >= req.PageSize {
					break scan
				}
			}
		}
	}

	// Unlocated keywords only count once every page was scanned
	if accepted < req.PageSize {
		for i, hit := range hits {
			if located[i] {
				continue
			}
			misses++
			s.logger.Warn("keyword not found in page text",
				"search_id", req.ID,
				"record", req.Record.String(),
				"keyword", hit.String())
		}
	}

	if result.Debug != nil {
		result.Debug.PagesScanned = pagesScanned
		result.Debug.Misses = misses
	}
	return &result, nil
}

// validateRequest checks required fields and applies defaults
func (s *Searcher) validateRequest(req *SearchRequest) error {
	if err := req.Record.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: query cannot be empty", types.ErrInvalidRequest)
	}
	if req.PageSize < 0 {
		return fmt.Errorf("%w: page size cannot be negative", types.ErrInvalidRequest)
	}
	if req.PageSize == 0 {
		req.PageSize = s.opts.DefaultPageSize
	}
	if req.PageSize > s.opts.MaxPageSize {
		req.PageSize = s.opts.MaxPageSize
	}
	if req.Granularity == 0 {
		req.Granularity = DefaultGranularity
	}
	if !req.Granularity.Valid() {
		return fmt.Errorf("%w: %d", types.ErrInvalidGranularity, int(req.Granularity))
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return nil
}

// GetAnnotationPage returns a page with its annotations, optionally limited
// to the given granularities.
func (s *Searcher) GetAnnotationPage(ctx context.Context, rec types.RecordID, pageID string, granularities ...types.Granularity) (*types.Page, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	page, err := s.records.GetPage(ctx, rec, pageID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", types.ErrPageNotFound, rec, pageID)
	}
	if err != nil {
		return nil, err
	}
	if len(granularities) == 0 {
		return page, nil
	}

	filtered := *page
	filtered.Annotations = page.FilterAnnotations(granularities...)
	return &filtered, nil
}

// PageExists reports whether the record has a page with the given id
func (s *Searcher) PageExists(ctx context.Context, rec types.RecordID, pageID string) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}
	return s.pages.PageExists(ctx, rec, pageID)
}

// FindAnnotation returns an annotation materialized as an item of its page
func (s *Searcher) FindAnnotation(ctx context.Context, rec types.RecordID, annotationID string) (*types.Item, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	page, anno, err := s.records.FindAnnotation(ctx, rec, annotationID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", types.ErrAnnotationNotFound, rec, annotationID)
	}
	if err != nil {
		return nil, err
	}

	text := reconcile.NewText(page.FullText)
	return &types.Item{
		ID:          anno.ID,
		Record:      page.Record,
		PageID:      page.PageID,
		Granularity: anno.Granularity,
		From:        anno.From,
		To:          anno.To,
		Text:        text.Slice(anno.From, anno.To),
		Language:    anno.Language,
		Targets:     anno.Targets,
	}, nil
}

// GetResource returns the full text resource with the given id
func (s *Searcher) GetResource(ctx context.Context, rec types.RecordID, resourceID string) (*types.Resource, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	res, err := s.records.GetResource(ctx, rec, resourceID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", types.ErrResourceNotFound, rec, resourceID)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// InvalidateRecord drops cached pages of a record after it was re-imported
func (s *Searcher) InvalidateRecord(rec types.RecordID) {
	s.pages.Invalidate(rec)
}

// InvalidateCache drops all cached pages
func (s *Searcher) InvalidateCache() {
	s.pages.Purge()
}

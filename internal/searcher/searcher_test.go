package searcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fulltext-mcp/internal/storage"
	"github.com/dshills/fulltext-mcp/pkg/types"
)

var testRecord = types.RecordID{DatasetID: "9200300", LocalID: "BibliographicResource_3000095610170"}

// fakeStore is an in-memory Store
type fakeStore struct {
	mu              sync.Mutex
	docs            []types.HighlightDocument
	indexErr        error
	pages           map[types.RecordID][]*types.Page
	listCalls       int
	lastMaxSnippets int
}

func newFakeStore(pages ...*types.Page) *fakeStore {
	f := &fakeStore{pages: make(map[types.RecordID][]*types.Page)}
	for _, p := range pages {
		f.pages[p.Record] = append(f.pages[p.Record], p)
	}
	return f
}

func (f *fakeStore) Highlights(_ context.Context, _ types.RecordID, _ string, maxSnippets int) ([]types.HighlightDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMaxSnippets = maxSnippets
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	return f.docs, nil
}

func (f *fakeStore) PageExists(_ context.Context, rec types.RecordID, pageID string) (bool, error) {
	for _, p := range f.pages[rec] {
		if p.PageID == pageID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListPages(_ context.Context, rec types.RecordID) ([]*types.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.pages[rec], nil
}

func (f *fakeStore) GetPage(_ context.Context, rec types.RecordID, pageID string) (*types.Page, error) {
	for _, p := range f.pages[rec] {
		if p.PageID == pageID {
			return p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) FindAnnotation(_ context.Context, rec types.RecordID, annotationID string) (*types.Page, *types.Annotation, error) {
	for _, p := range f.pages[rec] {
		if anno, ok := p.FindAnnotation(annotationID); ok {
			return p, anno, nil
		}
	}
	return nil, nil, storage.ErrNotFound
}

func (f *fakeStore) GetResource(_ context.Context, rec types.RecordID, resourceID string) (*types.Resource, error) {
	for _, p := range f.pages[rec] {
		if p.ResourceID == resourceID {
			return &types.Resource{ID: resourceID, Record: rec, PageID: p.PageID, Value: p.FullText}, nil
		}
	}
	return nil, storage.ErrNotFound
}

func greetingPage() *types.Page {
	return &types.Page{
		Record:     testRecord,
		PageID:     "1",
		ResourceID: "res1",
		FullText:   "Hi there. Good day.",
		Annotations: []types.Annotation{
			{ID: "w1", Granularity: types.GranularityWord, From: 0, To: 2},
			{ID: "w2", Granularity: types.GranularityWord, From: 3, To: 8},
			{ID: "w3", Granularity: types.GranularityWord, From: 8, To: 9},
			{ID: "l1", Granularity: types.GranularityLine, From: 0, To: 9},
			{ID: "l2", Granularity: types.GranularityLine, From: 10, To: 19},
		},
	}
}

func repeatedPage(pageID string) *types.Page {
	return &types.Page{
		Record:   testRecord,
		PageID:   pageID,
		FullText: "the cat and the dog and the end",
		Annotations: []types.Annotation{
			{ID: "l" + pageID, Granularity: types.GranularityLine, From: 0, To: 31},
		},
	}
}

func newTestSearcher(t *testing.T, store Store) *Searcher {
	s, err := NewSearcher(store, DefaultOptions())
	require.NoError(t, err)
	return s
}

func TestSearch_LineGranularity(t *testing.T) {
	store := newFakeStore(greetingPage())
	store.docs = []types.HighlightDocument{{DocumentID: "d1", Snippets: []string{"Hi <em>there</em>. Good day."}}}
	s := newTestSearcher(t, store)

	result, err := s.Search(context.Background(), SearchRequest{
		ID:          "search-1",
		Record:      testRecord,
		Query:       "there",
		Granularity: types.GranularityLine,
	})
	require.NoError(t, err)

	assert.Equal(t, "search-1", result.ID)
	require.Len(t, result.Hits, 1)
	hit := result.Hits[0]
	assert.Equal(t, "1", hit.PageID)
	assert.Equal(t, 3, hit.Start)
	assert.Equal(t, 8, hit.End)
	assert.Equal(t, []string{"l1"}, hit.Annotations)
	assert.Equal(t, []types.TextQuoteSelector{{Prefix: "Hi ", Exact: "there", Suffix: "."}}, hit.Selectors)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "l1", result.Items[0].ID)
	assert.Equal(t, "Hi there.", result.Items[0].Text)
	assert.Nil(t, result.Debug)
}

func TestSearch_WordGranularity(t *testing.T) {
	store := newFakeStore(greetingPage())
	store.docs = []types.HighlightDocument{{DocumentID: "d1", Snippets: []string{"Hi <em>there</em>. Good day."}}}
	s := newTestSearcher(t, store)

	result, err := s.Search(context.Background(), SearchRequest{
		Record:      testRecord,
		Query:       "there",
		Granularity: types.GranularityWord,
	})
	require.NoError(t, err)

	assert.Empty(t, result.Hits)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "w2", result.Items[0].ID)
	assert.Equal(t, "there", result.Items[0].Text)
}

func TestSearch_DefaultsToLineGranularity(t *testing.T) {
	store := newFakeStore(greetingPage())
	store.docs = []types.HighlightDocument{{DocumentID: "d1", Snippets: []string{"Hi <em>there</em>. Good day."}}}
	s := newTestSearcher(t, store)

	result, err := s.Search(context.Background(), SearchRequest{Record: testRecord, Query: "there"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, []string{"l1"}, result.Hits[0].Annotations)
}

func TestSearch_GeneratesID(t *testing.T) {
	store := newFakeStore(greetingPage())
	store.docs = []types.HighlightDocument{{DocumentID: "d1", Snippets: []string{"Hi <em>there</em>."}}}
	s := newTestSearcher(t, store)

	result, err := s.Search(context.Background(), SearchRequest{Record: testRecord, Query: "there"})
	require.NoError(t, err)
	_, err = uuid.Parse(result.ID)
	assert.NoError(t, err)
}

func TestSearch_Budget(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		want     []types.Hit
	}{
		{
			name:     "stops mid-page",
			pageSize: 1,
			want:     []types.Hit{{PageID: "1", Start: 12, End: 15}},
		},
		{
			name:     "later pages excluded",
			pageSize: 2,
			want:     []types.Hit{{PageID: "1", Start: 12, End: 15}, {PageID: "1", Start: 24, End: 27}},
		},
		{
			name:     "continues on next page",
			pageSize: 3,
			want: []types.Hit{
				{PageID: "1", Start: 12, End: 15},
				{PageID: "1", Start: 24, End: 27},
				{PageID: "2", Start: 12, End: 15},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(repeatedPage("1"), repeatedPage("2"))
			store.docs = []types.HighlightDocument{{DocumentID: "d1", Snippets: []string{"cat and <em>the</em> dog"}}}
			s := newTestSearcher(t, store)

			result, err := s.Search(context.Background(), SearchRequest{
				Record:   testRecord,
				Query:    "the",
				PageSize: tt.pageSize,
			})
			require.NoError(t, err)
			require.Len(t, result.Hits, len(tt.want))
			assert.LessOrEqual(t, len(result.Hits), tt.pageSize)
			for i, want := range tt.want {
				assert.Equal(t, want.PageID, result.Hits[i].PageID)
				assert.Equal(t, want.Start, result.Hits[i].Start)
				assert.Equal(t, want.End, result.Hits[i].End)
			}
		})
	}
}

func TestSearch_PageSizeClamped(t *testing.T) {
	store := newFakeStore(greetingPage())
	store.docs = []types.HighlightDocument{{DocumentID: "d1", Snippets: []string{"Hi <em>there</em>."}}}
	s := newTestSearcher(t, store)
	ctx := context.Background()

	_, err := s.Search(ctx, SearchRequest{Record: testRecord, Query: "there", PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, store.lastMaxSnippets)

	_, err = s.Search(ctx, SearchRequest{Record: testRecord, Query: "there"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, store.lastMaxSnippets)
}

func TestSearch_RecordNotFound(t *testing.T) {
	s := newTestSearcher(t, newFakeStore())

	_, err := s.Search(context.Background(), SearchRequest{Record: testRecord, Query: "there"})
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestSearch_NoHighlights(t *testing.T) {
	store := newFakeStore(greetingPage())
	s := newTestSearcher(t, store)

	result, err := s.Search(context.Background(), SearchRequest{Record: testRecord, Query: "absent", Debug: true})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
	assert.Empty(t, result.Items)
	require.NotNil(t, result.Debug)
	assert.Equal(t, "absent", result.Debug.Query)
	assert.Equal(t, 0, store.listCalls, "pages are not loaded without highlights")
}

func TestSearch_IndexError(t *testing.T) {
	store := newFakeStore(greetingPage())
	store.indexErr = errors.New("connection refused")
	s := newTestSearcher(t, store)

	_, err := s.Search(context.Background(), SearchRequest{Record: testRecord, Query: "there"})
	assert.ErrorIs(t, err, types.ErrIndexQuery)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSearch_Validation(t *testing.T) {
	s := newTestSearcher(t, newFakeStore())
	ctx := context.Background()

	tests := []struct {
		name string
		req  SearchRequest
		want error
	}{
		{"empty query", SearchRequest{Record: testRecord, Query: "  "}, types.ErrInvalidRequest},
		{"missing dataset", SearchRequest{Record: types.RecordID{LocalID: "x"}, Query: "q"}, types.ErrInvalidRequest},
		{"missing local id", SearchRequest{Record: types.RecordID{DatasetID: "x"}, Query: "q"}, types.ErrInvalidRequest},
		{"negative page size", SearchRequest{Record: testRecord, Query: "q", PageSize: -1}, types.ErrInvalidRequest},
		{"unknown granularity", SearchRequest{Record: testRecord, Query: "q", Granularity: 9}, types.ErrInvalidGranularity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Search(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSearch_DebugAndMisses(t *testing.T) {
	store := newFakeStore(greetingPage())
	store.docs = []types.HighlightDocument{
		{DocumentID: "d1", Snippets: []string{"Hi <em>there</em>. Good day."}},
		{DocumentID: "d2", Snippets: []string{"a <em>zebra</em> b"}},
	}
	s := newTestSearcher(t, store)

	result, err := s.Search(context.Background(), SearchRequest{Record: testRecord, Query: "there zebra", Debug: true})
	require.NoError(t, err)

	require.NotNil(t, result.Debug)
	assert.Len(t, result.Debug.Snippets, 2)
	assert.Equal(t, []string{" there.", " zebra "}, result.Debug.Keywords)
	assert.Equal(t, 1, result.Debug.PagesScanned)
	assert.Equal(t, 1, result.Debug.Misses)
	assert.Len(t, result.Hits, 1)
}

func TestSearch_HitOutsideAnnotations(t *testing.T) {
	page := greetingPage()
	page.Annotations = page.FilterAnnotations(types.GranularityWord)
	store := newFakeStore(page)
	store.docs = []types.HighlightDocument{{DocumentID: "d1", Snippets: []string{"Hi <em>there</em>. Good day."}}}
	s := newTestSearcher(t, store)

	result, err := s.Search(context.Background(), SearchRequest{Record: testRecord, Query: "there", Debug: true})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
	assert.Empty(t, result.Items)
	assert.Equal(t, 1, result.Debug.Misses)
}

func TestReconcile(t *testing.T) {
	store := newFakeStore(greetingPage())
	s := newTestSearcher(t, store)

	docs := []types.HighlightDocument{{DocumentID: "d1", Snippets: []string{"<em>Good</em> <em>day</em>."}}}
	result, err := s.Reconcile(context.Background(), SearchRequest{Record: testRecord, Query: "good day"}, docs)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, 10, result.Hits[0].Start)
	assert.Equal(t, 18, result.Hits[0].End)
	assert.Equal(t, []string{"l2"}, result.Hits[0].Annotations)
	assert.Equal(t, 0, store.lastMaxSnippets, "index is not queried")
}

func TestSearch_UsesPageCache(t *testing.T) {
	store := newFakeStore(greetingPage())
	store.docs = []types.HighlightDocument{{DocumentID: "d1", Snippets: []string{"Hi <em>there</em>."}}}
	s := newTestSearcher(t, store)
	ctx := context.Background()
	req := SearchRequest{Record: testRecord, Query: "there"}

	_, err := s.Search(ctx, req)
	require.NoError(t, err)
	_, err = s.Search(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)

	s.InvalidateRecord(testRecord)
	_, err = s.Search(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls)

	s.InvalidateCache()
	_, err = s.Search(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 3, store.listCalls)
}

func TestSearch_ConcurrentRequests(t *testing.T) {
	store := newFakeStore(repeatedPage("1"), repeatedPage("2"))
	store.docs = []types.HighlightDocument{{DocumentID: "d1", Snippets: []string{"cat and <em>the</em> dog"}}}
	s := newTestSearcher(t, store)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.Search(context.Background(), SearchRequest{Record: testRecord, Query: "the", PageSize: 3})
			if err != nil {
				errs <- err
				return
			}
			if len(result.Hits) != 3 {
				errs <- errors.New("unexpected hit count")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestSearch_ContextCanceled(t *testing.T) {
	store := newFakeStore(greetingPage())
	store.docs = []types.HighlightDocument{{DocumentID: "d1", Snippets: []string{"Hi <em>there</em>."}}}
	s := newTestSearcher(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Search(ctx, SearchRequest{Record: testRecord, Query: "there"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetAnnotationPage(t *testing.T) {
	s := newTestSearcher(t, newFakeStore(greetingPage()))
	ctx := context.Background()

	page, err := s.GetAnnotationPage(ctx, testRecord, "1")
	require.NoError(t, err)
	assert.Len(t, page.Annotations, 5)

	page, err = s.GetAnnotationPage(ctx, testRecord, "1", types.GranularityLine)
	require.NoError(t, err)
	assert.Len(t, page.Annotations, 2)

	// the stored page is not modified by filtering
	page, err = s.GetAnnotationPage(ctx, testRecord, "1")
	require.NoError(t, err)
	assert.Len(t, page.Annotations, 5)

	_, err = s.GetAnnotationPage(ctx, testRecord, "7")
	assert.ErrorIs(t, err, types.ErrPageNotFound)
}

func TestFindAnnotation(t *testing.T) {
	s := newTestSearcher(t, newFakeStore(greetingPage()))
	ctx := context.Background()

	item, err := s.FindAnnotation(ctx, testRecord, "l2")
	require.NoError(t, err)
	assert.Equal(t, "Good day.", item.Text)
	assert.Equal(t, types.GranularityLine, item.Granularity)

	_, err = s.FindAnnotation(ctx, testRecord, "zz")
	assert.ErrorIs(t, err, types.ErrAnnotationNotFound)
}

func TestGetResource(t *testing.T) {
	s := newTestSearcher(t, newFakeStore(greetingPage()))
	ctx := context.Background()

	res, err := s.GetResource(ctx, testRecord, "res1")
	require.NoError(t, err)
	assert.Equal(t, "Hi there. Good day.", res.Value)

	_, err = s.GetResource(ctx, testRecord, "nope")
	assert.ErrorIs(t, err, types.ErrResourceNotFound)

	exists, err := s.PageExists(ctx, testRecord, "1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSearch_WithSQLiteStorage(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	record := &storage.Record{DatasetID: testRecord.DatasetID, LocalID: testRecord.LocalID, PageCount: 1}
	require.NoError(t, tx.UpsertRecord(ctx, record))
	src := greetingPage()
	page := &storage.Page{RecordID: record.ID, PageID: src.PageID, FullText: src.FullText}
	require.NoError(t, tx.UpsertPage(ctx, page))
	require.NoError(t, tx.ReplaceAnnotations(ctx, page.ID, src.Annotations))
	require.NoError(t, tx.Commit())

	s := newTestSearcher(t, store)

	result, err := s.Search(ctx, SearchRequest{Record: testRecord, Query: "there"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, 3, result.Hits[0].Start)
	assert.Equal(t, 8, result.Hits[0].End)
	assert.Equal(t, []string{"l1"}, result.Hits[0].Annotations)

	_, err = s.Search(ctx, SearchRequest{Record: types.RecordID{DatasetID: "no", LocalID: "such"}, Query: "there"})
	assert.ErrorIs(t, err, types.ErrRecordNotFound)

	result, err = s.Search(ctx, SearchRequest{Record: testRecord, Query: "absent"})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

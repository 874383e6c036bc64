package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fulltext-mcp/pkg/types"
)

func TestHighlights(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	seedRecord(t, storage, testRecord, firstPage(), secondPage(),
		testPage{id: "3", text: "No match on this page"})

	docs, err := storage.Highlights(ctx, testRecord, "there", 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	for _, doc := range docs {
		require.Len(t, doc.Snippets, 1)
		assert.Contains(t, doc.Snippets[0], types.HitTagStart+"there"+types.HitTagEnd)
		assert.True(t, strings.HasPrefix(doc.DocumentID, testRecord.String()+"/"))
	}
}

func TestHighlights_ShortPageIsWholeText(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	seedRecord(t, storage, testRecord, firstPage())

	docs, err := storage.Highlights(context.Background(), testRecord, "there", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Hi <em>there</em>. Good day.", docs[0].Snippets[0])
}

func TestHighlights_RestrictedToRecord(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	other := types.RecordID{DatasetID: "other", LocalID: "record"}
	seedRecord(t, storage, testRecord, firstPage())
	seedRecord(t, storage, other, testPage{id: "1", text: "there and there again"})

	docs, err := storage.Highlights(ctx, other, "there", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, other.String()+"/1", docs[0].DocumentID)
}

func TestHighlights_Limit(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	seedRecord(t, storage, testRecord, firstPage(), secondPage())

	docs, err := storage.Highlights(ctx, testRecord, "there", 1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = storage.Highlights(ctx, testRecord, "there", 0)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestHighlights_FollowsPageUpdates(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	record := seedRecord(t, storage, testRecord, firstPage())

	page := &Page{RecordID: record.ID, PageID: "1", FullText: "Replaced text entirely"}
	require.NoError(t, storage.UpsertPage(ctx, page))

	docs, err := storage.Highlights(ctx, testRecord, "there", 10)
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = storage.Highlights(ctx, testRecord, "replaced", 10)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestHighlights_OperatorsMatchedLiterally(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	seedRecord(t, storage, testRecord, testPage{id: "1", text: "cats AND dogs NOT birds"})

	docs, err := storage.Highlights(ctx, testRecord, `NOT (birds*`, 10)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestHighlights_EmptyQuery(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	_, err := storage.Highlights(context.Background(), testRecord, "   ", 10)
	assert.Error(t, err)
}

func TestSetSnippetTokens(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	storage.SetSnippetTokens(200)
	assert.Equal(t, MaxSnippetTokens, storage.snippetTokens)
	storage.SetSnippetTokens(0)
	assert.Equal(t, DefaultSnippetTokens, storage.snippetTokens)
	storage.SetSnippetTokens(8)
	assert.Equal(t, 8, storage.snippetTokens)
}

func TestSanitizeFTSQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"single term", "berlin", `"berlin"`},
		{"several terms", "berlin wall", `"berlin" OR "wall"`},
		{"phrase", `"berlin wall" 1989`, `"berlin wall" OR "1989"`},
		{"operators", "a AND b", `"a" OR "AND" OR "b"`},
		{"special characters", "foo* (bar)", `"foo*" OR "(bar)"`},
		{"unterminated phrase", `"open phrase`, `"open phrase"`},
		{"blank", "  \t ", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFTSQuery(tt.query))
		})
	}
}

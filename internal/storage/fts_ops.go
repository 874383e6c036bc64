package storage

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/dshills/fulltext-mcp/pkg/types"
)

const (
	// DefaultSnippetTokens is the snippet length used when none is configured
	DefaultSnippetTokens = 32

	// MaxSnippetTokens is the largest snippet length FTS5 accepts
	MaxSnippetTokens = 64
)

// SetSnippetTokens sets the number of tokens per highlight snippet. Values
// outside 1..MaxSnippetTokens are clamped.
func (s *SQLiteStorage) SetSnippetTokens(n int) {
	s.snippetTokens = clampSnippetTokens(n)
}

func clampSnippetTokens(n int) int {
	switch {
	case n <= 0:
		return DefaultSnippetTokens
	case n > MaxSnippetTokens:
		return MaxSnippetTokens
	default:
		return n
	}
}

// highlights runs a full-text query restricted to one record and returns one
// highlight document per matching page, best match first. Keywords in the
// snippet are wrapped in types.HitTagStart and types.HitTagEnd. The snippet
// ellipsis is empty so the characters around a keyword are always page text.
func highlights(ctx context.Context, q querier, id types.RecordID, query string, maxSnippets, tokens int) ([]types.HighlightDocument, error) {
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if maxSnippets <= 0 {
		return make([]types.HighlightDocument, 0), nil
	}

	// snippet() arguments are inlined; tokens is clamped to a small integer
	sqlQuery := fmt.Sprintf(`
		SELECT
			p.page_id,
			snippet(pages_fts, 0, '%s', '%s', '', %d) AS snippet
		FROM pages_fts
		INNER JOIN pages p ON pages_fts.rowid = p.id
		INNER JOIN records r ON p.record_id = r.id
		WHERE pages_fts MATCH ?
		AND r.dataset_id = ? AND r.local_id = ?
		ORDER BY bm25(pages_fts), p.page_order
		LIMIT ?
	`, types.HitTagStart, types.HitTagEnd, clampSnippetTokens(tokens))

	rows, err := q.QueryContext(ctx, sqlQuery, sanitized, id.DatasetID, id.LocalID, maxSnippets)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs := make([]types.HighlightDocument, 0)
	for rows.Next() {
		var pageID, snippet string
		if err := rows.Scan(&pageID, &snippet); err != nil {
			return nil, err
		}
		docs = append(docs, types.HighlightDocument{
			DocumentID: id.String() + "/" + pageID,
			Snippets:   []string{snippet},
		})
	}
	return docs, rows.Err()
}

// sanitizeFTSQuery turns free text into an FTS5 query. Each term, or each
// double quoted phrase, is quoted so that FTS5 operators and special
// characters lose their meaning, and the parts are joined with OR.
func sanitizeFTSQuery(query string) string {
	parts := splitTerms(query)
	escaped := make([]string, 0, len(parts))
	for _, part := range parts {
		escaped = append(escaped, `"`+strings.ReplaceAll(part, `"`, `""`)+`"`)
	}
	return strings.Join(escaped, " OR ")
}

// splitTerms splits on whitespace, keeping double quoted phrases together
func splitTerms(query string) []string {
	terms := make([]string, 0)
	var current strings.Builder
	inPhrase := false

	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			terms = append(terms, t)
		}
		current.Reset()
	}

	for _, r := range query {
		switch {
		case r == '"':
			flush()
			inPhrase = !inPhrase
		case unicode.IsSpace(r) && !inPhrase:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return terms
}

// Package searcher answers full-text searches within one record.
//
// The search index only knows which pages match and returns short highlighted
// snippets. The page text and its annotations live in the store. Search
// reconciles the two:
//
//  1. Query the index for snippets (one request, at most PageSize snippets)
//  2. Extract distinct keywords with one character of context from every snippet
//  3. Relocate each keyword in the page text, page by page, in store order
//  4. Attach every occurrence to the overlapping annotations of the requested
//     granularity
//  5. Stop as soon as PageSize occurrences were attached
//
// # Basic Usage
//
//	s, err := searcher.NewSearcher(store, searcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//
//	result, err := s.Search(ctx, searcher.SearchRequest{
//	    Record:      types.RecordID{DatasetID: "9200300", LocalID: "BibliographicResource_3000095610170"},
//	    Query:       "berlin",
//	    PageSize:    12,
//	    Granularity: types.GranularityLine,
//	})
//
// For word granularity the result holds one item per matching word and no
// hits. For line, block and page granularity each occurrence becomes a Hit
// that lists the annotations it falls in, together with the annotation items.
//
// # Errors
//
//   - types.ErrInvalidRequest: missing record id parts, empty query, negative page size
//   - types.ErrIndexQuery: the index failed; safe to retry
//   - types.ErrRecordNotFound: no highlights and the record has no first page
//
// Keywords that cannot be relocated and hits outside every annotation are
// logged and counted in the debug section. They never fail a search.
//
// # Caching
//
// Pages are loaded once per record and kept in an LRU cache with a TTL.
// Importers call InvalidateRecord after a record changed.
package searcher

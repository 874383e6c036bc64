package types

// Item is an annotation materialized into a search result.
type Item struct {
	ID          string      `json:"id"`
	Record      RecordID    `json:"record"`
	PageID      string      `json:"page_id"`
	Granularity Granularity `json:"granularity"`
	From        int         `json:"from"`
	To          int         `json:"to"`
	Text        string      `json:"text"`
	Language    string      `json:"language,omitempty"`
	Targets     []Target    `json:"targets,omitempty"`
}

// TextQuoteSelector describes a hit relative to the text of one annotation.
type TextQuoteSelector struct {
	Prefix string `json:"prefix"`
	Exact  string `json:"exact"`
	Suffix string `json:"suffix"`
}

// Hit is a search match linked to the annotations it falls in.
type Hit struct {
	PageID      string              `json:"page_id"`
	Start       int                 `json:"start"`
	End         int                 `json:"end"`
	Annotations []string            `json:"annotations"`
	Selectors   []TextQuoteSelector `json:"selectors"`
}

// Debug carries reconciliation details when the caller asked for them.
type Debug struct {
	Query        string   `json:"query"`
	Snippets     []string `json:"snippets"`
	Keywords     []string `json:"keywords"`
	PagesScanned int      `json:"pages_scanned"`
	Misses       int      `json:"misses"`
}

// SearchResult is the outcome of a search within one record.
type SearchResult struct {
	ID    string `json:"id"`
	Items []Item `json:"items"`
	Hits  []Hit  `json:"hits"`
	Debug *Debug `json:"debug,omitempty"`
}

// NewSearchResult creates an empty result, with debug details when requested.
func NewSearchResult(id string, debug bool) SearchResult {
	result := SearchResult{
		ID:    id,
		Items: make([]Item, 0),
		Hits:  make([]Hit, 0),
	}
	if debug {
		result.Debug = &Debug{Snippets: make([]string, 0), Keywords: make([]string, 0)}
	}
	return result
}

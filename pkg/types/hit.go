package types

// Highlight markers the search index places around matched text.
const (
	HitTagStart = "<em>"
	HitTagEnd   = "</em>"
)

// HighlightDocument is the raw highlight output of the search index for one
// matching document.
type HighlightDocument struct {
	DocumentID string
	Snippets   []string
}

// HitKey identifies a candidate hit by its text and context, not its position.
type HitKey struct {
	Prefix string
	Exact  string
	Suffix string
}

// CandidateHit is a keyword extracted from a highlight snippet together with
// the single character before and after it. Prefix and Suffix are empty when
// the tag touched the snippet boundary.
type CandidateHit struct {
	Prefix string
	Exact  string
	Suffix string

	// Byte offsets of the opening and closing tag within the snippet.
	SnippetStart int
	SnippetEnd   int
}

// Key returns the equality key of the hit.
func (h CandidateHit) Key() HitKey {
	return HitKey{Prefix: h.Prefix, Exact: h.Exact, Suffix: h.Suffix}
}

// String returns the hit with its context characters.
func (h CandidateHit) String() string {
	return h.Prefix + h.Exact + h.Suffix
}

// LocatedHit is a hit relocated in a page's full text. Start and End are
// character offsets, End exclusive.
type LocatedHit struct {
	PageID string
	Start  int
	End    int
	Exact  string
}

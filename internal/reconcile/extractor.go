package reconcile

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/fulltext-mcp/pkg/types"
)

// MaxMergeDistance is the largest number of characters between two
// highlighted keywords of one snippet for them to be treated as one hit.
const MaxMergeDistance = 3

// KeywordSet accumulates the distinct candidate hits of all snippets of one
// search request. Hits are kept in extraction order and compared on prefix,
// exact text and suffix only. A KeywordSet is not safe for concurrent use.
type KeywordSet struct {
	hits []types.CandidateHit
}

// NewKeywordSet creates an empty keyword set.
func NewKeywordSet() *KeywordSet {
	return &KeywordSet{hits: make([]types.CandidateHit, 0)}
}

// ExtractHits returns the candidate hits of a single snippet.
func ExtractHits(snippet string) []types.CandidateHit {
	ks := NewKeywordSet()
	ks.AddSnippet(snippet)
	return ks.Hits()
}

// Hits returns a copy of the accumulated hits in extraction order.
func (ks *KeywordSet) Hits() []types.CandidateHit {
	out := make([]types.CandidateHit, len(ks.hits))
	copy(out, ks.hits)
	return out
}

// Len returns the number of distinct hits.
func (ks *KeywordSet) Len() int {
	return len(ks.hits)
}

// Contains reports whether a hit with the same key is already present.
func (ks *KeywordSet) Contains(key types.HitKey) bool {
	return ks.indexOf(key) >= 0
}

// AddSnippet scans one highlighted snippet and adds its keywords. Keywords
// that are at most MaxMergeDistance characters apart are merged into one hit,
// replacing the previously added one.
func (ks *KeywordSet) AddSnippet(snippet string) {
	var (
		previous    types.CandidateHit
		hasPrevious bool
	)

	start := strings.Index(snippet, types.HitTagStart)
	for start != -1 {
		open := start + len(types.HitTagStart)
		closing := strings.Index(snippet[open:], types.HitTagEnd)
		if closing == -1 {
			// unterminated highlight, nothing more to extract
			return
		}
		closing += open
		end := closing + len(types.HitTagEnd)

		hit := types.CandidateHit{
			Exact:        snippet[open:closing],
			SnippetStart: start,
			SnippetEnd:   end,
		}
		if start > 0 {
			r, _ := utf8.DecodeLastRuneInString(snippet[:start])
			hit.Prefix = string(r)
		}
		if end < len(snippet) {
			r, _ := utf8.DecodeRuneInString(snippet[end:])
			hit.Suffix = string(r)
		}

		next := strings.Index(snippet[end:], types.HitTagStart)
		if next != -1 {
			next += end
		}

		if hit.Exact == "" {
			start = next
			continue
		}

		if hasPrevious {
			hit = ks.mergeIfNearby(snippet, previous, hit)
		}
		if !ks.Contains(hit.Key()) {
			ks.hits = append(ks.hits, hit)
		}

		previous, hasPrevious = hit, true
		start = next
	}
}

// mergeIfNearby joins hit with the previous hit of the same snippet when the
// text between them is short enough. The previous hit is dropped from the set.
func (ks *KeywordSet) mergeIfNearby(snippet string, previous, hit types.CandidateHit) types.CandidateHit {
	between := snippet[previous.SnippetEnd:hit.SnippetStart]
	if utf8.RuneCountInString(between) > MaxMergeDistance {
		return hit
	}

	merged := types.CandidateHit{
		Prefix:       previous.Prefix,
		Exact:        previous.Exact + between + hit.Exact,
		Suffix:       hit.Suffix,
		SnippetStart: previous.SnippetStart,
		SnippetEnd:   hit.SnippetEnd,
	}
	ks.remove(previous.Key())
	return merged
}

func (ks *KeywordSet) indexOf(key types.HitKey) int {
	for i := range ks.hits {
		if ks.hits[i].Key() == key {
			return i
		}
	}
	return -1
}

func (ks *KeywordSet) remove(key types.HitKey) {
	if i := ks.indexOf(key); i >= 0 {
		ks.hits = append(ks.hits[:i], ks.hits[i+1:]...)
	}
}

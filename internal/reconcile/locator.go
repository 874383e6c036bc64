package reconcile

import (
	"iter"
	"unicode/utf8"

	"github.com/dshills/fulltext-mcp/pkg/types"
)

// NotFound is returned by Locate when the hit does not occur in the text.
const NotFound = -1

// Locate returns the character offset at which hit.Exact starts in text, at
// or after from, or NotFound.
//
// The prefix and suffix characters reported by the search index act as word
// delimiters. When the index cut one of them off (the keyword touched the
// snippet boundary) the keyword may sit at the start or end of the text, or
// next to a newline or space.
func Locate(hit types.CandidateHit, text Text, from int) int {
	if hit.Exact == "" {
		return NotFound
	}
	if hit.Prefix == "" {
		return locateNoPrefix(hit, text, from)
	}
	if hit.Suffix == "" {
		return locateNoSuffix(hit, text, from)
	}

	if p := text.Index(hit.String(), from); p != NotFound {
		return p + runeLen(hit.Prefix)
	}
	return NotFound
}

func locateNoPrefix(hit types.CandidateHit, text Text, from int) int {
	withSuffix := hit.Exact + hit.Suffix

	// start of the text
	if from <= 0 && text.HasPrefix(withSuffix) {
		return 0
	}
	// start of a line
	if p := text.Index("\n"+withSuffix, from); p != NotFound {
		return p + 1
	}
	// start of a word
	if p := text.Index(" "+withSuffix, from); p != NotFound {
		return p + 1
	}
	return NotFound
}

func locateNoSuffix(hit types.CandidateHit, text Text, from int) int {
	withPrefix := hit.Prefix + hit.Exact
	prefixLen := runeLen(hit.Prefix)

	// end of a line
	if p := text.Index(withPrefix+"\n", from); p != NotFound {
		return p + prefixLen
	}
	// end of a word
	if p := text.Index(withPrefix+" ", from); p != NotFound {
		return p + prefixLen
	}
	// end of the text
	if from <= text.Len()-runeLen(withPrefix) && text.HasSuffix(withPrefix) {
		return text.Len() - runeLen(hit.Exact)
	}
	return NotFound
}

// Occurrences yields every occurrence of hit in text, left to right. Each
// search resumes right after the previous occurrence's exact text.
func Occurrences(hit types.CandidateHit, pageID string, text Text) iter.Seq[types.LocatedHit] {
	return func(yield func(types.LocatedHit) bool) {
		exactLen := runeLen(hit.Exact)
		if exactLen == 0 {
			return
		}
		from := 0
		for {
			start := Locate(hit, text, from)
			if start == NotFound {
				return
			}
			located := types.LocatedHit{
				PageID: pageID,
				Start:  start,
				End:    start + exactLen,
				Exact:  hit.Exact,
			}
			if !yield(located) {
				return
			}
			from = start + exactLen
		}
	}
}

// LocateAll returns at most limit occurrences of hit in text.
func LocateAll(hit types.CandidateHit, pageID string, text Text, limit int) []types.LocatedHit {
	found := make([]types.LocatedHit, 0)
	if limit <= 0 {
		return found
	}
	for located := range Occurrences(hit, pageID, text) {
		found = append(found, located)
		if len(found) >= limit {
			break
		}
	}
	return found
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

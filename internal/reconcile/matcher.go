package reconcile

import "github.com/dshills/fulltext-mcp/pkg/types"

// MinAnnotationLength is the shortest annotation span that can match a hit.
// Single characters are usually punctuation tokenized as a separate word.
const MinAnnotationLength = 2

// Overlaps reports whether [s1,e1] and [s2,e2] overlap. Both ends are
// treated as inclusive, so an annotation ending exactly where a hit starts
// still counts as overlapping.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 <= e2 && e1 >= s2
}

// Match returns, in page order, the annotations of granularity g that
// overlap the located hit.
func Match(hit types.LocatedHit, annotations []types.Annotation, g types.Granularity) []types.Annotation {
	matches := make([]types.Annotation, 0)
	for _, anno := range annotations {
		if anno.Granularity != g || !Overlaps(hit.Start, hit.End, anno.From, anno.To) {
			continue
		}
		if anno.Len() < MinAnnotationLength {
			continue
		}
		matches = append(matches, anno)
	}
	return matches
}

// Collect adds the annotations matched for one located hit to result and
// returns the updated result. For word granularity every match becomes a
// plain item. For coarser granularities the first match also creates a Hit
// and later matches are attached to that same Hit. The boolean is false when
// there was nothing to collect.
func Collect(result types.SearchResult, page *types.Page, text Text, hit types.LocatedHit,
	matches []types.Annotation, g types.Granularity) (types.SearchResult, bool) {

	if len(matches) == 0 {
		return result, false
	}

	hitIndex := -1
	for _, anno := range matches {
		result.Items = append(result.Items, newItem(page, text, anno))
		if g == types.GranularityWord {
			continue
		}
		if hitIndex < 0 {
			result.Hits = append(result.Hits, types.Hit{
				PageID:      hit.PageID,
				Start:       hit.Start,
				End:         hit.End,
				Annotations: make([]string, 0, 1),
				Selectors:   make([]types.TextQuoteSelector, 0, 1),
			})
			hitIndex = len(result.Hits) - 1
		}
		attach(&result.Hits[hitIndex], text, hit, anno)
	}
	return result, true
}

func attach(h *types.Hit, text Text, hit types.LocatedHit, anno types.Annotation) {
	h.Annotations = append(h.Annotations, anno.ID)
	h.Selectors = append(h.Selectors, types.TextQuoteSelector{
		Prefix: text.Slice(anno.From, hit.Start),
		Exact:  hit.Exact,
		Suffix: text.Slice(hit.End, anno.To),
	})
}

func newItem(page *types.Page, text Text, anno types.Annotation) types.Item {
	return types.Item{
		ID:          anno.ID,
		Record:      page.Record,
		PageID:      page.PageID,
		Granularity: anno.Granularity,
		From:        anno.From,
		To:          anno.To,
		Text:        text.Slice(anno.From, anno.To),
		Language:    anno.Language,
		Targets:     anno.Targets,
	}
}

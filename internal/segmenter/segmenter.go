package segmenter

import (
	"fmt"
	"unicode"

	"github.com/dshills/fulltext-mcp/pkg/types"
)

// Segmenter derives annotations from plain page text when no layout
// information is available: words are runs of non-space characters, lines
// end at a newline and blocks are separated by blank lines.
type Segmenter struct {
	granularities []types.Granularity
}

// New creates a Segmenter producing the given granularities, or all of them
// when none are given.
func New(granularities ...types.Granularity) *Segmenter {
	if len(granularities) == 0 {
		granularities = types.AllGranularities
	}
	return &Segmenter{granularities: granularities}
}

// span is a character range, end exclusive
type span struct {
	from, to int
}

// Segment returns the annotations of one page, grouped by granularity from
// page down to word and in text order within each group. Offsets are
// character offsets. Annotation ids are derived from pageID.
func (s *Segmenter) Segment(pageID, text string) []types.Annotation {
	runes := []rune(text)
	words, lines := scan(runes)
	blocks := groupBlocks(runes, lines)

	var page []span
	if len(words) > 0 {
		page = []span{{from: 0, to: len(runes)}}
	}

	spans := map[types.Granularity][]span{
		types.GranularityPage:  page,
		types.GranularityBlock: blocks,
		types.GranularityLine:  lines,
		types.GranularityWord:  words,
	}

	annotations := make([]types.Annotation, 0, len(words)+len(lines)+len(blocks)+1)
	for _, g := range []types.Granularity{
		types.GranularityPage, types.GranularityBlock, types.GranularityLine, types.GranularityWord,
	} {
		if !s.produces(g) {
			continue
		}
		for i, sp := range spans[g] {
			annotations = append(annotations, types.Annotation{
				ID:          AnnotationID(pageID, g, i+1),
				Granularity: g,
				From:        sp.from,
				To:          sp.to,
			})
		}
	}
	return annotations
}

// AnnotationID builds the id of the n-th annotation of granularity g on a page
func AnnotationID(pageID string, g types.Granularity, n int) string {
	return fmt.Sprintf("%s.%c%d", pageID, unicode.ToLower(rune(g.Code())), n)
}

func (s *Segmenter) produces(g types.Granularity) bool {
	for _, want := range s.granularities {
		if want == g {
			return true
		}
	}
	return false
}

// scan returns the word spans and the trimmed spans of non-blank lines
func scan(runes []rune) (words, lines []span) {
	words = make([]span, 0)
	lines = make([]span, 0)

	wordStart := -1
	lineFrom, lineTo := -1, -1
	endLine := func() {
		if lineFrom >= 0 {
			lines = append(lines, span{from: lineFrom, to: lineTo})
		}
		lineFrom, lineTo = -1, -1
	}

	for i, r := range runes {
		if unicode.IsSpace(r) {
			if wordStart >= 0 {
				words = append(words, span{from: wordStart, to: i})
				wordStart = -1
			}
			if r == '\n' {
				endLine()
			}
			continue
		}
		if wordStart < 0 {
			wordStart = i
		}
		if lineFrom < 0 {
			lineFrom = i
		}
		lineTo = i + 1
	}
	if wordStart >= 0 {
		words = append(words, span{from: wordStart, to: len(runes)})
	}
	endLine()
	return words, lines
}

// groupBlocks joins consecutive lines that are not separated by a blank line
func groupBlocks(runes []rune, lines []span) []span {
	blocks := make([]span, 0)
	for i, line := range lines {
		if i > 0 && !blankLineBetween(runes, lines[i-1].to, line.from) {
			blocks[len(blocks)-1].to = line.to
			continue
		}
		blocks = append(blocks, line)
	}
	return blocks
}

// blankLineBetween reports whether the gap between two lines holds at least
// two newlines
func blankLineBetween(runes []rune, from, to int) bool {
	newlines := 0
	for _, r := range runes[from:to] {
		if r == '\n' {
			newlines++
		}
	}
	return newlines >= 2
}

package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fulltext-mcp/pkg/types"
)

func TestExtractHits_SingleKeyword(t *testing.T) {
	hits := ExtractHits("Hi <em>there</em>. Good day")

	require.Len(t, hits, 1)
	assert.Equal(t, " ", hits[0].Prefix)
	assert.Equal(t, "there", hits[0].Exact)
	assert.Equal(t, ".", hits[0].Suffix)
	assert.Equal(t, 3, hits[0].SnippetStart)
	assert.Equal(t, 17, hits[0].SnippetEnd)
}

func TestExtractHits_SeparatedKeywords(t *testing.T) {
	hits := ExtractHits("<em>one</em> aaaa <em>two</em> bbbb <em>three</em>")

	require.Len(t, hits, 3)
	assert.Equal(t, types.HitKey{Prefix: "", Exact: "one", Suffix: " "}, hits[0].Key())
	assert.Equal(t, types.HitKey{Prefix: " ", Exact: "two", Suffix: " "}, hits[1].Key())
	assert.Equal(t, types.HitKey{Prefix: " ", Exact: "three", Suffix: ""}, hits[2].Key())
}

func TestExtractHits_NoTags(t *testing.T) {
	assert.Empty(t, ExtractHits("nothing highlighted here"))
	assert.Empty(t, ExtractHits(""))
}

func TestExtractHits_Merge(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		want    []types.HitKey
	}{
		{
			name:    "single space between keywords",
			snippet: "the <em>Good</em> <em>day</em>.",
			want:    []types.HitKey{{Prefix: " ", Exact: "Good day", Suffix: "."}},
		},
		{
			name:    "adjacent tags",
			snippet: "x<em>foot</em><em>ball</em>!",
			want:    []types.HitKey{{Prefix: "x", Exact: "football", Suffix: "!"}},
		},
		{
			name:    "gap equal to merge distance",
			snippet: "x <em>a</em>, b<em>c</em> y",
			want:    []types.HitKey{{Prefix: " ", Exact: "a, bc", Suffix: " "}},
		},
		{
			name:    "gap beyond merge distance",
			snippet: "x <em>a</em>, bb<em>c</em> y",
			want: []types.HitKey{
				{Prefix: " ", Exact: "a", Suffix: ","},
				{Prefix: "b", Exact: "c", Suffix: " "},
			},
		},
		{
			name:    "chain of three keywords",
			snippet: "<em>a</em> <em>b</em> <em>c</em>",
			want:    []types.HitKey{{Prefix: "", Exact: "a b c", Suffix: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := ExtractHits(tt.snippet)
			keys := make([]types.HitKey, len(hits))
			for i, h := range hits {
				keys[i] = h.Key()
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestExtractHits_MergedOffsetsSpanBothTags(t *testing.T) {
	snippet := "the <em>Good</em> <em>day</em>."
	hits := ExtractHits(snippet)

	require.Len(t, hits, 1)
	assert.Equal(t, 4, hits[0].SnippetStart)
	assert.Equal(t, len(snippet)-1, hits[0].SnippetEnd)
}

func TestExtractHits_DuplicatesWithinSnippet(t *testing.T) {
	hits := ExtractHits("a <em>day</em> and a <em>day</em> more")

	require.Len(t, hits, 1)
	assert.Equal(t, "day", hits[0].Exact)
}

func TestExtractHits_SameWordDifferentContext(t *testing.T) {
	hits := ExtractHits("a <em>day</em>, and a <em>day</em> more")

	require.Len(t, hits, 2)
	assert.Equal(t, ",", hits[0].Suffix)
	assert.Equal(t, " ", hits[1].Suffix)
}

func TestExtractHits_UnterminatedTag(t *testing.T) {
	hits := ExtractHits("a <em>b</em> c long gap <em>d")

	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].Exact)
}

func TestExtractHits_EmptyHighlightSkipped(t *testing.T) {
	hits := ExtractHits("a <em></em> long gap <em>word</em> end")

	require.Len(t, hits, 1)
	assert.Equal(t, "word", hits[0].Exact)
}

func TestExtractHits_MultibyteContext(t *testing.T) {
	hits := ExtractHits("café<em>t</em>ü rest")

	require.Len(t, hits, 1)
	assert.Equal(t, "é", hits[0].Prefix)
	assert.Equal(t, "ü", hits[0].Suffix)
}

func TestKeywordSet_DeduplicatesAcrossSnippets(t *testing.T) {
	ks := NewKeywordSet()
	ks.AddSnippet("the <em>paris</em> news")
	ks.AddSnippet("from <em>paris</em> news")
	ks.AddSnippet("to <em>paris</em>, today")

	hits := ks.Hits()
	require.Len(t, hits, 2)
	assert.Equal(t, types.HitKey{Prefix: " ", Exact: "paris", Suffix: " "}, hits[0].Key())
	assert.Equal(t, types.HitKey{Prefix: " ", Exact: "paris", Suffix: ","}, hits[1].Key())
	assert.True(t, ks.Contains(types.HitKey{Prefix: " ", Exact: "paris", Suffix: ","}))
}

func TestKeywordSet_MergeReplacesEarlierKeyword(t *testing.T) {
	ks := NewKeywordSet()
	ks.AddSnippet("x <em>good</em> <em>day</em> x")

	hits := ks.Hits()
	require.Len(t, hits, 1)
	assert.Equal(t, "good day", hits[0].Exact)
	assert.False(t, ks.Contains(types.HitKey{Prefix: " ", Exact: "good", Suffix: " "}))
}

func TestKeywordSet_HitsReturnsCopy(t *testing.T) {
	ks := NewKeywordSet()
	ks.AddSnippet("a <em>b</em> c")

	hits := ks.Hits()
	hits[0].Exact = "changed"
	assert.Equal(t, "b", ks.Hits()[0].Exact)
	assert.Equal(t, 1, ks.Len())
}

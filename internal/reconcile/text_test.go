package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText_Slice(t *testing.T) {
	text := NewText("héllo")

	assert.Equal(t, 5, text.Len())
	assert.Equal(t, "él", text.Slice(1, 3))
	assert.Equal(t, "héllo", text.Slice(-2, 99))
	assert.Equal(t, "", text.Slice(3, 3))
	assert.Equal(t, "", text.Slice(4, 2))
}

func TestText_Index(t *testing.T) {
	text := NewText("ab ab ab")

	assert.Equal(t, 0, text.Index("ab", 0))
	assert.Equal(t, 3, text.Index("ab", 1))
	assert.Equal(t, 0, text.Index("ab", -5))
	assert.Equal(t, -1, text.Index("ab", 7))
	assert.Equal(t, -1, text.Index("abc", 0))
	assert.Equal(t, 2, text.Index("", 2))
	assert.Equal(t, -1, text.Index("", 9))
}

func TestText_PrefixSuffix(t *testing.T) {
	text := NewText("über alles")

	assert.True(t, text.HasPrefix("üb"))
	assert.False(t, text.HasPrefix("alles"))
	assert.True(t, text.HasSuffix("alles"))
	assert.False(t, text.HasSuffix("über alles!"))
	assert.True(t, text.HasPrefix(""))
}

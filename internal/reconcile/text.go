package reconcile

// Text is a page full text addressed by character offset. Annotation and hit
// offsets count characters, so all lookups work on runes rather than bytes.
type Text struct {
	runes []rune
}

// NewText wraps s for character-offset lookups.
func NewText(s string) Text {
	return Text{runes: []rune(s)}
}

// Len returns the number of characters in the text.
func (t Text) Len() int {
	return len(t.runes)
}

// Slice returns the characters in [from, to), clamped to the text bounds.
func (t Text) Slice(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(t.runes) {
		to = len(t.runes)
	}
	if from >= to {
		return ""
	}
	return string(t.runes[from:to])
}

// Index returns the character offset of the first occurrence of needle at or
// after from, or -1. A negative from is treated as 0.
func (t Text) Index(needle string, from int) int {
	return indexRunes(t.runes, []rune(needle), from)
}

// HasPrefix reports whether the text starts with s.
func (t Text) HasPrefix(s string) bool {
	n := []rune(s)
	return len(n) <= len(t.runes) && equalRunes(t.runes[:len(n)], n)
}

// HasSuffix reports whether the text ends with s.
func (t Text) HasSuffix(s string) bool {
	n := []rune(s)
	return len(n) <= len(t.runes) && equalRunes(t.runes[len(t.runes)-len(n):], n)
}

func indexRunes(haystack, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}
	if len(needle) == 0 {
		if from > len(haystack) {
			return -1
		}
		return from
	}
	last := len(haystack) - len(needle)
	for i := from; i <= last; i++ {
		if haystack[i] == needle[0] && equalRunes(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

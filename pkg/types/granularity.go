package types

import (
	"fmt"
	"strings"
)

// Granularity is the structural level an annotation covers.
type Granularity int

const (
	GranularityWord Granularity = iota + 1
	GranularityLine
	GranularityBlock
	GranularityPage
)

// AllGranularities lists every granularity in ascending size.
var AllGranularities = []Granularity{GranularityWord, GranularityLine, GranularityBlock, GranularityPage}

// Code returns the single-letter wire code stored with annotations (W, L, B, P).
func (g Granularity) Code() byte {
	switch g {
	case GranularityWord:
		return 'W'
	case GranularityLine:
		return 'L'
	case GranularityBlock:
		return 'B'
	case GranularityPage:
		return 'P'
	default:
		return 0
	}
}

// String returns the lower-case name used in requests and responses.
func (g Granularity) String() string {
	switch g {
	case GranularityWord:
		return "word"
	case GranularityLine:
		return "line"
	case GranularityBlock:
		return "block"
	case GranularityPage:
		return "page"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// Valid reports whether g is one of the known granularities.
func (g Granularity) Valid() bool {
	return g >= GranularityWord && g <= GranularityPage
}

// MarshalText encodes the granularity by name.
func (g Granularity) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGranularity, int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText accepts either a name or a wire code.
func (g *Granularity) UnmarshalText(text []byte) error {
	parsed, err := ParseGranularity(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// GranularityFromCode maps a wire code back to a Granularity.
func GranularityFromCode(code byte) (Granularity, error) {
	switch code {
	case 'W', 'w':
		return GranularityWord, nil
	case 'L', 'l':
		return GranularityLine, nil
	case 'B', 'b':
		return GranularityBlock, nil
	case 'P', 'p':
		return GranularityPage, nil
	default:
		return 0, fmt.Errorf("%w: code %q", ErrInvalidGranularity, code)
	}
}

// ParseGranularity parses a granularity name ("word", "line", ...) or wire code ("W", "L", ...).
func ParseGranularity(s string) (Granularity, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		return GranularityFromCode(s[0])
	}
	switch strings.ToLower(s) {
	case "word":
		return GranularityWord, nil
	case "line":
		return GranularityLine, nil
	case "block":
		return GranularityBlock, nil
	case "page":
		return GranularityPage, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
}

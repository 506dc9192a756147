package rhyme

import (
	"errors"
	"fmt"
	"strings"
)

// Scheme is the rhyme pattern applied to a section
type Scheme string

const (
	SchemePaired      Scheme = "AABB"
	SchemeAlternating Scheme = "ABAB"
	SchemeFree        Scheme = "free"
)

// Schemes lists every scheme in display order.
var Schemes = []Scheme{SchemePaired, SchemeAlternating, SchemeFree}

var ErrUnknownScheme = errors.New("unknown rhyme scheme")

// ParseScheme accepts AABB/paired, ABAB/alternating and free/none.
// An empty string means free.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aabb", "paired":
		return SchemePaired, nil
	case "abab", "alternating":
		return SchemeAlternating, nil
	case "free", "none", "":
		return SchemeFree, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
}

// Description is a short human label for the scheme.
func (s Scheme) Description() string {
	switch s {
	case SchemePaired:
		return "couplet rhyme, lines 1-2 and 3-4 rhyme"
	case SchemeAlternating:
		return "alternating rhyme, lines 1-3 and 2-4 rhyme"
	case SchemeFree:
		return "freeform, no rhyme structure"
	}
	return string(s)
}

var (
	pairLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	oddLabels  = []string{"A", "C", "E", "G"}
	evenLabels = []string{"B", "D", "F", "H"}
)

// Label returns the rhyme letter of a line at a position counted across
// the whole lyric, or "" when the scheme has no label for it.
func Label(index int, scheme Scheme) string {
	if index < 0 {
		return ""
	}
	switch scheme {
	case SchemePaired:
		return pairLabels[(index/2)%len(pairLabels)]
	case SchemeAlternating:
		group := index / 4
		if group >= len(oddLabels) {
			return ""
		}
		if (index%4)%2 == 0 {
			return oddLabels[group]
		}
		return evenLabels[group]
	}
	return ""
}

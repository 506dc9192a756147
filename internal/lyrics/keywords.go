package lyrics

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sukalov/lyricbot/internal/rhyme"
)

// DefaultMaxKeywordLength caps custom keywords, in runes.
const DefaultMaxKeywordLength = 20

// Rand is the random source used for dice and template picks.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand = rhyme.Rand

// RollDie returns a die face in [1,6].
func RollDie(r Rand) int {
	return r.IntN(FacesPerTheme) + 1
}

// NormalizeKeyword trims and lowercases a user-typed keyword and enforces
// the length cap. maxLen <= 0 uses DefaultMaxKeywordLength.
func NormalizeKeyword(raw string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxKeywordLength
	}
	word := strings.ToLower(strings.TrimSpace(raw))
	if word == "" {
		return "", ErrEmptyKeyword
	}
	if utf8.RuneCountInString(word) > maxLen {
		return "", fmt.Errorf("%w: %d characters max", ErrKeywordTooLong, maxLen)
	}
	return word, nil
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(word string) string {
	if word == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
}

// Fill substitutes every marker occurrence in a template.
func Fill(template, keyword string) string {
	out := strings.ReplaceAll(template, MarkerLower, strings.ToLower(keyword))
	return strings.ReplaceAll(out, MarkerUpper, Capitalize(keyword))
}

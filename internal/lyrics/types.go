package lyrics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sukalov/lyricbot/internal/rhyme"
)

// Theme selects a keyword bank
type Theme string

const (
	ThemeLove       Theme = "love"
	ThemeNature     Theme = "nature"
	ThemeGrowth     Theme = "growth"
	ThemeCareer     Theme = "career"
	ThemeFriendship Theme = "friendship"
	ThemeJourney    Theme = "journey"
)

// Themes lists every theme in display order.
var Themes = []Theme{ThemeLove, ThemeNature, ThemeGrowth, ThemeCareer, ThemeFriendship, ThemeJourney}

// Style selects a template bank per section
type Style string

const (
	StyleFolk Style = "folk"
	StylePop  Style = "pop"
	StyleRap  Style = "rap"
)

// Styles lists every music style in display order.
var Styles = []Style{StyleFolk, StylePop, StyleRap}

// Section is one part of a structured lyric
type Section string

const (
	SectionVerse  Section = "verse"
	SectionChorus Section = "chorus"
	SectionBridge Section = "bridge"
)

// Sections lists the sections in the order they appear in a lyric.
var Sections = []Section{SectionVerse, SectionChorus, SectionBridge}

// Fixed line counts per section.
const (
	VerseLines  = 8
	ChorusLines = 4
	BridgeLines = 4
)

// DefaultFallbackKeyword fills the chorus when no keyword was supplied.
const DefaultFallbackKeyword = "dream"

var (
	ErrOutOfRange      = errors.New("die face out of range")
	ErrUnknownTheme    = errors.New("unknown theme")
	ErrUnknownStyle    = errors.New("unknown style")
	ErrUnknownSection  = errors.New("unknown section")
	ErrEmptyKeyword    = errors.New("keyword is empty")
	ErrKeywordTooLong  = errors.New("keyword is too long")
	ErrInvalidLength   = errors.New("snippet length must be 4 or 6")
	ErrInvalidBank     = errors.New("invalid bank")
	ErrMissingTemplate = errors.New("no templates for style and section")
)

// LineCount returns the fixed number of lines of a section.
func (s Section) LineCount() int {
	switch s {
	case SectionVerse:
		return VerseLines
	case SectionChorus:
		return ChorusLines
	case SectionBridge:
		return BridgeLines
	}
	return 0
}

// ParseTheme matches a theme name case-insensitively.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Themes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}

// ParseStyle matches a style name case-insensitively.
func ParseStyle(s string) (Style, error) {
	st := Style(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Styles {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// Lyric is one generated verse/chorus/bridge set
type Lyric struct {
	ID          string       `json:"id"`
	Verse       []string     `json:"verse"`
	Chorus      []string     `json:"chorus"`
	Bridge      []string     `json:"bridge"`
	Keywords    []string     `json:"keywords"`
	Theme       Theme        `json:"theme,omitempty"`
	DiceRolls   []int        `json:"dice_rolls,omitempty"`
	Style       Style        `json:"style"`
	Scheme      rhyme.Scheme `json:"scheme"`
	Seed        uint64       `json:"seed"`
	Validation  Validation   `json:"validation"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Lines returns verse, chorus and bridge lines in order.
func (l *Lyric) Lines() []string {
	all := make([]string, 0, len(l.Verse)+len(l.Chorus)+len(l.Bridge))
	all = append(all, l.Verse...)
	all = append(all, l.Chorus...)
	return append(all, l.Bridge...)
}

// Section returns the lines of one section.
func (l *Lyric) Section(s Section) []string {
	switch s {
	case SectionVerse:
		return l.Verse
	case SectionChorus:
		return l.Chorus
	case SectionBridge:
		return l.Bridge
	}
	return nil
}

// Validation holds rhyme validation per section and over the whole lyric.
type Validation struct {
	Verse   rhyme.Result `json:"verse"`
	Chorus  rhyme.Result `json:"chorus"`
	Bridge  rhyme.Result `json:"bridge"`
	Overall rhyme.Result `json:"overall"`
}

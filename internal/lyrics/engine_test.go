package lyrics

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoBank has one bare-marker template everywhere, so every line is
// exactly its keyword.
func echoBank() *Bank {
	b := &Bank{
		Keywords:  DefaultBank().Keywords,
		Templates: map[Style]map[Section][]string{},
	}
	for _, style := range Styles {
		b.Templates[style] = map[Section][]string{
			SectionVerse:  {MarkerLower},
			SectionChorus: {MarkerLower},
			SectionBridge: {MarkerLower},
		}
	}
	return b
}

func TestGenerateSectionLineCounts(t *testing.T) {
	e := NewEngine(DefaultBank(), "")
	r := NewRand(1)

	for _, style := range Styles {
		t.Run(string(style), func(t *testing.T) {
			verse, err := e.GenerateSection(r, []string{"fire"}, style, SectionVerse)
			require.NoError(t, err)
			assert.Len(t, verse, VerseLines)

			chorus, err := e.GenerateSection(r, []string{"fire"}, style, SectionChorus)
			require.NoError(t, err)
			assert.Len(t, chorus, ChorusLines)

			bridge, err := e.GenerateSection(r, []string{"fire"}, style, SectionBridge)
			require.NoError(t, err)
			assert.Len(t, bridge, BridgeLines)
		})
	}
}

func TestGenerateSectionEmptyKeywords(t *testing.T) {
	e := NewEngine(DefaultBank(), "")
	r := NewRand(1)

	verse, err := e.GenerateSection(r, nil, StyleFolk, SectionVerse)
	require.NoError(t, err)
	assert.Empty(t, verse)
	assert.NotNil(t, verse)

	bridge, err := e.GenerateSection(r, []string{}, StyleFolk, SectionBridge)
	require.NoError(t, err)
	assert.Empty(t, bridge)

	chorus, err := e.GenerateSection(r, nil, StyleFolk, SectionChorus)
	require.NoError(t, err)
	require.Len(t, chorus, ChorusLines)
	for _, line := range chorus {
		assert.True(t, strings.Contains(line, "dream") || strings.Contains(line, "Dream"), line)
	}
}

func TestGenerateSectionCustomFallback(t *testing.T) {
	e := NewEngine(echoBank(), "star")
	chorus, err := e.GenerateSection(NewRand(1), nil, StylePop, SectionChorus)
	require.NoError(t, err)
	assert.Equal(t, []string{"star", "star", "star", "star"}, chorus)
}

func TestGenerateSectionKeywordDistribution(t *testing.T) {
	e := NewEngine(echoBank(), "")
	r := NewRand(3)

	tests := []struct {
		name     string
		section  Section
		keywords []string
		want     []string
	}{
		{"verse with four", SectionVerse, []string{"a", "b", "c", "d"}, []string{"a", "a", "b", "b", "c", "c", "d", "d"}},
		{"verse wraps two", SectionVerse, []string{"a", "b"}, []string{"a", "a", "b", "b", "a", "a", "b", "b"}},
		{"verse with three", SectionVerse, []string{"a", "b", "c"}, []string{"a", "a", "b", "b", "c", "c", "a", "a"}},
		{"chorus repeats first", SectionChorus, []string{"x", "y"}, []string{"x", "x", "x", "x"}},
		{"bridge round robin", SectionBridge, []string{"a", "b", "c"}, []string{"a", "b", "c", "a"}},
		{"bridge with one", SectionBridge, []string{"a"}, []string{"a", "a", "a", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.GenerateSection(r, tt.keywords, StyleRap, tt.section)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("keyword distribution (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerateSectionDeterministicWithSeed(t *testing.T) {
	e := NewEngine(DefaultBank(), "")
	keywords := []string{"river", "rain", "sky", "ocean"}

	first, err := e.GenerateSection(NewRand(99), keywords, StyleFolk, SectionVerse)
	require.NoError(t, err)
	second, err := e.GenerateSection(NewRand(99), keywords, StyleFolk, SectionVerse)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateSectionErrors(t *testing.T) {
	e := NewEngine(DefaultBank(), "")

	_, err := e.GenerateSection(NewRand(1), []string{"a"}, Style("jazz"), SectionVerse)
	assert.ErrorIs(t, err, ErrUnknownStyle)

	_, err = e.GenerateSection(NewRand(1), []string{"a"}, StyleFolk, Section("outro"))
	assert.ErrorIs(t, err, ErrMissingTemplate)
}

func TestFill(t *testing.T) {
	template := "{keyword} and {Keyword}, then {keyword} again, {Keyword}!"
	got := Fill(template, "Ocean")

	assert.Equal(t, "ocean and Ocean, then ocean again, Ocean!", got)
	assert.Equal(t, 2, strings.Count(got, "ocean"))
	assert.Equal(t, 2, strings.Count(got, "Ocean"))
	assert.NotContains(t, got, MarkerLower)
	assert.NotContains(t, got, MarkerUpper)

	assert.Equal(t, "no markers here", Fill("no markers here", "ocean"))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Ocean", Capitalize("ocean"))
	assert.Equal(t, "Ocean", Capitalize("OCEAN"))
	assert.Equal(t, "New york", Capitalize("new YORK"))
	assert.Equal(t, "Élan", Capitalize("élan"))
	assert.Equal(t, "", Capitalize(""))
}

func TestNormalizeKeyword(t *testing.T) {
	got, err := NormalizeKeyword("  Sunset ", 0)
	require.NoError(t, err)
	assert.Equal(t, "sunset", got)

	_, err = NormalizeKeyword("   ", 0)
	assert.ErrorIs(t, err, ErrEmptyKeyword)

	_, err = NormalizeKeyword(strings.Repeat("a", 21), 0)
	assert.ErrorIs(t, err, ErrKeywordTooLong)

	got, err = NormalizeKeyword(strings.Repeat("é", 20), 0)
	require.NoError(t, err, "the cap counts letters, not bytes")
	assert.Len(t, []rune(got), 20)

	_, err = NormalizeKeyword("toolong", 5)
	assert.ErrorIs(t, err, ErrKeywordTooLong)
}

func TestRollDie(t *testing.T) {
	r := NewRand(5)
	seen := make(map[int]bool)
	for i := 0; i < 600; i++ {
		face := RollDie(r)
		require.GreaterOrEqual(t, face, 1)
		require.LessOrEqual(t, face, 6)
		seen[face] = true
	}
	assert.Len(t, seen, 6)
}

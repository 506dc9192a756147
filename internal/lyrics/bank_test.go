package lyrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBankIsValid(t *testing.T) {
	b := DefaultBank()
	require.NoError(t, b.Validate())

	for _, theme := range Themes {
		assert.Len(t, b.Keywords[theme], FacesPerTheme, "theme %s", theme)
	}
	for _, style := range Styles {
		for _, section := range Sections {
			templates, err := b.TemplatesFor(style, section)
			require.NoError(t, err)
			assert.NotEmpty(t, templates)
		}
	}
}

func TestKeyword(t *testing.T) {
	b := DefaultBank()

	for _, theme := range Themes {
		for face := 1; face <= FacesPerTheme; face++ {
			first, err := b.Keyword(theme, face)
			require.NoError(t, err)
			again, err := b.Keyword(theme, face)
			require.NoError(t, err)

			assert.Equal(t, first, again)
			assert.Equal(t, b.Keywords[theme][face-1], first)
		}
	}

	word, err := b.Keyword(ThemeNature, 4)
	require.NoError(t, err)
	assert.Equal(t, "ocean", word)
}

func TestKeywordOutOfRange(t *testing.T) {
	b := DefaultBank()
	for _, face := range []int{-1, 0, 7, 100} {
		_, err := b.Keyword(ThemeLove, face)
		assert.ErrorIs(t, err, ErrOutOfRange, "face %d", face)
	}

	_, err := b.Keyword(Theme("space"), 1)
	assert.ErrorIs(t, err, ErrUnknownTheme)
}

func TestParseBankRejectsBrokenData(t *testing.T) {
	valid := string(embeddedBank)

	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "keywords: [unclosed"},
		{"five keywords", strings.Replace(valid, "love: [heart, kiss, embrace, forever, rose, promise]", "love: [heart, kiss, embrace, forever, rose]", 1)},
		{"missing theme", strings.Replace(valid, "  journey: [road, compass, horizon, wander, train, home]\n", "", 1)},
		{"template without marker", strings.Replace(valid, `"Oh {keyword}, carry me home"`, `"Oh, carry me home"`, 1)},
		{"empty keyword", strings.Replace(valid, "rose, promise]", `rose, ""]`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBank([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadBankFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, embeddedBank, 0o644))

	b, err := LoadBankFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultBank().Keywords, b.Keywords)

	_, err = LoadBankFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTemplatesForUnknownStyle(t *testing.T) {
	_, err := DefaultBank().TemplatesFor(Style("jazz"), SectionVerse)
	assert.ErrorIs(t, err, ErrUnknownStyle)
}

func TestParseThemeAndStyle(t *testing.T) {
	theme, err := ParseTheme(" Nature ")
	require.NoError(t, err)
	assert.Equal(t, ThemeNature, theme)

	_, err = ParseTheme("space")
	assert.ErrorIs(t, err, ErrUnknownTheme)

	style, err := ParseStyle("RAP")
	require.NoError(t, err)
	assert.Equal(t, StyleRap, style)

	_, err = ParseStyle("jazz")
	assert.ErrorIs(t, err, ErrUnknownStyle)
}

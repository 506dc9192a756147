package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukalov/lyricbot/internal/lyrics"
	"github.com/sukalov/lyricbot/internal/rhyme"
)

var generatedAt = time.Date(2024, 3, 9, 18, 4, 5, 0, time.UTC)

func sampleLyric() (*lyrics.Lyric, Metadata) {
	l := &lyrics.Lyric{
		Verse:       []string{"v1", "v2", "v3", "v4", "v5", "v6", "v7", "v8"},
		Chorus:      []string{"c1", "c2", "c3", "c4"},
		Bridge:      []string{"b1", "b2", "b3", "b4"},
		Keywords:    []string{"river", "ocean"},
		Style:       lyrics.StyleFolk,
		Scheme:      rhyme.SchemePaired,
		Theme:       lyrics.ThemeNature,
		DiceRolls:   []int{1, 4},
		GeneratedAt: generatedAt,
	}
	return l, MetadataFor(l)
}

func TestText(t *testing.T) {
	l, meta := sampleLyric()
	got := Text(l, meta)

	want := strings.Join([]string{
		"=== LYRIC SNIPPET ===",
		"Generated: 2024-03-09T18:04:05Z",
		"Theme: nature",
		"Style: folk",
		"Rhyme Scheme: AABB",
		"Dice Rolls: 1, 4",
		"Keywords: river, ocean",
		"",
		"",
		"[VERSE]",
		"v1", "v2", "v3", "v4", "v5", "v6", "v7", "v8",
		"",
		"[CHORUS]",
		"c1", "c2", "c3", "c4",
		"",
		"[BRIDGE]",
		"b1", "b2", "b3", "b4",
		"",
		"",
		"Generated with Lyric Snippet Generator",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestMarkdown(t *testing.T) {
	l, meta := sampleLyric()
	got := Markdown(l, meta)

	assert.True(t, strings.HasPrefix(got, "# Lyric Snippet\n\n## Metadata\n\n"))
	assert.Contains(t, got, "- **Keywords**: `river`, `ocean`\n")
	assert.Contains(t, got, "- **Dice Rolls**: 1, 4\n")
	assert.Contains(t, got, "## Verse\n\n1. v1\n2. v2\n")
	assert.Contains(t, got, "8. v8\n")
	assert.Contains(t, got, "## Chorus\n\n1. c1\n")
	assert.Contains(t, got, "## Bridge\n\n1. b1\n2. b2\n3. b3\n4. b4\n")
	assert.True(t, strings.HasSuffix(got, "*Generated with Lyric Snippet Generator*\n"))
}

func TestHTML(t *testing.T) {
	l, meta := sampleLyric()
	page, err := HTML(l, meta)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "Lyric Snippet - nature", doc.Find("title").Text())
	assert.Equal(t, "Lyric Snippet", doc.Find("h1").Text())

	headings := doc.Find("h2").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, []string{"Metadata", "Verse", "Chorus", "Bridge"}, headings)

	lists := doc.Find("ol")
	require.Equal(t, 3, lists.Length())
	assert.Equal(t, 8, lists.Eq(0).Find("li").Length())
	assert.Equal(t, 4, lists.Eq(1).Find("li").Length())
	assert.Equal(t, "b4", lists.Eq(2).Find("li").Last().Text())

	assert.Equal(t, []string{"river", "ocean"}, doc.Find("code").Map(func(_ int, s *goquery.Selection) string { return s.Text() }))
}

func TestRenderAndFormats(t *testing.T) {
	l, meta := sampleLyric()

	for _, f := range Formats {
		out, err := Render(f, l, meta)
		require.NoError(t, err, f)
		assert.NotEmpty(t, out)
	}

	_, err := Render(Format("png"), l, meta)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	f, err := ParseFormat("Markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	f, err = ParseFormat(".html")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, f)

	_, err = ParseFormat("png")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "lyrics-1710007445000.txt", Filename(FormatText, generatedAt))
	assert.Equal(t, "lyrics-1710007445000.html", Filename(FormatHTML, generatedAt))
	assert.Equal(t, "text/markdown; charset=utf-8", FormatMarkdown.ContentType())
}

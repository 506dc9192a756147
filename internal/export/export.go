package export

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/sukalov/lyricbot/internal/lyrics"
	"github.com/sukalov/lyricbot/internal/rhyme"
)

type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

var Formats = []Format{FormatText, FormatMarkdown, FormatHTML}

var ErrUnknownFormat = errors.New("unknown export format")

const footer = "Generated with Lyric Snippet Generator"

// Metadata describes how a lyric was produced.
type Metadata struct {
	Theme       lyrics.Theme
	Style       lyrics.Style
	Scheme      rhyme.Scheme
	DiceRolls   []int
	Keywords    []string
	GeneratedAt time.Time
}

// MetadataFor describes the generation that produced l.
func MetadataFor(l *lyrics.Lyric) Metadata {
	return Metadata{
		Theme:       l.Theme,
		Style:       l.Style,
		Scheme:      l.Scheme,
		DiceRolls:   slices.Clone(l.DiceRolls),
		Keywords:    l.Keywords,
		GeneratedAt: l.GeneratedAt,
	}
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "txt", "text", "":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type of a format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Filename returns lyrics-<unix millis>.<ext>.
func Filename(f Format, t time.Time) string {
	return fmt.Sprintf("lyrics-%d.%s", t.UnixMilli(), f)
}

// Render dispatches to the renderer of a format.
func Render(f Format, l *lyrics.Lyric, meta Metadata) ([]byte, error) {
	switch f {
	case FormatText:
		return []byte(Text(l, meta)), nil
	case FormatMarkdown:
		return []byte(Markdown(l, meta)), nil
	case FormatHTML:
		return HTML(l, meta)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Text renders a plain text sheet with a metadata header.
func Text(l *lyrics.Lyric, meta Metadata) string {
	var b strings.Builder
	b.WriteString("=== LYRIC SNIPPET ===\n")
	fmt.Fprintf(&b, "Generated: %s\n", stamp(meta.GeneratedAt))
	fmt.Fprintf(&b, "Theme: %s\n", meta.Theme)
	fmt.Fprintf(&b, "Style: %s\n", meta.Style)
	fmt.Fprintf(&b, "Rhyme Scheme: %s\n", meta.Scheme)
	fmt.Fprintf(&b, "Dice Rolls: %s\n", joinInts(meta.DiceRolls))
	fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(meta.Keywords, ", "))

	for _, section := range lyrics.Sections {
		fmt.Fprintf(&b, "\n\n[%s]\n", strings.ToUpper(string(section)))
		b.WriteString(strings.Join(l.Section(section), "\n"))
	}

	b.WriteString("\n\n\n" + footer)
	return strings.TrimSpace(b.String())
}

// Markdown renders metadata as a list and each section as numbered lines.
func Markdown(l *lyrics.Lyric, meta Metadata) string {
	quoted := make([]string, len(meta.Keywords))
	for i, k := range meta.Keywords {
		quoted[i] = "`" + k + "`"
	}

	var b strings.Builder
	b.WriteString("# Lyric Snippet\n\n## Metadata\n\n")
	fmt.Fprintf(&b, "- **Theme**: %s\n", meta.Theme)
	fmt.Fprintf(&b, "- **Style**: %s\n", meta.Style)
	fmt.Fprintf(&b, "- **Rhyme Scheme**: %s\n", meta.Scheme)
	fmt.Fprintf(&b, "- **Dice Rolls**: %s\n", joinInts(meta.DiceRolls))
	fmt.Fprintf(&b, "- **Keywords**: %s\n", strings.Join(quoted, ", "))
	fmt.Fprintf(&b, "- **Generated**: %s\n\n---\n", stamp(meta.GeneratedAt))

	for _, section := range lyrics.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n", lyrics.Capitalize(string(section)))
		for i, line := range l.Section(section) {
			fmt.Fprintf(&b, "%d. %s\n", i+1, line)
		}
	}

	b.WriteString("\n---\n\n*" + footer + "*\n")
	return b.String()
}

// HTML renders the Markdown sheet into a standalone page.
func HTML(l *lyrics.Lyric, meta Metadata) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(l, meta)), &body); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>Lyric Snippet - %s</title>\n", html.EscapeString(string(meta.Theme)))
	page.WriteString("<style>body{font-family:Georgia,serif;max-width:40em;margin:2em auto;line-height:1.5}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

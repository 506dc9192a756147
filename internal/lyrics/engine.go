package lyrics

import (
	"fmt"
)

// Engine expands section templates with keywords.
type Engine struct {
	bank     *Bank
	fallback string
}

// NewEngine creates an engine over bank. An empty fallback uses
// DefaultFallbackKeyword for keyword-less choruses.
func NewEngine(bank *Bank, fallback string) *Engine {
	if fallback == "" {
		fallback = DefaultFallbackKeyword
	}
	return &Engine{bank: bank, fallback: fallback}
}

// GenerateSection produces the fixed number of lines for a section.
//
// Verse lines take keywords two at a time (0,0,1,1,...), bridge lines
// cycle through them, and both come back empty without keywords. The
// chorus repeats its first keyword, or the fallback word when none is
// given.
func (e *Engine) GenerateSection(r Rand, keywords []string, style Style, section Section) ([]string, error) {
	templates, err := e.bank.TemplatesFor(style, section)
	if err != nil {
		return nil, err
	}

	var pick func(i int) string
	switch section {
	case SectionVerse:
		if len(keywords) == 0 {
			return []string{}, nil
		}
		pick = func(i int) string { return keywords[(i/2)%len(keywords)] }
	case SectionChorus:
		anchor := e.fallback
		if len(keywords) > 0 && keywords[0] != "" {
			anchor = keywords[0]
		}
		pick = func(int) string { return anchor }
	case SectionBridge:
		if len(keywords) == 0 {
			return []string{}, nil
		}
		pick = func(i int) string { return keywords[i%len(keywords)] }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}

	lines := make([]string, section.LineCount())
	for i := range lines {
		template := templates[r.IntN(len(templates))]
		lines[i] = Fill(template, pick(i))
	}
	return lines, nil
}

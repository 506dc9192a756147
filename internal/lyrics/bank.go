package lyrics

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Template markers substituted by the engine.
const (
	MarkerLower = "{keyword}"
	MarkerUpper = "{Keyword}"
)

// FacesPerTheme is the number of die faces and therefore of keywords per theme.
const FacesPerTheme = 6

//go:embed bank.yaml
var embeddedBank []byte

var (
	defaultBank     *Bank
	defaultBankOnce sync.Once
)

// Bank holds the keyword tables and line templates.
type Bank struct {
	Keywords  map[Theme][]string             `yaml:"keywords"`
	Templates map[Style]map[Section][]string `yaml:"templates"`
}

// DefaultBank returns the bank compiled into the binary.
func DefaultBank() *Bank {
	defaultBankOnce.Do(func() {
		b, err := ParseBank(embeddedBank)
		if err != nil {
			panic(fmt.Sprintf("embedded bank is broken: %v", err))
		}
		defaultBank = b
	})
	return defaultBank
}

// ParseBank decodes and validates a YAML bank.
func ParseBank(data []byte) (*Bank, error) {
	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bank: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadBankFile reads a YAML bank from disk.
func LoadBankFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bank file %s: %w", path, err)
	}
	return ParseBank(data)
}

// Validate checks that every theme has exactly six keywords and every
// style has non-empty template lists whose entries carry a marker.
func (b *Bank) Validate() error {
	for _, theme := range Themes {
		words, ok := b.Keywords[theme]
		if !ok {
			return fmt.Errorf("%w: theme %s has no keywords", ErrInvalidBank, theme)
		}
		if len(words) != FacesPerTheme {
			return fmt.Errorf("%w: theme %s has %d keywords, want %d", ErrInvalidBank, theme, len(words), FacesPerTheme)
		}
		for i, w := range words {
			if strings.TrimSpace(w) == "" {
				return fmt.Errorf("%w: theme %s face %d is empty", ErrInvalidBank, theme, i+1)
			}
		}
	}

	for _, style := range Styles {
		sections, ok := b.Templates[style]
		if !ok {
			return fmt.Errorf("%w: style %s has no templates", ErrInvalidBank, style)
		}
		for _, section := range Sections {
			templates := sections[section]
			if len(templates) == 0 {
				return fmt.Errorf("%w: %s/%s has no templates", ErrInvalidBank, style, section)
			}
			for _, tpl := range templates {
				if !HasMarker(tpl) {
					return fmt.Errorf("%w: %s/%s template %q has no placeholder", ErrInvalidBank, style, section, tpl)
				}
			}
		}
	}
	return nil
}

// HasMarker reports whether a template contains at least one placeholder.
func HasMarker(template string) bool {
	return strings.Contains(template, MarkerLower) || strings.Contains(template, MarkerUpper)
}

// Keyword resolves a die face (1-6) to the theme's keyword.
func (b *Bank) Keyword(theme Theme, face int) (string, error) {
	words, ok := b.Keywords[theme]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}
	if face < 1 || face > len(words) {
		return "", fmt.Errorf("%w: %d not in [1,%d]", ErrOutOfRange, face, len(words))
	}
	return words[face-1], nil
}

// TemplatesFor returns the template list of a style and section.
func (b *Bank) TemplatesFor(style Style, section Section) ([]string, error) {
	sections, ok := b.Templates[style]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
	templates := sections[section]
	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrMissingTemplate, style, section)
	}
	return templates, nil
}

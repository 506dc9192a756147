package rhyme

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rhymes.yaml
var embeddedRhymes []byte

var (
	defaultStatic     *Static
	defaultStaticOnce sync.Once
)

// Static is an offline rhyme dictionary built from groups of words that
// rhyme with each other.
type Static struct {
	index map[string][]string
}

// NewStatic indexes rhyme groups. A word rhymes with every other member
// of each group it belongs to.
func NewStatic(groups [][]string) *Static {
	index := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	for _, group := range groups {
		for _, raw := range group {
			word := strings.ToLower(strings.TrimSpace(raw))
			if word == "" {
				continue
			}
			if seen[word] == nil {
				seen[word] = make(map[string]bool)
			}
			for _, other := range group {
				other = strings.ToLower(strings.TrimSpace(other))
				if other == "" || other == word || seen[word][other] {
					continue
				}
				seen[word][other] = true
				index[word] = append(index[word], other)
			}
		}
	}
	return &Static{index: index}
}

// ParseStatic reads a YAML document of the form {groups: [[a, b], ...]}.
func ParseStatic(data []byte) (*Static, error) {
	var doc struct {
		Groups [][]string `yaml:"groups"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode rhyme dictionary: %w", err)
	}
	return NewStatic(doc.Groups), nil
}

// DefaultStatic returns the dictionary compiled into the binary.
func DefaultStatic() *Static {
	defaultStaticOnce.Do(func() {
		s, err := ParseStatic(embeddedRhymes)
		if err != nil {
			panic(err)
		}
		defaultStatic = s
	})
	return defaultStatic
}

func (s *Static) Rhymes(_ context.Context, word string) ([]string, error) {
	found := s.index[strings.ToLower(strings.TrimSpace(word))]
	return append([]string(nil), found...), nil
}

package rhyme

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sukalov/lyricbot/internal/logger"
)

const (
	DefaultThreshold = 0.8
	DefaultTimeout   = 3 * time.Second
)

// Rand picks uniformly among n candidates. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
}

// Result summarizes how many expected rhyme pairs actually rhyme.
type Result struct {
	Valid   bool `json:"valid"`
	Matches int  `json:"matches"`
	Total   int  `json:"total"`
}

// Processor rewrites line endings to follow a rhyme scheme and checks
// whether lines already follow one.
type Processor struct {
	lookup    Lookup
	timeout   time.Duration
	threshold float64
}

type Option func(*Processor)

// WithTimeout bounds every rhyme lookup. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Processor) { p.timeout = d }
}

// WithThreshold sets the share of rhyming pairs a scheme needs to be valid.
func WithThreshold(t float64) Option {
	return func(p *Processor) { p.threshold = t }
}

// NewProcessor creates a processor. A nil lookup never finds rhymes.
func NewProcessor(lookup Lookup, opts ...Option) *Processor {
	p := &Processor{
		lookup:    lookup,
		timeout:   DefaultTimeout,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Threshold returns the validity threshold in use.
func (p *Processor) Threshold() float64 {
	return p.threshold
}

// Apply returns a copy of lines with line endings rewritten to follow
// scheme. Pairs whose anchor has no usable rhyme are left alone.
func (p *Processor) Apply(ctx context.Context, r Rand, lines []string, scheme Scheme) []string {
	result := slices.Clone(lines)

	switch scheme {
	case SchemePaired:
		for i := 0; i+1 < len(result); i += 2 {
			p.rewrite(ctx, r, result, i, i+1)
		}
	case SchemeAlternating:
		for i := 0; i+3 < len(result); i += 4 {
			p.rewrite(ctx, r, result, i, i+2)
			p.rewrite(ctx, r, result, i+1, i+3)
		}
	}

	return result
}

func (p *Processor) rewrite(ctx context.Context, r Rand, lines []string, anchor, target int) {
	word := LastWord(lines[anchor])
	if word == "" {
		return
	}

	var candidates []string
	for _, c := range p.rhymesOf(ctx, word) {
		if !strings.EqualFold(c, word) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return
	}

	pick := candidates[r.IntN(len(candidates))]
	lines[target] = ReplaceLastWord(lines[target], pick)
}

// Validate counts the expected rhyme pairs of scheme that actually rhyme.
func (p *Processor) Validate(ctx context.Context, lines []string, scheme Scheme) Result {
	var matches, total int

	switch scheme {
	case SchemePaired:
		for i := 0; i+1 < len(lines); i += 2 {
			total++
			if p.Rhymes(ctx, LastWord(lines[i]), LastWord(lines[i+1])) {
				matches++
			}
		}
	case SchemeAlternating:
		for i := 0; i+3 < len(lines); i += 4 {
			total += 2
			if p.Rhymes(ctx, LastWord(lines[i]), LastWord(lines[i+2])) {
				matches++
			}
			if p.Rhymes(ctx, LastWord(lines[i+1]), LastWord(lines[i+3])) {
				matches++
			}
		}
	default:
		return Result{Valid: true}
	}

	return Verdict(matches, total, p.threshold)
}

// Rhymes reports whether b is among the rhymes of a.
func (p *Processor) Rhymes(ctx context.Context, a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	for _, c := range p.rhymesOf(ctx, a) {
		if strings.EqualFold(c, b) {
			return true
		}
	}
	return false
}

// rhymesOf never fails: lookup errors and timeouts mean no candidates.
func (p *Processor) rhymesOf(ctx context.Context, word string) []string {
	if p.lookup == nil || word == "" {
		return nil
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	rhymes, err := p.lookup.Rhymes(ctx, strings.ToLower(word))
	if err != nil {
		logger.Debug("rhyme lookup failed", zap.String("word", word), zap.Error(err))
		return nil
	}
	return rhymes
}

// Verdict builds a Result; it is valid when nothing was expected or the
// share of matches reaches threshold.
func Verdict(matches, total int, threshold float64) Result {
	valid := true
	if total > 0 {
		valid = float64(matches)/float64(total) >= threshold
	}
	return Result{Valid: valid, Matches: matches, Total: total}
}

// Aggregate sums several results and re-applies the threshold.
func Aggregate(threshold float64, results ...Result) Result {
	var matches, total int
	for _, r := range results {
		matches += r.Matches
		total += r.Total
	}
	return Verdict(matches, total, threshold)
}

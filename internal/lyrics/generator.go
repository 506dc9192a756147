package lyrics

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sukalov/lyricbot/internal/logger"
	"github.com/sukalov/lyricbot/internal/rhyme"
)

const (
	verseKeywordCount = 4
	chorusKeywordSlot = 4
)

// Request carries the selections for one generation.
type Request struct {
	Keywords []string
	Style    Style
	Scheme   rhyme.Scheme
	// Theme and DiceRolls are recorded on the lyric as they were chosen.
	Theme     Theme
	DiceRolls []int
	// Seed makes the output reproducible. Zero draws a fresh seed.
	Seed uint64
}

// Generator builds structured lyrics and runs them through the rhyme
// processor.
type Generator struct {
	engine    *Engine
	processor *rhyme.Processor
	now       func() time.Time
}

func NewGenerator(engine *Engine, processor *rhyme.Processor) *Generator {
	return &Generator{
		engine:    engine,
		processor: processor,
		now:       time.Now,
	}
}

// NewRand returns the PCG source used for a seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate creates a verse, chorus and bridge. The first four keywords
// feed the verse and bridge, the fifth (or else the first) the chorus.
// Each section gets the rhyme scheme applied on its own.
func (g *Generator) Generate(ctx context.Context, req Request) (*Lyric, error) {
	seed := req.Seed
	for seed == 0 {
		seed = rand.Uint64()
	}
	r := NewRand(seed)

	verseKeywords := req.Keywords
	if len(verseKeywords) > verseKeywordCount {
		verseKeywords = verseKeywords[:verseKeywordCount]
	}
	var chorusKeywords []string
	switch {
	case len(req.Keywords) > chorusKeywordSlot:
		chorusKeywords = []string{req.Keywords[chorusKeywordSlot]}
	case len(req.Keywords) > 0:
		chorusKeywords = []string{req.Keywords[0]}
	}

	verse, err := g.engine.GenerateSection(r, verseKeywords, req.Style, SectionVerse)
	if err != nil {
		return nil, err
	}
	chorus, err := g.engine.GenerateSection(r, chorusKeywords, req.Style, SectionChorus)
	if err != nil {
		return nil, err
	}
	bridge, err := g.engine.GenerateSection(r, verseKeywords, req.Style, SectionBridge)
	if err != nil {
		return nil, err
	}

	lyric := &Lyric{
		ID:          uuid.NewString(),
		Verse:       g.processor.Apply(ctx, r, verse, req.Scheme),
		Chorus:      g.processor.Apply(ctx, r, chorus, req.Scheme),
		Bridge:      g.processor.Apply(ctx, r, bridge, req.Scheme),
		Keywords:    append([]string(nil), req.Keywords...),
		Theme:       req.Theme,
		DiceRolls:   append([]int(nil), req.DiceRolls...),
		Style:       req.Style,
		Scheme:      req.Scheme,
		Seed:        seed,
		GeneratedAt: g.now(),
	}
	lyric.Validation = g.Validate(ctx, lyric)

	logger.Debug("lyric generated",
		zap.String("lyric_id", lyric.ID),
		zap.String("style", string(req.Style)),
		zap.String("scheme", string(req.Scheme)),
		zap.Uint64("seed", seed),
		zap.Int("keywords", len(req.Keywords)),
		zap.Bool("rhyme_valid", lyric.Validation.Overall.Valid))

	return lyric, nil
}

// Validate checks every section against the lyric's scheme.
func (g *Generator) Validate(ctx context.Context, l *Lyric) Validation {
	v := Validation{
		Verse:  g.processor.Validate(ctx, l.Verse, l.Scheme),
		Chorus: g.processor.Validate(ctx, l.Chorus, l.Scheme),
		Bridge: g.processor.Validate(ctx, l.Bridge, l.Scheme),
	}
	v.Overall = rhyme.Aggregate(g.processor.Threshold(), v.Verse, v.Chorus, v.Bridge)
	return v
}

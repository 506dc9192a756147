package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukalov/lyricbot/internal/app"
	"github.com/sukalov/lyricbot/internal/config"
	"github.com/sukalov/lyricbot/internal/lyrics"
	"github.com/sukalov/lyricbot/internal/state"
)

func TestParseDice(t *testing.T) {
	faces, err := parseDice(" 1, 4,2 ,6")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 2, 6}, faces)

	faces, err = parseDice("")
	require.NoError(t, err)
	assert.Empty(t, faces)

	_, err = parseDice("1,7")
	assert.ErrorIs(t, err, lyrics.ErrOutOfRange)

	_, err = parseDice("1,x")
	assert.Error(t, err)
}

func offlineDeps(t *testing.T) (*app.Deps, config.Config) {
	t.Helper()
	cfg := config.Config{
		FallbackKeyword:   "dream",
		DiceRolls:         4,
		MaxCustomKeywords: 3,
		MaxKeywordLength:  20,
	}
	deps, err := app.Build(context.Background(), cfg, true)
	require.NoError(t, err)
	return deps, cfg
}

func TestRunGenerate(t *testing.T) {
	deps, cfg := offlineDeps(t)

	opts := generateOptions{
		theme:    "nature",
		style:    "folk",
		scheme:   "ABAB",
		dice:     "4,1,6,5",
		keywords: []string{"  Lantern "},
		seed:     11,
		format:   "md",
	}

	var info bytes.Buffer
	out, err := runGenerate(context.Background(), deps, cfg, opts, &info)
	require.NoError(t, err)

	assert.Contains(t, string(out), "- **Theme**: nature")
	assert.Contains(t, string(out), "- **Dice Rolls**: 4, 1, 6, 5")
	assert.Contains(t, string(out), "`ocean`")
	assert.Contains(t, string(out), "`lantern`")
	assert.True(t, strings.HasPrefix(info.String(), "seed 11 · dice 4,1,6,5"), info.String())

	again, err := runGenerate(context.Background(), deps, cfg, opts, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, stripTimestamps(string(out)), stripTimestamps(string(again)))
}

func TestRunGenerateRollsDice(t *testing.T) {
	deps, cfg := offlineDeps(t)

	var info bytes.Buffer
	_, err := runGenerate(context.Background(), deps, cfg, generateOptions{
		theme: "love", style: "pop", scheme: "free", seed: 3, format: "txt",
	}, &info)
	require.NoError(t, err)

	dice := strings.Fields(info.String())[4]
	assert.Len(t, strings.Split(dice, ","), state.DefaultDiceRolls)
}

func TestRunGenerateRejectsBadInput(t *testing.T) {
	deps, cfg := offlineDeps(t)
	base := generateOptions{theme: "love", style: "pop", scheme: "AABB", dice: "1,2,3,4", format: "txt"}

	tests := []struct {
		name   string
		modify func(o *generateOptions)
		target error
	}{
		{"theme", func(o *generateOptions) { o.theme = "space" }, lyrics.ErrUnknownTheme},
		{"style", func(o *generateOptions) { o.style = "jazz" }, lyrics.ErrUnknownStyle},
		{"die face", func(o *generateOptions) { o.dice = "0" }, lyrics.ErrOutOfRange},
		{"keyword", func(o *generateOptions) { o.keywords = []string{strings.Repeat("a", 30)} }, lyrics.ErrKeywordTooLong},
		{"duplicate keyword", func(o *generateOptions) { o.keywords = []string{"moon", "Moon"} }, state.ErrDuplicateKeyword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.modify(&opts)
			_, err := runGenerate(context.Background(), deps, cfg, opts, &bytes.Buffer{})
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestGenerateToOutputFile(t *testing.T) {
	deps, cfg := offlineDeps(t)
	opts := generateOptions{theme: "love", style: "pop", scheme: "AABB", dice: "1,2,3,4", seed: 5, format: "txt"}

	t.Run("written after a successful render", func(t *testing.T) {
		o := opts
		o.output = filepath.Join(t.TempDir(), "lyric.txt")
		var stdout bytes.Buffer
		require.NoError(t, generateTo(context.Background(), deps, cfg, o, &stdout, &bytes.Buffer{}))

		data, err := os.ReadFile(o.output)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Theme: love")
		assert.Empty(t, stdout.String())
	})

	t.Run("no file left behind on bad input", func(t *testing.T) {
		o := opts
		o.style = "jazz"
		o.output = filepath.Join(t.TempDir(), "lyric.txt")
		err := generateTo(context.Background(), deps, cfg, o, &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorIs(t, err, lyrics.ErrUnknownStyle)
		assert.NoFileExists(t, o.output)
	})

	t.Run("stdout without an output file", func(t *testing.T) {
		var stdout bytes.Buffer
		require.NoError(t, generateTo(context.Background(), deps, cfg, opts, &stdout, &bytes.Buffer{}))
		assert.Contains(t, stdout.String(), "=== LYRIC SNIPPET ===")
	})
}

// stripTimestamps drops the generated-at line so two renders compare equal.
func stripTimestamps(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(strings.ToLower(line), "generated") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

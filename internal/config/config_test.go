package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"BOT_TOKEN", "ADMIN_BOT_TOKEN", "ADMIN_USERNAMES", "LOG_CHANNEL_ID",
	"LOG_LEVEL", "LOG_DEVELOPMENT", "DATAMUSE_URL", "DATAMUSE_MAX_RESULTS",
	"RHYMEZONE_URL", "RHYME_TIMEOUT", "REDIS_URL", "REDIS_PASSWORD", "RHYME_CACHE_TTL",
	"LYRIC_RHYME_THRESHOLD", "TURSO_DATABASE_URL", "TURSO_AUTH_TOKEN",
	"LYRIC_BANK_FILE", "LYRIC_FALLBACK_KEYWORD", "LYRIC_DICE_ROLLS",
	"LYRIC_MAX_CUSTOM_KEYWORDS", "LYRIC_MAX_KEYWORD_LENGTH",
	"LYRIC_SESSION_IDLE_TIMEOUT", "LYRIC_TIMEZONE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDevelopment)
	assert.Equal(t, "https://api.datamuse.com", cfg.DatamuseURL)
	assert.Equal(t, 50, cfg.DatamuseMax)
	assert.Equal(t, 3*time.Second, cfg.RhymeTimeout)
	assert.Equal(t, 7*24*time.Hour, cfg.RhymeCacheTTL)
	assert.Equal(t, 0.8, cfg.RhymeThreshold)
	assert.Equal(t, "dream", cfg.FallbackKeyword)
	assert.Equal(t, 4, cfg.DiceRolls)
	assert.Equal(t, 3, cfg.MaxCustomKeywords)
	assert.Equal(t, 20, cfg.MaxKeywordLength)
	assert.Equal(t, 24*time.Hour, cfg.SessionIdleTimeout)
	assert.Empty(t, cfg.RhymeZoneURL)
	assert.Empty(t, cfg.BotToken)
	assert.Empty(t, cfg.AdminUsernames)
	assert.Zero(t, cfg.LogChannelID)
	require.NotNil(t, cfg.Location)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_USERNAMES", " Alice, @bob ,,")
	t.Setenv("LOG_CHANNEL_ID", "-100200300")
	t.Setenv("LOG_DEVELOPMENT", "true")
	t.Setenv("RHYME_TIMEOUT", "750ms")
	t.Setenv("RHYME_CACHE_TTL", "3600")
	t.Setenv("LYRIC_RHYME_THRESHOLD", "0.5")
	t.Setenv("LYRIC_FALLBACK_KEYWORD", "star")
	t.Setenv("LYRIC_DICE_ROLLS", "5")
	t.Setenv("LYRIC_TIMEZONE", "UTC")

	cfg := Load()

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, []string{"alice", "bob"}, cfg.AdminUsernames)
	assert.Equal(t, int64(-100200300), cfg.LogChannelID)
	assert.True(t, cfg.LogDevelopment)
	assert.Equal(t, 750*time.Millisecond, cfg.RhymeTimeout)
	assert.Equal(t, time.Hour, cfg.RhymeCacheTTL)
	assert.Equal(t, 0.5, cfg.RhymeThreshold)
	assert.Equal(t, "star", cfg.FallbackKeyword)
	assert.Equal(t, 5, cfg.DiceRolls)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LYRIC_DICE_ROLLS", "four")
	t.Setenv("LYRIC_RHYME_THRESHOLD", "high")
	t.Setenv("RHYME_TIMEOUT", "soon")
	t.Setenv("LOG_DEVELOPMENT", "maybe")

	cfg := Load()

	assert.Equal(t, 4, cfg.DiceRolls)
	assert.Equal(t, 0.8, cfg.RhymeThreshold)
	assert.Equal(t, 3*time.Second, cfg.RhymeTimeout)
	assert.False(t, cfg.LogDevelopment)
}

func TestRequire(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "token")

	got, err := Require("BOT_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"BOT_TOKEN": "token"}, got)

	_, err = Require("BOT_TOKEN", "ADMIN_BOT_TOKEN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_BOT_TOKEN")
}

func TestIsAdmin(t *testing.T) {
	cfg := Config{AdminUsernames: []string{"alice"}}
	assert.True(t, cfg.IsAdmin("Alice"))
	assert.True(t, cfg.IsAdmin("@alice"))
	assert.False(t, cfg.IsAdmin("bob"))
	assert.False(t, Config{}.IsAdmin("alice"))
}

func TestClock(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC)
	cfg := Config{Location: time.FixedZone("Moscow Time", 3*60*60)}
	assert.Equal(t, "12:30:15", cfg.Clock(ts))
	assert.Equal(t, "09:30:15", Config{}.Clock(ts))
}

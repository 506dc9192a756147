package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration loaded from the environment.
type Config struct {
	// Telegram
	BotToken       string
	AdminBotToken  string
	AdminUsernames []string
	LogChannelID   int64

	// Logging
	LogLevel       string
	LogDevelopment bool

	// Rhyme lookup
	DatamuseURL    string
	DatamuseMax    int
	RhymeZoneURL   string
	RhymeTimeout   time.Duration
	RedisURL       string
	RedisPassword  string
	RhymeCacheTTL  time.Duration
	RhymeThreshold float64

	// Bank sources, checked in order: database, file, embedded
	TursoURL       string
	TursoAuthToken string
	BankFile       string

	// Generation
	FallbackKeyword    string
	DiceRolls          int
	MaxCustomKeywords  int
	MaxKeywordLength   int
	SessionIdleTimeout time.Duration

	Location *time.Location
}

// Load reads .env (when present) and the environment, filling defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		BotToken:       envStr("BOT_TOKEN", ""),
		AdminBotToken:  envStr("ADMIN_BOT_TOKEN", ""),
		AdminUsernames: envList("ADMIN_USERNAMES"),
		LogChannelID:   envInt64("LOG_CHANNEL_ID", 0),

		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogDevelopment: envBool("LOG_DEVELOPMENT", false),

		DatamuseURL:    envStr("DATAMUSE_URL", "https://api.datamuse.com"),
		DatamuseMax:    envInt("DATAMUSE_MAX_RESULTS", 50),
		RhymeZoneURL:   envStr("RHYMEZONE_URL", ""),
		RhymeTimeout:   envDuration("RHYME_TIMEOUT", 3*time.Second),
		RedisURL:       envStr("REDIS_URL", ""),
		RedisPassword:  envStr("REDIS_PASSWORD", ""),
		RhymeCacheTTL:  envDuration("RHYME_CACHE_TTL", 7*24*time.Hour),
		RhymeThreshold: envFloat("LYRIC_RHYME_THRESHOLD", 0.8),

		TursoURL:       envStr("TURSO_DATABASE_URL", ""),
		TursoAuthToken: envStr("TURSO_AUTH_TOKEN", ""),
		BankFile:       envStr("LYRIC_BANK_FILE", ""),

		FallbackKeyword:    envStr("LYRIC_FALLBACK_KEYWORD", "dream"),
		DiceRolls:          envInt("LYRIC_DICE_ROLLS", 4),
		MaxCustomKeywords:  envInt("LYRIC_MAX_CUSTOM_KEYWORDS", 3),
		MaxKeywordLength:   envInt("LYRIC_MAX_KEYWORD_LENGTH", 20),
		SessionIdleTimeout: envDuration("LYRIC_SESSION_IDLE_TIMEOUT", 24*time.Hour),

		Location: envLocation("LYRIC_TIMEZONE", "Europe/Moscow"),
	}
}

// Require returns the values of environment variables that must be set.
func Require(keys ...string) (map[string]string, error) {
	_ = godotenv.Load()

	values := make(map[string]string, len(keys))
	for _, key := range keys {
		value := os.Getenv(key)
		if value == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", key)
		}
		values[key] = value
	}
	return values, nil
}

// IsAdmin reports whether username (with or without @) is listed in
// ADMIN_USERNAMES. An empty list admits nobody.
func (c Config) IsAdmin(username string) bool {
	username = strings.TrimPrefix(strings.ToLower(username), "@")
	for _, admin := range c.AdminUsernames {
		if admin == username {
			return true
		}
	}
	return false
}

// Clock formats t as wall-clock time in the configured location.
func (c Config) Clock(t time.Time) string {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("15:04:05")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go durations ("90s") or plain seconds ("90").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		item = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(item)), "@")
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envLocation(key, fallback string) *time.Location {
	name := envStr(key, fallback)
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	if name == "Europe/Moscow" {
		return time.FixedZone("Moscow Time", 3*60*60)
	}
	return time.UTC
}

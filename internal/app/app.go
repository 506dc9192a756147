package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sukalov/lyricbot/internal/config"
	"github.com/sukalov/lyricbot/internal/db"
	"github.com/sukalov/lyricbot/internal/logger"
	"github.com/sukalov/lyricbot/internal/lyrics"
	"github.com/sukalov/lyricbot/internal/redis"
	"github.com/sukalov/lyricbot/internal/rhyme"
)

// Bank sources reported by LoadBank.
const (
	SourceDatabase = "database"
	SourceFile     = "file"
	SourceEmbedded = "embedded"
)

// Deps is everything the bots and the CLI share.
type Deps struct {
	Bank      *lyrics.Bank
	Lookup    rhyme.Lookup
	Processor *rhyme.Processor
	Generator *lyrics.Generator
	// Cache is nil unless REDIS_URL is set and reachable.
	Cache *redis.RhymeCache
}

// Build loads the bank and assembles the rhyme lookup and generator.
// Offline mode skips every network rhyme source.
func Build(ctx context.Context, cfg config.Config, offline bool) (*Deps, error) {
	bank, source, err := LoadBank(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("keyword bank loaded", zap.String("source", source))

	lookup, cache := BuildLookup(ctx, cfg, offline)
	processor := rhyme.NewProcessor(lookup,
		rhyme.WithTimeout(cfg.RhymeTimeout),
		rhyme.WithThreshold(cfg.RhymeThreshold),
	)
	engine := lyrics.NewEngine(bank, cfg.FallbackKeyword)

	return &Deps{
		Bank:      bank,
		Lookup:    lookup,
		Processor: processor,
		Generator: lyrics.NewGenerator(engine, processor),
		Cache:     cache,
	}, nil
}

func (d *Deps) Close() {
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			logger.Error("failed to close rhyme cache", zap.Error(err))
		}
	}
}

// LoadBank reads the keyword and template bank from the database when
// TURSO_DATABASE_URL is set, else from LYRIC_BANK_FILE, else the embedded
// default.
func LoadBank(ctx context.Context, cfg config.Config) (*lyrics.Bank, string, error) {
	switch {
	case cfg.TursoURL != "":
		database, err := db.Open(ctx, cfg.TursoURL, cfg.TursoAuthToken)
		if err != nil {
			return nil, "", err
		}
		defer database.Close()

		bank, err := db.LoadBank(ctx, database)
		if err != nil {
			return nil, "", err
		}
		return bank, SourceDatabase, nil
	case cfg.BankFile != "":
		bank, err := lyrics.LoadBankFile(cfg.BankFile)
		if err != nil {
			return nil, "", err
		}
		return bank, SourceFile, nil
	}
	return lyrics.DefaultBank(), SourceEmbedded, nil
}

// BuildLookup chains the network sources (cached) in front of the static
// rhyme table. A redis cache that cannot be reached is replaced by an
// in-memory one.
func BuildLookup(ctx context.Context, cfg config.Config, offline bool) (rhyme.Lookup, *redis.RhymeCache) {
	static := rhyme.DefaultStatic()
	if offline {
		return static, nil
	}

	var (
		cache      rhyme.Cache = rhyme.NewMemoryCache()
		redisCache *redis.RhymeCache
	)
	if cfg.RedisURL != "" {
		rc, err := redis.NewRhymeCache(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RhymeCacheTTL)
		if err != nil {
			logger.Error("redis unavailable, caching rhymes in memory", zap.Error(err))
		} else {
			cache = rc
			redisCache = rc
		}
	}

	var network rhyme.Chain
	if cfg.DatamuseURL != "" {
		network = append(network, rhyme.NewDatamuse(cfg.DatamuseURL, cfg.DatamuseMax))
	}
	if cfg.RhymeZoneURL != "" {
		network = append(network, rhyme.NewRhymeZone(cfg.RhymeZoneURL))
	}
	if len(network) == 0 {
		return static, redisCache
	}
	return rhyme.Chain{rhyme.NewCached(network, cache), static}, redisCache
}

// ErrNoBankSource is returned by PushBank when no database is configured.
var ErrNoBankSource = errors.New("TURSO_DATABASE_URL is not set")

// PushBank writes bank to the configured database, creating the tables
// first.
func PushBank(ctx context.Context, cfg config.Config, bank *lyrics.Bank) error {
	if cfg.TursoURL == "" {
		return ErrNoBankSource
	}
	database, err := db.Open(ctx, cfg.TursoURL, cfg.TursoAuthToken)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}
	return db.SaveBank(ctx, database, bank)
}

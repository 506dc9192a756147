package rhyme

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sukalov/lyricbot/internal/logger"
)

// Lookup finds words that rhyme with a word.
type Lookup interface {
	Rhymes(ctx context.Context, word string) ([]string, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, word string) ([]string, error)

func (f LookupFunc) Rhymes(ctx context.Context, word string) ([]string, error) {
	return f(ctx, word)
}

// Chain asks each lookup in turn and returns the first non-empty answer.
// It fails only when every lookup failed.
type Chain []Lookup

func (c Chain) Rhymes(ctx context.Context, word string) ([]string, error) {
	var lastErr error
	succeeded := false
	for _, l := range c {
		rhymes, err := l.Rhymes(ctx, word)
		if err != nil {
			lastErr = err
			continue
		}
		succeeded = true
		if len(rhymes) > 0 {
			return rhymes, nil
		}
	}
	if !succeeded && lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// Cache stores lookup answers per word.
type Cache interface {
	Get(ctx context.Context, word string) ([]string, bool, error)
	Set(ctx context.Context, word string, rhymes []string) error
}

// sharedLookupTimeout bounds a lookup shared by concurrent misses. It is
// detached from any one caller's context.
const sharedLookupTimeout = 15 * time.Second

// Cached memoizes a lookup. Concurrent misses for the same word share one
// call to the underlying lookup; each caller still gives up on its own
// context.
type Cached struct {
	next    Lookup
	cache   Cache
	group   singleflight.Group
	timeout time.Duration
}

func NewCached(next Lookup, cache Cache) *Cached {
	return &Cached{next: next, cache: cache, timeout: sharedLookupTimeout}
}

func (c *Cached) Rhymes(ctx context.Context, word string) ([]string, error) {
	key := strings.ToLower(word)

	rhymes, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.Debug("rhyme cache read failed", zap.String("word", key), zap.Error(err))
	} else if ok {
		return rhymes, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		found, err := c.next.Rhymes(callCtx, key)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(callCtx, key, found); err != nil {
			logger.Debug("rhyme cache write failed", zap.String("word", key), zap.Error(err))
		}
		return found, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]string), nil
	}
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]string)}
}

func (m *MemoryCache) Get(_ context.Context, word string) ([]string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rhymes, ok := m.entries[word]
	return rhymes, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, word string, rhymes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[word] = rhymes
	return nil
}

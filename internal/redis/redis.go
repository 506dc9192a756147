package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redisClient "github.com/go-redis/redis/v8"
)

const keyPrefix = "rhyme:"

// RhymeCache stores rhyme lists in redis as JSON, one key per word.
type RhymeCache struct {
	client *redisClient.Client
	ttl    time.Duration
}

// ParseOptions builds client options from REDIS_URL and REDIS_PASSWORD.
// A bare host:port is dialed over TLS as the default user.
func ParseOptions(url, password string) (*redisClient.Options, error) {
	if !strings.Contains(url, "://") {
		url = fmt.Sprintf("rediss://default:%s@%s", password, url)
	}
	opt, err := redisClient.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if opt.Password == "" {
		opt.Password = password
	}
	return opt, nil
}

// NewRhymeCache connects to redis and checks the connection.
func NewRhymeCache(ctx context.Context, url, password string, ttl time.Duration) (*RhymeCache, error) {
	opt, err := ParseOptions(url, password)
	if err != nil {
		return nil, err
	}
	client := redisClient.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RhymeCache{client: client, ttl: ttl}, nil
}

func Key(word string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(word))
}

// Get retrieves the cached rhymes of a word
func (c *RhymeCache) Get(ctx context.Context, word string) ([]string, bool, error) {
	data, err := c.client.Get(ctx, Key(word)).Bytes()
	if err != nil {
		if err == redisClient.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var rhymes []string
	if err := json.Unmarshal(data, &rhymes); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached rhymes for %q: %w", word, err)
	}
	return rhymes, true, nil
}

// Set stores the rhymes of a word
func (c *RhymeCache) Set(ctx context.Context, word string, rhymes []string) error {
	if rhymes == nil {
		rhymes = []string{}
	}
	data, err := json.Marshal(rhymes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(word), data, c.ttl).Err()
}

// Flush removes every cached rhyme list and returns the number of keys deleted.
func (c *RhymeCache) Flush(ctx context.Context) (int64, error) {
	var deleted int64
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", iter.Val(), err)
		}
		deleted += n
	}
	return deleted, iter.Err()
}

// Size counts cached words.
func (c *RhymeCache) Size(ctx context.Context) (int, error) {
	count := 0
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count, iter.Err()
}

func (c *RhymeCache) Close() error {
	return c.client.Close()
}

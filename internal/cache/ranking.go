package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"foodgram/internal/model"
)

const (
	// RankingKeyPrefix prefixes every cached ranking: ranking:v{version}:{filter}
	RankingKeyPrefix = "ranking:"

	// RankingVersionKey is bumped to invalidate all cached rankings at once
	RankingVersionKey = "ranking:version"

	// DefaultRankingTTL bounds staleness when an invalidation is missed
	DefaultRankingTTL = 5 * time.Minute
)

// RankingCache stores computed user rankings per username filter.
//
// Entries are keyed by a version counter. Callers read the version before
// computing a ranking and store under that version, so a ranking computed
// across an invalidation lands under a key nobody reads anymore.
type RankingCache interface {
	// Version returns the current ranking version (0 if never invalidated)
	Version(ctx context.Context) (int64, error)

	// Get returns the cached ranking for filter at version; found=false on miss
	Get(ctx context.Context, version int64, filter string) (users []model.RankedUser, found bool, err error)

	// Set stores a ranking for filter at version with the cache TTL
	Set(ctx context.Context, version int64, filter string, users []model.RankedUser) error

	// Invalidate bumps the version, orphaning every cached ranking
	Invalidate(ctx context.Context) error
}

// RedisRankingCache implements RankingCache with plain Redis strings.
type RedisRankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRankingCache creates a RankingCache backed by Redis.
func NewRankingCache(client *redis.Client, ttl time.Duration) RankingCache {
	if ttl <= 0 {
		ttl = DefaultRankingTTL
	}
	return &RedisRankingCache{client: client, ttl: ttl}
}

// rankingKey returns the Redis key for a filter at a version.
// Filters are case-insensitive, so the key is lowercased.
func rankingKey(version int64, filter string) string {
	return fmt.Sprintf("%sv%d:%s", RankingKeyPrefix, version, strings.ToLower(filter))
}

func (c *RedisRankingCache) Version(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, RankingVersionKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		log.Printf("[RankingCache] Version FAILED: err=%v", err)
		return 0, fmt.Errorf("get ranking version: %w", err)
	}
	return version, nil
}

func (c *RedisRankingCache) Get(ctx context.Context, version int64, filter string) ([]model.RankedUser, bool, error) {
	key := rankingKey(version, filter)
	startTime := time.Now()

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		log.Printf("[RankingCache] Get MISS: key=%s", key)
		return nil, false, nil
	}
	if err != nil {
		log.Printf("[RankingCache] Get FAILED: key=%s err=%v", key, err)
		return nil, false, fmt.Errorf("get ranking: %w", err)
	}

	var users []model.RankedUser
	if err := json.Unmarshal(data, &users); err != nil {
		log.Printf("[RankingCache] Get decode error: key=%s err=%v", key, err)
		return nil, false, fmt.Errorf("decode ranking: %w", err)
	}

	log.Printf("[RankingCache] Get HIT: key=%s users=%d duration=%v", key, len(users), time.Since(startTime))
	return users, true, nil
}

func (c *RedisRankingCache) Set(ctx context.Context, version int64, filter string, users []model.RankedUser) error {
	key := rankingKey(version, filter)

	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode ranking: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[RankingCache] Set FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("set ranking: %w", err)
	}

	log.Printf("[RankingCache] Set OK: key=%s users=%d ttl=%v", key, len(users), c.ttl)
	return nil
}

func (c *RedisRankingCache) Invalidate(ctx context.Context) error {
	version, err := c.client.Incr(ctx, RankingVersionKey).Result()
	if err != nil {
		log.Printf("[RankingCache] Invalidate FAILED: err=%v", err)
		return fmt.Errorf("bump ranking version: %w", err)
	}

	log.Printf("[RankingCache] Invalidate OK: version=%d", version)
	return nil
}

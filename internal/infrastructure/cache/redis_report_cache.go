// Package cache holds report cache backends living outside the primary database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
)

const keyPrefix = "repairshop:"

// RedisReportCache keeps report cache entries in Redis; the key TTL is the cache TTL
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ domainRepo.ReportCacheRepository = (*RedisReportCache)(nil)

// NewRedisReportCache connects a report cache to a Redis server
func NewRedisReportCache(addr, password string, db int, ttl time.Duration) *RedisReportCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisReportCache{client: client, ttl: ttl}
}

func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

func (c *RedisReportCache) Get(ctx context.Context, key string) (*entity.ReportCache, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry entity.ReportCache
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *RedisReportCache) Upsert(ctx context.Context, entry *entity.ReportCache) error {
	if entry == nil {
		return nil
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+entry.Key, payload, c.ttl).Err()
}

// DeleteExpired is a no-op: Redis evicts keys when their TTL runs out
func (c *RedisReportCache) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

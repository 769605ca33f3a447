package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/perks-tracker/internal/common"
	"github.com/joseph-ayodele/perks-tracker/internal/core/ocr"
)

const keyPrefix = "perks:ocr:"

// RecognitionCache stores recognized screen text by image content hash.
type RecognitionCache interface {
	Get(ctx context.Context, hashHex string) (ocr.Recognition, bool, error)
	Put(ctx context.Context, hashHex string, rec ocr.Recognition) error
}

// RedisCache keeps recognitions in Redis as JSON with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg common.CacheConfig, logger *slog.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("recognition cache connected", "addr", cfg.Addr, "ttl", cfg.TTL)
	return &RedisCache{client: client, ttl: cfg.TTL, logger: logger}, nil
}

func key(hashHex string) string {
	return keyPrefix + hashHex
}

// Get returns (zero, false, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, hashHex string) (ocr.Recognition, bool, error) {
	raw, err := c.client.Get(ctx, key(hashHex)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ocr.Recognition{}, false, nil
	}
	if err != nil {
		return ocr.Recognition{}, false, fmt.Errorf("failed to get cache: %w", err)
	}
	var rec ocr.Recognition
	if err := json.Unmarshal(raw, &rec); err != nil {
		c.logger.Warn("dropping unreadable cache entry", "hash", hashHex, "error", err)
		_ = c.client.Del(ctx, key(hashHex)).Err()
		return ocr.Recognition{}, false, nil
	}
	return rec, true, nil
}

func (c *RedisCache) Put(ctx context.Context, hashHex string, rec ocr.Recognition) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key(hashHex), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (ocr.Recognition, bool, error) {
	return ocr.Recognition{}, false, nil
}

func (NopCache) Put(context.Context, string, ocr.Recognition) error { return nil }

// New returns a RedisCache when an address is configured and NopCache otherwise.
func New(ctx context.Context, cfg common.CacheConfig, logger *slog.Logger) (RecognitionCache, func() error, error) {
	if cfg.Addr == "" {
		return NopCache{}, func() error { return nil }, nil
	}
	c, err := NewRedisCache(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

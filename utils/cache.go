// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"gymstay/config"

	"github.com/go-redis/redis/v8"
)

var (
	// QuoteCacheClient caches computed price quotes per offer and duration.
	QuoteCacheClient *redis.Client
	// DraftCacheClient holds in-progress checkout drafts with a bounded TTL.
	DraftCacheClient *redis.Client
)

// InitQuoteCache initializes the Redis client used for quote caching.
func InitQuoteCache() {
	QuoteCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := QuoteCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Quote Cache): %v", err)
	}
}

// GetQuoteCacheClient returns the quote cache client.
func GetQuoteCacheClient() *redis.Client {
	if QuoteCacheClient == nil {
		InitQuoteCache()
	}
	return QuoteCacheClient
}

// InitDraftCache initializes the Redis client used for checkout drafts.
func InitDraftCache() {
	DraftCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDraftDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := DraftCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Draft Cache): %v", err)
	}
}

// GetDraftCacheClient returns the draft cache client.
func GetDraftCacheClient() *redis.Client {
	if DraftCacheClient == nil {
		InitDraftCache()
	}
	return DraftCacheClient
}

package xcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	cachelib "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/nriit/facultypubs/internal/log"
	redis_store "github.com/nriit/facultypubs/internal/pkg/xcache/redis"
)

// Cache is the gocache interface: Get, Set, Delete, Invalidate, Clear and GetType.
type Cache[T any] = cachelib.CacheInterface[T]

type SetterCache[T any] = cachelib.SetterCacheInterface[T]

// NewMemory creates an in-memory cache backed by patrickmn/go-cache.
func NewMemory[T any](expiration, cleanupInterval time.Duration) SetterCache[T] {
	client := gocache.New(expiration, cleanupInterval)
	return cachelib.New[T](gocache_store.NewGoCache(client, store.WithExpiration(expiration)))
}

// NewRedis creates a redis cache; values are JSON encoded under the key prefix.
func NewRedis[T any](client *redis.Client, cfg RedisConfig) SetterCache[T] {
	expiration := defaultIfZero(cfg.Expiration, 30*time.Minute)
	return cachelib.New[T](redis_store.NewRedisStore[T](client, cfg.KeyPrefix, store.WithExpiration(expiration)))
}

// NewFromConfig builds a typed cache from the given Config.
// An empty mode disables caching and returns a noop cache. The redis client is only
// required for the redis and two-level modes.
func NewFromConfig[T any](cfg Config, client *redis.Client) (Cache[T], error) {
	ctx := context.Background()

	switch cfg.Mode {
	case "":
		log.Info(ctx, "cache disabled")
		return NewNoop[T](), nil
	case ModeMemory:
		return newMemoryFromConfig[T](cfg.Memory), nil
	case ModeRedis:
		if client == nil {
			return nil, errors.New("xcache: redis mode requires a redis client")
		}

		log.Info(ctx, "using redis cache", log.String("prefix", cfg.Redis.KeyPrefix))

		return NewRedis[T](client, cfg.Redis), nil
	case ModeTwoLevel:
		if client == nil {
			return nil, errors.New("xcache: two-level mode requires a redis client")
		}

		log.Info(ctx, "using two-level cache", log.String("prefix", cfg.Redis.KeyPrefix))

		return cachelib.NewChain[T](newMemoryFromConfig[T](cfg.Memory), NewRedis[T](client, cfg.Redis)), nil
	default:
		return nil, fmt.Errorf("xcache: unknown mode %q", cfg.Mode)
	}
}

func newMemoryFromConfig[T any](cfg MemoryConfig) SetterCache[T] {
	return NewMemory[T](
		defaultIfZero(cfg.Expiration, 5*time.Minute),
		defaultIfZero(cfg.CleanupInterval, 10*time.Minute),
	)
}

func defaultIfZero(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}

	return d
}

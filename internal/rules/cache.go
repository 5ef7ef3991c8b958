package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"compass/internal/config"
	"compass/internal/constants"
	"compass/pkg/circuitbreaker"
	"compass/pkg/metrics"
)

// LookupCache caches the derived lookup payloads (countries, company types,
// designations) in Redis. All methods degrade gracefully: a cache failure is
// reported to the caller as a miss, never as a hard error, because the
// database remains the source of truth.
type LookupCache struct {
	client *redis.Client
	cb     *circuitbreaker.Wrapper
	ttl    time.Duration
}

func NewLookupCache(client *redis.Client, cbCfg config.CircuitBreakerConfig, ttlSeconds int) *LookupCache {
	if ttlSeconds <= 0 {
		ttlSeconds = constants.DefaultCacheTTLSeconds
	}

	cache := &LookupCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}

	if cbCfg.Enabled {
		cbConfig := circuitbreaker.DefaultConfig("redis-lookup")
		if cbCfg.MaxRequests > 0 {
			cbConfig.MaxRequests = cbCfg.MaxRequests
		}
		if cbCfg.Interval > 0 {
			cbConfig.Interval = cbCfg.Interval
		}
		if cbCfg.Timeout > 0 {
			cbConfig.Timeout = cbCfg.Timeout
		}
		if cbCfg.FailureRatio > 0 && cbCfg.MinRequests > 0 {
			cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
				if counts.Requests < uint32(cbCfg.MinRequests) {
					return false
				}
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return ratio >= cbCfg.FailureRatio
			}
		}
		cache.cb = circuitbreaker.NewWrapper(cbConfig)
	}

	return cache
}

// Get unmarshals the cached value for key into dest. The boolean reports
// whether a usable cached value was found.
func (c *LookupCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	raw, err := c.execute(ctx, func() (interface{}, error) {
		val, err := c.client.Get(ctx, c.fullKey(key)).Result()
		if err == redis.Nil {
			// Misses are normal operation; they must not trip the breaker.
			return nil, nil
		}
		return val, err
	})
	if err != nil {
		metrics.LookupCacheTotal.WithLabelValues(key, "error").Inc()
		return false
	}
	if raw == nil {
		metrics.LookupCacheTotal.WithLabelValues(key, "miss").Inc()
		return false
	}

	val, ok := raw.(string)
	if !ok {
		metrics.LookupCacheTotal.WithLabelValues(key, "error").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		metrics.LookupCacheTotal.WithLabelValues(key, "error").Inc()
		return false
	}

	metrics.LookupCacheTotal.WithLabelValues(key, "hit").Inc()
	return true
}

// Set stores value under key. Failures are swallowed; the next read falls
// through to the database.
func (c *LookupCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	_, _ = c.execute(ctx, func() (interface{}, error) {
		return nil, c.client.Set(ctx, c.fullKey(key), data, c.ttl).Err()
	})
}

// Invalidate drops every lookup key. Called after any rule mutation so the
// lookups never serve stale projections past a write.
func (c *LookupCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	_, _ = c.execute(ctx, func() (interface{}, error) {
		iter := c.client.Scan(ctx, 0, constants.CacheKeyPrefixLookup+"*", 100).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				return nil, err
			}
		}
		return nil, iter.Err()
	})
}

func (c *LookupCache) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if c.cb == nil {
		return fn()
	}

	result, err := c.cb.ExecuteWithContext(ctx, fn)
	c.cb.RecordRequest(err == nil)

	if err != nil && c.cb.IsOpen() {
		return nil, fmt.Errorf("circuit breaker is open for redis-lookup: %w", err)
	}
	return result, err
}

func (c *LookupCache) fullKey(key string) string {
	return constants.CacheKeyPrefixLookup + key
}

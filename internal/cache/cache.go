// Package cache stores JSON snapshots of computed views in Redis. A Noop
// cache stands in when Redis is not configured.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	DASHBOARD_CACHE_KEY     = "reports:dashboard"
	VISIT_STATS_CACHE_KEY   = "visits:stats"
	PENDING_COUNT_CACHE_KEY = "requests:pending"
	EMPLOYEE_STATS_PREFIX   = "attendance:stats:"
	SETTINGS_CACHE_KEY      = "settings:system"
	CACHE_TTL_SHORT         = 1 * time.Minute
	CACHE_TTL_MEDIUM        = 5 * time.Minute
)

type Cache interface {
	// Get decodes the cached value into dest and reports whether it was
	// found. Backend errors count as a miss.
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

type RedisCache struct {
	redis *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{redis: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	val, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(val), dest); err == nil {
			return true
		}
		log.Printf("Discarding undecodable cache entry %s", key)
		return false
	}
	if err != redis.Nil {
		log.Printf("Redis error on GET %s: %v. Falling back to store.", key, err)
	}
	return false
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("Failed to encode cache value for key %s: %v", key, err)
		return
	}
	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("Failed to set cache for key %s: %v", key, err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Failed to invalidate cache keys %v: %v", keys, err)
	}
}

type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) bool           { return false }
func (Noop) Set(context.Context, string, interface{}, time.Duration) {}
func (Noop) Delete(context.Context, ...string)                       {}

// InvalidateReportCaches drops every derived view touched by a write.
// Visit stats are keyed by day, so the affected days are passed in.
func InvalidateReportCaches(ctx context.Context, c Cache, visitDates []string, employeeIDs ...int64) {
	keys := []string{DASHBOARD_CACHE_KEY, PENDING_COUNT_CACHE_KEY}
	for _, d := range visitDates {
		keys = append(keys, VisitStatsKey(d))
	}
	for _, id := range employeeIDs {
		keys = append(keys, EmployeeStatsKey(id))
	}
	c.Delete(ctx, keys...)
}

func EmployeeStatsKey(id int64) string {
	return EMPLOYEE_STATS_PREFIX + itoa(id)
}

func VisitStatsKey(date string) string {
	return VISIT_STATS_CACHE_KEY + ":" + date
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

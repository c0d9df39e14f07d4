package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CacheKeyPrefix is shared with the response cache middleware.
const CacheKeyPrefix = "cache:"

type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator { return &CacheInvalidator{rdb} }

// Purge drops every cached response under the given namespaces.
// A nil invalidator is a no-op so handlers can run without Redis.
func (ci *CacheInvalidator) Purge(ctx context.Context, namespaces ...string) {
	if ci == nil || ci.rdb == nil {
		return
	}
	for _, ns := range namespaces {
		iter := ci.rdb.Scan(ctx, 0, CacheKeyPrefix+ns+":*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if len(keys) > 0 {
			_ = ci.rdb.Del(ctx, keys...).Err()
		}
	}
}

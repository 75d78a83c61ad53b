package lists

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/list-engine/internal/pkg/logger"
)

// settingsTTL bounds how stale a cached setting may get. Settings change
// rarely and every notification reads the same handful of keys, so a short
// TTL takes the settings table off the hot path without an invalidation
// protocol.
const settingsTTL = 30 * time.Second

const settingsKeyPrefix = "settings:"

// SettingsCache is a Redis read-through cache in front of the settings
// store. Cache failures degrade to direct reads; only the backing store's
// errors propagate.
type SettingsCache struct {
	store *Store
	rdb   *redis.Client
}

// NewSettingsCache wraps a store with a Redis cache.
func NewSettingsCache(store *Store, rdb *redis.Client) *SettingsCache {
	return &SettingsCache{store: store, rdb: rdb}
}

// GetSettings returns the requested settings, serving cached keys and
// fetching the rest from the store.
func (c *SettingsCache) GetSettings(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))

	missing := keys
	cacheKeys := make([]string, len(keys))
	for i, k := range keys {
		cacheKeys[i] = settingsKeyPrefix + k
	}
	vals, err := c.rdb.MGet(ctx, cacheKeys...).Result()
	if err == nil {
		missing = make([]string, 0, len(keys))
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, keys[i])
				continue
			}
			if s != settingsMissingMarker {
				out[keys[i]] = s
			}
		}
	} else {
		logger.Warn("settings cache read failed", "error", err)
	}

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.store.GetSettings(ctx, missing)
	if err != nil {
		return nil, err
	}

	pipe := c.rdb.Pipeline()
	for _, k := range missing {
		if v, ok := fetched[k]; ok {
			out[k] = v
			pipe.Set(ctx, settingsKeyPrefix+k, v, settingsTTL)
		} else {
			pipe.Set(ctx, settingsKeyPrefix+k, settingsMissingMarker, settingsTTL)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("settings cache write failed", "error", err)
	}

	return out, nil
}

// settingsMissingMarker caches the absence of a key so unknown keys do not
// hit the store on every read. The NUL byte cannot appear in a real value.
const settingsMissingMarker = "\x00"

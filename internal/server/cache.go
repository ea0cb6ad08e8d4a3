package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

const (
	// cacheShards is the bigcache shard count. Each shard may hold up to
	// cacheMaxSizeMB/cacheShards megabytes.
	cacheShards = 8

	// cacheMaxSizeMB bounds the memory of the whole cache.
	cacheMaxSizeMB = 256

	// maxCachedReportBytes is the largest report kept in the cache: half
	// of a shard, so one report never evicts a whole shard.
	maxCachedReportBytes = cacheMaxSizeMB << 20 / cacheShards / 2
)

// errReportTooLarge is returned by set for reports above
// maxCachedReportBytes. Such reports are served but not cached.
var errReportTooLarge = errors.New("report too large to cache")

// reportCache holds serialized reports keyed by project and scan.
// A nil *reportCache is a disabled cache.
type reportCache struct {
	cache *bigcache.BigCache
}

// newReportCache returns a cache whose entries live for ttl.
// A zero ttl disables caching and returns nil.
func newReportCache(ttl time.Duration) (*reportCache, error) {
	if ttl <= 0 {
		return nil, nil
	}

	cleanWindow := ttl / 2
	if cleanWindow < time.Second {
		cleanWindow = time.Second
	}

	cacheConfig := bigcache.Config{
		Shards:             cacheShards,
		LifeWindow:         ttl,
		CleanWindow:        cleanWindow,
		MaxEntriesInWindow: 128,
		MaxEntrySize:       64 * 1024,
		Verbose:            false,
		HardMaxCacheSize:   cacheMaxSizeMB,
	}

	c, err := bigcache.New(context.Background(), cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}
	return &reportCache{cache: c}, nil
}

func reportKey(projectID string, scanID int64) string {
	return fmt.Sprintf("report/%s/%d", projectID, scanID)
}

func (rc *reportCache) get(key string) ([]byte, bool) {
	if rc == nil {
		return nil, false
	}
	data, err := rc.cache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (rc *reportCache) set(key string, data []byte) error {
	if rc == nil {
		return nil
	}
	if len(data) > maxCachedReportBytes {
		return fmt.Errorf("%s is %d bytes: %w", key, len(data), errReportTooLarge)
	}
	if err := rc.cache.Set(key, data); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}

func (rc *reportCache) len() int {
	if rc == nil {
		return 0
	}
	return rc.cache.Len()
}

func (rc *reportCache) close() error {
	if rc == nil {
		return nil
	}
	return rc.cache.Close()
}

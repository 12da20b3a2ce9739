package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/andrebq/propdeck/internal/logutil"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"
)

const (
	listingKey = "properties"
)

type (
	// listingCache keeps the (user independent) property catalog in memory,
	// favorites are always read from the database.
	listingCache struct {
		cache *bigcache.BigCache
		group singleflight.Group
	}

	xxhasher struct{}
)

func (xxhasher) Sum64(key string) uint64 {
	return xxhash.Sum64String(key)
}

func newListingCache(ttl time.Duration) (*listingCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 16
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = 4096
	cfg.HardMaxCacheSize = 16
	cfg.Hasher = xxhasher{}
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, err
	}
	return &listingCache{cache: cache}, nil
}

// get returns the cached catalog or calls load, concurrent misses share a
// single call to load. load is not cancelled with ctx since other callers
// may be waiting on it.
func (l *listingCache) get(ctx context.Context, load func(context.Context) ([]Property, error)) ([]Property, error) {
	log := logutil.GetOrDefault(ctx)
	buf, err := l.cache.Get(listingKey)
	if err == nil {
		var out []Property
		if err = json.Unmarshal(buf, &out); err == nil {
			return out, nil
		}
		log.Warn().Err(err).Msg("Discarding corrupted catalog cache entry")
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		log.Warn().Err(err).Msg("Unable to read catalog cache")
	}
	val, err, _ := l.group.Do(listingKey, func() (interface{}, error) {
		props, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		buf, err := json.Marshal(props)
		if err != nil {
			return nil, err
		}
		if err := l.cache.Set(listingKey, buf); err != nil {
			log.Warn().Err(err).Msg("Unable to store catalog in cache")
		}
		return props, nil
	})
	if err != nil {
		return nil, err
	}
	shared := val.([]Property)
	out := make([]Property, len(shared))
	copy(out, shared)
	return out, nil
}

func (l *listingCache) invalidate() {
	l.cache.Delete(listingKey)
}

func (l *listingCache) Close() error {
	return l.cache.Close()
}

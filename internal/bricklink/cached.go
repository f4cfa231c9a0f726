package bricklink

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
	"github.com/brickbot/bricklink-telegram-bot/internal/metrics"
	"github.com/brickbot/bricklink-telegram-bot/internal/storage"
)

const cacheNamespace = "bricklink"

// CachedGateway keeps successful responses of another gateway in a cache.
// Concurrent identical misses share one upstream call. Cache failures are
// logged and the call falls through to the wrapped gateway.
type CachedGateway struct {
	next    catalog.Gateway
	cache   storage.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	group   singleflight.Group
}

var _ catalog.Gateway = (*CachedGateway)(nil)

func NewCachedGateway(next catalog.Gateway, cache storage.Cache, ttl time.Duration, m *metrics.Metrics) *CachedGateway {
	return &CachedGateway{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
	}
}

func requestKey(path string, params map[string]string) string {
	parts := []string{path}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return storage.CacheKey(cacheNamespace, parts...)
}

func (g *CachedGateway) Get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	key := requestKey(path, params)

	cached, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("cache read failed")
	} else if ok {
		g.metrics.RecordCacheHit(cacheNamespace)
		return json.RawMessage(cached), nil
	}
	g.metrics.RecordCacheMiss(cacheNamespace)

	v, err, shared := g.group.Do(key, func() (any, error) {
		data, err := g.next.Get(ctx, path, params)
		if err != nil {
			return nil, err
		}
		if err := g.cache.Set(ctx, key, data, g.ttl); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("cache write failed")
		}
		return data, nil
	})
	if shared {
		log.Debug().Str("path", path).Msg("shared in-flight catalog request")
	}
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
	"github.com/Humphrey-He/rcache/pkg/loader"
)

// Loading adds read-through loading on top of a Cache.
// Concurrent misses for the same key share a single loader call.
//
// Loading 在Cache之上增加读穿透加载。同一键的并发未命中共享一次加载器调用。
type Loading struct {
	Cache

	loader     loader.Loader[interface{}]
	defaultTTL time.Duration
	group      singleflight.Group
	logger     zerolog.Logger
}

// valueGetter is implemented by caches whose Get renders the stored value,
// such as Compressed; GetOrLoad reads through GetValue instead.
type valueGetter interface {
	GetValue(ctx context.Context, key string) (interface{}, bool, error)
}

// NewLoading wraps c with l. Loaded values that come back without a TTL
// are stored with defaultTTL.
//
// NewLoading 用l包装c。加载时未返回TTL的值以defaultTTL存储。
func NewLoading(c Cache, l loader.Loader[interface{}], defaultTTL time.Duration) *Loading {
	return &Loading{
		Cache:      c,
		loader:     l,
		defaultTTL: defaultTTL,
		logger:     log.Logger.With().Str("component", "loading").Logger(),
	}
}

// GetOrLoad returns the cached value of key, loading and caching it on a miss.
// A failure to write the loaded value back is logged, and the value is still returned.
//
// GetOrLoad 返回key的缓存值，未命中时加载并缓存。回写加载值失败时记录日志，但仍返回该值。
//
// Returns:
//   - interface{}: The cached or loaded value
//   - error: A backend error from the lookup, or ErrLoaderFailed
func (l *Loading) GetOrLoad(ctx context.Context, key string) (interface{}, error) {
	get := l.Get
	if vg, ok := l.Cache.(valueGetter); ok {
		get = vg.GetValue
	}
	value, found, err := get(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		return value, nil
	}

	value, err, shared := l.group.Do(key, func() (interface{}, error) {
		value, ttl, err := l.loader.Load(ctx, key)
		if err != nil {
			return nil, cacheerrors.NewCacheError("load", key, fmt.Errorf("%w: %w", cacheerrors.ErrLoaderFailed, err))
		}
		if ttl == 0 {
			ttl = l.defaultTTL
		}
		if _, err := l.Set(ctx, key, value, ttl); err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("caching loaded value failed")
		}
		return value, nil
	})
	if shared {
		l.logger.Debug().Str("key", key).Msg("shared in-flight load")
	}
	return value, err
}

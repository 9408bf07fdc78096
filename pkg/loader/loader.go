// Package loader provides interfaces for loading data into the cache
// when a cache miss occurs, supporting various back-source strategies.
//
// Package loader 提供接口用于在缓存未命中时将数据加载到缓存中，
// 支持各种回源策略。
package loader

import (
	"context"
	"errors"
	"time"
)

// Loader is the interface that wraps the basic Load method.
//
// Load retrieves data for the given key from a data source.
// It returns the loaded value, a TTL for the cache entry, and any error encountered.
// If the returned TTL is zero, the cache's default TTL will be used.
//
// Loader 是包装基本Load方法的接口。
//
// Load 从数据源检索给定键的数据。
// 它返回加载的值、缓存条目的TTL以及遇到的任何错误。
// 如果返回的TTL为零，将使用缓存的默认TTL。
type Loader[T any] interface {
	Load(ctx context.Context, key string) (value T, ttl time.Duration, err error)
}

// LoaderFunc is a function type that implements the Loader interface.
//
// LoaderFunc 是实现Loader接口的函数类型。
type LoaderFunc[T any] func(ctx context.Context, key string) (T, time.Duration, error)

// Load calls the function itself.
//
// Load 调用函数本身。
func (f LoaderFunc[T]) Load(ctx context.Context, key string) (T, time.Duration, error) {
	return f(ctx, key)
}

// NewFunctionLoader creates a new Loader from a function that retrieves data.
// The function should return the value and an error. The TTL will be set to the default.
//
// NewFunctionLoader 从检索数据的函数创建一个新的Loader。
// 该函数应返回值和错误。TTL将设置为默认值。
func NewFunctionLoader[T any](fn func(ctx context.Context, key string) (T, error)) Loader[T] {
	return LoaderFunc[T](func(ctx context.Context, key string) (T, time.Duration, error) {
		value, err := fn(ctx, key)
		return value, 0, err
	})
}

// NewFunctionLoaderWithTTL creates a new Loader from a function that retrieves data and specifies TTL.
//
// NewFunctionLoaderWithTTL 从检索数据并指定TTL的函数创建一个新的Loader。
func NewFunctionLoaderWithTTL[T any](fn func(ctx context.Context, key string) (T, time.Duration, error)) Loader[T] {
	return LoaderFunc[T](fn)
}

// FallbackLoader provides a fallback mechanism when the primary loader fails.
//
// FallbackLoader 提供当主加载器失败时的后备机制。
type FallbackLoader[T any] struct {
	Primary   Loader[T]
	Secondary Loader[T]
}

// Load attempts to load data using the primary loader.
// If the primary loader fails, it falls back to the secondary loader.
// When both fail, the returned error carries both causes.
//
// Load 尝试使用主加载器加载数据。
// 如果主加载器失败，它会回退到次要加载器。两者都失败时，返回的错误包含两个原因。
func (f *FallbackLoader[T]) Load(ctx context.Context, key string) (T, time.Duration, error) {
	value, ttl, err := f.Primary.Load(ctx, key)
	if err == nil || f.Secondary == nil {
		return value, ttl, err
	}
	value, ttl, secondaryErr := f.Secondary.Load(ctx, key)
	if secondaryErr != nil {
		return value, ttl, errors.Join(err, secondaryErr)
	}
	return value, ttl, nil
}

// NewFallbackLoader creates a new FallbackLoader with the given primary and secondary loaders.
//
// NewFallbackLoader 使用给定的主加载器和次要加载器创建一个新的FallbackLoader。
func NewFallbackLoader[T any](primary, secondary Loader[T]) *FallbackLoader[T] {
	return &FallbackLoader[T]{
		Primary:   primary,
		Secondary: secondary,
	}
}

// WithTimeout bounds every call of l by timeout.
//
// WithTimeout 用timeout限制l的每次调用。
func WithTimeout[T any](l Loader[T], timeout time.Duration) Loader[T] {
	return LoaderFunc[T](func(ctx context.Context, key string) (T, time.Duration, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return l.Load(ctx, key)
	})
}

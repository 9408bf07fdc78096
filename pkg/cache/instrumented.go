package cache

import (
	"context"
	"time"

	"github.com/Humphrey-He/rcache/internal/metrics"
	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
)

// Instrumented decorates a Cache with operation metrics.
//
// Instrumented 为Cache添加操作指标。
type Instrumented struct {
	next      Cache
	name      string
	collector *metrics.Collector
}

var _ Cache = (*Instrumented)(nil)

// NewInstrumented wraps next, recording its operations under name.
//
// NewInstrumented 包装next，以name记录其操作。
func NewInstrumented(next Cache, name string, collector *metrics.Collector) *Instrumented {
	return &Instrumented{next: next, name: name, collector: collector}
}

// Unwrap returns the decorated cache.
//
// Unwrap 返回被装饰的缓存。
func (i *Instrumented) Unwrap() Cache {
	return i.next
}

func (i *Instrumented) Get(ctx context.Context, key string) (interface{}, bool, error) {
	return i.lookup(ctx, key, i.next.Get)
}

// GetValue is Get without stringification when the decorated cache offers
// it (see Compressed.GetValue); otherwise it behaves like Get.
//
// GetValue 在被装饰缓存支持时返回未字符串化的值（参见Compressed.GetValue），否则与Get相同。
func (i *Instrumented) GetValue(ctx context.Context, key string) (interface{}, bool, error) {
	if vg, ok := i.next.(valueGetter); ok {
		return i.lookup(ctx, key, vg.GetValue)
	}
	return i.Get(ctx, key)
}

func (i *Instrumented) lookup(ctx context.Context, key string, get func(context.Context, string) (interface{}, bool, error)) (interface{}, bool, error) {
	t := metrics.StartTimer()
	value, found, err := get(ctx, key)
	result := metrics.ResultMiss
	switch {
	case err != nil:
		result = metrics.ResultError
	case found:
		result = metrics.ResultHit
	}
	i.collector.Observe(i.name, "get", result, t.Elapsed())
	return value, found, err
}

func (i *Instrumented) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) (Cache, error) {
	t := metrics.StartTimer()
	_, err := i.next.Set(ctx, key, value, ttl)
	i.observe("set", err, t)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (i *Instrumented) Remove(ctx context.Context, key string) (Cache, error) {
	t := metrics.StartTimer()
	_, err := i.next.Remove(ctx, key)
	i.observe("remove", err, t)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (i *Instrumented) Clear(ctx context.Context) (Cache, error) {
	t := metrics.StartTimer()
	_, err := i.next.Clear(ctx)
	i.observe("clear", err, t)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// Purge deletes the keys of the decorated cache's template. It fails with
// ErrNotSupported when the decorated cache cannot purge.
//
// Purge 删除被装饰缓存模板下的键。被装饰缓存不支持清除时返回ErrNotSupported。
func (i *Instrumented) Purge(ctx context.Context) (int, error) {
	p, ok := i.next.(interface {
		Purge(ctx context.Context) (int, error)
	})
	if !ok {
		return 0, cacheerrors.ErrNotSupported
	}
	t := metrics.StartTimer()
	n, err := p.Purge(ctx)
	i.observe("purge", err, t)
	return n, err
}

func (i *Instrumented) Close() error {
	return i.next.Close()
}

func (i *Instrumented) observe(op string, err error, t metrics.Timer) {
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	i.collector.Observe(i.name, op, result, t.Elapsed())
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humphrey-He/rcache/internal/metrics"
	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
)

func TestInstrumented(t *testing.T) {
	ctx := context.Background()
	s, mem := newMemoryStore(t)
	collector, err := metrics.NewCollector("test", metrics.Detailed, prometheus.NewRegistry())
	require.NoError(t, err)
	c := NewInstrumented(s, "users", collector)
	assert.Same(t, s, c.Unwrap())

	self, err := c.Set(ctx, "a", "1", 0)
	require.NoError(t, err)
	assert.Same(t, c, self)

	_, found, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	_, found, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, found)

	mem.FailWith(errors.New("down"))
	_, _, err = c.Get(ctx, "a")
	assert.Error(t, err)
	_, err = c.Remove(ctx, "a")
	assert.Error(t, err)

	snap := collector.Snapshot("users")
	assert.Equal(t, uint64(1), snap.Hits)
	assert.Equal(t, uint64(1), snap.Misses)
	assert.Equal(t, uint64(2), snap.Errors)
	assert.InDelta(t, 0.5, snap.HitRatio, 1e-9)
}

func TestInstrumentedGetValueAndPurge(t *testing.T) {
	ctx := context.Background()
	c, _ := newMemoryCompressed(t)
	collector, err := metrics.NewCollector("test", metrics.Basic, prometheus.NewRegistry())
	require.NoError(t, err)
	ic := NewInstrumented(c, "docs", collector)

	_, err = ic.Set(ctx, "a", []byte("raw"), 0)
	require.NoError(t, err)
	v, found, err := ic.GetValue(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("raw"), v)

	n, err := ic.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(1), collector.Snapshot("docs").Hits)

	_, err = NewInstrumented(ic, "outer", collector).Purge(ctx)
	require.NoError(t, err)
	_, err = NewInstrumented(nopCache{}, "nop", collector).Purge(ctx)
	assert.ErrorIs(t, err, cacheerrors.ErrNotSupported)
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (interface{}, bool, error) { return nil, false, nil }
func (c nopCache) Set(context.Context, string, interface{}, time.Duration) (Cache, error) {
	return c, nil
}
func (c nopCache) Remove(context.Context, string) (Cache, error) { return c, nil }
func (c nopCache) Clear(context.Context) (Cache, error) { return c, nil }
func (nopCache) Close() error { return nil }

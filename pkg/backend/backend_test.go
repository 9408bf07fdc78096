package backend

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
)

// exerciseClient runs the behaviour every Client must share. advance moves
// the store's clock forward so expiry can be observed without sleeping.
func exerciseClient(t *testing.T, c Client, advance func(time.Duration)) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, found, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	v, found, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("1"), v)

	ttl, found, err := c.TTL(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, ttl)

	_, found, err = c.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetEX(ctx, "b", 10*time.Second, []byte("2")))
	ttl, found, err = c.TTL(ctx, "b")
	require.NoError(t, err)
	assert.True(t, found)
	assert.InDelta(t, float64(10*time.Second), float64(ttl), float64(time.Second))

	advance(11 * time.Second)
	_, found, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, found, "expired key must read as missing")

	require.NoError(t, c.Del(ctx, "a"))
	require.NoError(t, c.Del(ctx, "a"), "deleting a missing key is not an error")
	_, found, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	for _, k := range []string{"user:1", "user:2", "other:1"} {
		require.NoError(t, c.Set(ctx, k, []byte(k)))
	}
	assert.Equal(t, []string{"user:1", "user:2"}, scanAll(t, c, "user:*"))

	require.NoError(t, c.FlushAll(ctx))
	assert.Empty(t, scanAll(t, c, "*"))
	_, found, err = c.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, found)
}

func scanAll(t *testing.T, c Client, match string) []string {
	t.Helper()
	var (
		all    []string
		cursor uint64
	)
	for {
		keys, next, err := c.Scan(context.Background(), cursor, match, 1)
		require.NoError(t, err)
		all = append(all, keys...)
		if next == 0 {
			break
		}
		cursor = next
	}
	sort.Strings(all)
	return all
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"", DriverGoRedis, DriverRedigo, DriverBolt, DriverMemory} {
		d, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, d)
	}

	_, err := Lookup("memcached")
	assert.True(t, errors.Is(err, cacheerrors.ErrUnknownDriver))
}

func TestRegister(t *testing.T) {
	called := false
	Register("fake", func(Options) (Client, error) {
		called = true
		return NewMemory(), nil
	})
	assert.Contains(t, Drivers(), "fake")

	d, err := Lookup("fake")
	require.NoError(t, err)
	_, err = d(DefaultOptions())
	require.NoError(t, err)
	assert.True(t, called)
}

func TestMemoryClient(t *testing.T) {
	m := NewMemory()
	exerciseClient(t, m, m.Advance)
}

func TestMemoryFailureInjection(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("connection reset by peer")
	m.FailWith(boom)

	_, _, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.Set(ctx, "k", nil), boom)
	assert.ErrorIs(t, m.Del(ctx, "k"), boom)
	assert.ErrorIs(t, m.FlushAll(ctx), boom)

	m.FailWith(nil)
	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Ping(ctx), cacheerrors.ErrClosed)
}

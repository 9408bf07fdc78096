package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humphrey-He/rcache/pkg/backend"
	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
)

func newMemoryStore(t *testing.T, opts ...Option) (*Store, *backend.Memory) {
	t.Helper()
	mem := backend.NewMemory()
	s, err := NewStore(append([]Option{WithClient(mem)}, opts...)...)
	require.NoError(t, err)
	return s, mem
}

func newRedisStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewStore(append([]Option{WithAddr(mr.Addr())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)

	for _, v := range [][]byte{[]byte("hello"), {0, 1, 2, 0xff}, {}} {
		_, err := s.Set(ctx, "k", v, 0)
		require.NoError(t, err)
		got, found, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, v, got)
	}

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreScalarValues(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)

	tests := []struct {
		value interface{}
		want  string
	}{
		{"text", "text"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint8(9), "9"},
		{1.5, "1.5"},
		{true, "1"},
		{false, "0"},
		{time.Unix(0, 0).UTC(), ""},
	}
	for _, tt := range tests {
		_, err := s.Set(ctx, "k", tt.value, 0)
		require.NoError(t, err, "%T", tt.value)
		got, _, err := s.Get(ctx, "k")
		require.NoError(t, err)
		if tt.want != "" {
			assert.Equal(t, tt.want, string(got.([]byte)), "%T", tt.value)
		}
	}

	_, err := s.Set(ctx, "k", map[string]int{"x": 1}, 0)
	assert.True(t, cacheerrors.IsCacheError(err))
	assert.ErrorIs(t, err, cacheerrors.ErrInvalidValue)
}

func TestStoreTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, WithKeyTemplate("app:%s"))

	_, err := s.Set(ctx, "k", []byte("v"), 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, mr.TTL("app:k"))

	ttl, found, err := s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 10*time.Second, ttl)

	_, err = s.Set(ctx, "forever", []byte("v"), 0)
	require.NoError(t, err)
	assert.Zero(t, mr.TTL("app:forever"))

	mr.FastForward(11 * time.Second)
	_, found, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.Set(ctx, "k", []byte("v"), -time.Second)
	assert.True(t, cacheerrors.IsInvalidTTL(err))
	assert.True(t, cacheerrors.IsCacheError(err))
}

func TestStoreRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)

	_, err := s.Set(ctx, "k", "v", 0)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		c, err := s.Remove(ctx, "k")
		require.NoError(t, err)
		assert.Same(t, s, c)
		_, found, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
	}
}

func TestStoreClearIsGlobal(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, WithKeyTemplate("mine:%s"))
	require.NoError(t, mr.Set("theirs:1", "x"))

	for _, k := range []string{"a", "b", "c"} {
		_, err := s.Set(ctx, k, k, 0)
		require.NoError(t, err)
	}
	_, err := s.Clear(ctx)
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		_, found, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, found, k)
	}
	assert.False(t, mr.Exists("theirs:1"), "clear flushes keys outside the template too")
}

func TestStorePurgeIsScoped(t *testing.T) {
	ctx := context.Background()
	s, mem := newMemoryStore(t, WithKeyTemplate("mine:%s"))
	require.NoError(t, mem.Set(ctx, "theirs:1", []byte("x")))

	for i := 0; i < 250; i++ {
		_, err := s.Set(ctx, fmt.Sprintf("k%d", i), "v", 0)
		require.NoError(t, err)
	}
	removed, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250, removed)
	assert.Equal(t, 1, mem.Len())

	_, found, err := mem.Get(ctx, "theirs:1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStoreChaining(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t)

	c, err := s.Set(ctx, "a", "1", 0)
	require.NoError(t, err)
	c, err = c.Set(ctx, "b", "2", 0)
	require.NoError(t, err)
	c, err = c.Remove(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, s, c)

	_, found, _ := s.Get(ctx, "b")
	assert.True(t, found)
}

func TestStoreBackendFailure(t *testing.T) {
	ctx := context.Background()
	s, mem := newMemoryStore(t)
	boom := &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}
	mem.FailWith(boom)

	_, _, err := s.Get(ctx, "k")
	assertCacheError(t, err, "get", boom)
	_, err = s.Set(ctx, "k", "v", 0)
	assertCacheError(t, err, "set", boom)
	_, err = s.Set(ctx, "k", "v", time.Minute)
	assertCacheError(t, err, "set", boom)
	_, err = s.Remove(ctx, "k")
	assertCacheError(t, err, "remove", boom)
	_, err = s.Clear(ctx)
	assertCacheError(t, err, "clear", boom)
	_, err = s.Purge(ctx)
	assertCacheError(t, err, "purge", boom)
	_, _, err = s.TTL(ctx, "k")
	assertCacheError(t, err, "ttl", boom)
	assertCacheError(t, s.Ping(ctx), "ping", boom)
}

func TestStoreServerDown(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s, err := NewStore(WithBackendOptions(backend.Options{Addr: mr.Addr(), DialTimeout: 100 * time.Millisecond}))
	require.NoError(t, err)
	defer s.Close()
	mr.Close()

	_, _, err = s.Get(ctx, "k")
	assert.True(t, cacheerrors.IsCacheError(err))
	_, err = s.Set(ctx, "k", "v", 0)
	assert.True(t, cacheerrors.IsCacheError(err))
	_, err = s.Remove(ctx, "k")
	assert.True(t, cacheerrors.IsCacheError(err))
}

func assertCacheError(t *testing.T, err error, op string, cause error) {
	t.Helper()
	var ce *cacheerrors.CacheError
	require.True(t, errors.As(err, &ce), "want *CacheError, got %T", err)
	assert.Equal(t, op, ce.Op)
	assert.ErrorIs(t, err, cause)
}

func TestStoreInjectedClientStaysOpen(t *testing.T) {
	s, mem := newMemoryStore(t)
	require.NoError(t, s.Close())
	assert.NoError(t, mem.Ping(context.Background()))
}

func TestStoreDialers(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	for _, driver := range []string{backend.DriverGoRedis, backend.DriverRedigo} {
		s, err := NewStore(WithDriver(driver), WithAddr(mr.Addr()), WithKeyTemplate(driver+":%s"))
		require.NoError(t, err, driver)
		_, err = s.Set(ctx, "k", "v", time.Minute)
		require.NoError(t, err, driver)
		got, err := mr.Get(driver + ":k")
		require.NoError(t, err)
		assert.Equal(t, "v", got)
		require.NoError(t, s.Close())
	}

	called := 0
	s, err := NewStore(WithDialer(func(backend.Options) (backend.Client, error) {
		called++
		return backend.NewMemory(), nil
	}))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 1, called)
}

func TestNewStoreInvalid(t *testing.T) {
	_, err := NewStore(WithKeyTemplate("no-slot"))
	assert.ErrorIs(t, err, cacheerrors.ErrInvalidKeyTemplate)

	_, err = NewStore(WithDriver("memcached"))
	assert.ErrorIs(t, err, cacheerrors.ErrUnknownDriver)

	_, err = NewStore(WithName(""))
	assert.Error(t, err)

	dialErr := errors.New("no route to host")
	_, err = NewStore(WithDialer(func(backend.Options) (backend.Client, error) { return nil, dialErr }))
	assert.ErrorIs(t, err, dialErr)
	assert.True(t, cacheerrors.IsCacheError(err))
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humphrey-He/rcache/pkg/backend"
	"github.com/Humphrey-He/rcache/pkg/codec"
	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
)

func newMemoryCompressed(t *testing.T, opts ...Option) (*Compressed, *backend.Memory) {
	t.Helper()
	mem := backend.NewMemory()
	c, err := NewCompressed(append([]Option{WithClient(mem)}, opts...)...)
	require.NoError(t, err)
	return c, mem
}

// Get hands back the fmt.Sprint rendering of the stored value, not the value.
func TestCompressedGetReturnsStringRendering(t *testing.T) {
	ctx := context.Background()
	c, _ := newMemoryCompressed(t)

	_, err := c.Set(ctx, "a", map[string]interface{}{"x": 1}, 0)
	require.NoError(t, err)

	got, found, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "map[x:1]", got)

	tests := []struct {
		value interface{}
		want  string
	}{
		{"plain", "plain"},
		{42, "42"},
		{[]interface{}{"a", 1, true}, "[a 1 true]"},
		{map[string]interface{}{"b": []interface{}{1, 2}, "a": "z"}, "map[a:z b:[1 2]]"},
	}
	for _, tt := range tests {
		_, err := c.Set(ctx, "k", tt.value, 0)
		require.NoError(t, err)
		got, found, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, tt.want, got)
	}
}

func TestCompressedGetValue(t *testing.T) {
	ctx := context.Background()
	c, _ := newMemoryCompressed(t)

	_, err := c.Set(ctx, "a", map[string]interface{}{"name": "widget", "tags": []string{"x"}}, 0)
	require.NoError(t, err)

	v, found, err := c.GetValue(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	m, ok := v.(map[string]interface{})
	require.True(t, ok, "got %T", v)
	assert.Equal(t, "widget", m["name"])
	assert.Equal(t, []interface{}{"x"}, m["tags"])
}

func TestCompressedStoresCompressedBytes(t *testing.T) {
	ctx := context.Background()
	c, mem := newMemoryCompressed(t, WithKeyTemplate("z:%s"))

	value := map[string]interface{}{"payload": string(make([]byte, 4096))}
	_, err := c.Set(ctx, "big", value, 0)
	require.NoError(t, err)

	raw, found, err := mem.Get(ctx, "z:big")
	require.NoError(t, err)
	require.True(t, found)
	assert.Less(t, len(raw), 512)

	plain, err := codec.DefaultCompressor().Decompress(raw)
	require.NoError(t, err)
	var decoded interface{}
	require.NoError(t, codec.DefaultCodec().Unmarshal(plain, &decoded))
	assert.Equal(t, value, decoded)
}

func TestCompressedFailSoftRead(t *testing.T) {
	ctx := context.Background()
	c, mem := newMemoryCompressed(t)

	v, found, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)

	require.NoError(t, mem.Set(ctx, "corrupt", []byte("definitely not zlib")))
	v, found, err = c.Get(ctx, "corrupt")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)

	// valid zlib, invalid payload for the codec
	blob, err := codec.DefaultCompressor().Compress([]byte{0xff, 0xff, 0xff})
	require.NoError(t, err)
	require.NoError(t, mem.Set(ctx, "undecodable", blob))
	_, found, err = c.GetValue(ctx, "undecodable")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCompressedBackendFailure(t *testing.T) {
	ctx := context.Background()
	c, mem := newMemoryCompressed(t)
	boom := errors.New("connection refused")
	mem.FailWith(boom)

	_, _, err := c.Get(ctx, "k")
	assertCacheError(t, err, "get", boom)
	_, err = c.Set(ctx, "k", "v", 0)
	assertCacheError(t, err, "set", boom)
	_, err = c.Remove(ctx, "k")
	assertCacheError(t, err, "remove", boom)
	_, err = c.Clear(ctx)
	assertCacheError(t, err, "clear", boom)
}

func TestCompressedSerializationFailure(t *testing.T) {
	ctx := context.Background()
	c, mem := newMemoryCompressed(t)

	_, err := c.Set(ctx, "k", make(chan int), 0)
	assert.True(t, cacheerrors.IsCacheError(err))
	assert.True(t, cacheerrors.IsSerializationError(err))
	assert.Zero(t, mem.Len())
}

func TestCompressedRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	c, mem := newMemoryCompressed(t)

	self, err := c.Set(ctx, "a", 1, 0)
	require.NoError(t, err)
	assert.Same(t, c, self)
	_, err = c.Set(ctx, "b", 2, 0)
	require.NoError(t, err)

	self, err = c.Remove(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, c, self)
	_, found, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	self, err = c.Clear(ctx)
	require.NoError(t, err)
	assert.Same(t, c, self)
	assert.Zero(t, mem.Len())
}

func TestCompressedCodecsAndCompressors(t *testing.T) {
	ctx := context.Background()
	zstd, err := codec.NewZstdCompressor()
	require.NoError(t, err)

	compressors := []codec.Compressor{
		codec.DefaultCompressor(),
		codec.NewGzipCompressor(9),
		zstd,
		codec.S2Compressor{},
		codec.SnappyCompressor{},
		codec.LZ4Compressor{},
		codec.NoopCompressor{},
	}
	codecs := []codec.Codec{
		codec.NewCBORCodec(),
		codec.NewJSONCodec(false),
		codec.NewMsgpackCodec(),
		codec.NewGobCodec(),
	}
	for _, cp := range compressors {
		for _, cd := range codecs {
			c, _ := newMemoryCompressed(t, WithCompressor(cp), WithCodec(cd))
			_, err := c.Set(ctx, "k", map[string]interface{}{"x": "y"}, 0)
			require.NoError(t, err, "%s/%s", cd.Name(), cp.Name())
			got, found, err := c.Get(ctx, "k")
			require.NoError(t, err)
			require.True(t, found, "%s/%s", cd.Name(), cp.Name())
			assert.Equal(t, "map[x:y]", got, "%s/%s", cd.Name(), cp.Name())
		}
	}
}

func TestCompressedOverRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := NewCompressed(WithAddr(mr.Addr()), WithKeyTemplate("blob:%s"))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Set(ctx, "a", map[string]interface{}{"x": 1}, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL("blob:a"))

	got, found, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "map[x:1]", got)

	removed, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoError(t, c.Ping(ctx))
}

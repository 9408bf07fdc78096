package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Humphrey-He/rcache/configs"
)

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := configs.DefaultConfig()
	cfg.Backend.Addr = mr.Addr()
	cfg.Cache.KeyTemplate = "cfg:%s"
	cfg.Compression.Algorithm = "lz4"

	c, err := NewFromConfig(cfg)
	require.NoError(t, err)
	defer c.Close()
	require.IsType(t, &Compressed{}, c)

	_, err = c.Set(ctx, "a", []interface{}{"x"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("cfg:a"))
	got, _, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "[x]", got)

	cfg.Compression.Enable = false
	raw, err := NewFromConfig(cfg)
	require.NoError(t, err)
	defer raw.Close()
	require.IsType(t, &Store{}, raw)
}

func TestNewFromConfigWithMetrics(t *testing.T) {
	cfg := configs.DefaultConfig()
	cfg.Backend.Driver = "memory"
	cfg.Metrics.Enable = true
	cfg.Metrics.Namespace = "rcache_factory_test"

	c, err := NewFromConfig(cfg)
	require.NoError(t, err)
	defer c.Close()
	require.IsType(t, &Instrumented{}, c)
	assert.IsType(t, &Compressed{}, c.(*Instrumented).Unwrap())
}

func TestNewFromFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := configs.DefaultConfig()
	cfg.Backend.Driver = "bolt"
	cfg.Backend.Path = filepath.Join(dir, "cache.db")
	cfg.Compression.Codec = "msgpack"
	cfg.Compression.Algorithm = "zstd"
	path := filepath.Join(dir, "rcache.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	c, err := NewFromFile(path)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Set(ctx, "k", map[string]interface{}{"n": "v"}, 0)
	require.NoError(t, err)
	got, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "map[n:v]", got)

	_, err = NewFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestNewFromConfigInvalid(t *testing.T) {
	cfg := configs.DefaultConfig()
	cfg.Backend.Driver = "memcached"
	_, err := NewFromConfig(cfg)
	assert.Error(t, err)
}

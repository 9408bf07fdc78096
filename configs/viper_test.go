package configs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
cache:
  name: "test-cache"
  key_template: "app:%s"
  default_ttl: 60s
backend:
  driver: "redigo"
  addr: "redis.internal:6380"
  db: 2
compression:
  algorithm: "lz4"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestViperConfigFromFile(t *testing.T) {
	vc, err := NewViperConfig(writeConfig(t, testYAML))
	require.NoError(t, err)

	config := vc.Get()
	assert.Equal(t, "test-cache", config.Cache.Name)
	assert.Equal(t, "app:%s", config.Cache.KeyTemplate)
	assert.Equal(t, 60*time.Second, config.Cache.DefaultTTL)
	assert.Equal(t, "redigo", config.Backend.Driver)
	assert.Equal(t, "redis.internal:6380", config.Backend.Addr)
	assert.Equal(t, 2, config.Backend.DB)
	assert.Equal(t, "lz4", config.Compression.Algorithm)

	// keys absent from the file keep their defaults
	assert.Equal(t, "cbor", config.Compression.Codec)
	assert.Equal(t, 5*time.Second, config.Backend.DialTimeout)
}

func TestViperConfigEnvOverride(t *testing.T) {
	t.Setenv("RCACHE_BACKEND_ADDR", "env-host:6379")
	t.Setenv("RCACHE_LOG_LEVEL", "debug")

	vc, err := NewViperConfig(writeConfig(t, testYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-host:6379", vc.Get().Backend.Addr)
	assert.Equal(t, "debug", vc.Get().Log.Level)
}

func TestViperConfigWithoutFile(t *testing.T) {
	t.Setenv("RCACHE_BACKEND_DRIVER", "memory")

	vc, err := NewViperConfig("")
	require.NoError(t, err)
	assert.Equal(t, "memory", vc.Get().Backend.Driver)
	assert.Equal(t, "rcache", vc.Get().Cache.Name)
}

func TestViperConfigInvalid(t *testing.T) {
	_, err := NewViperConfig(writeConfig(t, "backend:\n  driver: memcached\n"))
	assert.Error(t, err)

	_, err = NewViperConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWatchPeriodically(t *testing.T) {
	path := writeConfig(t, testYAML)
	vc, err := NewViperConfig(path)
	require.NoError(t, err)

	changed := make(chan *Config, 1)
	vc.Subscribe(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	vc.WatchPeriodically(ctx, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("cache:\n  name: renamed\nlog:\n  level: warn\n"), 0o600))

	select {
	case c := <-changed:
		assert.Equal(t, "renamed", c.Cache.Name)
		assert.Equal(t, "warn", vc.Get().Log.Level)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber was not notified")
	}
}

func TestConfigsEqual(t *testing.T) {
	config1 := DefaultConfig()
	config2 := DefaultConfig()
	assert.True(t, configsEqual(config1, config2))

	config2.Cache.Name = "other"
	assert.False(t, configsEqual(config1, config2))
}

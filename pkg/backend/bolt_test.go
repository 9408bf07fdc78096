package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBolt(t *testing.T) *Bolt {
	t.Helper()
	b, err := OpenBolt(filepath.Join(t.TempDir(), "cache.db"), "test", time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBoltClient(t *testing.T) {
	b := openTestBolt(t)
	base := time.Now()
	b.now = func() time.Time { return base }

	exerciseClient(t, b, func(d time.Duration) {
		base = base.Add(d)
	})
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := DialBolt(Options{Path: path, Bucket: "b"})
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	require.NoError(t, c.Close())

	c, err = DialBolt(Options{Path: path, Bucket: "b"})
	require.NoError(t, err)
	defer c.Close()
	v, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), v)
}

func TestBoltRequiresPath(t *testing.T) {
	_, err := DialBolt(Options{})
	assert.Error(t, err)
}

func TestBoltClosed(t *testing.T) {
	b, err := OpenBolt(filepath.Join(t.TempDir(), "cache.db"), "", time.Second)
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, _, err = b.Get(context.Background(), "k")
	assert.Error(t, err)
}

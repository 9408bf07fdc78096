package codec

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericCodecsDecodeIntoInterface(t *testing.T) {
	value := map[string]interface{}{"x": 1, "name": "widget", "tags": []interface{}{"a", "b"}}

	for _, name := range []string{"cbor", "json", "msgpack", "gob"} {
		t.Run(name, func(t *testing.T) {
			c, err := GetCodec(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())

			data, err := c.Marshal(value)
			require.NoError(t, err)

			var out interface{}
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, "map[name:widget tags:[a b] x:1]", fmt.Sprint(out))
		})
	}
}

func TestCBORCodecTypedTarget(t *testing.T) {
	type product struct {
		ID    int
		Price float64
	}
	c := NewCBORCodec()
	data, err := c.Marshal(product{ID: 7, Price: 9.5})
	require.NoError(t, err)

	var out product
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, product{ID: 7, Price: 9.5}, out)
}

func TestGobCodecRejectsMismatchedTarget(t *testing.T) {
	c := NewGobCodec()
	data, err := c.Marshal("hello")
	require.NoError(t, err)

	var n int
	assert.Error(t, c.Unmarshal(data, &n))

	var s string
	require.NoError(t, c.Unmarshal(data, &s))
	assert.Equal(t, "hello", s)
}

func TestStringCodec(t *testing.T) {
	c := NewStringCodec()
	data, err := c.Marshal("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	_, err = c.Marshal(42)
	assert.Error(t, err)

	var out interface{}
	require.NoError(t, c.Unmarshal([]byte("xyz"), &out))
	assert.Equal(t, "xyz", out)
}

func TestGetCodecUnknown(t *testing.T) {
	_, err := GetCodec("pickle")
	assert.Error(t, err)

	c, err := GetCodec("")
	require.NoError(t, err)
	assert.Equal(t, "cbor", c.Name())
	assert.Equal(t, "cbor", DefaultCodec().Name())
}

func TestCompressorsRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("rcache compresses repetitive payloads well. "), 64)

	for _, name := range []string{"zlib", "gzip", "zstd", "s2", "snappy", "lz4", "none"} {
		t.Run(name, func(t *testing.T) {
			c, err := GetCompressor(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())

			compressed, err := c.Compress(payload)
			require.NoError(t, err)
			if name != "none" {
				assert.Less(t, len(compressed), len(payload))
			}

			out, err := c.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, payload, out)
		})
	}
}

func TestCompressorsRejectGarbage(t *testing.T) {
	garbage := []byte("definitely not a compressed frame")

	for _, name := range []string{"zlib", "gzip", "zstd", "lz4"} {
		t.Run(name, func(t *testing.T) {
			c, err := GetCompressor(name)
			require.NoError(t, err)
			_, err = c.Decompress(garbage)
			assert.Error(t, err)
		})
	}
}

func TestDefaultCompressorIsZlib(t *testing.T) {
	assert.Equal(t, "zlib", DefaultCompressor().Name())

	_, err := GetCompressor("brotli")
	assert.Error(t, err)
}

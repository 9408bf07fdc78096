package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressor defines the interface for compressing and decompressing data.
// Implementations are used to reduce the size of cached values in the backend.
//
// Compressor 定义压缩和解压数据的接口。
// 实现用于减小后端中缓存值的大小。
type Compressor interface {
	// Compress compresses the input data.
	//
	// Compress 压缩输入数据。
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses the input data.
	// It returns an error when data was not produced by Compress.
	//
	// Decompress 解压输入数据。
	// 当数据不是由Compress生成时返回错误。
	Decompress(data []byte) ([]byte, error)

	// Name returns the name of this compressor.
	//
	// Name 返回此压缩器的名称。
	Name() string
}

// ZlibCompressor compresses with the zlib format (RFC 1950).
// It is the default compressor.
//
// ZlibCompressor 使用zlib格式（RFC 1950）压缩。它是默认压缩器。
type ZlibCompressor struct {
	Level int
}

// NewZlibCompressor creates a zlib compressor with the given level.
//
// NewZlibCompressor 使用给定级别创建zlib压缩器。
//
// Parameters:
//   - level: zlib.DefaultCompression or a value between zlib.BestSpeed and zlib.BestCompression
func NewZlibCompressor(level int) *ZlibCompressor {
	return &ZlibCompressor{Level: level}
}

// Compress implements Compressor.
func (c *ZlibCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, c.Level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress implements Compressor.
func (c *ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Name returns "zlib".
func (c *ZlibCompressor) Name() string { return "zlib" }

// GzipCompressor compresses with the gzip format (RFC 1952).
//
// GzipCompressor 使用gzip格式（RFC 1952）压缩。
type GzipCompressor struct {
	Level int
}

// NewGzipCompressor creates a gzip compressor with the given level.
func NewGzipCompressor(level int) *GzipCompressor {
	return &GzipCompressor{Level: level}
}

// Compress implements Compressor.
func (c *GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, c.Level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress implements Compressor.
func (c *GzipCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Name returns "gzip".
func (c *GzipCompressor) Name() string { return "gzip" }

// ZstdCompressor compresses with Zstandard.
// The encoder and decoder are created once and are safe for concurrent use.
//
// ZstdCompressor 使用Zstandard压缩。编码器和解码器只创建一次，可并发使用。
type ZstdCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstdCompressor creates a zstd compressor.
//
// NewZstdCompressor 创建zstd压缩器。
//
// Returns:
//   - *ZstdCompressor: A new zstd compressor
//   - error: An error if the encoder or decoder cannot be created
func NewZstdCompressor() (*ZstdCompressor, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &ZstdCompressor{enc: enc, dec: dec}, nil
}

// Compress implements Compressor.
func (c *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return c.enc.EncodeAll(data, nil), nil
}

// Decompress implements Compressor.
func (c *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	return c.dec.DecodeAll(data, nil)
}

// Name returns "zstd".
func (c *ZstdCompressor) Name() string { return "zstd" }

// S2Compressor compresses with S2, a faster snappy extension.
type S2Compressor struct{}

// Compress implements Compressor.
func (S2Compressor) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

// Decompress implements Compressor.
func (S2Compressor) Decompress(data []byte) ([]byte, error) {
	return s2.Decode(nil, data)
}

// Name returns "s2".
func (S2Compressor) Name() string { return "s2" }

// SnappyCompressor compresses with the snappy block format.
type SnappyCompressor struct{}

// Compress implements Compressor.
func (SnappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

// Decompress implements Compressor.
func (SnappyCompressor) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

// Name returns "snappy".
func (SnappyCompressor) Name() string { return "snappy" }

// LZ4Compressor compresses with the LZ4 frame format.
type LZ4Compressor struct{}

// Compress implements Compressor.
func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress implements Compressor.
func (LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}

// Name returns "lz4".
func (LZ4Compressor) Name() string { return "lz4" }

// NoopCompressor passes data through unchanged.
type NoopCompressor struct{}

// Compress implements Compressor.
func (NoopCompressor) Compress(data []byte) ([]byte, error) { return data, nil }

// Decompress implements Compressor.
func (NoopCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }

// Name returns "none".
func (NoopCompressor) Name() string { return "none" }

// DefaultCompressor returns the default compressor (zlib, default level).
//
// DefaultCompressor 返回默认压缩器（zlib，默认级别）。
func DefaultCompressor() Compressor {
	return NewZlibCompressor(zlib.DefaultCompression)
}

// GetCompressor returns a compressor by name.
// Supported names: "zlib", "gzip", "zstd", "s2", "snappy", "lz4", "none".
//
// GetCompressor 通过名称返回压缩器。
// 支持的名称："zlib"、"gzip"、"zstd"、"s2"、"snappy"、"lz4"、"none"。
//
// Parameters:
//   - name: The compressor name
//
// Returns:
//   - Compressor: The requested compressor
//   - error: An error if the compressor name is unknown
func GetCompressor(name string) (Compressor, error) {
	switch name {
	case "", "zlib":
		return DefaultCompressor(), nil
	case "gzip":
		return NewGzipCompressor(gzip.DefaultCompression), nil
	case "zstd":
		return NewZstdCompressor()
	case "s2":
		return S2Compressor{}, nil
	case "snappy":
		return SnappyCompressor{}, nil
	case "lz4":
		return LZ4Compressor{}, nil
	case "none":
		return NoopCompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compressor: %s", name)
	}
}

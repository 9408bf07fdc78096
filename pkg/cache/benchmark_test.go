package cache

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"github.com/Humphrey-He/rcache/pkg/backend"
	"github.com/Humphrey-He/rcache/pkg/codec"
)

// BenchmarkCompressed measures the serialize-and-compress round trip for
// each compressor against the in-process backend, so only the value
// transformation is timed.
//
// BenchmarkCompressed 针对进程内后端测量每种压缩器的序列化与压缩往返，因此仅计时值转换。
func BenchmarkCompressed(b *testing.B) {
	zstd, err := codec.NewZstdCompressor()
	if err != nil {
		b.Fatal(err)
	}
	compressors := []codec.Compressor{
		codec.DefaultCompressor(),
		codec.NewGzipCompressor(1),
		zstd,
		codec.S2Compressor{},
		codec.LZ4Compressor{},
		codec.NoopCompressor{},
	}
	value := map[string]interface{}{
		"id":    12345,
		"name":  "benchmark-user",
		"tags":  []interface{}{"a", "b", "c"},
		"notes": string(make([]byte, 1024)),
	}

	for _, cp := range compressors {
		b.Run(cp.Name(), func(b *testing.B) {
			c, err := NewCompressed(WithClient(backend.NewMemory()), WithCompressor(cp))
			if err != nil {
				b.Fatal(err)
			}
			ctx := context.Background()
			keys := make([]string, 1024)
			for i := range keys {
				keys[i] = "k" + strconv.Itoa(i)
				if _, err := c.Set(ctx, keys[i], value, 0); err != nil {
					b.Fatal(err)
				}
			}

			b.Run("Set", func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := c.Set(ctx, keys[i%len(keys)], value, 0); err != nil {
						b.Fatal(err)
					}
				}
			})
			b.Run("Get", func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, _, err := c.GetValue(ctx, keys[i%len(keys)]); err != nil {
						b.Fatal(err)
					}
				}
			})
		})
	}
}

// BenchmarkStoreParallel runs a 90/10 read/write mix from parallel goroutines.
//
// BenchmarkStoreParallel 在并行goroutine中运行90/10的读写混合负载。
func BenchmarkStoreParallel(b *testing.B) {
	s, err := NewStore(WithClient(backend.NewMemory()), WithKeyTemplate("bench:%s"))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	payload := make([]byte, 256)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			key := fmt.Sprintf("k%d", r.Intn(10000))
			if r.Intn(10) == 0 {
				if _, err := s.Set(ctx, key, payload, 0); err != nil {
					b.Error(err)
				}
				continue
			}
			if _, _, err := s.Get(ctx, key); err != nil {
				b.Error(err)
			}
		}
	})
}

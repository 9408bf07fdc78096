package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Humphrey-He/rcache/pkg/codec"
	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
)

// Compressed is a cache adapter that stores arbitrary values.
// On write a value is serialized with the codec, compressed, and handed to
// the wrapped Store. On read the bytes are decompressed and deserialized.
//
// Reads are fail-soft: an entry that cannot be decompressed or decoded is
// logged and reported as a miss instead of an error.
//
// Compressed 是存储任意值的缓存适配器。
// 写入时值经编解码器序列化、压缩后交给被包装的Store；读取时字节被解压并反序列化。
// 读取是软失败的：无法解压或解码的条目会被记录日志并报告为未命中，而不是错误。
type Compressed struct {
	store      *Store
	codec      codec.Codec
	compressor codec.Compressor
	logger     zerolog.Logger
}

var _ Cache = (*Compressed)(nil)

// NewCompressed creates a Compressed cache. Codec and compressor options
// configure the value transformation; every other option is forwarded to
// the underlying Store.
//
// NewCompressed 创建Compressed缓存。编解码器和压缩器选项配置值转换；其他选项都转发给底层Store。
//
// Parameters:
//   - opts: A list of option functions to configure the cache
//
// Returns:
//   - *Compressed: The created cache
//   - error: An error if the configuration is invalid or dialing fails
func NewCompressed(opts ...Option) (*Compressed, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	return &Compressed{
		store:      store,
		codec:      cfg.Codec,
		compressor: cfg.Compressor,
		logger:     store.logger.With().Str("codec", cfg.Codec.Name()).Str("compressor", cfg.Compressor.Name()).Logger(),
	}, nil
}

// Store returns the wrapped Store.
//
// Store 返回被包装的Store。
func (c *Compressed) Store() *Store {
	return c.store
}

// Get returns the string rendering of the decoded value, as fmt.Sprint
// formats it. Use GetValue to obtain the decoded value itself.
//
// A missing key, or an entry that fails to decompress or decode, returns
// (nil, false, nil). Backend failures are returned as errors.
//
// Get 返回解码值的字符串形式（按fmt.Sprint格式化）。如需解码值本身，请使用GetValue。
// 键不存在或条目解压、解码失败时返回(nil, false, nil)。后端故障作为错误返回。
func (c *Compressed) Get(ctx context.Context, key string) (interface{}, bool, error) {
	value, found, err := c.GetValue(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	return fmt.Sprint(value), true, nil
}

// GetValue returns the decoded value stored under key.
// With the generic codecs maps decode as map[string]interface{} and
// sequences as []interface{}.
//
// GetValue 返回key下存储的解码值。使用通用编解码器时，映射解码为map[string]interface{}，序列解码为[]interface{}。
//
// Returns:
//   - interface{}: The decoded value if found
//   - bool: True if a decodable entry was found
//   - error: Error if the backend failed
func (c *Compressed) GetValue(ctx context.Context, key string) (interface{}, bool, error) {
	raw, found, err := c.store.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	value, err := c.decode(raw.([]byte))
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return nil, false, nil
	}
	return value, true, nil
}

// Set serializes and compresses value, then stores it under key.
// A value the codec cannot serialize is reported as ErrSerializationFailed
// and nothing is written.
//
// Set 序列化并压缩value，然后存储在key下。编解码器无法序列化的值报告为ErrSerializationFailed，且不写入任何内容。
func (c *Compressed) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) (Cache, error) {
	data, err := c.encode(value)
	if err != nil {
		return nil, cacheerrors.NewCacheError("set", key, err)
	}
	if _, err := c.store.Set(ctx, key, data, ttl); err != nil {
		return nil, err
	}
	return c, nil
}

// Remove deletes key.
//
// Remove 删除key。
func (c *Compressed) Remove(ctx context.Context, key string) (Cache, error) {
	if _, err := c.store.Remove(ctx, key); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear flushes the whole backend, see Cache.Clear.
//
// Clear 清空整个后端，参见Cache.Clear。
func (c *Compressed) Clear(ctx context.Context) (Cache, error) {
	if _, err := c.store.Clear(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Purge deletes the keys under the key template, see Store.Purge.
//
// Purge 删除键模板下的键，参见Store.Purge。
func (c *Compressed) Purge(ctx context.Context) (int, error) {
	return c.store.Purge(ctx)
}

// TTL reports the remaining lifetime of key, see Store.TTL.
//
// TTL 报告key的剩余生存时间，参见Store.TTL。
func (c *Compressed) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	return c.store.TTL(ctx, key)
}

// Ping checks that the backend is reachable.
//
// Ping 检查后端是否可达。
func (c *Compressed) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close releases the backend client.
//
// Close 释放后端客户端。
func (c *Compressed) Close() error {
	return c.store.Close()
}

func (c *Compressed) encode(value interface{}) ([]byte, error) {
	data, err := c.codec.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", cacheerrors.ErrSerializationFailed, c.codec.Name(), err)
	}
	data, err = c.compressor.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", cacheerrors.ErrSerializationFailed, c.compressor.Name(), err)
	}
	return data, nil
}

func (c *Compressed) decode(raw []byte) (interface{}, error) {
	data, err := c.compressor.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", cacheerrors.ErrDeserializationFailed, c.compressor.Name(), err)
	}
	var value interface{}
	if err := c.codec.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", cacheerrors.ErrDeserializationFailed, c.codec.Name(), err)
	}
	return value, nil
}

package cache

import (
	"context"
	"encoding"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Humphrey-He/rcache/pkg/backend"
	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
)

// purgeBatch is the COUNT hint passed to SCAN by Purge.
const purgeBatch = 100

// Store is the cache adapter that talks to the backend directly.
// Values are written as raw bytes and read back as []byte.
//
// Store 是直接与后端交互的缓存适配器。值以原始字节写入，并以[]byte读回。
type Store struct {
	name   string
	client backend.Client
	keys   keyTemplate
	logger zerolog.Logger
	// owned is false for clients injected with WithClient.
	owned bool
}

var _ Cache = (*Store)(nil)

// NewStore creates a Store with the provided options.
// The backend client is dialed once, here.
//
// NewStore 使用提供的选项创建Store。后端客户端仅在此处拨号一次。
//
// Parameters:
//   - opts: A list of option functions to configure the cache
//
// Returns:
//   - *Store: The created cache
//   - error: An error if the configuration is invalid or dialing fails
func NewStore(opts ...Option) (*Store, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	return newStore(cfg)
}

func newStore(cfg *Config) (*Store, error) {
	keys, err := parseKeyTemplate(cfg.KeyTemplate)
	if err != nil {
		return nil, err
	}
	client, err := cfg.dial()
	if err != nil {
		return nil, cacheerrors.NewCacheError("dial", "", err)
	}

	s := &Store{
		name:   cfg.Name,
		client: client,
		keys:   keys,
		logger: cfg.logger(),
		owned:  cfg.Client == nil,
	}
	s.logger.Debug().Str("key_template", keys.String()).Msg("cache store ready")
	return s, nil
}

// Name returns the cache name.
//
// Name 返回缓存名称。
func (s *Store) Name() string {
	return s.name
}

// Client returns the backend client the store was built with.
//
// Client 返回构建Store时使用的后端客户端。
func (s *Store) Client() backend.Client {
	return s.client
}

// BackendKey renders key through the key template.
//
// BackendKey 通过键模板渲染key。
func (s *Store) BackendKey(key string) string {
	return s.keys.render(key)
}

// Get retrieves the raw bytes stored under key.
// A found value is always a []byte.
//
// Get 检索key下存储的原始字节。找到的值始终是[]byte。
func (s *Store) Get(ctx context.Context, key string) (interface{}, bool, error) {
	value, found, err := s.client.Get(ctx, s.keys.render(key))
	if err != nil {
		return nil, false, s.fail("get", key, err)
	}
	if !found {
		return nil, false, nil
	}
	return value, true, nil
}

// Set writes value under key. A positive ttl sets an expiry, 0 means none.
//
// Accepted values are []byte, string, bool, the integer and float kinds, and
// encoding.BinaryMarshaler. Anything else is rejected with ErrInvalidValue;
// use Compressed to store structured values.
//
// Set 将值写入key下。正的ttl设置过期时间，0表示不过期。
// 接受的值为[]byte、string、bool、整数和浮点类型以及encoding.BinaryMarshaler。
// 其他类型会以ErrInvalidValue拒绝；存储结构化值请使用Compressed。
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) (Cache, error) {
	if ttl < 0 {
		return nil, cacheerrors.NewCacheError("set", key, fmt.Errorf("%w: %s", cacheerrors.ErrInvalidTTL, ttl))
	}
	data, err := toBytes(value)
	if err != nil {
		return nil, cacheerrors.NewCacheError("set", key, err)
	}

	target := s.keys.render(key)
	if ttl > 0 {
		err = s.client.SetEX(ctx, target, ttl, data)
	} else {
		err = s.client.Set(ctx, target, data)
	}
	if err != nil {
		return nil, s.fail("set", key, err)
	}
	return s, nil
}

// Remove deletes key from the backend.
//
// Remove 从后端删除key。
func (s *Store) Remove(ctx context.Context, key string) (Cache, error) {
	if err := s.client.Del(ctx, s.keys.render(key)); err != nil {
		return nil, s.fail("remove", key, err)
	}
	return s, nil
}

// Clear flushes the whole backend, see Cache.Clear.
//
// Clear 清空整个后端，参见Cache.Clear。
func (s *Store) Clear(ctx context.Context) (Cache, error) {
	s.logger.Warn().Msg("flushing all keys of the backend")
	if err := s.client.FlushAll(ctx); err != nil {
		return nil, s.fail("clear", "", err)
	}
	return s, nil
}

// Purge deletes only the keys rendered by this store's key template and
// returns how many were removed. With the identity template it removes every key.
//
// Purge 仅删除由此Store键模板渲染的键，并返回删除的数量。使用恒等模板时会删除所有键。
//
// Returns:
//   - int: The number of deleted keys
//   - error: Error if scanning or deleting failed
func (s *Store) Purge(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		matched []string
		match   = s.keys.pattern()
	)
	// Collect first: deleting while scanning shifts offset-based cursors.
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, purgeBatch)
		if err != nil {
			return 0, s.fail("purge", "", err)
		}
		matched = append(matched, keys...)
		if next == 0 {
			break
		}
		cursor = next
	}

	removed := 0
	seen := make(map[string]struct{}, len(matched))
	for _, k := range matched {
		// SCAN may return a key more than once.
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if err := s.client.Del(ctx, k); err != nil {
			return removed, s.fail("purge", "", err)
		}
		removed++
	}
	s.logger.Info().Int("removed", removed).Str("match", match).Msg("purged cache keys")
	return removed, nil
}

// TTL reports the remaining lifetime of key. A key without expiry
// returns (0, true, nil); a missing key returns (0, false, nil).
//
// TTL 报告key的剩余生存时间。没有过期时间的键返回(0, true, nil)；不存在的键返回(0, false, nil)。
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	ttl, found, err := s.client.TTL(ctx, s.keys.render(key))
	if err != nil {
		return 0, false, s.fail("ttl", key, err)
	}
	return ttl, found, nil
}

// Ping checks that the backend is reachable.
//
// Ping 检查后端是否可达。
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return s.fail("ping", "", err)
	}
	return nil
}

// Close releases a backend client the store dialed itself.
// A client injected with WithClient is left open for its owner.
//
// Close 释放Store自己拨号的后端客户端。通过WithClient注入的客户端保持打开，由其所有者负责。
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return cacheerrors.NewCacheError("close", "", s.client.Close())
}

func (s *Store) fail(op, key string, err error) error {
	s.logger.Error().Err(err).Str("op", op).Str("key", key).Msg("backend operation failed")
	return cacheerrors.NewCacheError(op, key, err)
}

func toBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case bool:
		if v {
			return []byte("1"), nil
		}
		return []byte("0"), nil
	case int:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int8:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int16:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int32:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int64:
		return strconv.AppendInt(nil, v, 10), nil
	case uint:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint8:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint16:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint32:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint64:
		return strconv.AppendUint(nil, v, 10), nil
	case float32:
		return strconv.AppendFloat(nil, float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
	case encoding.BinaryMarshaler:
		data, err := v.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cacheerrors.ErrInvalidValue, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: can't write %T", cacheerrors.ErrInvalidValue, value)
	}
}

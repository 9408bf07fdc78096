package backend

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var _ Client = (*GoRedis)(nil)

// GoRedis implements Client on top of a go-redis client.
// https://pkg.go.dev/github.com/go-redis/redis/v8
//
// GoRedis 基于go-redis客户端实现Client。
type GoRedis struct {
	db *redis.Client
}

// NewGoRedis wraps an existing go-redis client.
// The returned Client owns db: Close closes it.
//
// NewGoRedis 包装现有的go-redis客户端。返回的Client拥有db：Close会关闭它。
func NewGoRedis(db *redis.Client) *GoRedis {
	return &GoRedis{db: db}
}

// DialGoRedis is the Dialer of the goredis driver.
// The connection is established lazily on the first command.
//
// DialGoRedis 是goredis驱动的拨号器。连接在第一个命令时延迟建立。
func DialGoRedis(o Options) (Client, error) {
	ro, err := goRedisOptions(o)
	if err != nil {
		return nil, err
	}
	return NewGoRedis(redis.NewClient(ro)), nil
}

func goRedisOptions(o Options) (*redis.Options, error) {
	if o.URL != "" {
		ro, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, err
		}
		if o.TLSConfig != nil {
			ro.TLSConfig = o.TLSConfig
		}
		applyTimeouts(ro, o)
		return ro, nil
	}
	ro := &redis.Options{
		Addr:      o.Addr,
		Username:  o.Username,
		Password:  o.Password,
		DB:        o.DB,
		PoolSize:  o.PoolSize,
		TLSConfig: o.TLSConfig,
	}
	applyTimeouts(ro, o)
	return ro, nil
}

func applyTimeouts(ro *redis.Options, o Options) {
	if o.PoolSize > 0 {
		ro.PoolSize = o.PoolSize
	}
	if o.DialTimeout > 0 {
		ro.DialTimeout = o.DialTimeout
	}
	if o.ReadTimeout > 0 {
		ro.ReadTimeout = o.ReadTimeout
	}
	if o.WriteTimeout > 0 {
		ro.WriteTimeout = o.WriteTimeout
	}
}

// Get is equivalent to the Redis `GET key` command.
func (c *GoRedis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set is equivalent to the Redis `SET key value` command.
func (c *GoRedis) Set(ctx context.Context, key string, value []byte) error {
	return c.db.Set(ctx, key, value, 0).Err()
}

// SetEX is equivalent to the Redis `SETEX key seconds value` command.
// go-redis rounds sub-second expirations up to one second.
func (c *GoRedis) SetEX(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	return c.db.SetEX(ctx, key, value, ttl).Err()
}

// Del is equivalent to the Redis `DEL key` command.
func (c *GoRedis) Del(ctx context.Context, key string) error {
	return c.db.Del(ctx, key).Err()
}

// FlushAll is equivalent to the Redis `FLUSHALL` command.
func (c *GoRedis) FlushAll(ctx context.Context) error {
	return c.db.FlushAll(ctx).Err()
}

// TTL is equivalent to the Redis `PTTL key` command.
func (c *GoRedis) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	d, err := c.db.PTTL(ctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	// go-redis passes the -2 (missing) and -1 (no expiry) replies through unscaled.
	switch d {
	case -2:
		return 0, false, nil
	case -1:
		return 0, true, nil
	}
	return d, true, nil
}

// Scan is equivalent to the Redis `SCAN cursor MATCH pattern COUNT count` command.
func (c *GoRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	return c.db.Scan(ctx, cursor, match, count).Result()
}

// Ping is equivalent to the Redis `PING` command.
func (c *GoRedis) Ping(ctx context.Context) error {
	return c.db.Ping(ctx).Err()
}

// Close closes the client, releasing any open resources.
//
// It is rare to Close a Client, as the Client is meant to be
// long-lived and shared between many goroutines.
func (c *GoRedis) Close() error {
	return c.db.Close()
}

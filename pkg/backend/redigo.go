package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

var _ Client = (*Redigo)(nil)

// Redigo implements Client on top of a redigo connection pool.
// Every call borrows a connection from the pool and returns it afterwards.
//
// Redigo 基于redigo连接池实现Client。每次调用从池中借用一个连接，之后归还。
type Redigo struct {
	pool *redis.Pool
}

// NewRedigo wraps an existing pool. The returned Client owns the pool.
//
// NewRedigo 包装现有的连接池。返回的Client拥有该连接池。
func NewRedigo(pool *redis.Pool) *Redigo {
	return &Redigo{pool: pool}
}

// DialRedigo is the Dialer of the redigo driver.
//
// DialRedigo 是redigo驱动的拨号器。
func DialRedigo(o Options) (Client, error) {
	dialOpts := []redis.DialOption{
		redis.DialConnectTimeout(o.DialTimeout),
		redis.DialReadTimeout(o.ReadTimeout),
		redis.DialWriteTimeout(o.WriteTimeout),
	}
	if o.TLSConfig != nil {
		dialOpts = append(dialOpts, redis.DialTLSConfig(o.TLSConfig), redis.DialUseTLS(true))
	}

	var dial func() (redis.Conn, error)
	if o.URL != "" {
		url := o.URL
		dial = func() (redis.Conn, error) { return redis.DialURL(url, dialOpts...) }
	} else {
		if o.Addr == "" {
			return nil, fmt.Errorf("backend/redigo: connection address is required")
		}
		dialOpts = append(dialOpts,
			redis.DialUsername(o.Username),
			redis.DialPassword(o.Password),
			redis.DialDatabase(o.DB),
		)
		addr := o.Addr
		dial = func() (redis.Conn, error) { return redis.Dial("tcp", addr, dialOpts...) }
	}

	maxActive := o.PoolSize
	if maxActive <= 0 {
		maxActive = 10
	}
	return NewRedigo(&redis.Pool{
		MaxIdle:     maxActive,
		MaxActive:   maxActive,
		IdleTimeout: 240 * time.Second,
		Wait:        true,
		Dial:        dial,
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}), nil
}

func (c *Redigo) do(ctx context.Context, cmd string, args ...interface{}) (interface{}, error) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.Do(cmd, args...)
}

// Get issues `GET key`.
func (c *Redigo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := redis.Bytes(c.do(ctx, "GET", key))
	if errors.Is(err, redis.ErrNil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set issues `SET key value`.
func (c *Redigo) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.do(ctx, "SET", key, value)
	return err
}

// SetEX issues `SETEX key seconds value`, or `PSETEX` when ttl is not a
// whole number of seconds.
func (c *Redigo) SetEX(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	var err error
	if ttl%time.Second == 0 {
		_, err = c.do(ctx, "SETEX", key, int64(ttl/time.Second), value)
	} else {
		_, err = c.do(ctx, "PSETEX", key, ttl.Milliseconds(), value)
	}
	return err
}

// Del issues `DEL key`.
func (c *Redigo) Del(ctx context.Context, key string) error {
	_, err := c.do(ctx, "DEL", key)
	return err
}

// FlushAll issues `FLUSHALL`.
func (c *Redigo) FlushAll(ctx context.Context) error {
	_, err := c.do(ctx, "FLUSHALL")
	return err
}

// TTL issues `PTTL key`.
func (c *Redigo) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	ms, err := redis.Int64(c.do(ctx, "PTTL", key))
	if err != nil {
		return 0, false, err
	}
	switch ms {
	case -2:
		return 0, false, nil
	case -1:
		return 0, true, nil
	}
	return time.Duration(ms) * time.Millisecond, true, nil
}

// Scan issues `SCAN cursor MATCH pattern COUNT count`.
func (c *Redigo) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	reply, err := redis.Values(c.do(ctx, "SCAN", cursor, "MATCH", match, "COUNT", count))
	if err != nil {
		return nil, 0, err
	}
	if len(reply) != 2 {
		return nil, 0, fmt.Errorf("backend/redigo: unexpected SCAN reply length %d", len(reply))
	}
	next, err := redis.Uint64(reply[0], nil)
	if err != nil {
		return nil, 0, err
	}
	keys, err := redis.Strings(reply[1], nil)
	if err != nil {
		return nil, 0, err
	}
	return keys, next, nil
}

// Ping issues `PING`.
func (c *Redigo) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "PING")
	return err
}

// Close closes the pool.
func (c *Redigo) Close() error {
	return c.pool.Close()
}

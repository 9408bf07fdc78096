package backend

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gobwas/glob"
	bolt "go.etcd.io/bbolt"
)

var (
	_ Client    = (*Bolt)(nil)
	_ Sweepable = (*Bolt)(nil)
)

// recordHeader is the size of the expiry prefix of every bolt record:
// a big-endian unix-nano deadline, 0 meaning no expiry.
const recordHeader = 8

// Bolt implements Client on an embedded bbolt file. Expiry is stored in
// each record and enforced on read, so it suits single-process deployments
// and tests that want persistence without a Redis server.
// https://pkg.go.dev/go.etcd.io/bbolt
//
// Bolt 基于嵌入式bbolt文件实现Client。过期时间存储在每条记录中并在读取时执行。
type Bolt struct {
	db      *bolt.DB
	bucket  []byte
	now     func() time.Time
	sweeper *Sweeper
}

// DialBolt is the Dialer of the bolt driver.
// It is up to the operator to make sure that Options.Path is writeable.
//
// DialBolt 是bolt驱动的拨号器。需由运维确保Options.Path可写。
func DialBolt(o Options) (Client, error) {
	b, err := OpenBolt(o.Path, o.Bucket, o.DialTimeout)
	if err != nil {
		return nil, err
	}
	if o.SweepInterval > 0 {
		b.sweeper = NewSweeper(b, o.SweepInterval, 0)
	}
	return b, nil
}

// OpenBolt opens (or creates) the bolt file at path and ensures the bucket exists.
//
// OpenBolt 打开（或创建）path处的bolt文件并确保桶存在。
func OpenBolt(path, bucket string, timeout time.Duration) (*Bolt, error) {
	if path == "" {
		return nil, fmt.Errorf("backend/bolt: path is required")
	}
	if bucket == "" {
		bucket = "rcache"
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{db: db, bucket: []byte(bucket), now: time.Now}, nil
}

func (b *Bolt) encode(value []byte, ttl time.Duration) []byte {
	rec := make([]byte, recordHeader+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(rec, uint64(b.now().Add(ttl).UnixNano()))
	}
	copy(rec[recordHeader:], value)
	return rec
}

// decode returns the deadline (zero when the record never expires) and the value.
func decode(rec []byte) (time.Time, []byte, error) {
	if len(rec) < recordHeader {
		return time.Time{}, nil, fmt.Errorf("backend/bolt: truncated record")
	}
	var deadline time.Time
	if ns := binary.BigEndian.Uint64(rec); ns != 0 {
		deadline = time.Unix(0, int64(ns))
	}
	return deadline, rec[recordHeader:], nil
}

func (b *Bolt) expired(deadline time.Time) bool {
	return !deadline.IsZero() && !b.now().Before(deadline)
}

// Get retrieves the value for a key in the bucket. Expired records are
// reported as missing and removed.
func (b *Bolt) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		stale bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		rec := tx.Bucket(b.bucket).Get([]byte(key))
		if rec == nil {
			return nil
		}
		deadline, v, err := decode(rec)
		if err != nil {
			return err
		}
		if b.expired(deadline) {
			stale = true
			return nil
		}
		// only valid in transaction
		value = append(v[:0:0], v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if stale {
		return nil, false, b.Del(ctx, key)
	}
	if value == nil {
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores value under key without expiry.
func (b *Bolt) Set(ctx context.Context, key string, value []byte) error {
	return b.put(key, value, 0)
}

// SetEX stores value under key with a deadline of now+ttl.
func (b *Bolt) SetEX(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	return b.put(key, value, ttl)
}

func (b *Bolt) put(key string, value []byte, ttl time.Duration) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), b.encode(value, ttl))
	})
}

// Del deletes key from the bucket.
func (b *Bolt) Del(ctx context.Context, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Delete([]byte(key))
	})
}

// FlushAll drops and recreates the bucket.
func (b *Bolt) FlushAll(ctx context.Context) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(b.bucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(b.bucket)
		return err
	})
}

// TTL returns the time left before key expires.
func (b *Bolt) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	var (
		ttl   time.Duration
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		rec := tx.Bucket(b.bucket).Get([]byte(key))
		if rec == nil {
			return nil
		}
		deadline, _, err := decode(rec)
		if err != nil {
			return err
		}
		if b.expired(deadline) {
			return nil
		}
		found = true
		if !deadline.IsZero() {
			ttl = deadline.Sub(b.now())
		}
		return nil
	})
	return ttl, found, err
}

// Scan walks the bucket in key order. The cursor is the number of records
// already visited; count bounds how many records one call visits.
func (b *Bolt) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	if match == "" {
		match = "*"
	}
	g, err := glob.Compile(match)
	if err != nil {
		return nil, 0, err
	}
	if count <= 0 {
		count = 10
	}

	var (
		keys []string
		next uint64
	)
	err = b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(b.bucket).Cursor()
		var pos uint64
		k, v := c.First()
		for ; k != nil && pos < cursor; k, v = c.Next() {
			pos++
		}
		var visited int64
		for ; k != nil && visited < count; k, v = c.Next() {
			pos++
			visited++
			deadline, _, err := decode(v)
			if err != nil {
				return err
			}
			if b.expired(deadline) || !g.Match(string(k)) {
				continue
			}
			keys = append(keys, string(k))
		}
		if k != nil {
			next = pos
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return keys, next, nil
}

// Ping reports whether the database is still open.
func (b *Bolt) Ping(ctx context.Context) error {
	return b.db.View(func(tx *bolt.Tx) error { return nil })
}

// Sweep deletes up to limit expired records in one write transaction.
func (b *Bolt) Sweep(ctx context.Context, limit int) (int, error) {
	n := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(b.bucket).Cursor()
		for k, v := c.First(); k != nil && n < limit; {
			deadline, _, err := decode(v)
			if err != nil {
				return err
			}
			if !b.expired(deadline) {
				k, v = c.Next()
				continue
			}
			key := append([]byte(nil), k...)
			if err := c.Delete(); err != nil {
				return err
			}
			n++
			// re-position on the record after the deleted one
			k, v = c.Seek(key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Close stops the sweeper, if any, and releases all database resources.
// It will block waiting for any open transactions to finish
// before closing the database and returning.
func (b *Bolt) Close() error {
	if b.sweeper != nil {
		b.sweeper.Stop()
	}
	return b.db.Close()
}

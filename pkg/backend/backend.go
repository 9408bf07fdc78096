// Package backend defines the key-value client capability the cache adapters
// are built on, and provides implementations for Redis (go-redis and redigo),
// an embedded bbolt file and an in-process map.
//
// Package backend 定义缓存适配器所依赖的键值客户端能力，并提供Redis（go-redis和redigo）、
// 嵌入式bbolt文件以及进程内映射的实现。
package backend

import (
	"context"
	"crypto/tls"
	"fmt"
	"sort"
	"sync"
	"time"

	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
)

// Client is the handle to a key-value store.
// Absence of a key is reported through the found flag, never as an error;
// every returned error is a backend failure.
//
// Client 是键值存储的句柄。
// 键不存在通过found标志报告，而不是错误；返回的每个错误都是后端故障。
type Client interface {
	// Get returns the raw bytes stored under key.
	// Get 返回key下存储的原始字节。
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key without expiry.
	// Set 将值存储在key下，不设置过期时间。
	Set(ctx context.Context, key string, value []byte) error

	// SetEX stores value under key and expires it after ttl.
	// SetEX 将值存储在key下，并在ttl后过期。
	SetEX(ctx context.Context, key string, ttl time.Duration, value []byte) error

	// Del deletes key. Deleting a missing key is not an error.
	// Del 删除key。删除不存在的键不是错误。
	Del(ctx context.Context, key string) error

	// FlushAll removes every key in the store.
	// FlushAll 删除存储中的所有键。
	FlushAll(ctx context.Context) error

	// TTL returns the remaining time to live of key.
	// A key without expiry reports (0, true); a missing key reports (0, false).
	//
	// TTL 返回key的剩余生存时间。没有过期时间的键返回(0, true)；不存在的键返回(0, false)。
	TTL(ctx context.Context, key string) (ttl time.Duration, found bool, err error)

	// Scan iterates the keyspace with a glob pattern. It returns a batch of
	// keys and the cursor to continue from; a returned cursor of 0 ends the scan.
	//
	// Scan 使用glob模式迭代键空间。返回一批键和继续的游标；返回的游标为0表示扫描结束。
	Scan(ctx context.Context, cursor uint64, match string, count int64) (keys []string, next uint64, err error)

	// Ping checks connectivity.
	// Ping 检查连接性。
	Ping(ctx context.Context) error

	// Close releases the connection resources.
	// Close 释放连接资源。
	Close() error
}

// Options holds the connection parameters passed to a Dialer.
// Drivers ignore the fields that do not apply to them.
//
// Options 保存传递给Dialer的连接参数。驱动会忽略不适用于它们的字段。
type Options struct {
	// URL is a redis:// or rediss:// URL. When set it takes precedence over
	// Addr, Username, Password and DB.
	// URL 是redis://或rediss:// URL，设置时优先于Addr、Username、Password和DB。
	URL string `json:"url" yaml:"url"`

	// Addr is the host:port of the server.
	// Addr 是服务器的host:port。
	Addr string `json:"addr" yaml:"addr"`

	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`

	// DB is the database selected after connecting.
	// DB 是连接后选择的数据库。
	DB int `json:"db" yaml:"db"`

	// PoolSize is the maximum number of connections. 0 uses the driver default.
	// PoolSize 是最大连接数。0表示使用驱动默认值。
	PoolSize int `json:"pool_size" yaml:"pool_size"`

	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// TLSConfig enables TLS when set.
	// TLSConfig 设置时启用TLS。
	TLSConfig *tls.Config `json:"-" yaml:"-"`

	// Path is the database file of the bolt driver.
	// Path 是bolt驱动的数据库文件。
	Path string `json:"path" yaml:"path"`

	// Bucket is the bucket of the bolt driver.
	// Bucket 是bolt驱动的桶。
	Bucket string `json:"bucket" yaml:"bucket"`

	// SweepInterval makes the bolt and memory drivers delete expired records
	// in the background. 0 leaves expiry to reads.
	// SweepInterval 使bolt和memory驱动在后台删除过期记录。0表示仅在读取时处理过期。
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval"`
}

// DefaultOptions returns Options pointing at a local Redis server.
//
// DefaultOptions 返回指向本地Redis服务器的Options。
func DefaultOptions() Options {
	return Options{
		Addr:         "localhost:6379",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		Path:         "rcache.db",
		Bucket:       "rcache",
	}
}

// Dialer produces a Client from connection parameters.
// The cache adapters call it exactly once, at construction.
//
// Dialer 根据连接参数创建Client。缓存适配器仅在构造时调用它一次。
type Dialer func(opts Options) (Client, error)

// Driver names understood by Lookup.
//
// Lookup可识别的驱动名称。
const (
	DriverGoRedis = "goredis"
	DriverRedigo  = "redigo"
	DriverBolt    = "bolt"
	DriverMemory  = "memory"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Dialer{
		DriverGoRedis: DialGoRedis,
		DriverRedigo:  DialRedigo,
		DriverBolt:    DialBolt,
		DriverMemory:  DialMemory,
	}
)

// Register makes a dialer available under name, replacing any previous one.
//
// Register 以name注册拨号器，替换之前的注册。
func Register(name string, dialer Dialer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = dialer
}

// Lookup returns the dialer registered under name.
// The empty name selects the go-redis driver.
//
// Lookup 返回以name注册的拨号器。空名称选择go-redis驱动。
//
// Parameters:
//   - name: The driver name
//
// Returns:
//   - Dialer: The registered dialer
//   - error: ErrUnknownDriver if nothing is registered under name
func Lookup(name string) (Dialer, error) {
	if name == "" {
		name = DriverGoRedis
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	dialer, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", cacheerrors.ErrUnknownDriver, name)
	}
	return dialer, nil
}

// Drivers returns the registered driver names in sorted order.
//
// Drivers 按排序返回已注册的驱动名称。
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

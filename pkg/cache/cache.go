// Package cache provides uniform get/set/remove/clear caching over an external
// key-value store. Store talks to the backend directly and deals in raw bytes;
// Compressed decorates a Store, serializing and compressing values on write and
// reversing the transformation on read.
//
// Package cache 在外部键值存储之上提供统一的get/set/remove/clear缓存操作。
// Store直接与后端交互并处理原始字节；Compressed装饰一个Store，
// 在写入时序列化并压缩值，在读取时执行逆向转换。
package cache

import (
	"context"
	"time"
)

// Cache defines the interface shared by the cache adapters.
// Every method blocks on the backend; none of them adds locking of its own,
// so concurrent use is as safe as the underlying backend client.
//
// Cache 定义缓存适配器共享的接口。
// 每个方法都会阻塞等待后端；它们自身不加锁，因此并发安全性取决于底层后端客户端。
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns the value and a boolean indicating whether the key was found.
	// If the key is not found, (nil, false, nil) is returned.
	// A backend failure is returned as a *errors.CacheError.
	//
	// Get 从缓存中检索值。
	// 返回值和一个布尔值，指示是否找到了键。
	// 如果未找到键，则返回 (nil, false, nil)。后端故障以*errors.CacheError返回。
	//
	// Parameters:
	//   - ctx: Context for the operation, can be used for cancellation
	//   - key: The key to retrieve
	//
	// Returns:
	//   - interface{}: The cached value if found
	//   - bool: True if the key was found
	//   - error: Error if the backend failed
	Get(ctx context.Context, key string) (interface{}, bool, error)

	// Set stores a value under key.
	// If ttl is positive the entry expires after ttl; if ttl is 0 the entry
	// does not expire; a negative ttl is rejected.
	// The receiver is returned so calls can be chained.
	//
	// Set 将值存储在key下。
	// 如果ttl为正，条目在ttl后过期；如果ttl为0，条目不会过期；负的ttl会被拒绝。
	// 返回接收者，以便链式调用。
	//
	// Parameters:
	//   - ctx: Context for the operation, can be used for cancellation
	//   - key: The key under which to store the value
	//   - value: The value to store
	//   - ttl: Time-to-live for the entry
	//
	// Returns:
	//   - Cache: The receiver
	//   - error: Error if the set operation failed
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) (Cache, error)

	// Remove deletes key. Removing a missing key is not an error.
	//
	// Remove 删除key。删除不存在的键不是错误。
	//
	// Returns:
	//   - Cache: The receiver
	//   - error: Error if the backend failed
	Remove(ctx context.Context, key string) (Cache, error)

	// Clear removes ALL keys of the backend, not only the keys written by this
	// cache. On a shared Redis it wipes every tenant's data. Use Purge on the
	// concrete adapters to remove only the keys under the key template.
	//
	// Clear 删除后端的所有键，而不仅仅是此缓存写入的键。
	// 在共享的Redis上，它会清除所有租户的数据。如需仅删除键模板下的键，请使用具体适配器的Purge。
	//
	// Returns:
	//   - Cache: The receiver
	//   - error: Error if the backend failed
	Clear(ctx context.Context) (Cache, error)

	// Close releases the backend client.
	// After calling Close, the cache should not be used anymore.
	//
	// Close 释放后端客户端。调用Close后，不应再使用缓存。
	Close() error
}

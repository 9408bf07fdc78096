// Package errors provides standardized error types for the cache.
// It defines the sentinel causes, the single CacheError type that wraps every
// backend failure, and helper functions for error checking.
//
// Package errors 提供缓存的标准化错误类型。
// 它定义了哨兵错误、包装所有后端故障的唯一CacheError类型，以及用于错误检查的辅助函数。
package errors

import (
	"errors"
	"fmt"
)

// Standard errors that can be wrapped by a CacheError.
// These provide consistent error causes across the cache implementation.
//
// 可被CacheError包装的标准错误。
// 这些提供了缓存实现中一致的错误原因。
var (
	// ErrLoaderFailed is returned when the loader cannot produce a value for a missing key.
	// 当加载器无法为缺失的键生成值时返回ErrLoaderFailed。
	ErrLoaderFailed = errors.New("cache: loader failed")

	// ErrInvalidTTL is returned when a negative TTL is provided.
	// 当提供负的TTL时返回ErrInvalidTTL。
	ErrInvalidTTL = errors.New("cache: invalid TTL")

	// ErrInvalidValue is returned when a value cannot be written to the backend as bytes.
	// 当值无法以字节形式写入后端时返回ErrInvalidValue。
	ErrInvalidValue = errors.New("cache: invalid value")

	// ErrInvalidKeyTemplate is returned when a key template does not contain exactly one %s verb.
	// 当键模板不恰好包含一个%s占位符时返回ErrInvalidKeyTemplate。
	ErrInvalidKeyTemplate = errors.New("cache: invalid key template")

	// ErrSerializationFailed is returned when value serialization or compression fails.
	// 当值序列化或压缩失败时返回ErrSerializationFailed。
	ErrSerializationFailed = errors.New("cache: serialization failed")

	// ErrDeserializationFailed is returned when value decompression or deserialization fails.
	// 当值解压或反序列化失败时返回ErrDeserializationFailed。
	ErrDeserializationFailed = errors.New("cache: deserialization failed")

	// ErrClosed is returned when an operation is performed on a closed backend.
	// 当对已关闭的后端执行操作时返回ErrClosed。
	ErrClosed = errors.New("cache: backend is closed")

	// ErrUnknownDriver is returned when no dialer is registered under a driver name.
	// 当驱动名称下没有注册拨号器时返回ErrUnknownDriver。
	ErrUnknownDriver = errors.New("cache: unknown backend driver")

	// ErrNotSupported is returned when a wrapped cache does not offer the operation.
	// 当被包装的缓存不提供该操作时返回ErrNotSupported。
	ErrNotSupported = errors.New("cache: operation not supported")
)

// CacheError is the only error kind returned by cache operations.
// Every failure reported by the backend client, and every invalid argument,
// is wrapped into a CacheError that keeps the original error reachable
// through errors.Is and errors.As.
//
// CacheError 是缓存操作返回的唯一错误类型。
// 后端客户端报告的所有故障以及所有无效参数都被包装为CacheError，
// 原始错误仍可通过errors.Is和errors.As访问。
type CacheError struct {
	Op  string // The operation that failed / 失败的操作
	Key string // The key involved, empty for Clear / 涉及的键，Clear时为空
	Err error  // The underlying error / 底层错误
}

// Error returns the error message.
// It implements the error interface.
//
// Error 返回错误消息。
// 它实现了error接口。
//
// Returns:
//   - string: The formatted error message including operation and key
func (e *CacheError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache: %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error.
// This allows errors.Is and errors.As to work with wrapped errors.
//
// Unwrap 返回底层错误。
// 这允许errors.Is和errors.As与包装的错误一起工作。
//
// Returns:
//   - error: The underlying error
func (e *CacheError) Unwrap() error {
	return e.Err
}

// NewCacheError creates a new CacheError.
// If err is already a CacheError it is returned unchanged so that a
// decorator never double-wraps the error of the adapter it delegates to.
//
// NewCacheError 创建一个新的CacheError。
// 如果err已经是CacheError，则原样返回，以免装饰器重复包装其委托适配器的错误。
//
// Parameters:
//   - op: The operation that failed
//   - key: The key involved in the operation
//   - err: The underlying error
//
// Returns:
//   - error: A cache error, or nil if err is nil
func NewCacheError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CacheError
	if errors.As(err, &ce) {
		return err
	}
	return &CacheError{Op: op, Key: key, Err: err}
}

// IsCacheError returns true if the error is or wraps a CacheError.
//
// IsCacheError 如果错误是或包装了CacheError，则返回true。
func IsCacheError(err error) bool {
	var ce *CacheError
	return errors.As(err, &ce)
}

// IsInvalidTTL returns true if the error indicates a negative TTL.
//
// IsInvalidTTL 如果错误表示TTL无效，则返回true。
func IsInvalidTTL(err error) bool {
	return errors.Is(err, ErrInvalidTTL)
}

// IsClosed returns true if the error indicates that the backend is closed.
//
// IsClosed 如果错误表示后端已关闭，则返回true。
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// IsSerializationError returns true if the error is related to serialization.
//
// IsSerializationError 如果错误与序列化相关，则返回true。
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: True if the error is or wraps ErrSerializationFailed or ErrDeserializationFailed
func IsSerializationError(err error) bool {
	return errors.Is(err, ErrSerializationFailed) || errors.Is(err, ErrDeserializationFailed)
}

// Is, As and New re-export the standard library helpers so callers importing
// this package under the name errors keep access to them.
//
// Is、As和New重新导出标准库辅助函数。
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

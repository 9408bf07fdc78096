package backend

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gobwas/glob"

	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
)

var (
	_ Client    = (*Memory)(nil)
	_ Sweepable = (*Memory)(nil)
)

// Memory provides a simple in-process Client for testing and single-process use.
// It honours expiry and supports failure injection so callers can exercise
// their backend-error paths without a server.
//
// Memory 提供一个简单的进程内Client，用于测试和单进程使用。
// 它遵循过期时间，并支持故障注入，使调用方无需服务器即可测试后端错误路径。
type Memory struct {
	mu     sync.RWMutex
	data   map[string]memoryEntry
	fail   error
	closed bool
	now    func() time.Time

	sweeper *Sweeper
}

// memoryEntry represents an item in the memory client.
//
// memoryEntry 表示内存客户端中的一个项目。
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates an empty memory client.
//
// NewMemory 创建一个空的内存客户端。
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

// DialMemory is the Dialer of the memory driver. Each call returns a fresh,
// unshared store.
//
// DialMemory 是memory驱动的拨号器。每次调用返回一个新的、不共享的存储。
func DialMemory(o Options) (Client, error) {
	m := NewMemory()
	if o.SweepInterval > 0 {
		m.sweeper = NewSweeper(m, o.SweepInterval, 0)
	}
	return m, nil
}

// FailWith makes every subsequent operation return err. Passing nil restores
// normal behaviour.
//
// FailWith 使后续每个操作都返回err。传入nil恢复正常行为。
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Advance moves the clock of the memory client forward by d.
//
// Advance 将内存客户端的时钟向前推进d。
func (m *Memory) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.now = func() time.Time { return now.Add(d) }
}

// Len returns the number of live entries.
//
// Len 返回未过期条目的数量。
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.data {
		if !m.expired(e) {
			n++
		}
	}
	return n
}

func (m *Memory) check() error {
	if m.closed {
		return cacheerrors.ErrClosed
	}
	return m.fail
}

func (m *Memory) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}

// Get returns the value stored under key.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, false, err
	}
	e, ok := m.data[key]
	if !ok || m.expired(e) {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set stores value under key without expiry.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	return m.put(key, value, 0)
}

// SetEX stores value under key and expires it after ttl.
func (m *Memory) SetEX(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	return m.put(key, value, ttl)
}

func (m *Memory) put(key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

// Del deletes key.
func (m *Memory) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

// FlushAll removes every key.
func (m *Memory) FlushAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	m.data = make(map[string]memoryEntry)
	return nil
}

// TTL returns the remaining lifetime of key.
func (m *Memory) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return 0, false, err
	}
	e, ok := m.data[key]
	if !ok || m.expired(e) {
		return 0, false, nil
	}
	if e.expiresAt.IsZero() {
		return 0, true, nil
	}
	return e.expiresAt.Sub(m.now()), true, nil
}

// Scan walks the keys in sorted order; the cursor is an offset into that order.
func (m *Memory) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
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

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, 0, err
	}
	all := make([]string, 0, len(m.data))
	for k := range m.data {
		all = append(all, k)
	}
	sort.Strings(all)

	if cursor >= uint64(len(all)) {
		return nil, 0, nil
	}
	end := cursor + uint64(count)
	if end > uint64(len(all)) {
		end = uint64(len(all))
	}
	var keys []string
	for _, k := range all[cursor:end] {
		if !m.expired(m.data[k]) && g.Match(k) {
			keys = append(keys, k)
		}
	}
	if end == uint64(len(all)) {
		end = 0
	}
	return keys, end, nil
}

// Ping reports the injected failure, if any.
func (m *Memory) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.check()
}

// Sweep deletes up to limit expired entries.
func (m *Memory) Sweep(ctx context.Context, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return 0, err
	}
	n := 0
	for k, e := range m.data {
		if n >= limit {
			break
		}
		if m.expired(e) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

// Close marks the client closed; later operations fail with ErrClosed.
func (m *Memory) Close() error {
	if m.sweeper != nil {
		m.sweeper.Stop()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

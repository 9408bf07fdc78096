// Package metrics provides cache runtime metrics collection, statistics, and reporting.
// Package metrics 提供缓存运行时指标采集、统计和输出功能。
//
// Operation counts and latencies are exported through Prometheus collectors.
// A small set of atomic counters backs Snapshot, which reports the hit ratio
// without scraping.
//
// 操作计数和延迟通过Prometheus收集器导出。一小组原子计数器支撑Snapshot，无需抓取即可报告命中率。
package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Level defines the metrics collection level.
// Level 定义指标采集级别。
type Level int

const (
	// Disabled means metrics collection is turned off.
	// Disabled 表示禁用指标采集。
	Disabled Level = iota

	// Basic enables operation counters only.
	// Basic 仅启用操作计数器。
	Basic

	// Detailed adds the latency histogram.
	// Detailed 额外启用延迟直方图。
	Detailed
)

// ParseLevel parses "disabled", "basic" or "detailed".
//
// ParseLevel 解析"disabled"、"basic"或"detailed"。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "disabled", "off":
		return Disabled, nil
	case "", "basic":
		return Basic, nil
	case "detailed":
		return Detailed, nil
	default:
		return Disabled, fmt.Errorf("invalid metrics level: %s", s)
	}
}

func (l Level) String() string {
	switch l {
	case Disabled:
		return "disabled"
	case Basic:
		return "basic"
	case Detailed:
		return "detailed"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Operation results recorded by Observe.
//
// Observe记录的操作结果。
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultOK    = "ok"
	ResultError = "error"
)

// Snapshot is a point-in-time view of the counters of one cache.
// Snapshot 是单个缓存计数器的时间点视图。
type Snapshot struct {
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	Errors   uint64  `json:"errors"`
	HitRatio float64 `json:"hit_ratio"`
}

type counters struct {
	hits   atomic.Uint64
	misses atomic.Uint64
	errors atomic.Uint64
}

func (c *counters) record(result string) {
	switch result {
	case ResultHit:
		c.hits.Add(1)
	case ResultMiss:
		c.misses.Add(1)
	case ResultError:
		c.errors.Add(1)
	}
}

func (c *counters) snapshot() Snapshot {
	s := Snapshot{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
	return s
}

// Timer measures the latency of one operation.
//
// Timer 测量单次操作的延迟。
type Timer struct {
	start time.Time
}

// StartTimer starts a timer.
//
// StartTimer 启动计时器。
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started.
//
// Elapsed 返回自计时器启动以来经过的时间。
func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

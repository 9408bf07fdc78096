package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// 默认的Prometheus指标前缀
	defaultNamespace = "rcache"
)

// Collector records cache operations into Prometheus metrics.
// One Collector serves any number of caches, told apart by the cache label.
//
// Collector 将缓存操作记录到Prometheus指标中。一个Collector可服务多个缓存，通过cache标签区分。
type Collector struct {
	level      Level
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec

	mu     sync.Mutex
	caches map[string]*counters
}

// NewCollector creates a Collector and registers its metrics with reg.
// If metrics with the same names are already registered, those are reused.
//
// NewCollector 创建Collector并将其指标注册到reg。如果同名指标已注册，则复用已注册的指标。
//
// Parameters:
//   - namespace: Metric name prefix, "rcache" when empty
//   - level: Collection level
//   - reg: Registerer to register with, prometheus.DefaultRegisterer when nil
//
// Returns:
//   - *Collector: The created collector
//   - error: Error if registration failed
func NewCollector(namespace string, level Level, reg prometheus.Registerer) (*Collector, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		level:  level,
		caches: make(map[string]*counters),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Cache operations by cache, operation and result.",
		}, []string{"cache", "op", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of cache operations including the backend round trip.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"cache", "op"}),
	}

	if level == Disabled {
		return c, nil
	}

	var err error
	if c.operations, err = register(reg, c.operations); err != nil {
		return nil, err
	}
	if level >= Detailed {
		if c.latency, err = register(reg, c.latency); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}

// Level returns the collection level.
//
// Level 返回采集级别。
func (c *Collector) Level() Level {
	return c.level
}

// Observe records one operation of cache.
//
// Observe 记录cache的一次操作。
//
// Parameters:
//   - cache: The cache name
//   - op: The operation, e.g. "get"
//   - result: One of ResultHit, ResultMiss, ResultOK, ResultError
//   - d: The operation latency
func (c *Collector) Observe(cache, op, result string, d time.Duration) {
	if c.level == Disabled {
		return
	}
	c.operations.WithLabelValues(cache, op, result).Inc()
	if c.level >= Detailed {
		c.latency.WithLabelValues(cache, op).Observe(d.Seconds())
	}
	c.countersFor(cache).record(result)
}

// Snapshot returns the hit/miss counters of cache.
//
// Snapshot 返回cache的命中/未命中计数器。
func (c *Collector) Snapshot(cache string) Snapshot {
	return c.countersFor(cache).snapshot()
}

func (c *Collector) countersFor(cache string) *counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	cs, ok := c.caches[cache]
	if !ok {
		cs = &counters{}
		c.caches[cache] = cs
	}
	return cs
}

// Handler returns an HTTP handler exposing the metrics gathered by g.
// A nil g uses prometheus.DefaultGatherer.
//
// Handler 返回暴露g所收集指标的HTTP处理器。g为nil时使用prometheus.DefaultGatherer。
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

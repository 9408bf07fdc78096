package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Humphrey-He/rcache/pkg/cache"
)

// benchConfig controls a bench run.
//
// benchConfig 控制一次压测运行。
type benchConfig struct {
	Duration  time.Duration // Run length / 运行时长
	Workers   int           // Concurrent clients / 并发客户端数
	KeySpace  int           // Number of distinct keys / 不同键的数量
	ValueSize int           // Value size in bytes / 值的大小（字节）
	ReadPct   int           // Share of reads, 0..100 / 读操作占比
	TTL       time.Duration // TTL of written entries / 写入条目的TTL
}

func (c benchConfig) validate() error {
	switch {
	case c.Duration <= 0:
		return errors.New("duration must be positive")
	case c.Workers <= 0:
		return errors.New("workers must be positive")
	case c.KeySpace <= 0:
		return errors.New("keys must be positive")
	case c.ValueSize < 0:
		return errors.New("value-size must not be negative")
	case c.ReadPct < 0 || c.ReadPct > 100:
		return errors.New("read-pct must be between 0 and 100")
	}
	return nil
}

// benchStats collects the results of a bench run. Counters are updated
// atomically by the workers; latencies are appended under mu.
//
// benchStats 收集压测结果。计数器由工作协程原子更新，延迟在mu保护下追加。
type benchStats struct {
	Reads, Writes  int64
	Hits, Misses   int64
	Errors         int64
	Elapsed        time.Duration
	mu             sync.Mutex
	latencies      []time.Duration
	firstErr       error
	errSeen        int32
}

func (s *benchStats) record(d time.Duration, err error) {
	if err != nil {
		atomic.AddInt64(&s.Errors, 1)
		if atomic.CompareAndSwapInt32(&s.errSeen, 0, 1) {
			s.mu.Lock()
			s.firstErr = err
			s.mu.Unlock()
		}
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.mu.Unlock()
}

func (s *benchStats) total() int64 {
	return atomic.LoadInt64(&s.Reads) + atomic.LoadInt64(&s.Writes)
}

// percentile returns the p-th percentile latency. Must be called after the
// workers have stopped.
func (s *benchStats) percentile(p float64) time.Duration {
	if len(s.latencies) == 0 {
		return 0
	}
	idx := int(float64(len(s.latencies)-1) * p)
	return s.latencies[idx]
}

func newBenchCmd(a *app) *cobra.Command {
	cfg := benchConfig{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a read/write load against the cache and report throughput and latency",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			stats, err := runBench(cmd.Context(), a.cache, cfg)
			if err != nil {
				return err
			}
			printBench(cmd.OutOrStdout(), cfg, stats)
			return nil
		}),
	}
	flags := cmd.Flags()
	flags.DurationVar(&cfg.Duration, "duration", 10*time.Second, "how long to run")
	flags.IntVar(&cfg.Workers, "workers", 10, "number of concurrent workers")
	flags.IntVar(&cfg.KeySpace, "keys", 10000, "number of distinct keys")
	flags.IntVar(&cfg.ValueSize, "value-size", 1024, "size of written values in bytes")
	flags.IntVar(&cfg.ReadPct, "read-pct", 80, "percentage of reads")
	flags.DurationVar(&cfg.TTL, "ttl", 5*time.Minute, "TTL of written entries")
	return cmd
}

// runBench drives cfg.Workers goroutines against c until cfg.Duration has
// passed or ctx is cancelled. Operation errors are counted, not returned.
//
// Parameters:
//   - ctx: Context for cancellation
//   - c: The cache under load
//   - cfg: The bench configuration
//
// Returns:
//   - *benchStats: The collected statistics, latencies sorted ascending
//   - error: Only when the run itself could not complete
//
// runBench 启动cfg.Workers个协程对c施加负载，直到cfg.Duration结束或ctx被取消。操作错误只计数，不返回。
//
// 参数:
//   - ctx: 用于取消的上下文
//   - c: 被压测的缓存
//   - cfg: 压测配置
//
// 返回:
//   - *benchStats: 收集的统计信息，延迟已升序排列
//   - error: 仅当运行本身无法完成时返回
func runBench(ctx context.Context, c cache.Cache, cfg benchConfig) (*benchStats, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	stats := &benchStats{}
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Workers; i++ {
		seed := int64(i) + start.UnixNano()
		g.Go(func() error {
			benchWorker(ctx, c, cfg, stats, rand.New(rand.NewSource(seed)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats.Elapsed = time.Since(start)

	sort.Slice(stats.latencies, func(i, j int) bool { return stats.latencies[i] < stats.latencies[j] })
	return stats, nil
}

func benchWorker(ctx context.Context, c cache.Cache, cfg benchConfig, stats *benchStats, r *rand.Rand) {
	value := make([]byte, cfg.ValueSize)
	r.Read(value)

	for ctx.Err() == nil {
		key := "bench:" + strconv.Itoa(r.Intn(cfg.KeySpace))
		read := r.Intn(100) < cfg.ReadPct
		begin := time.Now()
		var (
			found bool
			err   error
		)
		if read {
			_, found, err = c.Get(ctx, key)
		} else {
			_, err = c.Set(ctx, key, value, cfg.TTL)
		}
		// The deadline firing mid-call is the end of the run, not a failure.
		if err != nil && ctx.Err() != nil {
			return
		}
		stats.record(time.Since(begin), err)

		switch {
		case !read:
			atomic.AddInt64(&stats.Writes, 1)
		case err != nil:
			atomic.AddInt64(&stats.Reads, 1)
		case found:
			atomic.AddInt64(&stats.Reads, 1)
			atomic.AddInt64(&stats.Hits, 1)
		default:
			atomic.AddInt64(&stats.Reads, 1)
			atomic.AddInt64(&stats.Misses, 1)
		}
	}
}

func printBench(w io.Writer, cfg benchConfig, s *benchStats) {
	total := s.total()
	rps := 0.0
	if s.Elapsed > 0 {
		rps = float64(total) / s.Elapsed.Seconds()
	}
	hitRatio := 0.0
	if s.Hits+s.Misses > 0 {
		hitRatio = float64(s.Hits) / float64(s.Hits+s.Misses) * 100
	}

	fmt.Fprintf(w, "workers:     %d\n", cfg.Workers)
	fmt.Fprintf(w, "elapsed:     %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "operations:  %d (%.0f/s)\n", total, rps)
	fmt.Fprintf(w, "reads:       %d\n", s.Reads)
	fmt.Fprintf(w, "writes:      %d\n", s.Writes)
	fmt.Fprintf(w, "hit ratio:   %.2f%%\n", hitRatio)
	fmt.Fprintf(w, "errors:      %d\n", s.Errors)
	fmt.Fprintf(w, "latency p50: %s\n", s.percentile(0.50))
	fmt.Fprintf(w, "latency p95: %s\n", s.percentile(0.95))
	fmt.Fprintf(w, "latency p99: %s\n", s.percentile(0.99))
	if len(s.latencies) > 0 {
		fmt.Fprintf(w, "latency max: %s\n", s.latencies[len(s.latencies)-1])
	}
	if s.firstErr != nil {
		fmt.Fprintf(w, "first error: %v\n", s.firstErr)
	}
}

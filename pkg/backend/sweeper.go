package backend

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// defaultSweepLimit bounds how many records one sweep deletes.
const defaultSweepLimit = 10000

// Sweepable is a client whose expiry is lazy and can be enforced in bulk.
//
// Sweepable 是过期为惰性处理、可批量执行过期的客户端。
type Sweepable interface {
	// Sweep deletes up to limit expired records and returns how many it deleted.
	// Sweep 删除最多limit条过期记录，并返回删除的数量。
	Sweep(ctx context.Context, limit int) (int, error)
}

// SweepStats reports the work done by a Sweeper.
//
// SweepStats 报告Sweeper完成的工作。
type SweepStats struct {
	Runs         uint64        // Completed sweeps / 完成的清理次数
	Expired      uint64        // Records deleted / 删除的记录数
	LastDuration time.Duration // Duration of the last sweep / 最近一次清理的耗时
}

// Sweeper periodically deletes the expired records of a Sweepable so that
// keys nobody reads again do not accumulate on disk.
//
// Sweeper 定期删除Sweepable的过期记录，使不再被读取的键不会在磁盘上累积。
type Sweeper struct {
	target   Sweepable
	interval time.Duration
	limit    int

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup

	runs         atomic.Uint64
	expired      atomic.Uint64
	lastDuration atomic.Int64
}

// NewSweeper starts sweeping target every interval.
//
// Parameters:
//   - target: The client to sweep
//   - interval: Time between sweeps, must be positive
//   - limit: Maximum records deleted per sweep, <= 0 uses the default
//
// Returns:
//   - *Sweeper: A running sweeper, stop it with Stop
//
// NewSweeper 每隔interval清理一次target。
//
// 参数:
//   - target: 要清理的客户端
//   - interval: 清理间隔，必须为正
//   - limit: 每次清理删除的最大记录数，<= 0时使用默认值
//
// 返回:
//   - *Sweeper: 运行中的清理器，使用Stop停止
func NewSweeper(target Sweepable, interval time.Duration, limit int) *Sweeper {
	if limit <= 0 {
		limit = defaultSweepLimit
	}
	s := &Sweeper{
		target:   target,
		interval: interval,
		limit:    limit,
		done:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepNow()
		case <-s.done:
			return
		}
	}
}

// SweepNow runs one sweep synchronously.
//
// SweepNow 同步执行一次清理。
func (s *Sweeper) SweepNow() {
	start := time.Now()
	n, err := s.target.Sweep(context.Background(), s.limit)
	if err != nil {
		log.Warn().Err(err).Msg("backend: sweeping expired records failed")
	}
	s.runs.Add(1)
	s.expired.Add(uint64(n))
	s.lastDuration.Store(int64(time.Since(start)))
}

// Stats returns the sweeper's counters.
//
// Stats 返回清理器的计数器。
func (s *Sweeper) Stats() SweepStats {
	return SweepStats{
		Runs:         s.runs.Load(),
		Expired:      s.expired.Load(),
		LastDuration: time.Duration(s.lastDuration.Load()),
	}
}

// Stop ends the sweep loop and waits for a running sweep to finish.
// It is safe to call more than once.
//
// Stop 结束清理循环并等待正在运行的清理完成。可以多次调用。
func (s *Sweeper) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

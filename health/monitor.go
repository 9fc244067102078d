// Package health runs the periodic health reporting for a pool manager. The
// monitor only observes: it snapshots the manager's counters on a timer and
// hands events to an injected sink. Whether anything acts on a signal is the
// sink consumer's decision.
package health

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kunleulysses/August9teen-sub020/spiralmem"
)

// DefaultInterval is the reporting period.
const DefaultInterval = 5 * time.Second

// ReferenceCapacity is the fixed capacity the usage ratio is measured
// against, in logical units (100 MiB-equivalent).
const ReferenceCapacity = 100 << 20

// usageAlarmRatio is the usage share of the reference capacity above which
// the monitor signals that a collection is needed.
const usageAlarmRatio = 0.9

// A HealthEvent is emitted on every monitor tick.
type HealthEvent struct {
	PoolCount           uint64
	MemoryUsage         uint64
	SpiralEfficiency    float64
	ResonanceEfficiency float64

	// Timestamp is in milliseconds since the Unix epoch.
	Timestamp uint64
}

// A GCNeededEvent is emitted from the same tick when the usage ratio
// crosses the alarm threshold.
type GCNeededEvent struct {
	Reason      string
	MemoryUsage uint64
	Threshold   float64
}

// An EventSink receives monitor signals. Implementations must return
// quickly; the monitor calls them from its timer goroutine.
type EventSink interface {
	HealthReported(e HealthEvent)
	GCNeeded(e GCNeededEvent)
}

// A StatsSource is the read-only slice of the pool manager the monitor
// consumes.
type StatsSource interface {
	Stats() spiralmem.StatsSnapshot
	PoolCount() int
}

// Monitor periodically reads a StatsSource and reports to an EventSink. It
// never mutates the source and never runs a collection itself.
type Monitor struct {
	source   StatsSource
	sink     EventSink
	interval time.Duration
	capacity uint64
	clock    func() time.Time

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running int32
}

// Start launches the monitoring goroutine. Starting an already-running
// monitor does nothing.
func (m *Monitor) Start(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&m.running, 0, 1) {
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CheckNow()
			}
		}
	}()
}

// Stop cancels the monitoring goroutine and waits for it to drain. Stopping
// a monitor that is not running does nothing.
func (m *Monitor) Stop() {
	if !atomic.CompareAndSwapInt32(&m.running, 1, 0) {
		return
	}

	m.cancel()
	m.wg.Wait()
}

// CheckNow takes one snapshot and emits the resulting events. It holds no
// lock across the emission; the snapshot is a value copy.
func (m *Monitor) CheckNow() {
	stats := m.source.Stats()
	poolCount := m.source.PoolCount()
	now := m.clock()

	usage := uint64(0)
	if stats.TotalAllocated > 0 {
		usage = uint64(stats.TotalAllocated)
	}

	m.sink.HealthReported(HealthEvent{
		PoolCount:           uint64(poolCount),
		MemoryUsage:         usage,
		SpiralEfficiency:    stats.SpiralEfficiency,
		ResonanceEfficiency: stats.ResonanceEfficiency,
		Timestamp:           uint64(now.UnixMilli()),
	})

	ratio := float64(usage) / float64(m.capacity)
	if ratio > usageAlarmRatio {
		m.sink.GCNeeded(GCNeededEvent{
			Reason: fmt.Sprintf(
				"memory usage at %.1f%% of reference capacity", ratio*100),
			MemoryUsage: usage,
			Threshold:   usageAlarmRatio,
		})
	}
}

package datarecording

import (
	"github.com/kunleulysses/August9teen-sub020/health"
)

const (
	healthEventsTable = "health_events"
	gcNeededTable     = "gc_needed_events"
)

type healthEventEntry struct {
	PoolCount           uint64
	MemoryUsage         uint64
	SpiralEfficiency    float64
	ResonanceEfficiency float64
	Timestamp           uint64
}

type gcNeededEntry struct {
	Reason      string
	MemoryUsage uint64
	Threshold   float64
}

// A RecordingSink persists health monitor signals. Wrap it with an
// acting sink when the consumer should also respond to GC pressure.
type RecordingSink struct {
	backend DataRecorder
}

// NewRecordingSink creates the sink and its backing tables.
func NewRecordingSink(backend DataRecorder) *RecordingSink {
	backend.CreateTable(healthEventsTable, healthEventEntry{})
	backend.CreateTable(gcNeededTable, gcNeededEntry{})

	return &RecordingSink{backend: backend}
}

// HealthReported records a periodic health event.
func (s *RecordingSink) HealthReported(e health.HealthEvent) {
	s.backend.InsertData(healthEventsTable, healthEventEntry{
		PoolCount:           e.PoolCount,
		MemoryUsage:         e.MemoryUsage,
		SpiralEfficiency:    e.SpiralEfficiency,
		ResonanceEfficiency: e.ResonanceEfficiency,
		Timestamp:           e.Timestamp,
	})
}

// GCNeeded records a collection-pressure signal.
func (s *RecordingSink) GCNeeded(e health.GCNeededEvent) {
	s.backend.InsertData(gcNeededTable, gcNeededEntry{
		Reason:      e.Reason,
		MemoryUsage: e.MemoryUsage,
		Threshold:   e.Threshold,
	})
}

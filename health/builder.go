package health

import "time"

// A Builder assembles Monitors.
type Builder struct {
	source   StatsSource
	sink     EventSink
	interval time.Duration
	capacity uint64
	clock    func() time.Time
}

// MakeBuilder returns a Builder with the default interval and reference
// capacity.
func MakeBuilder() Builder {
	return Builder{
		interval: DefaultInterval,
		capacity: ReferenceCapacity,
		clock:    time.Now,
	}
}

// WithSource sets the stats source to observe.
func (b Builder) WithSource(s StatsSource) Builder {
	b.source = s
	return b
}

// WithSink sets the sink events are delivered to.
func (b Builder) WithSink(s EventSink) Builder {
	b.sink = s
	return b
}

// WithInterval overrides the reporting period.
func (b Builder) WithInterval(d time.Duration) Builder {
	b.interval = d
	return b
}

// WithReferenceCapacity overrides the capacity the usage ratio is measured
// against.
func (b Builder) WithReferenceCapacity(c uint64) Builder {
	b.capacity = c
	return b
}

// WithClock replaces the time source.
func (b Builder) WithClock(clock func() time.Time) Builder {
	b.clock = clock
	return b
}

// Build creates the Monitor.
func (b Builder) Build() *Monitor {
	if b.source == nil {
		panic("health: monitor requires a stats source")
	}
	if b.sink == nil {
		panic("health: monitor requires an event sink")
	}
	if b.interval <= 0 {
		panic("health: interval must be positive")
	}
	if b.capacity == 0 {
		panic("health: reference capacity must be positive")
	}

	return &Monitor{
		source:   b.source,
		sink:     b.sink,
		interval: b.interval,
		capacity: b.capacity,
		clock:    b.clock,
	}
}

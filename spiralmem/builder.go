package spiralmem

import (
	"time"

	"github.com/kunleulysses/August9teen-sub020/idgen"
)

// A Builder assembles Managers.
type Builder struct {
	ids   idgen.Generator
	clock func() time.Time
}

// MakeBuilder returns a Builder with the default configuration: xid-backed
// pool handles and the wall clock.
func MakeBuilder() Builder {
	return Builder{
		ids:   idgen.New("pool"),
		clock: time.Now,
	}
}

// WithIDGenerator replaces the handle generator. Tests use
// idgen.NewSequential for deterministic ids.
func (b Builder) WithIDGenerator(g idgen.Generator) Builder {
	b.ids = g
	return b
}

// WithClock replaces the time source.
func (b Builder) WithClock(clock func() time.Time) Builder {
	b.clock = clock
	return b
}

// Build creates the Manager.
func (b Builder) Build() *Manager {
	return &Manager{
		pools:     make(map[string]*Pool),
		resonance: NewResonanceTracker(),
		ids:       b.ids,
		clock:     b.clock,
	}
}

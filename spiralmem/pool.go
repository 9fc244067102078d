package spiralmem

import (
	"math"
	"time"
)

// A Position is the descriptive spiral placement of a pool. Positions never
// gate allocate, deallocate, or collection decisions; only the turn count
// they derive from feeds back into other computations.
type Position struct {
	X float64
	Y float64
	Z float64
}

// PositionFor places a pool on the golden spiral.
func PositionFor(turns int, cfg ConfigVector) Position {
	angle := float64(turns) * Phi * math.Pi

	return Position{
		X: math.Cos(angle) * cfg.C1,
		Y: math.Sin(angle) * cfg.C1,
		Z: float64(turns) * cfg.C1,
	}
}

// A Pool is one logical memory block tracked by the Manager.
type Pool struct {
	ID   string
	Kind string

	LogicalSize int64
	Turns       int
	Position    Position

	// ResonanceLevel is the [0, 1] score summarizing the pool's vector at
	// creation; collection passes may refresh it against the caller's
	// current vector.
	ResonanceLevel float64

	// ConfigSnapshot is the vector recorded at creation. It is never
	// rewritten; divergence is always measured against the caller's
	// current vector.
	ConfigSnapshot ConfigVector

	CreatedAt      time.Time
	LastAccessedAt time.Time
	AccessCount    uint64

	// Specialization is fixed at allocation so the usage counters
	// increment and decrement from the same facts.
	spiralQualified    bool
	resonanceQualified bool
}

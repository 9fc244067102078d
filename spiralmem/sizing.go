package spiralmem

import (
	"fmt"
	"math"
)

// Phi is the golden ratio, the fixed scaling constant used throughout the
// engine.
const Phi = 1.6180339887498948

// A Sizing holds the logical dimensions computed for an allocation request.
type Sizing struct {
	// LogicalSize is the bookkeeping size of the pool, always at least 1.
	LogicalSize int64

	// Turns is the number of spiral turns the pool occupies.
	Turns int

	// ResonanceFrequency is the base frequency assigned to the pool.
	ResonanceFrequency float64
}

// ComputeSizing maps a requested size and a config vector to logical pool
// dimensions. It is pure; for a fixed C1 the logical size grows strictly
// with the requested size.
func ComputeSizing(requestedSize int64, cfg ConfigVector) (Sizing, error) {
	if requestedSize <= 0 {
		return Sizing{}, fmt.Errorf(
			"spiralmem: requested size %d must be positive: %w",
			requestedSize, ErrInvalidConfig)
	}

	if err := cfg.Validate(); err != nil {
		return Sizing{}, err
	}

	logicalSize := int64(math.Ceil(float64(requestedSize) * cfg.C1))
	if logicalSize < 1 {
		logicalSize = 1
	}

	return Sizing{
		LogicalSize:        logicalSize,
		Turns:              turnsFor(cfg),
		ResonanceFrequency: cfg.C3 * 100,
	}, nil
}

func turnsFor(cfg ConfigVector) int {
	return int(math.Ceil(cfg.C2 * 10))
}

// PhiCompliance reports how close the size-to-turns ratio of a sizing is to
// Phi, on a [0, 1] scale. The metric feeds reports only; no control decision
// reads it.
func PhiCompliance(s Sizing) float64 {
	if s.Turns == 0 {
		return 0
	}

	ratio := float64(s.LogicalSize) / float64(s.Turns)
	deviation := math.Abs(ratio-Phi) / Phi
	if deviation > 1 {
		return 0
	}

	return 1 - deviation
}

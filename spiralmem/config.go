// Package spiralmem implements a logical memory-pool engine. Pools are
// bookkeeping records sized and positioned by a three-slot config vector;
// no physical memory stands behind them. The Manager owns the registry and
// funnels every mutation through a single writer lock, while the sizing,
// resonance, and eviction computations stay pure so they can be tested in
// isolation.
package spiralmem

import "fmt"

// A ConfigVector biases sizing, positioning, and eviction decisions. The
// slots are ordered by priority: C1 (primary) scales sizes, C2 (secondary)
// controls spiral turns, and C3 (tertiary) sets the resonance frequency.
// Each slot lives in [0, 1].
type ConfigVector struct {
	C1 float64
	C2 float64
	C3 float64
}

// DefaultConfig is substituted whenever a caller hands in the zero value.
var DefaultConfig = ConfigVector{C1: 0.862, C2: 0.8, C3: 0.85}

// IsZero reports whether c is the zero value.
func (c ConfigVector) IsZero() bool {
	return c == ConfigVector{}
}

// OrDefault returns c, or DefaultConfig when c is the zero value.
func (c ConfigVector) OrDefault() ConfigVector {
	if c.IsZero() {
		return DefaultConfig
	}
	return c
}

// Mean returns the average of the three slots.
func (c ConfigVector) Mean() float64 {
	return (c.C1 + c.C2 + c.C3) / 3
}

// Validate checks that every slot is within [0, 1] and that C1 is strictly
// positive. A zero C1 would size every pool to nothing, so it is rejected
// instead of silently producing zero-capacity records.
func (c ConfigVector) Validate() error {
	if c.C1 <= 0 || c.C1 > 1 {
		return fmt.Errorf("spiralmem: c1 %v outside (0, 1]: %w",
			c.C1, ErrInvalidConfig)
	}

	if c.C2 < 0 || c.C2 > 1 {
		return fmt.Errorf("spiralmem: c2 %v outside [0, 1]: %w",
			c.C2, ErrInvalidConfig)
	}

	if c.C3 < 0 || c.C3 > 1 {
		return fmt.Errorf("spiralmem: c3 %v outside [0, 1]: %w",
			c.C3, ErrInvalidConfig)
	}

	return nil
}

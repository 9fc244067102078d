package spiralmem

import (
	"math"
	"time"
)

// StalenessThreshold is the idle bound past which a pool is always
// eviction-eligible, whatever its alignment.
const StalenessThreshold = 60 * time.Second

// alignmentFloor is the alignment below which a pool's recorded vector has
// diverged too far from the caller's to keep the pool alive.
const alignmentFloor = 0.5

// specializationCeiling is the slot value above which a cleanup method is
// dedicated to that slot.
const specializationCeiling = 0.9

// CleanupMethod names the bookkeeping routine run when a pool is released.
type CleanupMethod int

// The four cleanup methods. The highest-priority slot above the
// specialization ceiling selects its dedicated method; C1 outranks C2
// outranks C3.
const (
	CleanupGeneric CleanupMethod = iota
	CleanupPhi
	CleanupSecondary
	CleanupTertiary
)

func (m CleanupMethod) String() string {
	switch m {
	case CleanupPhi:
		return "phi"
	case CleanupSecondary:
		return "secondary"
	case CleanupTertiary:
		return "tertiary"
	default:
		return "generic"
	}
}

// SelectCleanupMethod picks the cleanup routine for a pool from its recorded
// vector.
func SelectCleanupMethod(snapshot ConfigVector) CleanupMethod {
	switch {
	case snapshot.C1 > specializationCeiling:
		return CleanupPhi
	case snapshot.C2 > specializationCeiling:
		return CleanupSecondary
	case snapshot.C3 > specializationCeiling:
		return CleanupTertiary
	default:
		return CleanupGeneric
	}
}

// Alignment measures the similarity of two config vectors: 1 means
// identical, 0 maximally divergent.
func Alignment(a, b ConfigVector) float64 {
	distance := math.Abs(a.C1-b.C1) +
		math.Abs(a.C2-b.C2) +
		math.Abs(a.C3-b.C3)

	if distance > 1 {
		return 0
	}

	return 1 - distance
}

// Eligible decides whether a pool may be collected: either its recorded
// vector has drifted below the alignment floor relative to the current one,
// or the pool has sat idle past the staleness threshold. The decision is
// monotonic in both idle time and divergence.
func Eligible(p Pool, current ConfigVector, now time.Time) bool {
	if Alignment(p.ConfigSnapshot, current) < alignmentFloor {
		return true
	}

	return now.Sub(p.LastAccessedAt) > StalenessThreshold
}

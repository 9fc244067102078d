package spiralmem

// statistics accumulates pool accounting. Only the Manager writes it, under
// its registry lock; readers get value copies through StatsSnapshot.
type statistics struct {
	totalAllocated   int64
	spiralUsage      int64
	resonanceUsage   int64
	garbageCollected int64
	allocationCount  uint64
}

// A StatsSnapshot is a read-only view of the manager's counters. Two
// snapshots taken with no mutation in between compare equal.
type StatsSnapshot struct {
	// TotalAllocated is the sum of logical sizes of all live pools.
	TotalAllocated int64

	// SpiralUsage and ResonanceUsage are the logical bytes held by pools
	// that qualified as specialized at allocation time.
	SpiralUsage    int64
	ResonanceUsage int64

	// GarbageCollected accumulates the logical bytes of every released
	// pool, explicit or collected.
	GarbageCollected int64

	// AllocationCount counts allocations over the manager's lifetime.
	AllocationCount uint64

	// SpiralEfficiency and ResonanceEfficiency are the specialized shares
	// of TotalAllocated, defaulting to 1 on an empty registry.
	SpiralEfficiency    float64
	ResonanceEfficiency float64
}

func (s *statistics) snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		TotalAllocated:      s.totalAllocated,
		SpiralUsage:         s.spiralUsage,
		ResonanceUsage:      s.resonanceUsage,
		GarbageCollected:    s.garbageCollected,
		AllocationCount:     s.allocationCount,
		SpiralEfficiency:    1,
		ResonanceEfficiency: 1,
	}

	if s.totalAllocated > 0 {
		snap.SpiralEfficiency =
			float64(s.spiralUsage) / float64(s.totalAllocated)
		snap.ResonanceEfficiency =
			float64(s.resonanceUsage) / float64(s.totalAllocated)
	}

	return snap
}

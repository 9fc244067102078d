package spiralmem

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/kunleulysses/August9teen-sub020/idgen"
)

// reoptimizeFloor is the resonance level below which a surviving pool is
// repositioned against the caller's vector during a collection pass.
const reoptimizeFloor = 0.7

// spiralTurnsFloor is the turn count at which an allocation counts toward
// spiral usage.
const spiralTurnsFloor = 5

// resonanceUsageFloor is the resonance level above which an allocation
// counts toward resonance usage.
const resonanceUsageFloor = 0.5

// An AllocationHandle is returned for every successful allocation. It
// carries the pool id and copies of the computed metadata.
type AllocationHandle struct {
	ID        string
	Sizing    Sizing
	Position  Position
	Resonance ResonanceMeta
}

// A GCReport summarizes one collection pass.
type GCReport struct {
	CollectedCount int
	CollectedIDs   []string

	// Failed lists pools that were eligible but could not be released.
	// A failure never aborts the pass.
	Failed []GCFailure

	// Reoptimized counts surviving pools repositioned during the pass.
	Reoptimized int
}

// A GCFailure records one pool skipped during a collection pass.
type GCFailure struct {
	ID  string
	Err error
}

// Manager owns the pool registry. Every mutating operation runs under the
// single writer lock so that each id maps to at most one live pool and the
// counters never double-count; reads take the reader side and copy out.
type Manager struct {
	mu        sync.RWMutex
	pools     map[string]*Pool
	resonance *ResonanceTracker
	stats     statistics

	ids   idgen.Generator
	clock func() time.Time

	hookableBase
}

// NewManager builds a Manager with the default id generator and wall clock.
func NewManager() *Manager {
	return MakeBuilder().Build()
}

// Allocate creates a pool for the requested size under the given vector. A
// zero cfg falls back to DefaultConfig. Failures are reported as error
// values; an allocation that cannot proceed leaves the registry untouched.
func (m *Manager) Allocate(
	size int64,
	cfg ConfigVector,
	kind string,
) (AllocationHandle, error) {
	cfg = cfg.OrDefault()

	sizing, err := ComputeSizing(size, cfg)
	if err != nil {
		return AllocationHandle{}, err
	}

	m.mu.Lock()

	id := m.ids.Generate()
	if _, exists := m.pools[id]; exists {
		m.mu.Unlock()
		return AllocationHandle{}, fmt.Errorf(
			"spiralmem: generator repeated live id %s: %w",
			id, ErrInternalInconsistency)
	}

	now := m.clock()
	meta := m.resonance.Track(id, cfg)
	p := &Pool{
		ID:                 id,
		Kind:               kind,
		LogicalSize:        sizing.LogicalSize,
		Turns:              sizing.Turns,
		Position:           PositionFor(sizing.Turns, cfg),
		ResonanceLevel:     meta.Level,
		ConfigSnapshot:     cfg,
		CreatedAt:          now,
		LastAccessedAt:     now,
		AccessCount:        1,
		spiralQualified:    sizing.Turns >= spiralTurnsFloor,
		resonanceQualified: meta.Level > resonanceUsageFloor,
	}
	m.pools[id] = p

	m.stats.totalAllocated += p.LogicalSize
	m.stats.allocationCount++
	if p.spiralQualified {
		m.stats.spiralUsage += p.LogicalSize
	}
	if p.resonanceQualified {
		m.stats.resonanceUsage += p.LogicalSize
	}

	handle := AllocationHandle{
		ID:        id,
		Sizing:    sizing,
		Position:  p.Position,
		Resonance: meta,
	}
	poolCopy := *p

	m.mu.Unlock()

	m.invokeHook(HookCtx{
		Pos:  HookPosAfterAllocate,
		Now:  now,
		Pool: poolCopy,
	})

	return handle, nil
}

// Deallocate releases the pool behind id. The vector selects the cleanup
// method's validation context only; an unknown id yields ErrNotFound and
// leaves the counters untouched.
func (m *Manager) Deallocate(id string, cfg ConfigVector) error {
	cfg = cfg.OrDefault()
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	now := m.clock()
	poolCopy, method, err := m.releaseLocked(id)
	m.mu.Unlock()

	if err != nil {
		return err
	}

	m.invokeHook(HookCtx{
		Pos:    HookPosAfterDeallocate,
		Now:    now,
		Pool:   poolCopy,
		Method: method,
	})

	return nil
}

// releaseLocked removes a pool and settles its counters. The caller holds
// the write lock.
func (m *Manager) releaseLocked(id string) (Pool, CleanupMethod, error) {
	p, ok := m.pools[id]
	if !ok {
		return Pool{}, CleanupGeneric,
			fmt.Errorf("spiralmem: pool %s: %w", id, ErrNotFound)
	}

	if m.stats.totalAllocated < p.LogicalSize {
		log.Printf(
			"spiralmem: refusing to release %s: total %d below pool size %d",
			id, m.stats.totalAllocated, p.LogicalSize)
		return Pool{}, CleanupGeneric, fmt.Errorf(
			"spiralmem: counter underflow releasing %s: %w",
			id, ErrInternalInconsistency)
	}

	method := SelectCleanupMethod(p.ConfigSnapshot)
	runCleanup(method, p)

	m.resonance.Untrack(id)
	delete(m.pools, id)

	m.stats.totalAllocated -= p.LogicalSize
	m.stats.garbageCollected += p.LogicalSize
	if p.spiralQualified {
		m.stats.spiralUsage -= p.LogicalSize
	}
	if p.resonanceQualified {
		m.stats.resonanceUsage -= p.LogicalSize
	}

	return *p, method, nil
}

// runCleanup settles the record before it leaves the registry. The routines
// are bookkeeping only; pools are logical and no memory is handed back to
// anything. They stay as separate dispatch targets so per-method accounting
// can grow without touching the release path.
func runCleanup(method CleanupMethod, p *Pool) {
	switch method {
	case CleanupPhi:
		p.Position = Position{}
	case CleanupSecondary:
		p.Turns = 0
	case CleanupTertiary:
		p.ResonanceLevel = 0
	case CleanupGeneric:
		// Nothing to settle.
	}
}

// GarbageCollect scans the registry, releases every eligible pool, and then
// repositions surviving pools whose resonance level has fallen below the
// re-optimization floor. A failure on one pool is recorded in the report and
// the scan continues.
func (m *Manager) GarbageCollect(cfg ConfigVector) (GCReport, error) {
	cfg = cfg.OrDefault()
	if err := cfg.Validate(); err != nil {
		return GCReport{}, err
	}

	m.mu.Lock()
	now := m.clock()

	victims := make([]string, 0)
	for id, p := range m.pools {
		if Eligible(*p, cfg, now) {
			victims = append(victims, id)
		}
	}
	sort.Strings(victims)

	var report GCReport
	var released []HookCtx

	for _, id := range victims {
		poolCopy, method, err := m.releaseLocked(id)
		if err != nil {
			log.Printf("spiralmem: gc: skipping %s: %v", id, err)
			report.Failed = append(report.Failed,
				GCFailure{ID: id, Err: err})
			continue
		}

		report.CollectedIDs = append(report.CollectedIDs, id)
		report.CollectedCount++
		released = append(released, HookCtx{
			Pos:    HookPosAfterDeallocate,
			Now:    now,
			Pool:   poolCopy,
			Method: method,
		})
	}

	report.Reoptimized = m.reoptimizeLocked(cfg)

	m.mu.Unlock()

	for _, ctx := range released {
		m.invokeHook(ctx)
	}
	m.invokeHook(HookCtx{
		Pos:    HookPosAfterGC,
		Now:    now,
		Report: &report,
	})

	return report, nil
}

// reoptimizeLocked repositions eviction-adjacent survivors against the
// caller's vector. Snapshots are never rewritten. The caller holds the
// write lock.
func (m *Manager) reoptimizeLocked(cfg ConfigVector) int {
	count := 0

	for _, p := range m.pools {
		if p.ResonanceLevel >= reoptimizeFloor {
			continue
		}

		meta, ok := m.resonance.Update(p.ID, cfg)
		if !ok {
			log.Printf(
				"spiralmem: gc: pool %s has no resonance metadata", p.ID)
			continue
		}

		p.Turns = turnsFor(cfg)
		p.Position = PositionFor(p.Turns, cfg)
		p.ResonanceLevel = meta.Level
		count++
	}

	return count
}

// UpdateResonance recomputes the resonance metadata for id against cfg and
// touches the pool's access bookkeeping.
func (m *Manager) UpdateResonance(id string, cfg ConfigVector) error {
	cfg = cfg.OrDefault()
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pools[id]
	if !ok {
		return fmt.Errorf("spiralmem: pool %s: %w", id, ErrNotFound)
	}

	meta, ok := m.resonance.Update(id, cfg)
	if !ok {
		return fmt.Errorf(
			"spiralmem: pool %s registered without resonance metadata: %w",
			id, ErrInternalInconsistency)
	}

	p.ResonanceLevel = meta.Level
	p.LastAccessedAt = m.clock()
	p.AccessCount++

	return nil
}

// Stats returns a copy of the manager's counters.
func (m *Manager) Stats() StatsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.stats.snapshot()
}

// PoolCount returns the number of live pools.
func (m *Manager) PoolCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.pools)
}

// Pool returns a copy of the pool behind id.
func (m *Manager) Pool(id string) (Pool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pools[id]
	if !ok {
		return Pool{}, false
	}

	return *p, true
}

// PoolIDs returns the ids of all live pools in sorted order.
func (m *Manager) PoolIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.pools))
	for id := range m.pools {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Resonance returns a copy of the resonance metadata tracked for id.
func (m *Manager) Resonance(id string) (ResonanceMeta, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.resonance.Meta(id)
}

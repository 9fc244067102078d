package spiralmem

// ResonanceMeta is the derived metadata kept per tracked pool. Every field
// follows from the config vector handed in; the tracker holds no other
// state.
type ResonanceMeta struct {
	Level     float64
	Frequency float64
	Harmonics [4]float64
}

func computeResonance(cfg ConfigVector) ResonanceMeta {
	f := cfg.C3 * 100

	return ResonanceMeta{
		Level:     cfg.Mean(),
		Frequency: f,
		Harmonics: [4]float64{f * Phi, f / Phi, f * 2, f / 2},
	}
}

// A ResonanceTracker keeps resonance metadata per pool id. It carries no
// lock of its own; the Manager serializes access through its registry lock.
type ResonanceTracker struct {
	meta map[string]ResonanceMeta
}

// NewResonanceTracker returns an empty tracker.
func NewResonanceTracker() *ResonanceTracker {
	return &ResonanceTracker{meta: make(map[string]ResonanceMeta)}
}

// Track computes and stores the metadata for id, replacing any previous
// entry.
func (t *ResonanceTracker) Track(id string, cfg ConfigVector) ResonanceMeta {
	m := computeResonance(cfg)
	t.meta[id] = m
	return m
}

// Update recomputes level and frequency for a tracked id. Unknown ids are
// ignored: a deallocation may race ahead of a re-optimization pass.
func (t *ResonanceTracker) Update(id string, cfg ConfigVector) (ResonanceMeta, bool) {
	if _, ok := t.meta[id]; !ok {
		return ResonanceMeta{}, false
	}

	m := computeResonance(cfg)
	t.meta[id] = m
	return m, true
}

// Untrack drops the metadata for id. Unknown ids are ignored.
func (t *ResonanceTracker) Untrack(id string) {
	delete(t.meta, id)
}

// Meta returns the metadata tracked for id.
func (t *ResonanceTracker) Meta(id string) (ResonanceMeta, bool) {
	m, ok := t.meta[id]
	return m, ok
}

// Len returns the number of tracked ids.
func (t *ResonanceTracker) Len() int {
	return len(t.meta)
}

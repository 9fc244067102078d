package spiralmem_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kunleulysses/August9teen-sub020/idgen"
	"github.com/kunleulysses/August9teen-sub020/spiralmem"
)

type recordingHook struct {
	pos  spiralmem.HookPos
	ctxs []spiralmem.HookCtx
}

func (h *recordingHook) Pos() spiralmem.HookPos   { return h.pos }
func (h *recordingHook) Func(c spiralmem.HookCtx) { h.ctxs = append(h.ctxs, c) }

var _ = Describe("Manager", func() {
	var (
		manager *spiralmem.Manager
		now     time.Time
	)

	BeforeEach(func() {
		now = time.Unix(1700000000, 0)
		manager = spiralmem.MakeBuilder().
			WithIDGenerator(idgen.NewSequential("pool")).
			WithClock(func() time.Time { return now }).
			Build()
	})

	Context("when allocating", func() {
		It("should size the pool from the config vector", func() {
			handle, err := manager.Allocate(1024, spiralmem.DefaultConfig, "general")

			Expect(err).ToNot(HaveOccurred())
			Expect(handle.ID).To(Equal("pool_1"))
			Expect(handle.Sizing.LogicalSize).To(Equal(int64(883)))
			Expect(handle.Sizing.Turns).To(Equal(8))
			Expect(handle.Resonance.Level).To(
				BeNumerically("~", (0.862+0.8+0.85)/3, 1e-9))
		})

		It("should fall back to the default vector", func() {
			handle, err := manager.Allocate(1024, spiralmem.ConfigVector{}, "general")

			Expect(err).ToNot(HaveOccurred())
			Expect(handle.Sizing.LogicalSize).To(Equal(int64(883)))

			pool, ok := manager.Pool(handle.ID)
			Expect(ok).To(BeTrue())
			Expect(pool.ConfigSnapshot).To(Equal(spiralmem.DefaultConfig))
		})

		It("should reject a zero c1 without touching the registry", func() {
			_, err := manager.Allocate(100,
				spiralmem.ConfigVector{C1: 0, C2: 0.5, C3: 0.5}, "x")

			Expect(errors.Is(err, spiralmem.ErrInvalidConfig)).To(BeTrue())
			Expect(manager.PoolCount()).To(Equal(0))
			Expect(manager.Stats().AllocationCount).To(Equal(uint64(0)))
		})

		It("should accumulate statistics", func() {
			_, err := manager.Allocate(1000, spiralmem.DefaultConfig, "a")
			Expect(err).ToNot(HaveOccurred())
			_, err = manager.Allocate(2000, spiralmem.DefaultConfig, "b")
			Expect(err).ToNot(HaveOccurred())

			stats := manager.Stats()
			Expect(stats.AllocationCount).To(Equal(uint64(2)))
			Expect(stats.TotalAllocated).To(Equal(int64(862 + 1724)))

			// The default vector has 8 turns and a 0.837 resonance level,
			// so both specializations apply.
			Expect(stats.SpiralUsage).To(Equal(stats.TotalAllocated))
			Expect(stats.ResonanceUsage).To(Equal(stats.TotalAllocated))
			Expect(stats.SpiralEfficiency).To(BeNumerically("~", 1.0, 1e-9))
		})
	})

	Context("when deallocating", func() {
		It("should return counters to their pre-allocation values", func() {
			before := manager.Stats()

			handle, err := manager.Allocate(1024, spiralmem.DefaultConfig, "g")
			Expect(err).ToNot(HaveOccurred())

			err = manager.Deallocate(handle.ID, spiralmem.DefaultConfig)
			Expect(err).ToNot(HaveOccurred())

			after := manager.Stats()
			Expect(after.TotalAllocated).To(Equal(before.TotalAllocated))
			Expect(after.SpiralUsage).To(Equal(before.SpiralUsage))
			Expect(after.ResonanceUsage).To(Equal(before.ResonanceUsage))
			Expect(after.GarbageCollected).To(
				Equal(before.GarbageCollected + 883))
			Expect(manager.PoolCount()).To(Equal(0))
		})

		It("should report an unknown id without mutating statistics", func() {
			_, err := manager.Allocate(1024, spiralmem.DefaultConfig, "g")
			Expect(err).ToNot(HaveOccurred())
			before := manager.Stats()

			err = manager.Deallocate("pool_x", spiralmem.DefaultConfig)

			Expect(errors.Is(err, spiralmem.ErrNotFound)).To(BeTrue())
			Expect(manager.Stats()).To(Equal(before))
		})

		It("should drop the mapping entirely", func() {
			handle, err := manager.Allocate(64, spiralmem.DefaultConfig, "g")
			Expect(err).ToNot(HaveOccurred())

			Expect(manager.Deallocate(handle.ID, spiralmem.DefaultConfig)).
				To(Succeed())

			_, ok := manager.Pool(handle.ID)
			Expect(ok).To(BeFalse())

			err = manager.Deallocate(handle.ID, spiralmem.DefaultConfig)
			Expect(errors.Is(err, spiralmem.ErrNotFound)).To(BeTrue())
		})
	})

	Context("when collecting garbage", func() {
		It("should leave fresh, aligned pools alone", func() {
			for i := 0; i < 3; i++ {
				_, err := manager.Allocate(100, spiralmem.DefaultConfig, "g")
				Expect(err).ToNot(HaveOccurred())
			}

			report, err := manager.GarbageCollect(spiralmem.DefaultConfig)

			Expect(err).ToNot(HaveOccurred())
			Expect(report.CollectedCount).To(Equal(0))
			Expect(manager.PoolCount()).To(Equal(3))
		})

		It("should collect exactly the diverged pool", func() {
			low := spiralmem.ConfigVector{C1: 0.1, C2: 0.1, C3: 0.1}
			high := spiralmem.ConfigVector{C1: 0.9, C2: 0.9, C3: 0.9}

			diverged, err := manager.Allocate(100, low, "g")
			Expect(err).ToNot(HaveOccurred())
			kept1, err := manager.Allocate(100, high, "g")
			Expect(err).ToNot(HaveOccurred())
			kept2, err := manager.Allocate(100, high, "g")
			Expect(err).ToNot(HaveOccurred())

			report, err := manager.GarbageCollect(high)

			Expect(err).ToNot(HaveOccurred())
			Expect(report.CollectedIDs).To(ConsistOf(diverged.ID))
			Expect(report.Failed).To(BeEmpty())

			_, ok := manager.Pool(kept1.ID)
			Expect(ok).To(BeTrue())
			_, ok = manager.Pool(kept2.ID)
			Expect(ok).To(BeTrue())
		})

		It("should collect pools past the staleness threshold", func() {
			handle, err := manager.Allocate(100, spiralmem.DefaultConfig, "g")
			Expect(err).ToNot(HaveOccurred())

			now = now.Add(spiralmem.StalenessThreshold + time.Millisecond)

			report, err := manager.GarbageCollect(spiralmem.DefaultConfig)

			Expect(err).ToNot(HaveOccurred())
			Expect(report.CollectedIDs).To(ConsistOf(handle.ID))
		})

		It("should reposition low-resonance survivors without rewriting snapshots", func() {
			cfg := spiralmem.ConfigVector{C1: 0.6, C2: 0.7, C3: 0.6}
			handle, err := manager.Allocate(100, cfg, "g")
			Expect(err).ToNot(HaveOccurred())

			// Aligned enough to survive (alignment 0.6), but the recorded
			// resonance level 0.633 sits below the re-optimization floor.
			current := spiralmem.ConfigVector{C1: 0.7, C2: 0.9, C3: 0.7}
			report, err := manager.GarbageCollect(current)

			Expect(err).ToNot(HaveOccurred())
			Expect(report.CollectedCount).To(Equal(0))
			Expect(report.Reoptimized).To(Equal(1))

			pool, ok := manager.Pool(handle.ID)
			Expect(ok).To(BeTrue())
			Expect(pool.Turns).To(Equal(9))
			Expect(pool.ResonanceLevel).To(
				BeNumerically("~", current.Mean(), 1e-9))
			Expect(pool.ConfigSnapshot).To(Equal(cfg))
		})

		It("should not reposition pools at or above the re-optimization floor", func() {
			cfg := spiralmem.ConfigVector{C1: 0.8, C2: 0.8, C3: 0.8}
			handle, err := manager.Allocate(100, cfg, "g")
			Expect(err).ToNot(HaveOccurred())

			report, err := manager.GarbageCollect(cfg)

			Expect(err).ToNot(HaveOccurred())
			Expect(report.Reoptimized).To(Equal(0))

			pool, _ := manager.Pool(handle.ID)
			Expect(pool.Turns).To(Equal(8))
		})
	})

	Context("when updating resonance", func() {
		It("should refresh the level and touch the access bookkeeping", func() {
			handle, err := manager.Allocate(100, spiralmem.DefaultConfig, "g")
			Expect(err).ToNot(HaveOccurred())

			now = now.Add(10 * time.Second)
			next := spiralmem.ConfigVector{C1: 0.3, C2: 0.3, C3: 0.3}
			Expect(manager.UpdateResonance(handle.ID, next)).To(Succeed())

			pool, _ := manager.Pool(handle.ID)
			Expect(pool.ResonanceLevel).To(BeNumerically("~", 0.3, 1e-9))
			Expect(pool.LastAccessedAt).To(Equal(now))
			Expect(pool.AccessCount).To(Equal(uint64(2)))
		})

		It("should report unknown ids", func() {
			err := manager.UpdateResonance("ghost", spiralmem.DefaultConfig)
			Expect(errors.Is(err, spiralmem.ErrNotFound)).To(BeTrue())
		})
	})

	Context("when reading statistics", func() {
		It("should be idempotent", func() {
			_, err := manager.Allocate(100, spiralmem.DefaultConfig, "g")
			Expect(err).ToNot(HaveOccurred())

			Expect(manager.Stats()).To(Equal(manager.Stats()))
		})

		It("should default efficiencies to one on an empty registry", func() {
			stats := manager.Stats()

			Expect(stats.SpiralEfficiency).To(Equal(1.0))
			Expect(stats.ResonanceEfficiency).To(Equal(1.0))
		})
	})

	Context("when hooks are registered", func() {
		It("should fire position-specific hooks", func() {
			allocHook := &recordingHook{pos: spiralmem.HookPosAfterAllocate}
			gcHook := &recordingHook{pos: spiralmem.HookPosAfterGC}
			manager.AcceptHook(allocHook)
			manager.AcceptHook(gcHook)

			handle, err := manager.Allocate(100, spiralmem.DefaultConfig, "g")
			Expect(err).ToNot(HaveOccurred())
			_, err = manager.GarbageCollect(spiralmem.DefaultConfig)
			Expect(err).ToNot(HaveOccurred())

			Expect(allocHook.ctxs).To(HaveLen(1))
			Expect(allocHook.ctxs[0].Pool.ID).To(Equal(handle.ID))
			Expect(gcHook.ctxs).To(HaveLen(1))
			Expect(gcHook.ctxs[0].Report).ToNot(BeNil())
		})

		It("should fire catch-all hooks on every position", func() {
			all := &recordingHook{pos: spiralmem.HookPosAny}
			manager.AcceptHook(all)

			handle, err := manager.Allocate(100, spiralmem.DefaultConfig, "g")
			Expect(err).ToNot(HaveOccurred())
			Expect(manager.Deallocate(handle.ID, spiralmem.DefaultConfig)).
				To(Succeed())

			Expect(all.ctxs).To(HaveLen(2))
			Expect(all.ctxs[0].Pos).To(Equal(spiralmem.HookPosAfterAllocate))
			Expect(all.ctxs[1].Pos).To(Equal(spiralmem.HookPosAfterDeallocate))
			Expect(all.ctxs[1].Method).To(Equal(spiralmem.CleanupGeneric))
		})
	})
})

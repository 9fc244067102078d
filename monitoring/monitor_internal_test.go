package monitoring

import (
	"encoding/json"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kunleulysses/August9teen-sub020/idgen"
	"github.com/kunleulysses/August9teen-sub020/spiralmem"
)

var _ = Describe("Monitor", func() {
	var (
		m       *Monitor
		manager *spiralmem.Manager
	)

	BeforeEach(func() {
		manager = spiralmem.MakeBuilder().
			WithIDGenerator(idgen.NewSequential("pool")).
			Build()

		m = NewMonitor()
		m.RegisterManager(manager)
	})

	It("should serve statistics", func() {
		_, err := manager.Allocate(1024, spiralmem.DefaultConfig, "general")
		Expect(err).ToNot(HaveOccurred())

		w := httptest.NewRecorder()
		m.stats(w, httptest.NewRequest("GET", "/api/stats", nil))

		var snap spiralmem.StatsSnapshot
		Expect(json.Unmarshal(w.Body.Bytes(), &snap)).To(Succeed())
		Expect(snap.TotalAllocated).To(Equal(int64(883)))
		Expect(snap.AllocationCount).To(Equal(uint64(1)))
	})

	It("should list pool ids", func() {
		_, err := manager.Allocate(100, spiralmem.DefaultConfig, "a")
		Expect(err).ToNot(HaveOccurred())
		_, err = manager.Allocate(100, spiralmem.DefaultConfig, "b")
		Expect(err).ToNot(HaveOccurred())

		w := httptest.NewRecorder()
		m.listPools(w, httptest.NewRequest("GET", "/api/pools", nil))

		var ids []string
		Expect(json.Unmarshal(w.Body.Bytes(), &ids)).To(Succeed())
		Expect(ids).To(Equal([]string{"pool_1", "pool_2"}))
	})

	It("should run a collection on request", func() {
		low := spiralmem.ConfigVector{C1: 0.1, C2: 0.1, C3: 0.1}
		_, err := manager.Allocate(100, low, "g")
		Expect(err).ToNot(HaveOccurred())

		w := httptest.NewRecorder()
		m.collectGarbage(w, httptest.NewRequest("POST", "/api/gc", nil))

		var report spiralmem.GCReport
		Expect(json.Unmarshal(w.Body.Bytes(), &report)).To(Succeed())
		Expect(report.CollectedCount).To(Equal(1))
		Expect(manager.PoolCount()).To(Equal(0))
	})
})

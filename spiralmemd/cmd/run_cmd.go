package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/kunleulysses/August9teen-sub020/datarecording"
	"github.com/kunleulysses/August9teen-sub020/health"
	"github.com/kunleulysses/August9teen-sub020/monitoring"
	"github.com/kunleulysses/August9teen-sub020/spiralmem"
)

var (
	runPort     int
	runOpen     bool
	runDuration time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pool manager with a demonstration workload",
	Run: func(cmd *cobra.Command, args []string) {
		run()
	},
}

func init() {
	runCmd.Flags().IntVar(&runPort, "port", 0,
		"port for the inspection API, random when 0")
	runCmd.Flags().BoolVar(&runOpen, "open", false,
		"open the inspection API in a browser")
	runCmd.Flags().DurationVar(&runDuration, "duration", 30*time.Second,
		"how long to drive the workload")

	rootCmd.AddCommand(runCmd)
}

// collectingSink records every signal and acts on collection pressure. The
// health monitor only detects; the decision to collect lives here.
type collectingSink struct {
	inner   *datarecording.RecordingSink
	manager *spiralmem.Manager
}

func (s *collectingSink) HealthReported(e health.HealthEvent) {
	s.inner.HealthReported(e)
}

func (s *collectingSink) GCNeeded(e health.GCNeededEvent) {
	s.inner.GCNeeded(e)

	log.Printf("spiralmemd: %s, collecting", e.Reason)

	report, err := s.manager.GarbageCollect(spiralmem.DefaultConfig)
	if err != nil {
		log.Printf("spiralmemd: collection failed: %v", err)
		return
	}

	log.Printf("spiralmemd: collected %d pools", report.CollectedCount)
}

func run() {
	// A missing .env file is fine; the defaults stand.
	_ = godotenv.Load()

	recorder := datarecording.New(os.Getenv("SPIRALMEM_RECORDING"))

	manager := spiralmem.NewManager()
	manager.AcceptHook(datarecording.NewPoolHook(recorder))

	sink := &collectingSink{
		inner:   datarecording.NewRecordingSink(recorder),
		manager: manager,
	}

	monitor := health.MakeBuilder().
		WithSource(manager).
		WithSink(sink).
		WithInterval(envDuration("SPIRALMEM_HEALTH_INTERVAL",
			health.DefaultInterval)).
		WithReferenceCapacity(envUint("SPIRALMEM_REFERENCE_CAPACITY",
			health.ReferenceCapacity)).
		Build()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	monitor.Start(ctx)
	defer monitor.Stop()

	webMonitor := monitoring.NewMonitor()
	webMonitor.RegisterManager(manager)
	if runPort != 0 {
		webMonitor.WithPortNumber(runPort)
	}
	webMonitor.StartServer()

	if runOpen && runPort != 0 {
		url := fmt.Sprintf("http://localhost:%d/api/stats", runPort)
		if err := browser.OpenURL(url); err != nil {
			log.Printf("spiralmemd: cannot open %s: %v", url, err)
		}
	}

	driveWorkload(manager)

	stats := manager.Stats()
	fmt.Printf("allocations: %d, live pools: %d, collected bytes: %d\n",
		stats.AllocationCount, manager.PoolCount(), stats.GarbageCollected)

	atexit.Exit(0)
}

// driveWorkload allocates, touches, and releases pools with jittered
// vectors until the duration runs out.
func driveWorkload(manager *spiralmem.Manager) {
	deadline := time.Now().Add(runDuration)
	var live []string

	for time.Now().Before(deadline) {
		cfg := spiralmem.ConfigVector{
			C1: 0.4 + rand.Float64()*0.6,
			C2: rand.Float64(),
			C3: rand.Float64(),
		}

		handle, err := manager.Allocate(
			int64(64+rand.Intn(8192)), cfg, "workload")
		if err != nil {
			log.Printf("spiralmemd: allocation failed: %v", err)
			continue
		}
		live = append(live, handle.ID)

		if len(live) > 4 && rand.Intn(2) == 0 {
			victim := live[rand.Intn(len(live))]
			if err := manager.UpdateResonance(victim, cfg); err != nil {
				log.Printf("spiralmemd: update failed: %v", err)
			}
		}

		if len(live) > 32 {
			id := live[0]
			live = live[1:]
			if err := manager.Deallocate(id, cfg); err != nil {
				log.Printf("spiralmemd: release failed: %v", err)
			}
		}

		time.Sleep(50 * time.Millisecond)
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("spiralmemd: bad %s %q, using %v", key, value, fallback)
		return fallback
	}

	return d
}

func envUint(key string, fallback uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		log.Printf("spiralmemd: bad %s %q, using %v", key, value, fallback)
		return fallback
	}

	return n
}

// Package monitoring exposes a pool manager over a local HTTP API for
// inspection. The endpoints only read manager state, except /api/gc, which
// runs a collection on behalf of the caller: the health monitor itself never
// collects, it only signals.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/kunleulysses/August9teen-sub020/spiralmem"
)

// Monitor turns a pool manager into a server for external inspection.
type Monitor struct {
	manager    *spiralmem.Manager
	portNumber int
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterManager registers the pool manager to be monitored.
func (m *Monitor) RegisterManager(manager *spiralmem.Manager) {
	m.manager = manager
}

// StartServer starts the monitor as a web server, on a random port unless
// one was set.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", m.stats)
	r.HandleFunc("/api/pools", m.listPools)
	r.HandleFunc("/api/pool/{id}", m.poolDetails)
	r.HandleFunc("/api/gc", m.collectGarbage)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	fmt.Fprintf(
		os.Stderr,
		"Monitoring pools with http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	rsp, err := json.Marshal(m.manager.Stats())
	dieOnErr(err)

	_, err = w.Write(rsp)
	dieOnErr(err)
}

func (m *Monitor) listPools(w http.ResponseWriter, _ *http.Request) {
	rsp, err := json.Marshal(m.manager.PoolIDs())
	dieOnErr(err)

	_, err = w.Write(rsp)
	dieOnErr(err)
}

func (m *Monitor) poolDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	pool, ok := m.manager.Pool(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Pool not found"))
		dieOnErr(err)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(pool)
	serializer.SetMaxDepth(2)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) collectGarbage(w http.ResponseWriter, _ *http.Request) {
	report, err := m.manager.GarbageCollect(spiralmem.DefaultConfig)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	rsp, err := json.Marshal(report)
	dieOnErr(err)

	_, err = w.Write(rsp)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memInfo.RSS,
	}

	payload, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(payload)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	payload, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(payload)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}

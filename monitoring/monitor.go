// Package monitoring serves the state of running TLBs over HTTP.
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
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/disi33/mupen64plus-core/mem/vm"
	"github.com/disi33/mupen64plus-core/mem/vm/tlb"
	"github.com/disi33/mupen64plus-core/sim/hooking"
	"github.com/disi33/mupen64plus-core/sim/id"
)

type monitoredTLB struct {
	tlb     *tlb.Comp
	counter *hooking.CountTracer
}

// Monitor turns a set of TLBs into a web server that reports their entries,
// translations and hook statistics.
type Monitor struct {
	lock       sync.Mutex
	tlbs       []monitoredTLB
	portNumber int
	idGen      id.IDGenerator

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		idGen: id.NewIDGenerator(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterTLB makes a TLB visible in the monitor. The monitor hooks into it
// to count its events.
func (m *Monitor) RegisterTLB(t *tlb.Comp) {
	counter := hooking.NewCountTracer()
	t.AcceptHook(counter)

	m.lock.Lock()
	defer m.lock.Unlock()

	m.tlbs = append(m.tlbs, monitoredTLB{tlb: t, counter: counter})
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.idGen.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the HTTP handler serving the monitor API and pages.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/translate/{name}/{kind}/{vaddr}", m.translate)
	r.HandleFunc("/api/stats/{name}", m.listStats)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(pageAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err := http.Serve(listener, m.Handler())
		dieOnErr(err)
	}()

	return url
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	names := make([]string, 0, len(m.tlbs))
	for _, t := range m.tlbs {
		names = append(names, t.tlb.Name())
	}

	writeJSON(w, names)
}

// tlbView is what the monitor shows of a TLB.
type tlbView struct {
	Name        string
	Entries     []tlb.Entry
	ReadMapped  int
	WriteMapped int
}

func newTLBView(t *tlb.Comp) *tlbView {
	entries := t.Entries()

	v := &tlbView{
		Name:    t.Name(),
		Entries: entries[:],
	}
	v.ReadMapped, v.WriteMapped = t.NumMapped()

	return v
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	t := m.findTLBOr404(w, name)
	if t == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(newTLBView(t.tlb))
	serializer.SetMaxDepth(4)
	err := serializer.Serialize(w)
	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	t := m.findTLBOr404(w, req.CompName)
	if t == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(newTLBView(t.tlb))
	serializer.SetMaxDepth(2)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type translateRsp struct {
	VAddr uint32 `json:"vaddr"`
	Kind  string `json:"kind"`
	PAddr uint32 `json:"paddr"`
	Hit   bool   `json:"hit"`
}

func (m *Monitor) translate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	t := m.findTLBOr404(w, vars["name"])
	if t == nil {
		return
	}

	kind, err := parseAccessKind(vars["kind"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	vAddr, err := strconv.ParseUint(vars["vaddr"], 0, 32)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	pAddr, hit := t.tlb.Lookup(uint32(vAddr), kind)

	writeJSON(w, translateRsp{
		VAddr: uint32(vAddr),
		Kind:  kind.String(),
		PAddr: pAddr,
		Hit:   hit,
	})
}

func parseAccessKind(s string) (vm.AccessKind, error) {
	switch s {
	case "read":
		return vm.Read, nil
	case "write":
		return vm.Write, nil
	default:
		return 0, fmt.Errorf(
			"invalid access kind %q, allowed values are `read` and `write`", s)
	}
}

func (m *Monitor) listStats(w http.ResponseWriter, r *http.Request) {
	t := m.findTLBOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	writeJSON(w, t.counter.Snapshot())
}

func (m *Monitor) findTLBOr404(
	w http.ResponseWriter,
	name string,
) *monitoredTLB {
	m.lock.Lock()
	defer m.lock.Unlock()

	for i := range m.tlbs {
		if m.tlbs[i].tlb.Name() == name {
			t := m.tlbs[i]
			return &t
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}

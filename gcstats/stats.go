// Package gcstats tracks the collector's global counters
// (total_collections, total_reclaimed_words) and exports them, along with
// a per-process heap-size gauge, to Prometheus.
package gcstats

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	totalCollections    atomic.Int64
	totalReclaimedWords atomic.Int64
)

// Record updates the two global counters under an uncontended atomic add —
// the spinlock in a single-scheduler source is an artifact of coarser
// locking than a multi-scheduler Go runtime needs.
func Record(reclaimedWords int64) {
	totalCollections.Add(1)
	totalReclaimedWords.Add(reclaimedWords)
	collectionsCounter.Inc()
	reclaimedCounter.Add(float64(reclaimedWords))
}

// Info is the snapshot returned by the info() external interface.
type Info struct {
	Collections    int64 `json:"collections"`
	ReclaimedWords int64 `json:"reclaimed_words"`
}

func Snapshot() Info {
	return Info{
		Collections:    totalCollections.Load(),
		ReclaimedWords: totalReclaimedWords.Load(),
	}
}

var (
	registry = prometheus.NewRegistry()

	collectionsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "procgc",
		Name:      "total_collections",
		Help:      "Total number of per-process collections run (minor + major + hibernate).",
	})
	reclaimedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "procgc",
		Name:      "total_reclaimed_words",
		Help:      "Total words reclaimed across every collection.",
	})
	heapSizeGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "procgc",
		Name:      "process_heap_words",
		Help:      "Current young-heap size of a process, in words.",
	}, []string{"pid"})
)

func init() {
	registry.MustRegister(collectionsCounter, reclaimedCounter, heapSizeGauge)
}

// Registry exposes the Prometheus registry for gcstatusd's HTTP handler.
func Registry() *prometheus.Registry { return registry }

// SetHeapSize updates the per-process heap-size gauge.
func SetHeapSize(pid string, words int) {
	heapSizeGauge.WithLabelValues(pid).Set(float64(words))
}

// DeleteProcess removes a process's gauge series once it exits.
func DeleteProcess(pid string) {
	heapSizeGauge.DeleteLabelValues(pid)
}

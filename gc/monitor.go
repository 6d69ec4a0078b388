package gc

import (
	"time"

	"github.com/beamforge/procgc/gcconfig"
	"github.com/beamforge/procgc/procid"
)

// Monitor receives post-collection notifications when a collection's wall
// time or resulting live size crosses a configured threshold. The
// scheduler's actual message-delivery machinery is out of scope; the
// collector only calls back into whatever Monitor the caller supplies.
type Monitor interface {
	LongGC(pid procid.Pid, took time.Duration)
	LargeHeap(pid procid.Pid, words int)
}

// NopMonitor discards every notification; the default when a caller has no
// monitors registered.
type NopMonitor struct{}

func (NopMonitor) LongGC(procid.Pid, time.Duration) {}
func (NopMonitor) LargeHeap(procid.Pid, int)         {}

// checkThresholds compares one collection's wall time and resulting live
// size against the configured thresholds and notifies m for whichever were
// crossed.
func checkThresholds(m Monitor, pid procid.Pid, took time.Duration, liveWords int) {
	if m == nil {
		return
	}
	cfg := gcconfig.GCO.Get()
	if took >= cfg.LongGCThreshold {
		m.LongGC(pid, took)
	}
	if liveWords >= cfg.LargeHeapThreshold {
		m.LargeHeap(pid, liveWords)
	}
}

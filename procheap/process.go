package procheap

import (
	"github.com/beamforge/procgc/procid"
	"github.com/beamforge/procgc/term"
)

// Process owns a private young heap, an optional old heap, a stack,
// fragments, off-heap lists, a dictionary, and a message queue — the full
// data model a runtime process needs.
type Process struct {
	Pid procid.Pid

	Young *Heap
	Old   *Heap // nil until first promotion

	Stack     *Stack
	Fragments *Fragment // head of the chain; nil once drained

	Dict *Dictionary

	Binaries  *OffHeapList
	Closures  *OffHeapList
	Externals *OffHeapList

	Mailbox []*Envelope

	// Registers holds a caller-supplied live-register array, used to
	// preserve BIF arguments across GC.
	Registers []term.Word

	// One-element roots, each scanned only if non-immediate.
	SeqTraceToken term.Word
	GroupLeader   term.Word
	FaultValue    term.Word
	FaultTrace    term.Word

	MinHeapSize int

	GenGCs        int
	NeedFullsweep bool
	HeapGrowHint  bool

	// Virtual heap accounting: off-heap bytes charged against
	// the process so that external memory pressure can still trigger a
	// full sweep even though the bytes themselves aren't on the Go heap
	// this process's words array occupies.
	VHeap            int64
	OldVHeap         int64
	OldVHeapLimit    int64
	OldVHeapPrevSize int64
}

// NewProcess allocates a process with a fresh young heap of size words and
// the given configured minimum heap size.
func NewProcess(size, minHeap int) *Process {
	young := NewHeap(size)
	young.SetBase(YoungBase)
	return &Process{
		Pid:           procid.NewPid(),
		Young:         young,
		Stack:         NewStack(),
		Dict:          NewDictionary(),
		Binaries:      NewOffHeapList(KindRefcBin),
		Closures:      NewOffHeapList(KindClosure),
		Externals:     NewOffHeapList(KindExternal),
		MinHeapSize:   minHeap,
		OldVHeapLimit: 1 << 20,
	}
}

// Mature reports the number of words on the young heap that have already
// survived a prior collection (below high_water).
func (p *Process) Mature() int {
	return p.Young.HighWater()
}

package gc

import (
	"github.com/beamforge/procgc/gclog"
	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/sizetab"
	"github.com/beamforge/procgc/term"
)

// MajorResult reports the outcome of a major collection; it always
// succeeds (there is no further escalation past major).
type MajorResult struct {
	Copied int
}

// RunMajor evacuates both young and old into a single fresh young heap,
// leaving no old heap behind. It is the terminal escalation path: a
// caller-facing collect() never fails, and major collection always
// succeeds at producing the requested free space because the new young
// heap is sized to fit everything live plus the request.
func RunMajor(p *procheap.Process, need int, regs []term.Word, fiberLocals [][]term.Word) MajorResult {
	if gclog.FastV(4, smoduleGC) {
		gclog.Infof("major gc start pid=%s need=%d", p.Pid, need)
	}
	oldUsed := 0
	if p.Old != nil {
		oldUsed = p.Old.Used()
	}
	fragTotal := 0
	if p.Fragments != nil {
		fragTotal = p.Fragments.TotalSize()
	}

	newSize := sizetab.NextSize(p.Young.Size()+fragTotal+oldUsed, 0, p.MinHeapSize)
	if newSize == p.Young.Size() && p.HeapGrowHint {
		newSize = sizetab.NextSize(newSize+1, 0, p.MinHeapSize)
	}

	newYoung := procheap.NewHeap(newSize)
	newYoung.SetBase(procheap.YoungBase)

	p.Registers = regs
	DrainFragments(p, newYoung, fiberLocals)

	bands := []Band{
		{Heap: p.Young, Lo: 0, Hi: p.Young.Top(), Dst: newYoung},
	}
	if p.Old != nil {
		bands = append(bands, Band{Heap: p.Old, Lo: 0, Hi: p.Old.Top(), Dst: newYoung})
	}
	e := &Evacuator{Bands: bands}

	roots := BuildRoots(p, fiberLocals)
	e.EvacuateRoots(roots)
	e.Sweep(newYoung, 0)

	WithHeapRegistry([]*procheap.Heap{newYoung}, func() {
		sweepAllOffHeapLists(p, true)
	})

	p.Old = nil
	p.Young = newYoung
	p.Fragments = nil
	newYoung.SetHighWater(newYoung.Top())
	p.GenGCs = 0

	liveAfter := newYoung.Top()
	needAfter := liveAfter + need
	if size, growHint := sizeAfterMajor(newYoung.Size(), needAfter, p.MinHeapSize); size != newYoung.Size() {
		newYoung.Resize(size)
		p.HeapGrowHint = growHint
	} else {
		p.HeapGrowHint = growHint
	}

	p.NeedFullsweep = false
	if gclog.FastV(4, smoduleGC) {
		gclog.Infof("major gc done pid=%s copied=%d young_size=%d", p.Pid, e.Copied, newYoung.Size())
	}
	return MajorResult{Copied: e.Copied}
}

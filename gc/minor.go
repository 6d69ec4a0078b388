package gc

import (
	"github.com/beamforge/procgc/gcconfig"
	"github.com/beamforge/procgc/gclog"
	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/sizetab"
	"github.com/beamforge/procgc/term"
)

const smoduleGC = "gc"

// MinorResult reports whether a minor collection satisfied the requested
// free space, or whether it escalated straight to a major collection
// without finishing (NeedMajor), in which case the caller must run
// RunMajor before returning to the mutator.
type MinorResult struct {
	Done      bool
	NeedMajor bool
	Copied    int
}

// RunMinor performs one minor (young-generation) collection: promote
// mature data to the old heap, evacuate fresh data into a new young heap,
// drain heap fragments, sweep off-heap lists without touching old-heap
// residents, and decide whether to shrink the result.
func RunMinor(p *procheap.Process, need int, regs []term.Word, fiberLocals [][]term.Word) MinorResult {
	if gclog.FastV(4, smoduleGC) {
		gclog.Infof("minor gc start pid=%s need=%d young_used=%d", p.Pid, need, p.Young.Used())
	}
	cfg := gcconfig.GCO.Get()
	mature := p.Young.HighWater()

	if mature > 0 && p.Old == nil {
		old := procheap.NewHeap(sizetab.NextSize(p.Young.Used(), 1, p.MinHeapSize))
		old.SetBase(procheap.OldBase)
		p.Old = old
	}
	if p.Old != nil && mature > p.Old.Free() {
		return MinorResult{NeedMajor: true}
	}

	fragTotal := 0
	if p.Fragments != nil {
		fragTotal = p.Fragments.TotalSize()
	}
	attachedSize := 0
	for _, m := range p.Mailbox {
		if m.IsAttached() {
			attachedSize += m.Attached.Used()
		}
	}

	newYoungSize := sizetab.NextSize(p.Young.Size()+fragTotal+attachedSize, 0, p.MinHeapSize)
	newYoung := procheap.NewHeap(newYoungSize)
	newYoung.SetBase(procheap.YoungBase)

	p.Registers = regs
	DrainFragments(p, newYoung, fiberLocals)

	matureWasZero := mature == 0
	oldTopBefore := 0
	if p.Old != nil {
		oldTopBefore = p.Old.Top()
	}

	bands := []Band{
		{Heap: p.Young, Lo: 0, Hi: mature, Dst: p.Old},
		{Heap: p.Young, Lo: mature, Hi: p.Young.Top(), Dst: newYoung},
	}
	e := &Evacuator{Bands: bands}

	roots := BuildRoots(p, fiberLocals)
	e.EvacuateRoots(roots)

	e.Sweep(newYoung, 0)
	if p.Old != nil {
		e.Sweep(p.Old, oldTopBefore)
	}

	if matureWasZero {
		newYoung.SetHighWater(newYoung.Top())
	} else {
		newYoung.SetHighWater(0)
	}

	heaps := []*procheap.Heap{newYoung}
	if p.Old != nil {
		heaps = append(heaps, p.Old)
	}
	WithHeapRegistry(heaps, func() {
		sweepAllOffHeapLists(p, false)
	})

	p.Young = newYoung
	p.Fragments = nil
	p.GenGCs++

	needAfter := newYoung.Top() + need
	oldCapacity := 0
	if p.Old != nil {
		oldCapacity = p.Old.Size()
	}
	if newSize, shrink := shrinkAfterMinor(newYoung.Size(), needAfter, oldCapacity, p.MinHeapSize); shrink {
		newYoung.Resize(newSize)
	}

	done := newYoung.Free() >= need
	if !done {
		p.NeedFullsweep = true
	}
	if p.GenGCs >= cfg.MaxGenGCs {
		p.NeedFullsweep = true
	}
	if gclog.FastV(4, smoduleGC) {
		gclog.Infof("minor gc done pid=%s copied=%d done=%t need_fullsweep=%t", p.Pid, e.Copied, done, p.NeedFullsweep)
	}
	return MinorResult{Done: done, Copied: e.Copied}
}

func sweepAllOffHeapLists(p *procheap.Process, fullsweep bool) {
	for _, list := range []*procheap.OffHeapList{p.Binaries, p.Closures, p.Externals} {
		res := SweepOffHeapList(list, p.Old, fullsweep)
		p.VHeap += res.VHeapBytes
		p.OldVHeap += res.OldVHeapBytes
	}
	if p.OldVHeap >= p.OldVHeapLimit {
		p.NeedFullsweep = true
	}
	p.OldVHeapLimit = NextVHeapSize(p.OldVHeap, p.OldVHeapLimit)
}

package gc

import (
	"github.com/beamforge/procgc/gcerr"
	"github.com/beamforge/procgc/gclog"
	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/term"
)

// hibernateTempBase is the address window the hibernate path's temporary
// heap borrows. It must stay disjoint from YoungBase, OldBase, and the
// fragment window so evacuation during hibernation can't be confused with
// a live young or old pointer.
const hibernateTempBase = int(3) << 60

// RunHibernate fully evacuates a process down to its live data, then
// reallocates an exactly-sized heap for it — the two-step allocation
// (temp, then exact) avoids fragmentation when many processes hibernate at
// once. The stack must be empty: RunHibernate panics if it is not.
func RunHibernate(p *procheap.Process, fiberLocals [][]term.Word) {
	if p.Stack.Len() != 0 {
		panic("gc: hibernate called with a non-empty stack")
	}
	if gclog.FastV(4, smoduleGC) {
		gclog.Infof("hibernate start pid=%s young_used=%d", p.Pid, p.Young.Used())
	}

	oldUsed := 0
	if p.Old != nil {
		oldUsed = p.Old.Used()
	}
	tempSize := p.Young.Size() + oldUsed
	if tempSize == 0 {
		tempSize = 1
	}
	temp := procheap.NewHeap(tempSize)
	temp.SetBase(hibernateTempBase)

	DrainFragments(p, temp, fiberLocals)

	bands := []Band{{Heap: p.Young, Lo: 0, Hi: p.Young.Top(), Dst: temp}}
	if p.Old != nil {
		bands = append(bands, Band{Heap: p.Old, Lo: 0, Hi: p.Old.Top(), Dst: temp})
	}
	e := &Evacuator{Bands: bands}

	roots := BuildRoots(p, fiberLocals)
	e.EvacuateRoots(roots)
	e.Sweep(temp, 0)

	WithHeapRegistry([]*procheap.Heap{temp}, func() {
		sweepAllOffHeapLists(p, true)
	})

	live := temp.Top()
	size := live
	if size < 1 {
		size = 1
	}
	final := procheap.NewHeap(size)
	final.SetBase(procheap.YoungBase)
	if live > 0 {
		final.Alloc(live)
		copy(final.Words()[:live], temp.Words()[:live])
	}

	delta := procheap.YoungBase - hibernateTempBase
	OffsetTermArea(final, hibernateTempBase, hibernateTempBase+tempSize, delta)
	OffsetRoots(roots, hibernateTempBase, hibernateTempBase+tempSize, delta)
	relocateOffHeapNodes(p, temp, final)

	p.Old = nil
	p.Young = final
	p.Fragments = nil
	final.SetHighWater(final.Top())
	p.GenGCs = 0
	p.NeedFullsweep = false
	if gclog.FastV(4, smoduleGC) {
		gclog.Infof("hibernate done pid=%s final_size=%d", p.Pid, final.Size())
	}
}

// relocateOffHeapNodes moves every surviving off-heap node's extern entry
// from the temporary heap's side table to the final heap's, and repoints
// the node at its new owning heap — the Next chain between OffHeapNode
// wrappers is unaffected since it's a native Go pointer, not a term word.
// Every node the sweep kept as a survivor of temp must have a resource
// still registered there; a missing one means the sweep and the side
// table disagree about what's live, so relocateOffHeapNodes latches that
// as a fatal condition via errs rather than continuing with a silently
// dropped resource.
func relocateOffHeapNodes(p *procheap.Process, temp, final *procheap.Heap) {
	var errs gcerr.ErrValue
	for _, list := range []*procheap.OffHeapList{p.Binaries, p.Closures, p.Externals} {
		for _, n := range list.ToSlice() {
			if n.Heap != temp {
				continue
			}
			res, ok := temp.Extern(n.Index)
			if !ok {
				errs.Store(gcerr.NewFatal("gc: hibernate found no resource for surviving off-heap node at temp[%d]", n.Index))
				continue
			}
			final.SetExtern(n.Index, res)
			temp.DeleteExtern(n.Index)
			n.Heap = final
		}
	}
	if err := errs.Err(); err != nil {
		panic(err)
	}
}

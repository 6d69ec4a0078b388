package gc

import (
	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/term"
)

// CollectLiterals moves a literal range (a module's constant pool) into a
// freshly allocated old heap, rewriting every reference the process holds
// into that range — from roots and from terms already on the young
// heap — to point into the new old heap instead. The caller must have
// already run a major collection, so the process holds no old heap of its
// own for this one to conflict with.
func CollectLiterals(p *procheap.Process, lit *procheap.Heap, fiberLocals [][]term.Word) {
	if p.Old != nil {
		panic("gc: collect_literals called while an old heap already exists")
	}

	newOld := procheap.NewHeap(lit.Used())
	newOld.SetBase(procheap.OldBase)

	bands := []Band{{Heap: lit, Lo: 0, Hi: lit.Used(), Dst: newOld}}
	e := &Evacuator{Bands: bands}

	roots := BuildRoots(p, fiberLocals)
	e.EvacuateRoots(roots)

	// Any term already on the young heap may itself reference the literal
	// range (a tuple element pointing at a constant, say), not only roots.
	e.Sweep(p.Young, 0)
	e.Sweep(newOld, 0)

	p.Old = newOld
}

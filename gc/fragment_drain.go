package gc

import (
	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/term"
)

// DrainFragments copies every referenced root whose target lies in a heap
// fragment onto the new young heap, chases pointers that crossed between
// fragments, then copies every still-attached message's payload wholesale,
// and finally releases the whole fragment chain. This always runs before
// the main root evacuation (§4.4 step 4 / §4.5 step 3), which is why the
// shared Cheney core never needs to know fragments exist: by the time it
// runs, nothing live still points into one. fiberLocals must be the same
// root set the caller's main evacuation pass uses — a fiber-local pointer
// into a fragment is a root on equal footing with the main stack, and is
// lost for good once the fragment chain is released below.
func DrainFragments(p *procheap.Process, dst *procheap.Heap, fiberLocals [][]term.Word) {
	if p.Fragments == nil {
		return
	}

	bands := fragmentBands(p.Fragments, dst)
	e := &Evacuator{Bands: bands}

	from := dst.Top()
	roots := BuildRoots(p, fiberLocals)
	e.EvacuateRoots(roots)
	e.Sweep(dst, from)

	copyAttachedMessages(p, dst)

	p.Fragments = nil
}

func fragmentBands(chain *procheap.Fragment, dst *procheap.Heap) []Band {
	var bands []Band
	for f := chain; f != nil; f = f.Next {
		bands = append(bands, Band{Heap: f, Lo: 0, Hi: f.Used(), Dst: dst})
	}
	return bands
}

func copyAttachedMessages(p *procheap.Process, dst *procheap.Heap) {
	for _, m := range p.Mailbox {
		if !m.IsAttached() {
			continue
		}
		size := m.Attached.Used()
		if size == 0 {
			m.Attached = nil
			continue
		}
		newLocal := dst.Alloc(size)
		copy(dst.Words()[newLocal:newLocal+size], m.Attached.Words()[:size])
		m.Attached = nil
	}
}

package gc

import (
	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/term"
)

// Band names one contiguous local-index range within a source heap whose
// survivors are evacuated into Dst. Minor collection configures two bands
// over the young heap (the mature sub-range below high_water going to the
// old heap, the fresh sub-range above it going to the new young heap);
// major collection configures one band per source heap, both going to the
// new young heap. A pointer whose target falls in none of the configured
// bands is already stable (e.g. it targets an old heap left untouched
// during minor collection) and is returned unchanged.
type Band struct {
	Heap   procheap.Arena
	Lo, Hi int // local index range [Lo, Hi) within Heap
	Dst    *procheap.Heap
}

func (b Band) locate(global int) (local int, ok bool) {
	local = global - b.Heap.Base()
	if local < b.Lo || local >= b.Hi {
		return 0, false
	}
	return local, true
}

// Evacuator drives the shared Cheney core described informally as: read the
// target header; if MOVED, forward; otherwise, if the pointee lies in a
// configured band, copy and leave a forwarding marker; otherwise leave
// unchanged.
type Evacuator struct {
	Bands  []Band
	Copied int // words copied, for cost accounting
}

func (e *Evacuator) findBand(global int) (Band, int, bool) {
	for _, b := range e.Bands {
		if local, ok := b.locate(global); ok {
			return b, local, true
		}
	}
	return Band{}, 0, false
}

// EvacuateWord evacuates a single root or object-field word, returning its
// possibly-rewritten replacement. Immediates and header words are returned
// unchanged; only boxed and list pointers are followed.
func (e *Evacuator) EvacuateWord(w term.Word) term.Word {
	switch term.Tag(w) {
	case term.TagBoxed:
		return e.evacuateBoxed(w)
	case term.TagList:
		return e.evacuateList(w)
	default:
		return w
	}
}

func (e *Evacuator) evacuateBoxed(w term.Word) term.Word {
	global := term.PointerIndex(w)
	b, local, ok := e.findBand(global)
	if !ok {
		return w
	}
	header := b.Heap.Word(local)
	if term.IsMoved(header) {
		return b.Heap.Word(local + 1)
	}
	size := int(term.HeaderArity(header)) + 1
	newLocal := b.Dst.Alloc(size)
	src, dst := b.Heap.Words(), b.Dst.Words()
	copy(dst[newLocal:newLocal+size], src[local:local+size])
	fwd := term.MakeBoxed(b.Dst.Global(newLocal))
	b.Heap.SetWord(local, term.Moved)
	b.Heap.SetWord(local+1, fwd)
	e.Copied += size
	return fwd
}

func (e *Evacuator) evacuateList(w term.Word) term.Word {
	global := term.PointerIndex(w)
	b, local, ok := e.findBand(global)
	if !ok {
		return w
	}
	first := b.Heap.Word(local)
	if term.IsNonValue(first) {
		return b.Heap.Word(local + 1)
	}
	newLocal := b.Dst.Alloc(2)
	dst := b.Dst.Words()
	dst[newLocal] = first
	dst[newLocal+1] = b.Heap.Word(local + 1)
	fwd := term.MakeList(b.Dst.Global(newLocal))
	b.Heap.SetWord(local, term.NonValue)
	b.Heap.SetWord(local+1, fwd)
	e.Copied += 2
	return fwd
}

// EvacuateRoots rewrites every root slot in place.
func (e *Evacuator) EvacuateRoots(r *Roots) {
	for _, arr := range r.Arrays {
		for i, w := range arr.Words {
			arr.Words[i] = e.EvacuateWord(w)
		}
	}
	for _, slot := range r.Scalars {
		*slot = e.EvacuateWord(*slot)
	}
}

// Sweep Cheney-scans dst's words starting at from, advancing until the scan
// cursor catches up with dst.Top() — including any new top reached because
// the scan itself copied more data in — at which point the transitive
// closure of everything reachable from the words already in [from, top) has
// been copied.
//
// A header's payload is visited one word at a time, the same as any other
// span of the heap: a tuple element or fun free variable is an ordinary
// term and may itself be a boxed or list pointer needing evacuation. Only
// a subtag whose payload is opaque (term.HeaderOpaquePayload) is skipped
// wholesale by arity instead.
func (e *Evacuator) Sweep(dst *procheap.Heap, from int) {
	pos := from
	for pos < dst.Top() {
		w := dst.Word(pos)
		switch term.Tag(w) {
		case term.TagHeader:
			subtag := term.HeaderSubtag(w)
			if subtag == term.SubtagMatchState {
				e.rebaseMatchState(dst, pos)
			}
			if term.HeaderOpaquePayload(subtag) {
				pos += int(term.HeaderArity(w)) + 1
			} else {
				pos++
			}
		case term.TagBoxed:
			dst.SetWord(pos, e.evacuateBoxed(w))
			pos++
		case term.TagList:
			dst.SetWord(pos, e.evacuateList(w))
			pos++
		default:
			pos++
		}
	}
}

// rebaseMatchState evacuates a match state's Orig pointer, then recomputes
// its interior Base pointer from the forwarded Orig — the one header subtag
// the generic arity-skip can't handle on its own, since Base does not point
// to the start of any object the evacuator recognizes.
func (e *Evacuator) rebaseMatchState(dst *procheap.Heap, headerIndex int) {
	ms := term.NewMatchState(dst.Words(), headerIndex)
	ms.SetOrig(e.EvacuateWord(ms.Orig()))
	ms.Rebase()
}

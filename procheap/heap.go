// Package procheap models a single process's private memory: the young and
// old generations, its stack, in-flight heap fragments, off-heap
// reference-counted lists, the process dictionary, and the message queue —
// the data model a process heap needs.
package procheap

import (
	"github.com/beamforge/procgc/gcerr"
	"github.com/beamforge/procgc/term"
)

// Heap is a contiguous word arena with a bump-pointer top, the young or old
// generation of a process. Start is always 0; End is len(words) == Size.
//
// base is this heap's offset into the process's global pointer address
// space. A real implementation addresses objects by machine pointer, so a
// pointer's bit pattern alone tells you which arena it falls in; our
// term.Word carries only a bare index, so the gc package hands out disjoint
// base offsets per arena (young, old, each fragment) and every boxed/list
// word stores base+local-index rather than a bare local index. Heap-local
// accessors (Word, SetWord, Alloc, Contains) still take local indices —
// only pointer payloads embedded in terms are global.
type Heap struct {
	words     []term.Word
	base      int
	top       int
	highWater int // only meaningful on the young heap

	// externs attaches the shared Go-level resource (refcount + payload)
	// for an off-heap list node whose header lives at a given index in
	// this heap. Raw heap words cannot embed a live Go pointer, so a
	// node's location and liveness are read from its header word here,
	// while this side table is only ever used to fetch the resource once a
	// node's current location is known. The off-heap sweep moves an entry
	// to the surviving object's new heap and index.
	externs map[int]any
}

// NewHeap allocates a heap of exactly size words.
func NewHeap(size int) *Heap {
	return &Heap{words: make([]term.Word, size)}
}

func (h *Heap) Size() int  { return len(h.words) }
func (h *Heap) Start() int { return 0 }
func (h *Heap) Top() int   { return h.top }
func (h *Heap) End() int   { return len(h.words) }
func (h *Heap) Free() int  { return len(h.words) - h.top }
func (h *Heap) Used() int  { return h.top }

func (h *Heap) Base() int     { return h.base }
func (h *Heap) SetBase(b int) { h.base = b }

// Global converts a local index within this heap to its process-global
// pointer index.
func (h *Heap) Global(local int) int { return h.base + local }

// Local converts a process-global pointer index to a local index within
// this heap; callers must have already established (via ContainsGlobal)
// that the pointer targets this heap.
func (h *Heap) Local(global int) int { return global - h.base }

// ContainsGlobal reports whether a process-global pointer index falls
// within this heap's live [0, top) region.
func (h *Heap) ContainsGlobal(global int) bool {
	local := global - h.base
	return local >= 0 && local < h.top
}

func (h *Heap) HighWater() int      { return h.highWater }
func (h *Heap) SetHighWater(n int)  { h.highWater = n }

// Words exposes the backing array directly so the evacuator can scan and
// rewrite it in place.
func (h *Heap) Words() []term.Word { return h.words }

func (h *Heap) Word(i int) term.Word        { return h.words[i] }
func (h *Heap) SetWord(i int, w term.Word)  { h.words[i] = w }

// Contains reports whether heap index i falls within the live [0, top)
// region of this heap.
func (h *Heap) Contains(i int) bool { return i >= 0 && i < h.top }

// Alloc bump-allocates n words and returns the index of the first one. It
// panics on overflow: callers (the resizer, in particular) are responsible
// for ensuring the destination heap was sized to fit everything that will
// be evacuated into it — an overflow here is the
// "heap overrun" sanity-check failure an allocator must never hit in practice.
func (h *Heap) Alloc(n int) int {
	if h.top+n > len(h.words) {
		panic(gcerr.NewFatal("procheap: heap overrun on Alloc (top=%d n=%d size=%d)", h.top, n, len(h.words)))
	}
	idx := h.top
	h.top += n
	return idx
}

// Resize reallocates this heap's backing array to exactly newSize words,
// preserving its base (and therefore every already-issued global pointer
// into its live region) and copying the live [0, top) prefix. newSize must
// be at least top; callers are responsible for only ever shrinking to a
// size the resizer has already verified is big enough for what's live.
func (h *Heap) Resize(newSize int) {
	if newSize < h.top {
		newSize = h.top
	}
	words := make([]term.Word, newSize)
	copy(words, h.words[:h.top])
	h.words = words
}

func (h *Heap) SetExtern(idx int, resource any) {
	if h.externs == nil {
		h.externs = make(map[int]any)
	}
	h.externs[idx] = resource
}

func (h *Heap) Extern(idx int) (any, bool) {
	r, ok := h.externs[idx]
	return r, ok
}

func (h *Heap) DeleteExtern(idx int) {
	delete(h.externs, idx)
}

package procheap

import "github.com/beamforge/procgc/term"

// Arena is anything the evacuator can read a source word from and forward
// via: a process's young or old heap, or a heap fragment. Destinations are
// always a *Heap (fragments are never allocated into), but sources during
// fragment drain are fragments, and both Heap and Fragment satisfy this
// uniformly so the shared Cheney core doesn't need to special-case either.
type Arena interface {
	Base() int
	Global(local int) int
	Local(global int) int
	Words() []term.Word
	Word(i int) term.Word
	SetWord(i int, w term.Word)
}

var (
	_ Arena = (*Heap)(nil)
	_ Arena = (*Fragment)(nil)
)

// Process-global base offsets for the three kinds of arena a process owns.
// A real implementation identifies an arena by the bit pattern of a machine
// pointer alone; since term.Word carries a bare index rather than a real
// address, every arena is instead given a disjoint window of the pointer
// index space so a stored pointer's global index alone still tells you
// which arena it targets.
const (
	YoungBase = 0
	OldBase   = int(1) << 60

	fragmentBase0  = int(1) << 61
	fragmentStride = int(1) << 32
)

// NewFragment appends a fresh fragment to the process's chain, assigning it
// the next unused fragment address window, and returns it. Fragments are
// always released by the end of the collection that drains them, so base
// reuse across collections is safe; uniqueness only has to hold among
// fragments simultaneously alive in one process.
func (p *Process) NewFragment(size int) *Fragment {
	n := 0
	for c := p.Fragments; c != nil; c = c.Next {
		n++
	}
	f := NewFragment(size)
	f.SetBase(fragmentBase0 + n*fragmentStride)
	f.Next = p.Fragments
	p.Fragments = f
	return f
}

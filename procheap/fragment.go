package procheap

import "github.com/beamforge/procgc/term"

// Fragment is an off-heap buffer holding terms destined for the process
// heap but allocated outside it because the process wasn't at a safe point
// to grow. Fragments chain off the process and are drained into the young
// heap at the start of every collection; the chain is always empty
// immediately after a collection completes.
type Fragment struct {
	words []term.Word
	base  int
	top   int
	Next  *Fragment
}

func NewFragment(size int) *Fragment {
	return &Fragment{words: make([]term.Word, size)}
}

func (f *Fragment) Size() int                    { return len(f.words) }
func (f *Fragment) Used() int                     { return f.top }
func (f *Fragment) Words() []term.Word            { return f.words }
func (f *Fragment) Word(i int) term.Word          { return f.words[i] }
func (f *Fragment) SetWord(i int, w term.Word)    { f.words[i] = w }

func (f *Fragment) Base() int     { return f.base }
func (f *Fragment) SetBase(b int) { f.base = b }

func (f *Fragment) Global(local int) int { return f.base + local }
func (f *Fragment) Local(global int) int { return global - f.base }

func (f *Fragment) ContainsGlobal(global int) bool {
	local := global - f.base
	return local >= 0 && local < f.top
}

func (f *Fragment) Alloc(n int) int {
	if f.top+n > len(f.words) {
		panic("procheap: fragment overrun on Alloc")
	}
	idx := f.top
	f.top += n
	return idx
}

// TotalSize returns the combined word count across the whole chain
// (including f), used to size the destination young heap during both minor
// and major collection.
func (f *Fragment) TotalSize() int {
	total := 0
	for c := f; c != nil; c = c.Next {
		total += c.Used()
	}
	return total
}

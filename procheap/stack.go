package procheap

import "github.com/beamforge/procgc/term"

// Stack is a process's (or fiber's) register/variable stack, kept as a
// separate arena rather than interleaved with the young heap (see
// DESIGN.md Open Question: "Separate vs interleaved stack"). Because
// on-heap terms never point into the stack, growing or shrinking it never
// requires rebasing any root or heap pointer — only the stack's own slice
// header changes.
type Stack struct {
	words []term.Word
}

func NewStack() *Stack { return &Stack{} }

func (s *Stack) Push(w term.Word) { s.words = append(s.words, w) }

func (s *Stack) Pop() term.Word {
	n := len(s.words) - 1
	w := s.words[n]
	s.words = s.words[:n]
	return w
}

func (s *Stack) Len() int { return len(s.words) }

// Slice exposes the live stack region (stack_top..stack_start) for the
// root-set builder and the evacuator to rewrite in place.
func (s *Stack) Slice() []term.Word { return s.words }

// Resize implements change_stack_size: grows or shrinks the
// backing array. No pointer in the heap or elsewhere on the stack ever
// needs rebasing as a result, since nothing outside the stack itself holds
// a raw index into it.
func (s *Stack) Resize(newCap int) {
	if newCap < len(s.words) {
		newCap = len(s.words)
	}
	grown := make([]term.Word, len(s.words), newCap)
	copy(grown, s.words)
	s.words = grown
}

// Package gc implements the per-process generational copying collector: a
// Cheney-style two-space evacuator, minor and major collection, heap
// fragment draining, off-heap list sweeping, and the hibernate and literal
// collection variants.
package gc

import (
	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/term"
)

// defaultRootCapacity is the size of the inline root-array batch before the
// builder spills into a dynamically grown slice.
const defaultRootCapacity = 32

// RootArray is one contiguous span of root slots, scanned and rewritten in
// place by the evacuator (the stack, the dictionary's backing array, the
// caller's register array, and each fiber's locals all qualify).
type RootArray struct {
	Words []term.Word
}

// Roots holds every root gathered for one collection: spans that can be
// scanned in place, plus individually addressed scalar fields (the
// sequence-trace token, group leader, fault value/trace, and each inline
// message's term and token) that the evacuator rewrites through their
// pointer.
type Roots struct {
	Arrays  []RootArray
	Scalars []*term.Word
}

// BuildRoots enumerates every live term reachable without traversing the
// heap: the stack slice, the dictionary backing array, the caller-supplied
// register array, the four scalar process fields (if non-immediate), every
// fiber's locals, and every inline (non-attached) message.
func BuildRoots(p *procheap.Process, fibers [][]term.Word) *Roots {
	r := &Roots{Arrays: make([]RootArray, 0, defaultRootCapacity)}

	if s := p.Stack.Slice(); len(s) > 0 {
		r.Arrays = append(r.Arrays, RootArray{Words: s})
	}
	if d := p.Dict.Backing(); len(d) > 0 {
		r.Arrays = append(r.Arrays, RootArray{Words: d})
	}
	if len(p.Registers) > 0 {
		r.Arrays = append(r.Arrays, RootArray{Words: p.Registers})
	}

	r.addScalar(&p.SeqTraceToken)
	r.addScalar(&p.GroupLeader)
	r.addScalar(&p.FaultValue)
	r.addScalar(&p.FaultTrace)

	for _, locals := range fibers {
		if len(locals) > 0 {
			r.Arrays = append(r.Arrays, RootArray{Words: locals})
		}
	}

	for _, m := range p.Mailbox {
		if m.IsAttached() {
			continue
		}
		r.Scalars = append(r.Scalars, &m.Term, &m.Token)
	}

	return r
}

func (r *Roots) addScalar(slot *term.Word) {
	if !term.IsImmediate(*slot) {
		r.Scalars = append(r.Scalars, slot)
	}
}

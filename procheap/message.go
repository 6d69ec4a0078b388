package procheap

import "github.com/beamforge/procgc/term"

// Envelope is one entry in a process's message queue. A message
// is either inline (its term already lives on the process heap) or
// attached (its term lives in an off-heap Fragment, because the process
// wasn't at a safe point to receive it directly onto the heap).
type Envelope struct {
	Term  term.Word
	Token term.Word // sequence-tracing token travelling with the message

	Attached *Fragment // non-nil iff this message's payload is off-heap
}

func (e *Envelope) IsAttached() bool { return e.Attached != nil }

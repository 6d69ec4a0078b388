// Package fiberq implements the fiber queue: a doubly-linked list of
// cooperatively scheduled coroutines sharing a process's heap.
// Fiber records are GC roots on equal footing with the process's main
// stack.
package fiberq

import (
	"github.com/beamforge/procgc/gcerr"
	"github.com/beamforge/procgc/procid"
	"github.com/beamforge/procgc/term"
)

// Fiber is one entry in a process's fiber queue.
type Fiber struct {
	ID  procid.FiberID
	Mod term.Word
	Fun term.Word
	// Locals holds the fiber's own live terms (its private stack slice);
	// scanned as a root alongside the process's main stack.
	Locals []term.Word

	next, prev *Fiber
}

// Root exposes Locals for the root-set builder.
func (f *Fiber) Root() []term.Word { return f.Locals }

// Queue is the doubly-linked list of fibers co-resident with a process.
// Head is the fiber that next runs.
type Queue struct {
	head *Fiber
	n    int
}

func NewQueue() *Queue { return &Queue{} }

func (q *Queue) Len() int { return q.n }

func (q *Queue) Head() *Fiber { return q.head }

// All returns every fiber currently queued, head first.
func (q *Queue) All() []*Fiber {
	out := make([]*Fiber, 0, q.n)
	if q.head == nil {
		return out
	}
	f := q.head
	for {
		out = append(out, f)
		f = f.next
		if f == q.head {
			break
		}
	}
	return out
}

func (q *Queue) insertBefore(at, n *Fiber) {
	n.next = at
	n.prev = at.prev
	at.prev.next = n
	at.prev = n
}

// Create appends a new fiber running mod:fun(args) to the tail of the
// queue and returns its id.
func (q *Queue) Create(mod, fun term.Word, args []term.Word) procid.FiberID {
	f := &Fiber{ID: procid.NewFiberID(), Mod: mod, Fun: fun, Locals: args}
	if q.head == nil {
		f.next, f.prev = f, f
		q.head = f
	} else {
		q.insertBefore(q.head, f)
	}
	q.n++
	return f.ID
}

func (q *Queue) find(id procid.FiberID) *Fiber {
	if q.head == nil {
		return nil
	}
	f := q.head
	for {
		if f.ID == id {
			return f
		}
		f = f.next
		if f == q.head {
			return nil
		}
	}
}

func (q *Queue) remove(f *Fiber) {
	if f.next == f {
		q.head = nil
	} else {
		f.prev.next = f.next
		f.next.prev = f.prev
		if q.head == f {
			q.head = f.next
		}
	}
	f.next, f.prev = nil, nil
	q.n--
}

// Yield rotates the head to the next fiber in queue order and returns the
// new head's id. Yielding the only remaining fiber is a no-op: it returns
// the current fiber id.
func (q *Queue) Yield() (procid.FiberID, error) {
	if q.head == nil {
		return "", gcerr.ErrBadArg
	}
	if q.n == 1 {
		return q.head.ID, nil
	}
	q.head = q.head.next
	return q.head.ID, nil
}

// YieldTo promotes the fiber with the given id to head, if present.
func (q *Queue) YieldTo(id procid.FiberID) (procid.FiberID, error) {
	f := q.find(id)
	if f == nil {
		return "", gcerr.ErrBadArg
	}
	q.head = f
	return f.ID, nil
}

// ExitResult reports the outcome of Exit: whether the targeted fiber was
// the only remaining fiber (in which case the caller must terminate the
// owning process) and, when it wasn't, the id that is now head.
type ExitResult struct {
	ProcessShouldExit bool
	NewHead           procid.FiberID
}

// Exit removes a non-head fiber (silently discarding its reason, spec
// §4.11). Exiting the head fiber terminates the process only when it is
// also the only remaining fiber; otherwise the head simply
// rotates to the next fiber, same as a yield.
func (q *Queue) Exit(id procid.FiberID, _reason term.Word) (ExitResult, error) {
	f := q.find(id)
	if f == nil {
		return ExitResult{}, gcerr.ErrBadArg
	}
	if f == q.head {
		if q.n == 1 {
			q.remove(f)
			return ExitResult{ProcessShouldExit: true}, nil
		}
		newHead := f.next
		q.remove(f)
		return ExitResult{NewHead: newHead.ID}, nil
	}
	q.remove(f)
	return ExitResult{NewHead: q.head.ID}, nil
}

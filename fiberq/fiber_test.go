package fiberq_test

import (
	"testing"

	"github.com/beamforge/procgc/fiberq"
	"github.com/beamforge/procgc/procid"
	"github.com/beamforge/procgc/term"
)

// Fiber rotation: yield/yield-to/exit interplay across a multi-fiber queue.
func TestFiberRotationScenario(t *testing.T) {
	q := fiberq.NewQueue()
	idA := q.Create(0, 0, nil)
	idB := q.Create(0, 0, nil)
	idC := q.Create(0, 0, nil)

	if got := q.Head().ID; got != idA {
		t.Fatalf("initial head = %v, want A", got)
	}

	if next, err := q.Yield(); err != nil || next != idB {
		t.Fatalf("yield() = %v, %v; want B, nil", next, err)
	}

	if next, err := q.YieldTo(idC); err != nil || next != idC {
		t.Fatalf("yield(C) = %v, %v; want C, nil", next, err)
	}

	// exit(B, reason) when head=C -> B removed, list=[C,A]
	res, err := q.Exit(idB, term.Word(0))
	if err != nil {
		t.Fatalf("exit(B) error: %v", err)
	}
	if res.ProcessShouldExit {
		t.Fatalf("exit(B) should not terminate the process")
	}
	all := q.All()
	if len(all) != 2 || all[0].ID != idC || all[1].ID != idA {
		t.Fatalf("after exit(B), queue = %v, want [C, A]", idsOf(all))
	}

	// exit(C) -> switch to A
	res, err = q.Exit(idC, term.Word(0))
	if err != nil {
		t.Fatalf("exit(C) error: %v", err)
	}
	if res.ProcessShouldExit {
		t.Fatalf("exit(C) should not terminate the process while A remains")
	}
	if res.NewHead != idA {
		t.Fatalf("exit(C) new head = %v, want A", res.NewHead)
	}
	if got := q.Head().ID; got != idA {
		t.Fatalf("head after exit(C) = %v, want A", got)
	}
}

func TestExitOnlyRemainingFiberFallsThroughToProcessExit(t *testing.T) {
	q := fiberq.NewQueue()
	id := q.Create(0, 0, nil)
	res, err := q.Exit(id, term.Word(0))
	if err != nil {
		t.Fatalf("exit error: %v", err)
	}
	if !res.ProcessShouldExit {
		t.Fatalf("exiting the only remaining fiber must fall through to process exit")
	}
}

func TestYieldOnlyRemainingFiberReturnsCurrent(t *testing.T) {
	q := fiberq.NewQueue()
	id := q.Create(0, 0, nil)
	next, err := q.Yield()
	if err != nil {
		t.Fatalf("yield error: %v", err)
	}
	if next != id {
		t.Fatalf("yield on sole fiber = %v, want %v", next, id)
	}
}

func TestBadArg(t *testing.T) {
	q := fiberq.NewQueue()
	q.Create(0, 0, nil)
	if _, err := q.YieldTo(procid.FiberID("nonexistent")); err == nil {
		t.Fatal("expected BADARG for unknown fiber id")
	}
	if _, err := q.Exit(procid.FiberID("nonexistent"), term.Word(0)); err == nil {
		t.Fatal("expected BADARG for unknown fiber id")
	}
}

func idsOf(fs []*fiberq.Fiber) []procid.FiberID {
	out := make([]procid.FiberID, len(fs))
	for i, f := range fs {
		out[i] = f.ID
	}
	return out
}

package procheap_test

import (
	"testing"

	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/term"
)

func TestHeapAllocBumpsTop(t *testing.T) {
	h := procheap.NewHeap(16)
	a := h.Alloc(3)
	b := h.Alloc(5)
	if a != 0 || b != 3 {
		t.Fatalf("got indices %d, %d, want 0, 3", a, b)
	}
	if h.Top() != 8 {
		t.Errorf("Top() = %d, want 8", h.Top())
	}
	if h.Free() != 8 {
		t.Errorf("Free() = %d, want 8", h.Free())
	}
}

func TestHeapAllocOverrunPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Alloc to panic on overrun")
		}
	}()
	h := procheap.NewHeap(2)
	h.Alloc(3)
}

func TestHeapGlobalLocalRoundTrip(t *testing.T) {
	h := procheap.NewHeap(8)
	h.SetBase(procheap.OldBase)
	h.Alloc(4)
	for local := 0; local < 4; local++ {
		g := h.Global(local)
		if got := h.Local(g); got != local {
			t.Errorf("Local(Global(%d)) = %d, want %d", local, got, local)
		}
		if !h.ContainsGlobal(g) {
			t.Errorf("ContainsGlobal(%d) = false, want true", g)
		}
	}
	if h.ContainsGlobal(procheap.YoungBase) {
		t.Errorf("ContainsGlobal should not match a different arena's base")
	}
}

func TestHeapResizePreservesLivePrefix(t *testing.T) {
	h := procheap.NewHeap(4)
	h.SetBase(procheap.OldBase)
	idx := h.Alloc(2)
	h.SetWord(idx, term.MakeHeader(term.SubtagTuple, 1))
	h.SetWord(idx+1, term.MakeImmediate(13))

	h.Resize(10)
	if h.Size() != 10 {
		t.Fatalf("Size() = %d, want 10", h.Size())
	}
	if h.Top() != 2 {
		t.Errorf("Resize should not change Top(); got %d", h.Top())
	}
	if h.Word(idx+1) != term.MakeImmediate(13) {
		t.Errorf("Resize lost live data")
	}
	if h.Base() != procheap.OldBase {
		t.Errorf("Resize should preserve Base()")
	}
}

func TestHeapResizeNeverShrinksBelowTop(t *testing.T) {
	h := procheap.NewHeap(8)
	h.Alloc(6)
	h.Resize(2)
	if h.Size() != 6 {
		t.Errorf("Resize(2) with Top()=6 should clamp to 6, got %d", h.Size())
	}
}

func TestHeapExternRoundTrip(t *testing.T) {
	h := procheap.NewHeap(4)
	if _, ok := h.Extern(0); ok {
		t.Fatal("Extern on empty table should report not-found")
	}
	h.SetExtern(0, "resource")
	got, ok := h.Extern(0)
	if !ok || got != "resource" {
		t.Fatalf("Extern round-trip failed: got %v, %v", got, ok)
	}
	h.DeleteExtern(0)
	if _, ok := h.Extern(0); ok {
		t.Fatal("Extern should report not-found after DeleteExtern")
	}
}

func TestHeapHighWater(t *testing.T) {
	h := procheap.NewHeap(4)
	if h.HighWater() != 0 {
		t.Fatalf("fresh heap should have high_water 0, got %d", h.HighWater())
	}
	h.SetHighWater(3)
	if h.HighWater() != 3 {
		t.Errorf("SetHighWater did not stick")
	}
}

package procheap_test

import (
	"testing"

	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/term"
)

func TestDictionaryPutGet(t *testing.T) {
	d := procheap.NewDictionary()
	if _, ok := d.Get(term.MakeImmediate(1)); ok {
		t.Fatal("Get on empty dictionary should report not-found")
	}

	d.Put(term.MakeImmediate(1), term.MakeImmediate(100))
	d.Put(term.MakeImmediate(2), term.MakeImmediate(200))
	if d.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", d.Len())
	}

	v, ok := d.Get(term.MakeImmediate(1))
	if !ok || v != term.MakeImmediate(100) {
		t.Fatalf("Get(1) = %v, %v, want 100, true", v, ok)
	}
	v, ok = d.Get(term.MakeImmediate(2))
	if !ok || v != term.MakeImmediate(200) {
		t.Fatalf("Get(2) = %v, %v, want 200, true", v, ok)
	}
}

func TestDictionaryPutOverwrites(t *testing.T) {
	d := procheap.NewDictionary()
	d.Put(term.MakeImmediate(1), term.MakeImmediate(100))
	d.Put(term.MakeImmediate(1), term.MakeImmediate(999))
	if d.Len() != 1 {
		t.Fatalf("overwriting an existing key should not grow Len(); got %d", d.Len())
	}
	v, _ := d.Get(term.MakeImmediate(1))
	if v != term.MakeImmediate(999) {
		t.Fatalf("Get(1) = %v, want 999", v)
	}
}

func TestDictionaryBackingIsRootScannable(t *testing.T) {
	d := procheap.NewDictionary()
	d.Put(term.MakeImmediate(1), term.MakeBoxed(7))
	backing := d.Backing()
	if len(backing) != 2 {
		t.Fatalf("Backing() length = %d, want 2", len(backing))
	}
	// rewriting the backing array in place (as the evacuator does) must be
	// visible through a subsequent Get.
	backing[1] = term.MakeBoxed(99)
	v, ok := d.Get(term.MakeImmediate(1))
	if !ok || v != term.MakeBoxed(99) {
		t.Fatalf("Get after in-place rewrite = %v, %v, want 99, true", v, ok)
	}
}

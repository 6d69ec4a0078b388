package term_test

import (
	"testing"

	"github.com/beamforge/procgc/term"
)

func TestTagRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		w    term.Word
		tag  term.Word
	}{
		{"boxed", term.MakeBoxed(42), term.TagBoxed},
		{"list", term.MakeList(7), term.TagList},
		{"immediate", term.MakeImmediate(99), term.TagImmediate},
	}
	for _, c := range cases {
		if got := term.Tag(c.w); got != c.tag {
			t.Errorf("%s: Tag() = %d, want %d", c.name, got, c.tag)
		}
	}
	if term.PointerIndex(term.MakeBoxed(42)) != 42 {
		t.Errorf("PointerIndex round-trip failed for boxed")
	}
	if term.PointerIndex(term.MakeList(7)) != 7 {
		t.Errorf("PointerIndex round-trip failed for list")
	}
}

func TestHeaderArityAndSubtag(t *testing.T) {
	h := term.MakeHeader(term.SubtagTuple, 3)
	if term.Tag(h) != term.TagHeader {
		t.Fatalf("header word did not classify as header")
	}
	if got := term.HeaderSubtag(h); got != term.SubtagTuple {
		t.Errorf("HeaderSubtag = %d, want %d", got, term.SubtagTuple)
	}
	if got := term.HeaderArity(h); got != 3 {
		t.Errorf("HeaderArity = %d, want 3", got)
	}
}

func TestMoved(t *testing.T) {
	if !term.IsMoved(term.Moved) {
		t.Fatal("Moved sentinel did not self-identify as moved")
	}
	if term.IsMoved(term.MakeHeader(term.SubtagTuple, 0)) {
		t.Fatal("ordinary header misclassified as moved")
	}
	if !term.IsNonValue(term.NonValue) {
		t.Fatal("NonValue sentinel did not self-identify")
	}
}

func TestMatchStateRebase(t *testing.T) {
	words := make([]term.Word, 8)
	words[0] = term.MakeHeader(term.SubtagMatchState, 3)
	ms := term.NewMatchState(words, 0)
	ms.SetOrig(term.MakeBoxed(10))
	words[2] = 5 // Offset
	ms.Rebase()
	if got := ms.Base(); got != 15 {
		t.Errorf("Base after first rebase = %d, want 15", got)
	}
	ms.SetOrig(term.MakeBoxed(100))
	ms.Rebase()
	if got := ms.Base(); got != 105 {
		t.Errorf("Base after rebase following move = %d, want 105", got)
	}
}

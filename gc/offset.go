package gc

import (
	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/term"
)

// rebaseWord rewrites w if it is a boxed/list pointer whose target falls in
// the global index range [lo, hi), shifting it by delta. This is what a
// byte-offset fixup becomes once pointers are index-based rather than raw
// addresses: used whenever a heap's backing array is replaced by a freshly
// allocated one at a different base rather than grown in place — currently
// only the hibernate path's temp-then-exact two-step allocation does this.
func rebaseWord(w term.Word, lo, hi, delta int) term.Word {
	switch term.Tag(w) {
	case term.TagBoxed:
		if g := term.PointerIndex(w); g >= lo && g < hi {
			return term.MakeBoxed(g + delta)
		}
	case term.TagList:
		if g := term.PointerIndex(w); g >= lo && g < hi {
			return term.MakeList(g + delta)
		}
	}
	return w
}

// OffsetTermArea walks a contiguous term array dispatching on primary tag
// and rewriting in place, the same traversal the evacuator's sweep uses: a
// header's payload is visited word by word like any other term data, since
// a tuple element or fun free variable may itself be a boxed/list pointer
// needing rebasing. Only a subtag with an opaque payload
// (term.HeaderOpaquePayload) is skipped wholesale by arity — SubtagMatchState
// has its embedded Orig/Base pair offset and recomputed individually
// instead. Off-heap Next links are not rewritten here — they are native Go
// pointers between OffHeapNode wrappers (see procheap.OffHeapNode),
// relocated directly by the caller once it knows each node's new owning
// heap, not by walking term words.
func OffsetTermArea(h *procheap.Heap, lo, hi, delta int) {
	words := h.Words()
	pos := 0
	for pos < h.Top() {
		w := words[pos]
		if term.Tag(w) == term.TagHeader {
			subtag := term.HeaderSubtag(w)
			if subtag == term.SubtagMatchState {
				ms := term.NewMatchState(words, pos)
				ms.SetOrig(rebaseWord(ms.Orig(), lo, hi, delta))
				ms.Rebase()
			}
			if term.HeaderOpaquePayload(subtag) {
				pos += int(term.HeaderArity(w)) + 1
			} else {
				pos++
			}
			continue
		}
		words[pos] = rebaseWord(w, lo, hi, delta)
		pos++
	}
}

// OffsetRoots treats every root slot as potentially a tagged pointer.
// Unlike OffsetTermArea there is no header structure to skip by arity, so
// every slot is individually tested — conflating the two walkers would
// misinterpret stack or register data that happens to look like a header.
func OffsetRoots(r *Roots, lo, hi, delta int) {
	for _, arr := range r.Arrays {
		for i, w := range arr.Words {
			arr.Words[i] = rebaseWord(w, lo, hi, delta)
		}
	}
	for _, slot := range r.Scalars {
		*slot = rebaseWord(*slot, lo, hi, delta)
	}
}

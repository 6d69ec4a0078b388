package gc_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/beamforge/procgc/gc"
	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/term"
)

// allocTuple bump-allocates a one-element tuple {payload} on h and returns
// the header's local index.
func allocTuple(h *procheap.Heap, payload term.Word) int {
	idx := h.Alloc(2)
	h.SetWord(idx, term.MakeHeader(term.SubtagTuple, 1))
	h.SetWord(idx+1, payload)
	return idx
}

var _ = Describe("Minor collection", func() {
	It("promotes already-mature data to the old heap and preserves its contents", func() {
		p := procheap.NewProcess(64, 233)
		h := p.Young
		idx := allocTuple(h, term.MakeImmediate(42))
		h.SetHighWater(h.Top()) // everything allocated so far counts as mature

		regs := []term.Word{term.MakeBoxed(h.Global(idx))}
		res := gc.RunMinor(p, 0, regs, nil)

		Expect(res.Done).To(BeTrue())
		Expect(p.Old).NotTo(BeNil())

		Expect(term.IsBoxed(regs[0])).To(BeTrue())
		Expect(p.Old.ContainsGlobal(term.PointerIndex(regs[0]))).To(BeTrue())

		local := p.Old.Local(term.PointerIndex(regs[0]))
		Expect(term.HeaderArity(p.Old.Word(local))).To(BeEquivalentTo(1))
		Expect(p.Old.Word(local + 1)).To(Equal(term.MakeImmediate(42)))

		// the original header now carries a forwarding marker
		Expect(term.IsMoved(h.Word(idx))).To(BeTrue())
	})

	It("drops data nothing references", func() {
		p := procheap.NewProcess(64, 233)
		allocTuple(p.Young, term.MakeImmediate(1)) // garbage, no root
		idx := allocTuple(p.Young, term.MakeImmediate(2))

		regs := []term.Word{term.MakeBoxed(p.Young.Global(idx))}
		res := gc.RunMinor(p, 0, regs, nil)

		Expect(res.Done).To(BeTrue())
		// only the two words behind the surviving root made it across
		Expect(p.Young.Used()).To(Equal(2))
	})
})

var _ = Describe("Nested pointers", func() {
	It("evacuates a tuple element that is itself a boxed pointer", func() {
		p := procheap.NewProcess(64, 233)
		h := p.Young

		innerIdx := allocTuple(h, term.MakeImmediate(11))
		outerIdx := h.Alloc(2)
		h.SetWord(outerIdx, term.MakeHeader(term.SubtagTuple, 1))
		h.SetWord(outerIdx+1, term.MakeBoxed(h.Global(innerIdx)))

		regs := []term.Word{term.MakeBoxed(h.Global(outerIdx))}
		res := gc.RunMinor(p, 0, regs, nil)
		Expect(res.Done).To(BeTrue())

		newYoung := p.Young
		outerLocal := newYoung.Local(term.PointerIndex(regs[0]))
		innerWord := newYoung.Word(outerLocal + 1)

		Expect(term.IsBoxed(innerWord)).To(BeTrue())
		Expect(newYoung.ContainsGlobal(term.PointerIndex(innerWord))).To(BeTrue())
		innerLocal := newYoung.Local(term.PointerIndex(innerWord))
		Expect(newYoung.Word(innerLocal + 1)).To(Equal(term.MakeImmediate(11)))
	})
})

var _ = Describe("Collect escalation to major", func() {
	It("merges young and old into a single new young heap when old can't take the promotion", func() {
		p := procheap.NewProcess(64, 233)
		h := p.Young
		idx := allocTuple(h, term.MakeImmediate(7))
		h.SetHighWater(h.Top()) // mature = 2 words

		p.Old = procheap.NewHeap(1) // far too small to take the promotion
		p.Old.SetBase(procheap.OldBase)

		regs := []term.Word{term.MakeBoxed(h.Global(idx))}
		cost := gc.Collect(context.Background(), p, 0, regs, nil, gc.NopMonitor{})

		Expect(cost).To(BeNumerically(">", 0))
		Expect(p.Old).To(BeNil())

		Expect(term.IsBoxed(regs[0])).To(BeTrue())
		Expect(p.Young.ContainsGlobal(term.PointerIndex(regs[0]))).To(BeTrue())
		local := p.Young.Local(term.PointerIndex(regs[0]))
		Expect(term.HeaderArity(p.Young.Word(local))).To(BeEquivalentTo(1))
		Expect(p.Young.Word(local + 1)).To(Equal(term.MakeImmediate(7)))
	})
})

var _ = Describe("Hibernate", func() {
	It("shrinks a process down to exactly its live data", func() {
		p := procheap.NewProcess(32, 16)
		allocTuple(p.Young, term.MakeImmediate(99)) // garbage, no root
		idx := allocTuple(p.Young, term.MakeImmediate(5))

		p.Registers = []term.Word{term.MakeBoxed(p.Young.Global(idx))}
		gc.RunHibernate(p, nil)

		Expect(p.Young.Size()).To(Equal(2))
		Expect(p.Young.Used()).To(Equal(2))
		Expect(p.Young.Base()).To(Equal(procheap.YoungBase))

		root := p.Registers[0]
		Expect(term.IsBoxed(root)).To(BeTrue())
		local := p.Young.Local(term.PointerIndex(root))
		Expect(p.Young.Word(local + 1)).To(Equal(term.MakeImmediate(5)))
	})

	It("panics when called with a non-empty stack", func() {
		p := procheap.NewProcess(8, 8)
		p.Stack.Push(term.MakeImmediate(1))
		Expect(func() { gc.RunHibernate(p, nil) }).To(Panic())
	})
})

var _ = Describe("Off-heap binary sweep", func() {
	It("releases a binary's resource once nothing references it", func() {
		p := procheap.NewProcess(16, 16)
		h := p.Young
		idx := h.Alloc(2)
		h.SetWord(idx, term.MakeHeader(term.SubtagRefcBin, 1))
		h.SetWord(idx+1, term.MakeImmediate(0))

		bin := procheap.NewBinResource([]byte("hello"), false)
		h.SetExtern(idx, bin)
		p.Binaries.PushFront(&procheap.OffHeapNode{
			Kind: procheap.KindRefcBin, Heap: h, Index: idx, Resource: bin,
		})

		gc.RunMinor(p, 0, nil, nil) // no root keeps the node alive

		Expect(p.Binaries.ToSlice()).To(BeEmpty())
		Expect(bin.Refc()).To(BeEquivalentTo(0))
		Expect(bin.Data).To(BeNil())
	})

	It("shrinks a surviving writable binary's slack capacity", func() {
		p := procheap.NewProcess(16, 16)
		h := p.Young
		idx := h.Alloc(2)
		h.SetWord(idx, term.MakeHeader(term.SubtagRefcBin, 1))
		h.SetWord(idx+1, term.MakeImmediate(0))

		data := make([]byte, 10, 100)
		bin := procheap.NewBinResource(data, true)
		h.SetExtern(idx, bin)
		p.Binaries.PushFront(&procheap.OffHeapNode{
			Kind: procheap.KindRefcBin, Heap: h, Index: idx, Resource: bin,
		})

		regs := []term.Word{term.MakeBoxed(h.Global(idx))}
		gc.RunMinor(p, 0, regs, nil)

		survivors := p.Binaries.ToSlice()
		Expect(survivors).To(HaveLen(1))
		Expect(cap(bin.Data)).To(BeNumerically("<", 100))
		Expect(cap(bin.Data)).To(BeNumerically(">=", len(bin.Data)))
	})
})

var _ = Describe("NextVHeapSize", func() {
	It("doubles once usage reaches the limit", func() {
		Expect(gc.NextVHeapSize(100, 100)).To(BeEquivalentTo(200))
	})
	It("shrinks to three quarters once usage falls under half the limit", func() {
		Expect(gc.NextVHeapSize(10, 100)).To(BeEquivalentTo(75))
	})
	It("leaves the limit unchanged in between", func() {
		Expect(gc.NextVHeapSize(60, 100)).To(BeEquivalentTo(100))
	})
})

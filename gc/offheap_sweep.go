package gc

import (
	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/term"
)

// shrinkSlackMinBytes is the minimum unused tail capacity a writable,
// inactive refc binary must have to become a shrink candidate.
const shrinkSlackMinBytes = 8

// shrinkSlackWide and shrinkSlackNarrow are the slack fractions left
// behind when shrinking: 20% when no active writers remain across the
// whole candidate set, 10% once there are more than a few candidates (the
// "larger candidate sets" case).
const (
	shrinkSlackWide       = 0.20
	shrinkSlackNarrow     = 0.10
	narrowCandidateCutoff = 16
)

// SweepResult reports what one off-heap list sweep did, for virtual-heap
// accounting and the next collection's escalation decision.
type SweepResult struct {
	VHeapBytes    int64 // bytes charged for survivors now in the new area
	OldVHeapBytes int64 // bytes charged for survivors left in the old heap untouched
}

// SweepOffHeapList walks one off-heap list after evacuation has already
// run. A node's object header at (Heap, Index) was rewritten to a
// forwarding marker by the evacuator if it survived; this sweep follows
// that marker to relink the list at the object's new address, drops nodes
// that didn't survive (decrementing their refcount, freeing the resource on
// the last reference), and — during a non-full minor sweep — keeps nodes
// still resident in an old heap that was never a collection source this
// round.
//
// fullsweep mirrors §4.7: false during minor collection (old-heap
// residents are left alone), true during major and hibernate collection
// (there is no old heap left untouched to check).
func SweepOffHeapList(list *procheap.OffHeapList, old *procheap.Heap, fullsweep bool) SweepResult {
	var res SweepResult
	var survivors []*procheap.OffHeapNode
	var shrinkCandidates []*procheap.OffHeapNode
	anyActive := false

	for _, n := range list.ToSlice() {
		header := n.Heap.Word(n.Index)
		switch {
		case term.IsMoved(header):
			fwd := n.Heap.Word(n.Index + 1)
			newHeap, newIndex, ok := resolveBoxedTarget(fwd)
			if ok {
				if r, has := n.Heap.Extern(n.Index); has {
					newHeap.SetExtern(newIndex, r)
					n.Heap.DeleteExtern(n.Index)
				}
				n.Heap = newHeap
				n.Index = newIndex
			}
			res.VHeapBytes += payloadWeight(n)
			survivors = append(survivors, n)
			if isActiveWritable(n) {
				anyActive = true
			}
			collectShrinkCandidate(n, &shrinkCandidates)
		case !fullsweep && old != nil && n.Heap == old:
			res.OldVHeapBytes += payloadWeight(n)
			survivors = append(survivors, n)
			if isActiveWritable(n) {
				anyActive = true
			}
		default:
			releaseNode(n)
		}
	}

	applyShrinkPolicy(shrinkCandidates, anyActive)
	list.FromSlice(survivors)
	return res
}

// isActiveWritable reports whether n is a writable refc binary currently
// marked active (has an outstanding match state or in-progress append) —
// such a binary blocks the whole sweep's shrink policy from going to exact
// size, regardless of whether n itself is a shrink candidate.
func isActiveWritable(n *procheap.OffHeapNode) bool {
	if n.Kind != procheap.KindRefcBin {
		return false
	}
	res, ok := n.Heap.Extern(n.Index)
	if !ok {
		return false
	}
	bin, ok := res.(*procheap.BinResource)
	return ok && bin.Writable && bin.Active
}

// resolveBoxedTarget maps a forwarding word back to the heap that owns it,
// consulting the heaps registered for the current sweep pass (see
// WithHeapRegistry).
func resolveBoxedTarget(fwd term.Word) (*procheap.Heap, int, bool) {
	global := term.PointerIndex(fwd)
	for _, h := range registeredHeaps {
		if h.ContainsGlobal(global) {
			return h, h.Local(global), true
		}
	}
	return nil, 0, false
}

// registeredHeaps is populated by the collector for the duration of one
// off-heap sweep pass so resolveBoxedTarget can identify a forwarding
// target's owning heap without every caller threading it through by hand.
var registeredHeaps []*procheap.Heap

// WithHeapRegistry runs fn with the given heaps available to
// resolveBoxedTarget, then restores the previous registry. Collections are
// never concurrent within one process, so this simple save/restore is
// sufficient and avoids passing the heap set through every call in the
// sweep's public signature.
func WithHeapRegistry(heaps []*procheap.Heap, fn func()) {
	prev := registeredHeaps
	registeredHeaps = heaps
	defer func() { registeredHeaps = prev }()
	fn()
}

func payloadWeight(n *procheap.OffHeapNode) int64 {
	res, ok := n.Heap.Extern(n.Index)
	if !ok {
		return 0
	}
	if bin, ok := res.(*procheap.BinResource); ok {
		return int64(len(bin.Data))
	}
	return 0
}

func collectShrinkCandidate(n *procheap.OffHeapNode, out *[]*procheap.OffHeapNode) {
	if n.Kind != procheap.KindRefcBin {
		return
	}
	res, ok := n.Heap.Extern(n.Index)
	if !ok {
		return
	}
	bin, ok := res.(*procheap.BinResource)
	if !ok || !bin.Writable || bin.Active {
		return
	}
	if bin.SlackBytes() >= shrinkSlackMinBytes {
		*out = append(*out, n)
	}
}

// applyShrinkPolicy shrinks each candidate's backing buffer down to exact
// size, unless no active writable binaries remain at all across the whole
// sweep (anyActive, computed over every surviving node, not just the
// candidates), in which case each candidate is allowed to keep a slack
// fraction instead of being shrunk to the byte.
func applyShrinkPolicy(candidates []*procheap.OffHeapNode, anyActive bool) {
	if len(candidates) == 0 {
		return
	}
	slackFraction := 0.0
	if !anyActive {
		slackFraction = shrinkSlackWide
		if len(candidates) > narrowCandidateCutoff {
			slackFraction = shrinkSlackNarrow
		}
	}
	for _, n := range candidates {
		res, ok := n.Heap.Extern(n.Index)
		if !ok {
			continue
		}
		bin, ok := res.(*procheap.BinResource)
		if !ok {
			continue
		}
		slack := int(float64(len(bin.Data)) * slackFraction)
		bin.Shrink(slack)
	}
}

// releaseNode drops a dead off-heap node's reference, freeing the
// underlying resource on the last reference: the binary's buffer, the
// closure's table entry, or the external identifier's node-table row.
func releaseNode(n *procheap.OffHeapNode) {
	res, ok := n.Heap.Extern(n.Index)
	if !ok {
		return
	}
	switch r := res.(type) {
	case *procheap.BinResource:
		if r.Decref() {
			r.Data = nil
		}
	case *procheap.ClosureResource:
		r.Decref()
	case *procheap.ExternalResource:
		r.Release()
	}
	n.Heap.DeleteExtern(n.Index)
}

// NextVHeapSize computes the next virtual-heap threshold: double it when
// the current usage exceeded the previous limit, shrink to 0.75x when
// usage is under half the limit, otherwise leave it unchanged.
func NextVHeapSize(current, previousLimit int64) int64 {
	switch {
	case current >= previousLimit:
		return previousLimit * 2
	case current < previousLimit/2:
		next := previousLimit * 3 / 4
		if next < 1 {
			next = 1
		}
		return next
	default:
		return previousLimit
	}
}

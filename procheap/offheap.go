package procheap

import (
	"sync"
	"sync/atomic"

	"github.com/beamforge/procgc/term"
)

// OffHeapKind distinguishes the three families of reference-counted
// external resource a process tracks.
type OffHeapKind int

const (
	KindRefcBin OffHeapKind = iota
	KindClosure
	KindExternal
)

// Resource is the shared, reference-counted payload behind an off-heap
// list node. It is shared across processes (reference counts on
// binaries, closures, and external nodes are shared across processes").
type Resource interface {
	Incref()
	// Decref drops one reference and reports whether the count reached
	// zero, at which point the caller is responsible for releasing the
	// underlying resource.
	Decref() bool
	Refc() int64
}

type refcBase struct{ refc atomic.Int64 }

func (r *refcBase) Incref()      { r.refc.Add(1) }
func (r *refcBase) Decref() bool { return r.refc.Add(-1) == 0 }
func (r *refcBase) Refc() int64  { return r.refc.Load() }

// BinResource is a reference-counted off-heap binary's backing buffer.
type BinResource struct {
	refcBase
	Data     []byte
	Writable bool // created via e.g. a binary-building BIF
	Active   bool // currently being appended to
	OrigSize int  // capacity at allocation time, before any shrink
}

func NewBinResource(data []byte, writable bool) *BinResource {
	b := &BinResource{Data: data, Writable: writable, OrigSize: cap(data)}
	b.Incref()
	return b
}

// SlackBytes is the unused tail capacity eligible for the shrink policy
// (the binary shrink-candidate policy).
func (b *BinResource) SlackBytes() int { return cap(b.Data) - len(b.Data) }

// Shrink reallocates Data down to exactly len(Data) + slack bytes.
func (b *BinResource) Shrink(slack int) {
	newCap := len(b.Data) + slack
	if newCap >= cap(b.Data) {
		return
	}
	fresh := make([]byte, len(b.Data), newCap)
	copy(fresh, b.Data)
	b.Data = fresh
}

// ClosureResource is a reference-counted function closure entry.
type ClosureResource struct {
	refcBase
	FunID string
}

func NewClosureResource(funID string) *ClosureResource {
	c := &ClosureResource{FunID: funID}
	c.Incref()
	return c
}

// NodeEntry is a row in the global remote-node table: a distinct refcount
// from any single external-identifier term's own refcount (SPEC_FULL §12
// item 2 — "ErtsLinkNode/MonitorNode-style external identifier cleanup").
type NodeEntry struct {
	Name string
	refcBase
}

// NodeTable is the process-independent table of remote-node entries that
// external identifiers (pids/ports/refs on a different node) are backed
// by.
type NodeTable struct {
	mu      sync.Mutex
	entries map[string]*NodeEntry
}

func NewNodeTable() *NodeTable { return &NodeTable{entries: make(map[string]*NodeEntry)} }

// Ref returns the entry for name, creating it with refc=1 if absent, or
// increffing an existing one.
func (nt *NodeTable) Ref(name string) *NodeEntry {
	nt.mu.Lock()
	defer nt.mu.Unlock()
	if e, ok := nt.entries[name]; ok {
		e.Incref()
		return e
	}
	e := &NodeEntry{Name: name}
	e.Incref()
	nt.entries[name] = e
	return e
}

// Release drops a reference to name's node entry, deleting the row if it
// reaches zero.
func (nt *NodeTable) Release(e *NodeEntry) {
	if !e.Decref() {
		return
	}
	nt.mu.Lock()
	defer nt.mu.Unlock()
	if cur, ok := nt.entries[e.Name]; ok && cur == e {
		delete(nt.entries, e.Name)
	}
}

// ExternalResource is an external pid/port/ref term's own refcount, backed
// by a shared NodeTable entry.
type ExternalResource struct {
	refcBase
	Table *NodeTable
	Entry *NodeEntry
}

func NewExternalResource(table *NodeTable, nodeName string) *ExternalResource {
	e := &ExternalResource{Table: table, Entry: table.Ref(nodeName)}
	e.Incref()
	return e
}

// Release drops this term's own reference and, only once that reaches
// zero, releases the underlying node-table row too — the two refcounts are
// distinct (SPEC_FULL §12 item 2).
func (e *ExternalResource) Release() {
	if e.Decref() {
		e.Table.Release(e.Entry)
	}
}

// OffHeapNode is the Go-level handle for a node in one of the three
// off-heap lists. Its Next pointer is the idiomatic-Go rendering of the
// spec's "next field stored inside the object itself": the node's
// reachability and forwarding are still decided purely by inspecting the
// header word at (Heap, Index) — see gc's off-heap sweep — list order
// itself is simply walked as a native Go chain rather than re-decoded from
// raw words on every traversal step, since our term.Word can't carry a
// live Go pointer to the shared Resource.
type OffHeapNode struct {
	Kind     OffHeapKind
	Heap     *Heap
	Index    int // index of this node's header word within Heap
	Next     *OffHeapNode
	Resource Resource
}

// Header returns the current header word at this node's location — MOVED
// detection reads this directly.
func (n *OffHeapNode) Header() term.Word { return n.Heap.Word(n.Index) }

// OffHeapList is one of a process's three singly-linked off-heap lists.
type OffHeapList struct {
	Kind OffHeapKind
	Head *OffHeapNode
}

func NewOffHeapList(kind OffHeapKind) *OffHeapList { return &OffHeapList{Kind: kind} }

func (l *OffHeapList) PushFront(n *OffHeapNode) {
	n.Next = l.Head
	l.Head = n
}

// ToSlice materializes the current chain for inspection/testing.
func (l *OffHeapList) ToSlice() []*OffHeapNode {
	var out []*OffHeapNode
	for n := l.Head; n != nil; n = n.Next {
		out = append(out, n)
	}
	return out
}

// FromSlice replaces the chain with the given order, relinking Next
// pointers — used after a sweep to relink its survivors. The sweep passes
// survivors in their original list order; it does not regroup shrink
// candidates by generation.
func (l *OffHeapList) FromSlice(nodes []*OffHeapNode) {
	l.Head = nil
	for i := len(nodes) - 1; i >= 0; i-- {
		l.PushFront(nodes[i])
	}
}

package gc

import (
	"context"
	"time"

	"github.com/beamforge/procgc/gcconfig"
	"github.com/beamforge/procgc/gcstats"
	"github.com/beamforge/procgc/gctrace"
	"github.com/beamforge/procgc/procheap"
	"github.com/beamforge/procgc/sizetab"
	"github.com/beamforge/procgc/term"
)

// Collect guarantees at least need free words on p's young heap on return.
// It never fails: a minor collection runs first unless the process already
// owes a full sweep (MAX_GEN_GCS exhausted or a prior sweep's
// NEED_FULLSWEEP flag), and a minor collection that either aborts (the old
// heap can't take this round's promotions) or finishes without meeting
// need escalates straight to a major collection. The returned cost is the
// number of words copied, charged as a reduction-budget expense by the
// caller's scheduler.
func Collect(ctx context.Context, p *procheap.Process, need int, regs []term.Word, fiberLocals [][]term.Word, mon Monitor) int {
	ctx, end := gctrace.Span(ctx, "gc.collect", string(p.Pid))
	defer end()
	start := time.Now()
	usedBefore := p.Young.Used()
	if p.Old != nil {
		usedBefore += p.Old.Used()
	}

	copied, done := runCollectOnce(p, need, regs, fiberLocals)
	if d := gcconfig.GCO.Get().TestLongGCSleep; d > 0 {
		time.Sleep(d)
	}

	took := time.Since(start)
	live := p.Young.Used()
	if p.Old != nil {
		live += p.Old.Used()
	}
	reclaimed := usedBefore - live
	if reclaimed < 0 {
		reclaimed = 0
	}
	gcstats.Record(int64(reclaimed))
	checkThresholds(mon, p.Pid, took, live)
	gcstats.SetHeapSize(string(p.Pid), p.Young.Size())
	gctrace.Annotate(ctx, copied, done)
	return copied
}

func runCollectOnce(p *procheap.Process, need int, regs []term.Word, fiberLocals [][]term.Word) (copied int, done bool) {
	if p.NeedFullsweep {
		maj := RunMajor(p, need, regs, fiberLocals)
		return maj.Copied, true
	}
	res := RunMinor(p, need, regs, fiberLocals)
	if res.NeedMajor || !res.Done {
		maj := RunMajor(p, need, regs, fiberLocals)
		return maj.Copied, true
	}
	return res.Copied, true
}

// CollectHibernate runs the hibernate collector and records the same
// global accounting a normal collection does.
func CollectHibernate(ctx context.Context, p *procheap.Process, fiberLocals [][]term.Word, mon Monitor) {
	ctx, end := gctrace.Span(ctx, "gc.hibernate", string(p.Pid))
	defer end()
	start := time.Now()

	usedBefore := p.Young.Used()
	if p.Old != nil {
		usedBefore += p.Old.Used()
	}
	RunHibernate(p, fiberLocals)
	took := time.Since(start)

	reclaimed := usedBefore - p.Young.Used()
	if reclaimed < 0 {
		reclaimed = 0
	}
	gcstats.Record(int64(reclaimed))
	checkThresholds(mon, p.Pid, took, p.Young.Used())
	gcstats.SetHeapSize(string(p.Pid), p.Young.Size())
	gctrace.Annotate(ctx, p.Young.Used(), true)
}

// BifOutcome classifies why AfterBIF is being called: a BIF either
// produced a real result, trapped (suspended to be resumed later with a
// caller-supplied register set), or raised.
type BifOutcome int

const (
	BifResult BifOutcome = iota
	BifTrap
)

// AfterBIF runs the GC needed right after a built-in function call
// returns, protecting whichever register set is actually live: the
// trap's def_arg_reg array if the BIF suspended, the caller's own
// register array (already valid for `arity` slots) if it raised, or just
// the single result word if the BIF returned normally.
func AfterBIF(ctx context.Context, p *procheap.Process, result term.Word, regs []term.Word, arity int, outcome BifOutcome, defArgReg []term.Word, mon Monitor) term.Word {
	switch {
	case term.IsNonValue(result) && outcome == BifTrap:
		Collect(ctx, p, 0, defArgReg, nil, mon)
	case term.IsNonValue(result):
		Collect(ctx, p, 0, regs[:arity], nil, mon)
	default:
		protect := []term.Word{result}
		Collect(ctx, p, 0, protect, nil, mon)
		result = protect[0]
	}
	return result
}

// ChangeStackSize reallocates a process's (separate-arena) stack.
func ChangeStackSize(p *procheap.Process, newSize int) {
	p.Stack.Resize(newSize)
}

// HeapSizes returns the permissible heap-size schedule.
func HeapSizes(_ *procheap.Process) []int {
	return sizetab.Table()
}

// Info snapshots the global collection counters.
func Info() gcstats.Info {
	return gcstats.Snapshot()
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/beamforge/procgc/gc"
	"github.com/beamforge/procgc/procheap"
	termpkg "github.com/beamforge/procgc/term"
)

// procResult is one simulated process's tally after running its full cycle
// count.
type procResult struct {
	collections int
	copied      int64
	took        time.Duration
}

func runBench(c *cli.Context) error {
	procs := c.Int("procs")
	cycles := c.Int("cycles")
	allocWords := c.Int("alloc")
	heapSize := c.Int("heap-size")
	minHeap := c.Int("min-heap-size")

	isTerm := term.IsTerminal(int(os.Stdout.Fd()))
	showProgress := isTerm && !c.Bool("no-progress")
	useColor := isTerm && !c.Bool("no-color")
	color.NoColor = !useColor

	var progress *mpb.Progress
	if showProgress {
		progress = mpb.New(mpb.WithWidth(64))
	}

	results := make([]procResult, procs)
	group, ctx := errgroup.WithContext(context.Background())

	for i := 0; i < procs; i++ {
		i := i
		var bar *mpb.Bar
		if progress != nil {
			name := fmt.Sprintf("proc-%03d ", i)
			bar = progress.AddBar(int64(cycles),
				mpb.PrependDecorators(
					decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DSyncWidthR}),
					decor.CountersNoUnit("%d/%d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(decor.Percentage()),
			)
		}
		group.Go(func() error {
			res, err := simulateProcess(ctx, heapSize, minHeap, cycles, allocWords, bar)
			results[i] = res
			return err
		})
	}

	if err := group.Wait(); err != nil {
		if progress != nil {
			progress.Wait()
		}
		return err
	}
	if progress != nil {
		progress.Wait()
	}

	report(results, c.Bool("json"))
	return nil
}

// simulateProcess allocates a mix of garbage and retained tuples against a
// fresh process's young heap for cycles rounds, collecting at the start of
// each round to reserve that round's allocation, and returns a per-process
// tally.
func simulateProcess(ctx context.Context, heapSize, minHeap, cycles, allocWords int, bar *mpb.Bar) (procResult, error) {
	p := procheap.NewProcess(heapSize, minHeap)
	mon := gc.NopMonitor{}

	var live []termpkg.Word
	start := time.Now()
	var totalCopied int64

	// each round's budget: a handful of garbage tuples plus one wrapper
	// tuple around the surviving chain, rounded up with slack.
	need := allocWords/4*2 + 4

	for n := 0; n < cycles; n++ {
		select {
		case <-ctx.Done():
			return procResult{}, ctx.Err()
		default:
		}

		regs := make([]termpkg.Word, len(live))
		copy(regs, live)
		copied := gc.Collect(ctx, p, need, regs, nil, mon)
		totalCopied += int64(copied)

		live = allocRound(p, regs, allocWords)

		if bar != nil {
			bar.Increment()
		}
	}

	return procResult{
		collections: cycles,
		copied:      totalCopied,
		took:        time.Since(start),
	}, nil
}

// allocRound bump-allocates a handful of garbage tuples (dropped next
// round) and one retained tuple chaining the previous round's roots, so a
// collection has real nested structure to evacuate.
func allocRound(p *procheap.Process, live []termpkg.Word, allocWords int) []termpkg.Word {
	h := p.Young
	garbageTuples := allocWords / 4
	for i := 0; i < garbageTuples; i++ {
		idx := h.Alloc(2)
		h.SetWord(idx, termpkg.MakeHeader(termpkg.SubtagTuple, 1))
		h.SetWord(idx+1, termpkg.MakeImmediate(termpkg.Word(i)))
	}

	// a zero-arity tuple isn't representable; the first round wraps a
	// placeholder immediate instead of the (empty) prior root list.
	arity := len(live)
	if arity == 0 {
		idx := h.Alloc(2)
		h.SetWord(idx, termpkg.MakeHeader(termpkg.SubtagTuple, 1))
		h.SetWord(idx+1, termpkg.MakeImmediate(0))
		return append(live[:0], termpkg.MakeBoxed(h.Global(idx)))
	}

	idx := h.Alloc(arity + 1)
	h.SetWord(idx, termpkg.MakeHeader(termpkg.SubtagTuple, termpkg.Word(arity)))
	for i, root := range live {
		h.SetWord(idx+1+i, root)
	}
	return append(live[:0], termpkg.MakeBoxed(h.Global(idx)))
}

func report(results []procResult, asJSON bool) {
	var totalCollections int
	var totalCopied int64
	var slowest time.Duration
	for _, r := range results {
		totalCollections += r.collections
		totalCopied += r.copied
		if r.took > slowest {
			slowest = r.took
		}
	}

	info := gc.Info()
	if asJSON {
		fmt.Printf(`{"processes":%d,"collections":%d,"copied_words":%d,"slowest":%q,"global_collections":%d,"global_reclaimed_words":%d}`+"\n",
			len(results), totalCollections, totalCopied, slowest.String(), info.Collections, info.ReclaimedWords)
		return
	}

	bold := color.New(color.Bold)
	bold.Println("gcbench summary")
	fmt.Printf("  processes          %d\n", len(results))
	fmt.Printf("  collections        %d\n", totalCollections)
	fmt.Printf("  words copied       %d\n", totalCopied)
	fmt.Printf("  slowest process    %s\n", slowest)

	green := color.New(color.FgGreen)
	green.Printf("  global collections %d, reclaimed %d words\n", info.Collections, info.ReclaimedWords)
}

// Command gcbench drives a fleet of simulated processes, each allocating
// garbage and live data on its own young heap and collecting independently,
// to exercise the collector under load and report aggregate throughput.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var version = "0.1.0"

func main() {
	app := cli.NewApp()
	app.Name = "gcbench"
	app.Usage = "simulate concurrent processes allocating and collecting against procgc"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "procs, p",
			Value: 8,
			Usage: "number of simulated processes to run concurrently",
		},
		cli.IntFlag{
			Name:  "cycles, c",
			Value: 200,
			Usage: "allocate+collect cycles each process runs",
		},
		cli.IntFlag{
			Name:  "alloc, a",
			Value: 64,
			Usage: "per-cycle allocation budget: alloc/4 two-word garbage tuples plus one retained wrapper tuple",
		},
		cli.IntFlag{
			Name:  "heap-size",
			Value: 233,
			Usage: "initial young heap size, in words, per process",
		},
		cli.IntFlag{
			Name:  "min-heap-size",
			Value: 233,
			Usage: "configured minimum heap size per process",
		},
		cli.BoolFlag{
			Name:  "no-progress",
			Usage: "disable the progress bar (implied when stdout isn't a terminal)",
		},
		cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colored summary output",
		},
		cli.BoolFlag{
			Name:  "json",
			Usage: "print the summary as a single JSON line instead of text",
		},
	}
	app.Action = runBench

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"log"
	"time"

	"github.com/tdcch/tdcch/pkg/customization"
	"github.com/tdcch/tdcch/pkg/opsserver"
	"github.com/tdcch/tdcch/pkg/stats"
	"github.com/tdcch/tdcch/pkg/tdgraph"
)

func main() {
	input := flag.String("input", "", "Input directory, in the binary format written by cmd/gentestdata")
	output := flag.String("output", "shortcuts.bin", "Output shortcut-graph binary file path")
	approxThreshold := flag.Int("approx-threshold", 1000, "Cached-PLF point count above which a shortcut is approximated")
	approxTolerance := flag.Float64("approx-tolerance", 1.0, "Approximation corridor tolerance, in seconds")
	sortTriangles := flag.Bool("sort-triangles", true, "Order triangle merges by lower-bound sum before folding them in")
	workers := flag.Int("workers", 0, "Goroutines per wavefront batch; 0 means GOMAXPROCS")
	opsAddr := flag.String("ops-addr", "", "If set, serve health/stats/progress on this address while customizing (e.g. :8081)")
	flag.Parse()

	if *input == "" {
		log.Fatal("Usage: customize --input <dir> [--output shortcuts.bin] [--ops-addr :8081]")
	}

	var ops *opsserver.Server
	if *opsAddr != "" {
		ops = opsserver.New(opsserver.DefaultConfig(*opsAddr))
		go func() {
			if err := ops.ListenAndServe(); err != nil {
				log.Printf("ops server stopped: %v", err)
			}
		}()
	}

	log.Printf("Loading input from %s", *input)
	g, cch, err := tdgraph.LoadInput(*input)
	if err != nil {
		log.Fatalf("load input: %v", err)
	}
	log.Printf("Loaded %d nodes, %d original arcs, %d CCH arcs", g.NumNodes, g.NumArcs(), cch.NumArcs())

	opts := customization.DefaultOptions()
	opts.ApproxThreshold = *approxThreshold
	opts.ApproxTolerance = *approxTolerance
	opts.SortTriangles = *sortTriangles
	opts.Workers = *workers
	if ops != nil {
		opts.OnPhase = func(phase string, elapsed time.Duration) {
			ops.Hub.Publish(opsserver.ProgressEvent{
				Phase:     phase,
				ElapsedMs: float64(elapsed.Microseconds()) / 1000.0,
			})
		}
	}

	sg, err := customization.Customize(g, cch, opts)
	if err != nil {
		log.Fatalf("customize: %v", err)
	}

	log.Printf("Writing shortcut graph to %s", *output)
	if err := tdgraph.WriteShortcutGraph(*output, cch, g.PeriodMillis, sg); err != nil {
		log.Fatalf("write shortcut graph: %v", err)
	}

	snap := stats.Global.Snapshot()
	log.Printf("Done: %d merges, %d ipps stored, %d approximations",
		snap.MergesPerformed, snap.IPPsStored, snap.Approximations)
}

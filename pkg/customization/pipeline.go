package customization

import (
	"fmt"
	"log"
	"time"

	"github.com/tdcch/tdcch/pkg/plf"
	"github.com/tdcch/tdcch/pkg/shortcut"
	"github.com/tdcch/tdcch/pkg/stats"
	"github.com/tdcch/tdcch/pkg/tdgraph"
)

// Customize runs the full customization pipeline against a static CCH and
// its original time-dependent graph, in order: respecting, bounds-only
// pre-customization, perfect pre-customization, main customization, perfect
// post-customization.
func Customize(g *tdgraph.TDGraph, cch *tdgraph.StaticCCH, opts Options) (*shortcut.Graph, error) {
	if err := cch.Validate(); err != nil {
		return nil, fmt.Errorf("customization: invalid CCH: %w", err)
	}
	log.Printf("customization: starting on %d nodes, %d arcs", cch.NumNodes, cch.NumArcs())

	report := func(phase string, elapsed time.Duration) {
		log.Printf("customization: %s done (%s)", phase, elapsed)
		if opts.OnPhase != nil {
			opts.OnPhase(phase, elapsed)
		}
	}

	start := time.Now()
	sg, err := Respect(g, cch)
	if err != nil {
		return nil, fmt.Errorf("customization: respecting: %w", err)
	}
	report("respecting", time.Since(start))

	da := tdgraph.BuildDownAdjacency(cch)
	batches := Wavefront(cch)
	log.Printf("customization: %d wavefront batches over %d nodes", len(batches), cch.NumNodes)

	origPLF := func(e shortcut.EdgeID) (plf.PLF, error) {
		return g.PLFOf(tdgraph.EdgeID(e))
	}

	t := time.Now()
	if err := BoundsOnlyPreCustomize(sg, cch, da, batches, opts); err != nil {
		return nil, fmt.Errorf("customization: bounds-only pre-customization: %w", err)
	}
	report("bounds_only_pre_customization", time.Since(t))

	t = time.Now()
	PerfectPreCustomize(sg, cch, da)
	report("perfect_pre_customization", time.Since(t))

	t = time.Now()
	if err := MainCustomize(sg, cch, da, batches, opts, origPLF); err != nil {
		return nil, fmt.Errorf("customization: main customization: %w", err)
	}
	report("main_customization", time.Since(t))

	t = time.Now()
	if err := PerfectPostCustomize(sg, cch, da, origPLF); err != nil {
		return nil, fmt.Errorf("customization: perfect post-customization: %w", err)
	}
	report("perfect_post_customization", time.Since(t))

	log.Printf("customization: complete in %s", time.Since(start))
	stats.Global.CustomizationRun.Inc()
	return sg, nil
}

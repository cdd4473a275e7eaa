package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tdcch/tdcch/pkg/tdgraph"
	"github.com/tdcch/tdcch/pkg/testgraph"
	osmparser "github.com/tdcch/tdcch/pkg/osm"
)

func main() {
	input := flag.String("input", "", "Path to a .osm.pbf extract. If unset, a synthetic grid fixture is generated instead")
	output := flag.String("output", "testdata", "Output input-format directory (consumed by cmd/customize)")
	rows := flag.Int("rows", 20, "Grid rows, when --input is unset")
	cols := flag.Int("cols", 20, "Grid cols, when --input is unset")
	bbox := flag.String("bbox", "", "Bounding box filter for --input: minLat,minLng,maxLat,maxLng")
	seed := flag.Int64("seed", 1, "Congestion-assignment seed")
	peak := flag.Float64("peak-congestion", 2.5, "Peak-hour slowdown multiplier")
	flag.Parse()

	start := time.Now()
	var g *tdgraph.TDGraph

	if *input == "" {
		log.Printf("Generating synthetic %dx%d grid fixture", *rows, *cols)
		opts := testgraph.DefaultGridOptions(*rows, *cols)
		opts.Seed = *seed
		opts.PeakCongestion = *peak
		g = testgraph.Grid(opts)
	} else {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("open %s: %v", *input, err)
		}
		defer f.Close()

		osmOpts := testgraph.DefaultOSMOptions()
		osmOpts.Seed = *seed
		osmOpts.PeakCongestion = *peak
		if *bbox != "" {
			var minLat, minLng, maxLat, maxLng float64
			if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
				log.Fatalf("invalid --bbox (want minLat,minLng,maxLat,maxLng): %v", err)
			}
			osmOpts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		}

		log.Printf("Parsing %s", *input)
		g, err = testgraph.FromOSM(context.Background(), f, osmOpts)
		if err != nil {
			log.Fatalf("parse OSM: %v", err)
		}
	}
	log.Printf("Graph: %d nodes, %d arcs", g.NumNodes, g.NumArcs())

	log.Println("Computing elimination order and chordal supergraph...")
	cch := testgraph.BuildCCH(g)
	log.Printf("CCH: %d arcs", cch.NumArcs())

	log.Printf("Writing input format to %s", *output)
	if err := tdgraph.WriteInput(*output, g, cch.Perm); err != nil {
		log.Fatalf("write input: %v", err)
	}

	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))
}

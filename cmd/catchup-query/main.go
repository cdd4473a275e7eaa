// Command catchup-query serves CATCHUp distance queries read from stdin
// against a customized shortcut graph: one "from\tto\tdeparture_ms\n" line
// per query, one "distance_ms\n" or "INFEASIBLE\n" line of output, exit 0
// on normal EOF.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tdcch/tdcch/pkg/audit"
	"github.com/tdcch/tdcch/pkg/plf"
	"github.com/tdcch/tdcch/pkg/query"
	"github.com/tdcch/tdcch/pkg/shortcut"
	"github.com/tdcch/tdcch/pkg/tdgraph"
)

func main() {
	input := flag.String("input", "", "Original input directory, in the binary format cmd/gentestdata writes")
	shortcutsPath := flag.String("shortcuts", "", "Customized shortcut-graph file (cmd/customize's --output)")
	auditDSN := flag.String("audit-dsn", "", "If set, persist every served query to this Postgres DSN via pkg/audit")
	flag.Parse()

	if *input == "" || *shortcutsPath == "" {
		log.Fatal("Usage: catchup-query --input <dir> --shortcuts <file> [--audit-dsn <dsn>]")
	}

	g, cch, err := tdgraph.LoadInput(*input)
	if err != nil {
		log.Fatalf("load input: %v", err)
	}
	_, _, sg, err := tdgraph.ReadShortcutGraph(*shortcutsPath)
	if err != nil {
		log.Fatalf("read shortcut graph: %v", err)
	}

	orig := func(e shortcut.EdgeID, t plf.Timestamp) plf.Weight {
		f, _ := g.PLFOf(tdgraph.EdgeID(e))
		return f.Eval(t)
	}

	ctx := context.Background()
	var sink *audit.Store
	if *auditDSN != "" {
		s, err := audit.Connect(ctx, *auditDSN)
		if err != nil {
			log.Fatalf("audit connect: %v", err)
		}
		defer s.Close()
		if err := s.InitSchema(ctx); err != nil {
			log.Fatalf("audit init schema: %v", err)
		}
		sink = s
	}

	st := query.NewState(cch)
	scanner := bufio.NewScanner(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			fmt.Fprintln(out, "INFEASIBLE")
			continue
		}
		from, err1 := strconv.ParseUint(fields[0], 10, 32)
		to, err2 := strconv.ParseUint(fields[1], 10, 32)
		depMs, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil || uint32(from) >= g.NumNodes || uint32(to) >= g.NumNodes {
			fmt.Fprintln(out, "INFEASIBLE")
			continue
		}

		departure := depMs / 1000.0
		started := time.Now()
		dist, ok, err := st.Distance(sg, cch, uint32(from), uint32(to), departure, orig)
		if err != nil {
			log.Fatalf("query: %v", err)
		}
		elapsed := time.Since(started)

		if sink != nil {
			rec := audit.Record{
				Source:      uint32(from),
				Target:      uint32(to),
				DepartureMs: depMs,
				Reachable:   ok,
				Latency:     elapsed,
			}
			if ok {
				rec.DistanceMs = dist * 1000.0
			}
			if _, err := sink.Record(ctx, rec); err != nil {
				log.Printf("audit: %v", err)
			}
		}

		if !ok {
			fmt.Fprintln(out, "INFEASIBLE")
			continue
		}
		fmt.Fprintf(out, "%d\n", int64(dist*1000.0))
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("reading stdin: %v", err)
	}
}

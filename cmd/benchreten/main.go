package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/retentioneering/retentioneering-go/dataio"
	"github.com/retentioneering/retentioneering-go/pkg/edgelist"
	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
	"github.com/retentioneering/retentioneering-go/pkg/transform/adding"
	"github.com/retentioneering/retentioneering-go/pkg/transform/editing"
)

func main() {
	var (
		users   = flag.Int("users", 100_000, "users to generate")
		maxEv   = flag.Int("max-events", 20, "max events per user path")
		seed    = flag.Int64("seed", 42, "random seed")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
	)
	flag.Parse()

	raw := dataio.SimpleShop(dataio.GeneratorOptions{Users: *users, MaxEvents: *maxEv, Seed: *seed})

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()

	stream, err := es.New(raw, es.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// a representative pipeline: sessions, path markers, loop collapse
	graph := es.NewPGraph(stream)
	var tail es.Node = graph.Root()
	for _, p := range []es.Processor{
		&adding.SplitSessions{Timeout: &es.TimeDelta{Value: 30, Unit: es.UnitMinute}},
		&adding.AddStartEndEvents{},
		&editing.CollapseLoops{},
	} {
		n := es.NewEventsNode(p)
		if err := graph.AddNode(n, tail); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		tail = n
	}
	result, err := graph.Combine(context.Background(), tail)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	edges, err := edgelist.Compute(result, edgelist.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	rows := raw.Rows()
	rowsPerSec := float64(rows) / elapsed.Seconds()
	summary := map[string]any{
		"users":                 *users,
		"rows":                  rows,
		"edges":                 len(edges),
		"elapsed_ms":            elapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Users: %d\n", *users)
	fmt.Printf("Rows: %d\n", rows)
	fmt.Printf("Edges: %d\n", len(edges))
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %.0f rows/s\n", rowsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}

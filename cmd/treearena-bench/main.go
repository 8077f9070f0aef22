// Command treearena-bench drives concurrent tree construction against a
// treearena.Arena and reports basic throughput and shape statistics. It
// exists for manual exercise of the concurrent-insertion path; it is not a
// correctness test suite.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/treearena"
)

type options struct {
	workers    int
	perWorker  int
	fanout     int
	jsonOutput bool
	requireAPI string
}

type report struct {
	Workers       int     `json:"workers"`
	NodesPerWorker int     `json:"nodes_per_worker"`
	Fanout         int     `json:"fanout"`
	TotalNodes     int     `json:"total_nodes"`
	Elapsed        string  `json:"elapsed"`
	NodesPerSecond float64 `json:"nodes_per_second"`
}

func main() {
	var opts options

	flag.IntVar(&opts.workers, "workers", runtime.GOMAXPROCS(0), "number of concurrent pushing goroutines")
	flag.IntVar(&opts.perWorker, "per-worker", 10_000, "nodes each worker publishes")
	flag.IntVar(&opts.fanout, "fanout", 8, "number of shared parent nodes workers spread pushes across")
	flag.BoolVar(&opts.jsonOutput, "json", false, "emit the report as JSON instead of a human summary")
	flag.StringVar(&opts.requireAPI, "require-api", "", "semver constraint the build's APIVersion must satisfy (e.g. \">=1.0.0,<2.0.0\")")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Drives concurrent pushes into a treearena.Arena and reports throughput.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if opts.requireAPI != "" {
		if err := treearena.CheckAPIVersion(opts.requireAPI); err != nil {
			log.Fatalf("treearena-bench: %v", err)
		}
	}

	if opts.workers <= 0 || opts.perWorker <= 0 || opts.fanout <= 0 {
		log.Fatal("treearena-bench: workers, per-worker, and fanout must all be positive")
	}

	rep, err := run(context.Background(), opts)
	if err != nil {
		log.Fatalf("treearena-bench: %v", err)
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(rep); err != nil {
			log.Fatalf("treearena-bench: encoding report: %v", err)
		}

		return
	}

	fmt.Printf("workers=%d per_worker=%d fanout=%d total=%d elapsed=%s rate=%.0f nodes/s\n",
		rep.Workers, rep.NodesPerWorker, rep.Fanout, rep.TotalNodes, rep.Elapsed, rep.NodesPerSecond)
}

// run publishes opts.workers*opts.perWorker nodes concurrently under
// opts.fanout shared parents, bounding concurrency with an
// errgroup.WithContext paired with a buffered channel semaphore.
func run(ctx context.Context, opts options) (report, error) {
	a := treearena.NewArenaWithCapacity[int](opts.workers * opts.perWorker)
	root := a.Push(nil, -1)

	parents := make([]*treearena.Node[int], opts.fanout)
	for i := range parents {
		parents[i] = a.Push(root, i)
	}

	sem := make(chan struct{}, opts.workers)

	var published int64

	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < opts.workers; w++ {
		w := w

		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			parent := parents[w%len(parents)]

			for i := 0; i < opts.perWorker; i++ {
				a.Push(parent, w*opts.perWorker+i)
				atomic.AddInt64(&published, 1)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report{}, fmt.Errorf("publishing nodes: %w", err)
	}

	elapsed := time.Since(start)
	total := int(published)

	rate := 0.0
	if elapsed > 0 {
		rate = float64(total) / elapsed.Seconds()
	}

	return report{
		Workers:        opts.workers,
		NodesPerWorker: opts.perWorker,
		Fanout:         opts.fanout,
		TotalNodes:     total,
		Elapsed:        elapsed.String(),
		NodesPerSecond: rate,
	}, nil
}

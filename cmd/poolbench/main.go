// Command poolbench drives N independent pools concurrently and reports
// aggregate allocate/free throughput and per-pool gap-index health. Pools
// are opened and closed serially on the main goroutine, since Registry.Open
// and Registry.Close are not safe to call concurrently; only the
// allocate/free/inspect workload against each already-open pool, which
// touches no shared state, runs inside the errgroup.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/orizon/internal/pool"
)

func main() {
	var (
		workers  = flag.Int("workers", 4, "number of independent pools to run concurrently")
		poolSize = flag.Uint64("pool-size", 1<<20, "size in bytes of each pool")
		policy   = flag.String("policy", "best-fit", "placement policy: first-fit or best-fit")
		ops      = flag.Int("ops", 20000, "number of alloc/free operations per worker")
		maxAlloc = flag.Uint64("max-alloc", 4096, "largest single allocation size")
		seed     = flag.Int64("seed", 1, "PRNG seed (each worker derives its own from this)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Runs a concurrent allocate/free workload across independent pools.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	p := pool.FirstFit
	if *policy == "best-fit" {
		p = pool.BestFit
	}

	registry := pool.NewRegistry(nil)
	if err := registry.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "poolbench: %v\n", err)
		os.Exit(1)
	}
	defer registry.Shutdown()

	// Registry.Open/Close are not safe to call concurrently (spec §5: the
	// caller serializes open/close), so every pool is opened here on the
	// main goroutine before the errgroup starts, and closed here again
	// after it finishes. Only the per-pool allocate/free/inspect workload
	// below runs concurrently, since that touches nothing shared.
	pools := make([]*pool.Pool, *workers)

	for i := 0; i < *workers; i++ {
		var err error

		pools[i], err = registry.Open(uintptr(*poolSize), p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "poolbench: opening pool %d: %v\n", i, err)
			os.Exit(1)
		}
	}

	var totalAllocs, totalFrees, totalFailures int64

	start := time.Now()

	g, ctx := errgroup.WithContext(context.Background())
	results := make([]workerResult, *workers)

	for i := 0; i < *workers; i++ {
		i := i
		g.Go(func() error {
			r, err := runWorker(ctx, pools[i], workerConfig{
				ops:      *ops,
				maxAlloc: uintptr(*maxAlloc),
				seed:     *seed + int64(i),
			})
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}

			results[i] = r
			atomic.AddInt64(&totalAllocs, int64(r.allocs))
			atomic.AddInt64(&totalFrees, int64(r.frees))
			atomic.AddInt64(&totalFailures, int64(r.failures))

			return nil
		})
	}

	workErr := g.Wait()

	elapsed := time.Since(start)

	for i, p := range pools {
		if err := p.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "poolbench: closing pool %d: %v\n", i, err)
		}
	}

	if workErr != nil {
		fmt.Fprintf(os.Stderr, "poolbench: %v\n", workErr)
		os.Exit(1)
	}

	totalOps := totalAllocs + totalFrees

	fmt.Printf("workers=%d policy=%s pool-size=%d ops/worker=%d\n", *workers, *policy, *poolSize, *ops)
	fmt.Printf("elapsed=%s total-ops=%d ops/sec=%.0f failures=%d\n",
		elapsed, totalOps, float64(totalOps)/elapsed.Seconds(), totalFailures)

	for i, r := range results {
		fmt.Printf("  pool[%d]: allocs=%d frees=%d failures=%d finalGaps=%d finalUsed=%d\n",
			i, r.allocs, r.frees, r.failures, r.finalGaps, r.finalUsed)
	}
}

type workerConfig struct {
	ops      int
	maxAlloc uintptr
	seed     int64
}

type workerResult struct {
	allocs, frees, failures int
	finalGaps               int
	finalUsed               uintptr
}

// runWorker drives a random sequence of allocate/free operations against p,
// a pool already opened (and later closed) by the caller. It never shares
// state with any other worker — p is exclusively its own for the duration
// of this call.
func runWorker(ctx context.Context, p *pool.Pool, cfg workerConfig) (workerResult, error) {
	rng := rand.New(rand.NewSource(cfg.seed))
	live := make([]*pool.Allocation, 0, cfg.ops)

	var result workerResult

	for i := 0; i < cfg.ops; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		// Bias toward allocation while the pool has headroom, toward freeing
		// once it fills up, so the run exercises both coalescing and
		// best/first-fit search under steady churn rather than draining once.
		wantAlloc := len(live) == 0 || (rng.Float64() < 0.6 && p.NumGaps() > 0)

		if wantAlloc {
			lo := cfg.maxAlloc / 4
			size := lo + uintptr(rng.Int63n(int64(cfg.maxAlloc-lo+1)))

			a, err := p.Allocate(size)
			if err != nil {
				result.failures++
				continue
			}

			live = append(live, a)
			result.allocs++

			continue
		}

		idx := rng.Intn(len(live))

		if err := p.Free(live[idx]); err != nil {
			result.failures++
			continue
		}

		live[idx] = live[len(live)-1]
		live = live[:len(live)-1]
		result.frees++
	}

	for _, a := range live {
		_ = p.Free(a)
		result.frees++
	}

	result.finalGaps = p.NumGaps()
	result.finalUsed = p.Allocated()

	return result, nil
}

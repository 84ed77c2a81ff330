// Package pipeline inspects discovered repositories concurrently and
// optionally switches, fetches or pulls each of them.
//
// # Work distribution
//
// [Pipeline.Run] allocates one [Record] slot per path before any worker
// starts. A fixed group of workers claims indices from a shared atomic
// counter; the worker that claims index i is the only writer of slot i, so
// the table needs no locking and the result order always equals the input
// order, however long individual repositories take.
//
// # Per-repository state machine
//
// Each claimed path runs open → branch → status → [switch] → [fetch|pull]
// → ahead/behind → last commit to completion on one worker. Failures are
// confined to the record: a repository that cannot be opened keeps only
// its path, and failing operations surface as [Outcome] values.
package pipeline

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphi011/gitls/internal/auth"
)

// MaxWorkers caps the worker pool regardless of CPU count.
const MaxWorkers = 8

// Config is the immutable configuration shared by all workers.
type Config struct {
	Request Request
	// Workers overrides the CPU-based pool size; 0 means automatic.
	Workers int
	// Timeout bounds each fetch; 0 means no deadline.
	Timeout time.Duration
	// Auth configures the per-fetch credential policy.
	Auth auth.Options
	// Progress, when set, is called after each repository finishes with the
	// number finished so far. It is called from worker goroutines.
	Progress func(done, total int)
}

// Pipeline runs the per-repository state machine over a path list.
type Pipeline struct {
	opener Opener
	cfg    Config
}

// New creates a pipeline that opens repositories with opener.
func New(opener Opener, cfg Config) *Pipeline {
	return &Pipeline{opener: opener, cfg: cfg}
}

// Run inspects every path and returns one record per path, in path order.
// It returns after all workers have finished.
func (p *Pipeline) Run(ctx context.Context, paths []string) []Record {
	records := make([]Record, len(paths))
	var finished atomic.Int64
	Distribute(len(paths), WorkerCount(len(paths), p.cfg.Workers), func(i int) {
		records[i] = p.process(ctx, paths[i])
		if p.cfg.Progress != nil {
			p.cfg.Progress(int(finished.Add(1)), len(paths))
		}
	})
	return records
}

// WorkerCount sizes the pool for n items: the CPU count (or requested, when
// positive), capped at MaxWorkers and n, and at least 1.
func WorkerCount(n, requested int) int {
	w := runtime.NumCPU()
	if requested > 0 {
		w = requested
	}
	w = min(w, MaxWorkers, n)
	return max(w, 1)
}

// Distribute calls fn exactly once for every index in [0, n) using the
// given number of workers. Workers claim the next unclaimed index from a
// shared counter, so a slow item never holds back the others. With a
// single worker or at most one item fn runs on the calling goroutine.
func Distribute(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}

	var next atomic.Int64
	work := func() {
		for {
			i := int(next.Add(1) - 1)
			if i >= n {
				return
			}
			fn(i)
		}
	}

	if n == 1 || workers <= 1 {
		work()
		return
	}

	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			work()
			return nil
		})
	}
	_ = g.Wait() // workers never fail
}

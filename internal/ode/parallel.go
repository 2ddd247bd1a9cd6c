package ode

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFor executes fn over [0, n) split into contiguous chunks. Ranges
// smaller than minChunk, or workers <= 1, run inline on the calling goroutine.
// workers <= 0 selects GOMAXPROCS. The first error returned by any chunk is
// returned once all chunks have finished.
func ParallelFor(n, minChunk, workers int, fn func(start, end int) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		return fn(0, n)
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		g.Go(func() error {
			return fn(start, end)
		})
	}

	return g.Wait()
}

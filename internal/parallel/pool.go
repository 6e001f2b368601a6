// Package parallel provides a small fixed-size worker pool for row-banded pixel work.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

type (
	// WorkerFunc submits a job to the pool.
	WorkerFunc func(func())
	// WaitFunc closes the queue and blocks until every submitted job has run.
	WaitFunc func()
)

// Pool runs submitted jobs on a fixed number of goroutines. With one worker jobs run
// inline on the submitting goroutine.
type Pool struct {
	wg      sync.WaitGroup
	workers int
	Do      WorkerFunc
	Wait    WaitFunc
}

// Workers resolves a worker count: values below 1 mean GOMAXPROCS.
func Workers(n int) int {
	if n < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Start creates a pool with numWorkers goroutines.
func Start(numWorkers int) *Pool {
	numWorkers = Workers(numWorkers)

	pool := &Pool{
		workers: numWorkers,
		Do: func(f func()) {
			f()
		},
		Wait: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range workChan {
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		closeOnce := sync.OnceFunc(func() { close(workChan) })
		pool.Wait = func() {
			closeOnce()
			pool.wg.Wait()
		}
	}

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.workers
}

// Band is a half-open row range [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// Bands splits height rows into at most n contiguous bands of near-equal size.
func Bands(height, n int) []Band {
	if height <= 0 {
		return nil
	}
	n = max(1, min(n, height))
	bands := make([]Band, 0, n)
	step := height / n
	extra := height % n
	y := 0
	for i := range n {
		size := step
		if i < extra {
			size++
		}
		bands = append(bands, Band{Y0: y, Y1: y + size})
		y += size
	}
	return bands
}

// ForEachBand runs fn over row bands of height rows using numWorkers goroutines.
// Bands submitted after ctx is cancelled are skipped and ctx.Err() is returned.
func ForEachBand(ctx context.Context, height, numWorkers int, fn func(b Band)) error {
	numWorkers = Workers(numWorkers)
	pool := Start(numWorkers)

	// More bands than workers keeps cores busy when rows differ in cost.
	for _, b := range Bands(height, numWorkers*4) {
		if ctx.Err() != nil {
			break
		}
		pool.Do(func() {
			if ctx.Err() != nil {
				return
			}
			fn(b)
		})
	}
	pool.Wait()

	return ctx.Err()
}

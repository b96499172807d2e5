// Package parallel runs closures on a fixed number of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Pool runs submitted functions on its workers. A pool with a single worker
// runs every function synchronously inside Do.
type Pool struct {
	wg    sync.WaitGroup
	work  chan func()
	n     int
	close func()
}

// Workers returns n, or GOMAXPROCS when n is less than 1.
func Workers(n int) int {
	if n < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

func Start(numWorkers int) *Pool {
	pool := &Pool{
		n:     Workers(numWorkers),
		close: func() {},
	}

	if pool.n > 1 {
		pool.work = make(chan func(), pool.n)

		for range pool.n {
			pool.wg.Go(func() {
				for f := range pool.work {
					f()
				}
			})
		}

		pool.close = sync.OnceFunc(func() { close(pool.work) })
	}

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.n
}

// Do queues f, blocking while every worker is busy and the queue is full.
// Do must not be called after Wait.
func (p *Pool) Do(f func()) {
	if p.work == nil {
		f()
		return
	}
	p.work <- f
}

// Wait stops accepting work and returns once every queued function ran.
func (p *Pool) Wait() {
	p.close()
	p.wg.Wait()
}

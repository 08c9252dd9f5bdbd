// Package taskpool provides a bounded worker pool and deferred futures for
// fanning slice-sized I/O tasks out across OS threads.
package taskpool

import (
	"runtime"
	"sync"
)

const DefaultWorkers = 16

// Pool runs submitted tasks on a fixed set of worker goroutines. Each worker
// locks itself to an OS thread: accelerator execution contexts are
// thread-affine, so tasks that bind a device must not migrate mid-run.
// Submission never blocks; the queue is unbounded and idle workers sleep on
// a condition variable until work arrives.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	wg     sync.WaitGroup
}

func New(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues fn for execution. Fire-and-forget: the caller observes
// completion only through whatever fn itself signals.
func (p *Pool) Submit(fn func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic("taskpool: submit on closed pool")
	}
	p.queue = append(p.queue, fn)
	p.mu.Unlock()
	p.cond.Signal()
}

// Close drains the queue and waits for all workers to exit.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	runtime.LockOSThread()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		fn := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()
		fn()
	}
}

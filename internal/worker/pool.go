// Package worker provides a bounded pool for the expensive work (hand
// detection, store queries) so per-connection read loops stay responsive.
package worker

import (
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Pool executes submitted tasks on a fixed number of goroutines. Submit
// blocks while every worker is busy, which is the intended backpressure:
// a connection waiting on its own frame cannot pile up more work.
type Pool struct {
	tasks chan func()
	quit  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPool starts size workers. Size must be at least 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}

	p := &Pool{
		tasks: make(chan func()),
		quit:  make(chan struct{}),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.run()
	}

	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			task()
		case <-p.quit:
			return
		}
	}
}

// Submit hands a task to the pool, blocking until a worker accepts it.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.quit:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	case <-p.quit:
		return ErrPoolClosed
	}
}

// Close stops accepting tasks and waits for running ones to finish.
// Queued-but-unaccepted tasks are dropped.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}

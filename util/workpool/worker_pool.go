// Package workpool runs a work function in a fixed number of goroutines
// until the work runs out, the pool is cancelled, or its context is done.
package workpool

import (
	"context"
	"sync"
)

// WorkHandler processes one piece of work and returns. Return true if the
// handler should be called again, false once there is no work left.
//
// ctx is done when the pool was cancelled. A handler blocked on its input
// should select on it, e.g.:
//
//	func forward(input <-chan string, output chan<- string) WorkHandler {
//		return func(ctx context.Context) bool {
//			select {
//			case id, ok := <-input:
//				if !ok {
//					return false
//				}
//				output <- id
//				return true
//			case <-ctx.Done():
//				return false
//			}
//		}
//	}
type WorkHandler func(ctx context.Context) bool

// WorkPool manages running a WorkHandler in some number of goroutines.
type WorkPool struct {
	Handler WorkHandler
	Workers int
	// Close is called once every worker returned.
	Close func()

	cancel context.CancelFunc
	lock   sync.Mutex
}

// New creates a worker pool with a given handler function.
func New(numWorkers int, handler WorkHandler) *WorkPool {
	return &WorkPool{
		Handler: handler,
		Workers: numWorkers,
	}
}

// NewWithClose creates a worker pool with a given handler function and a function to call when shutting down.
func NewWithClose(numWorkers int, handler WorkHandler, close func()) *WorkPool {
	return &WorkPool{
		Handler: handler,
		Workers: numWorkers,
		Close:   close,
	}
}

// Run starts the workers and blocks until all of them returned. At least one
// worker is started.
func (p *WorkPool) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.lock.Lock()
	p.cancel = cancel
	p.lock.Unlock()
	defer cancel()

	if p.Close != nil {
		defer p.Close()
	}

	workers := max(p.Workers, 1)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				if !p.Handler(ctx) {
					return
				}
			}
		}()
	}
	wg.Wait()
}

// Cancel may be called asynchronously to stop a running pool. Handlers see
// their context done.
func (p *WorkPool) Cancel() {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

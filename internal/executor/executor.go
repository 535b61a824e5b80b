// FilePath: internal/executor/executor.go
package executor

import (
	"context"
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/errors"
	"github.com/meteosense/hub/internal/models"
)

// Pool is a bounded worker pool for asynchronous ingestion work.
//
// CoreWorkers goroutines stay alive for the pool's lifetime; when the queue
// is full the pool grows up to MaxWorkers with workers that retire after
// sitting idle for KeepAlive. When the queue is full and the pool is at
// MaxWorkers, Submit runs the item synchronously on the calling goroutine.
// Overload degrades submitter latency, it never drops work.
type Pool struct {
	cfg     Config
	handler Handler

	queue chan *WorkItem
	quit  chan struct{}

	mu       sync.Mutex
	workers  int
	shutdown bool

	wg sync.WaitGroup

	onComplete func(item *WorkItem, err error)
}

// Config bounds the pool
type Config struct {
	CoreWorkers   int
	MaxWorkers    int
	QueueCapacity int
	KeepAlive     time.Duration
}

// Handler executes one work item
type Handler func(ctx context.Context, item *WorkItem) error

// WorkItem is one queued ingestion request. The pool owns the item between
// enqueue and completion.
type WorkItem struct {
	Request     models.MetricDataRequest
	SubmittedAt time.Time
	Future      *Future
}

// Future resolves once the submitted item has been executed
type Future struct {
	done chan struct{}
	err  error
}

// Wait blocks until the item completed or ctx is cancelled
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed on completion
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// New creates a pool and starts its core workers
func New(cfg Config, handler Handler) *Pool {
	p := &Pool{
		cfg:     cfg,
		handler: handler,
		queue:   make(chan *WorkItem, cfg.QueueCapacity),
		quit:    make(chan struct{}),
	}

	p.mu.Lock()
	for i := 0; i < cfg.CoreWorkers; i++ {
		p.startWorkerLocked(false, nil)
	}
	p.mu.Unlock()

	nuts.L.Infof("[Executor] Worker pool started: core=%d max=%d queue=%d",
		cfg.CoreWorkers, cfg.MaxWorkers, cfg.QueueCapacity)
	return p
}

// OnComplete registers a callback invoked after every executed item,
// regardless of whether a pool worker or the submitting goroutine ran it.
// Must be called before the first Submit.
func (p *Pool) OnComplete(fn func(item *WorkItem, err error)) {
	p.onComplete = fn
}

// Submit enqueues item for asynchronous execution. The returned Future
// resolves when the item has run. If the queue is full the pool scales up to
// MaxWorkers; if it is also at MaxWorkers the item runs synchronously on the
// caller before Submit returns.
func (p *Pool) Submit(item *WorkItem) (*Future, error) {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return nil, errors.NewPoolClosedError("ingestion pool is shut down")
	}
	p.mu.Unlock()

	item.Future = &Future{done: make(chan struct{})}

	select {
	case p.queue <- item:
		return item.Future, nil
	default:
	}

	// Queue full: grow the pool if it is below MaxWorkers and hand the item
	// to the new worker as its first task.
	p.mu.Lock()
	if !p.shutdown && p.workers < p.cfg.MaxWorkers {
		p.startWorkerLocked(true, item)
		p.mu.Unlock()
		return item.Future, nil
	}
	p.mu.Unlock()

	// Saturated: caller-runs backpressure.
	nuts.L.Warnf("[Executor] Queue saturated, running ingestion work on submitter")
	p.run(item)
	return item.Future, nil
}

// Shutdown stops accepting work and waits up to drainTimeout for queued and
// in-flight items to finish. Items still pending afterwards are abandoned.
func (p *Pool) Shutdown(drainTimeout time.Duration) {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return
	}
	p.shutdown = true
	p.mu.Unlock()

	close(p.quit)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		nuts.L.Infof("[Executor] Worker pool drained cleanly")
	case <-time.After(drainTimeout):
		nuts.L.Warnf("[Executor] Drain timeout after %v, abandoning %d queued items",
			drainTimeout, len(p.queue))
	}
}

// startWorkerLocked launches one worker goroutine, optionally seeded with an
// item to execute before it starts polling the queue. Caller holds p.mu.
func (p *Pool) startWorkerLocked(temporary bool, first *WorkItem) {
	p.workers++
	p.wg.Add(1)
	go p.worker(temporary, first)
}

func (p *Pool) worker(temporary bool, first *WorkItem) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		p.workers--
		p.mu.Unlock()
	}()

	if first != nil {
		p.run(first)
	}

	var idle *time.Timer
	if temporary {
		idle = time.NewTimer(p.cfg.KeepAlive)
		defer idle.Stop()
	}

	for {
		if temporary {
			select {
			case item := <-p.queue:
				p.run(item)
				idle.Reset(p.cfg.KeepAlive)
			case <-idle.C:
				return
			case <-p.quit:
				p.drain()
				return
			}
		} else {
			select {
			case item := <-p.queue:
				p.run(item)
			case <-p.quit:
				p.drain()
				return
			}
		}
	}
}

// drain empties the queue after shutdown began
func (p *Pool) drain() {
	for {
		select {
		case item := <-p.queue:
			p.run(item)
		default:
			return
		}
	}
}

// run executes one item and resolves its future. Used by workers and by the
// caller-runs path alike so completion events fire either way.
func (p *Pool) run(item *WorkItem) {
	err := p.handler(context.Background(), item)
	if err != nil {
		nuts.L.Errorf("[Executor] Ingestion work failed for sensor %s: %v",
			item.Request.SensorID, err)
	}
	item.Future.err = err
	close(item.Future.done)
	if p.onComplete != nil {
		p.onComplete(item, err)
	}
}

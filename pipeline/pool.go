// Package pipeline runs blockcast's two processing regimes: a bounded worker
// pool for independent single-image jobs, and the strictly sequential
// per-video pipeline that owns the scheduler, reference cache, and running
// draw-order state.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/format"
	"github.com/quarda/blockcast/internal/options"
	"github.com/quarda/blockcast/optimize"
	"github.com/quarda/blockcast/raster"
	"github.com/quarda/blockcast/segment"
)

// Result is the outcome of one image job, delivered exactly once on the
// channel returned by Submit.
type Result struct {
	Path   string
	Blocks []*segment.Block
	Err    error
}

// Pool processes whole single-image jobs (decode, segment, optimize, sort)
// across a bounded set of workers with a FIFO queue. Jobs are independent;
// one job's failure rejects that job only and is reported as
// errs.ErrWorkerFailed wrapping the cause.
type Pool struct {
	workers   int
	queueSize int
	sortOrder format.SortOrder
	optimizer *optimize.Optimizer

	jobs chan job
	wg   sync.WaitGroup

	// mu guards closed and fences Submit's queue send against Close's
	// close(jobs): senders hold the read side for the whole send, Close
	// takes the write side before closing.
	mu     sync.RWMutex
	closed bool
}

type job struct {
	ctx  context.Context
	path string
	out  chan Result
}

// PoolOption represents a functional option for configuring the Pool.
type PoolOption = options.Option[*Pool]

// WithWorkers sets the worker count (default runtime.NumCPU()).
func WithWorkers(n int) PoolOption {
	return options.New(func(p *Pool) error {
		if n <= 0 {
			return fmt.Errorf("%w: workers must be positive, got %d", errs.ErrInvalidPoolConfig, n)
		}
		p.workers = n

		return nil
	})
}

// WithQueueSize sets the pending-job queue depth (default 2x workers).
func WithQueueSize(n int) PoolOption {
	return options.New(func(p *Pool) error {
		if n < 0 {
			return fmt.Errorf("%w: queue size must be non-negative, got %d", errs.ErrInvalidPoolConfig, n)
		}
		p.queueSize = n

		return nil
	})
}

// WithPoolSortOrder sets the draw order applied to each job's final block
// list (default SortByArea).
func WithPoolSortOrder(order format.SortOrder) PoolOption {
	return options.NoError(func(p *Pool) {
		p.sortOrder = order
	})
}

// WithPoolOptimizer replaces the optimizer shared by all workers. The
// optimizer is stateless across calls, so sharing is safe.
func WithPoolOptimizer(o *optimize.Optimizer) PoolOption {
	return options.NoError(func(p *Pool) {
		p.optimizer = o
	})
}

// NewPool creates and starts a worker pool.
func NewPool(opts ...PoolOption) (*Pool, error) {
	p := &Pool{
		workers:   runtime.NumCPU(),
		queueSize: -1,
		sortOrder: format.SortByArea,
	}
	if err := options.Apply(p, opts...); err != nil {
		return nil, err
	}
	if p.optimizer == nil {
		opt, err := optimize.New()
		if err != nil {
			return nil, err
		}
		p.optimizer = opt
	}
	if p.queueSize < 0 {
		p.queueSize = 2 * p.workers
	}

	p.jobs = make(chan job, p.queueSize)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p, nil
}

// Submit enqueues an image path. The returned channel receives exactly one
// Result and is then closed. Submit blocks when the queue is full; it fails
// fast with errs.ErrPoolClosed after Close, and with the context's error if
// ctx is done before the job is queued.
func (p *Pool) Submit(ctx context.Context, path string) (<-chan Result, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, errs.ErrPoolClosed
	}

	out := make(chan Result, 1)
	select {
	case p.jobs <- job{ctx: ctx, path: path, out: out}:
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting jobs and waits for in-flight and queued jobs to
// finish. A Submit blocked on a full queue completes its send before the
// queue closes; its job is still drained by the workers. Safe to call more
// than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for j := range p.jobs {
		res := Result{Path: j.path}
		if err := j.ctx.Err(); err != nil {
			res.Err = err
		} else if blocks, err := p.process(j.path); err != nil {
			res.Err = fmt.Errorf("%w: %s: %w", errs.ErrWorkerFailed, j.path, err)
		} else {
			res.Blocks = blocks
		}

		j.out <- res
		close(j.out)
	}
}

// process runs one complete image job.
func (p *Pool) process(path string) ([]*segment.Block, error) {
	grid, err := raster.Decode(path)
	if err != nil {
		return nil, err
	}

	blocks := p.optimizer.Optimize(segment.Segment(grid))
	optimize.SortAndIndex(blocks, p.sortOrder)

	return blocks, nil
}

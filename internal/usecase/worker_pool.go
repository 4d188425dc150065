package usecase

import (
	"context"
	"sync"

	"github.com/sladedigital/places-service/pkg/metrics"
)

// PersistPool runs blocking database writes on a small fixed set of workers,
// keeping slow round-trips off the navigation/extraction flow. Callers block
// on the job result, so the pool bounds concurrency without buffering work.
type PersistPool struct {
	jobs chan persistJob
	wg   sync.WaitGroup
}

type persistJob struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// NewPersistPool starts a pool with the given number of workers.
func NewPersistPool(workers int) *PersistPool {
	if workers <= 0 {
		workers = 4
	}
	p := &PersistPool{jobs: make(chan persistJob)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *PersistPool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job.done <- job.fn(job.ctx)
	}
}

// Do submits fn to the pool and waits for its result or for ctx to end.
func (p *PersistPool) Do(ctx context.Context, fn func(context.Context) error) error {
	job := persistJob{ctx: ctx, fn: fn, done: make(chan error, 1)}

	metrics.PersistQueueDepth.Inc()
	select {
	case p.jobs <- job:
		metrics.PersistQueueDepth.Dec()
	case <-ctx.Done():
		metrics.PersistQueueDepth.Dec()
		return ctx.Err()
	}

	select {
	case err := <-job.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains the pool. No Do calls may be in flight.
func (p *PersistPool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

package pipeline

import (
	"context"
	"errors"
	"log/slog"
)

// ErrQueueFull is returned by Submit when every worker is busy and the
// waiting queue has no free slot.
var ErrQueueFull = errors.New("analysis queue is full")

// PoolObserver receives pool events, typically to export metrics.
type PoolObserver interface {
	// QueueDepth reports the number of submissions waiting for a worker.
	QueueDepth(n int)

	// Rejected counts a submission refused with ErrQueueFull.
	Rejected()
}

// Pool bounds concurrent executions. At most workers functions run at
// once and at most queue more wait for a free worker. Submit runs the
// function on the caller's goroutine once a worker slot is free.
type Pool struct {
	// admitted holds one token per running or waiting submission.
	admitted chan struct{}

	// running holds one token per running submission.
	running chan struct{}

	logger   *slog.Logger
	observer PoolObserver
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolLogger sets the logger used for rejections.
func WithPoolLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithPoolObserver sets an observer notified of queue changes.
func WithPoolObserver(o PoolObserver) PoolOption {
	return func(p *Pool) {
		p.observer = o
	}
}

// NewPool creates a pool with the given number of workers and waiting
// slots. workers below 1 is raised to 1 and a negative queue to 0.
func NewPool(workers, queue int, opts ...PoolOption) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}
	p := &Pool{
		admitted: make(chan struct{}, workers+queue),
		running:  make(chan struct{}, workers),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Workers returns the number of concurrent executions.
func (p *Pool) Workers() int { return cap(p.running) }

// QueueSize returns the number of waiting slots.
func (p *Pool) QueueSize() int { return cap(p.admitted) - cap(p.running) }

// Waiting returns the number of submissions waiting for a worker.
func (p *Pool) Waiting() int {
	n := len(p.admitted) - len(p.running)
	if n < 0 {
		return 0
	}
	return n
}

// Submit runs fn once a worker is free and returns its error.
// It returns ErrQueueFull immediately when the pool is saturated, and
// ctx.Err() when ctx ends while waiting for a worker.
func (p *Pool) Submit(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case p.admitted <- struct{}{}:
	default:
		p.logger.Warn("analysis rejected", "workers", p.Workers(), "queue", p.QueueSize())
		if p.observer != nil {
			p.observer.Rejected()
		}
		return ErrQueueFull
	}
	defer func() {
		<-p.admitted
		p.notify()
	}()
	p.notify()

	select {
	case p.running <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.running }()
	p.notify()

	return fn(ctx)
}

func (p *Pool) notify() {
	if p.observer != nil {
		p.observer.QueueDepth(p.Waiting())
	}
}

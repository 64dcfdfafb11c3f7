// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrNilTask = errors.New("nil task")
	ErrStopped = errors.New("worker pool stopped")
)

type Task func(ctx context.Context) error

// Pool runs tasks on a fixed set of workers. Tasks submitted with the same
// key always land on the same worker, so they run one at a time and in
// submission order; different keys run in parallel.
type Pool struct {
	wg     sync.WaitGroup
	queues []chan Task
	quit   chan struct{}
	once   sync.Once
	log    *zerolog.Logger
}

func NewPool(workers, queueSize int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	poolLog := logger.With().Str("component", "WorkerPool").Logger()
	p := &Pool{
		queues: make([]chan Task, workers),
		quit:   make(chan struct{}),
		log:    &poolLog,
	}
	for i := range p.queues {
		p.queues[i] = make(chan Task, queueSize)
	}
	return p
}

func (p *Pool) Start(ctx context.Context) {
	for i, q := range p.queues {
		p.wg.Add(1)
		go func(id int, q <-chan Task) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-q:
					p.run(ctx, id, task)
				}
			}
		}(i, q)
	}
}

// run keeps one panicking task from taking its worker down.
func (p *Pool) run(ctx context.Context, id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Int("worker", id).Interface("panic", r).Msg("task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		p.log.Error().Err(err).Int("worker", id).Msg("task error")
	}
}

// Stop signals workers to exit and waits for the running tasks.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}

// Submit queues task on the worker owning key. It blocks while that
// worker's queue is full.
func (p *Pool) Submit(ctx context.Context, key int64, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	select {
	case <-p.quit:
		return ErrStopped
	default:
	}
	select {
	case p.queues[p.shard(key)] <- task:
		return nil
	case <-p.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) shard(key int64) int {
	n := int64(len(p.queues))
	idx := key % n
	if idx < 0 {
		idx += n
	}
	return int(idx)
}

// Size is the number of workers.
func (p *Pool) Size() int { return len(p.queues) }

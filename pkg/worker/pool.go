/*
Package worker runs tasks on a fixed number of goroutines with optional rate
limiting and context cancellation. finditor uses it to fingerprint matched
files after a search; the search itself stays single-threaded.

Basic usage:

	pool, err := worker.NewPool(worker.Config{
		Workers:   4,
		RateLimit: 100, // tasks per second, 0 for unlimited
	})
	if err != nil {
		return err
	}

	if err := pool.Start(ctx); err != nil {
		return err
	}

	for i, path := range paths {
		pool.Submit(worker.Task{ID: i, Execute: hashFile(path)})
	}

	// results come back in submission order
	results, err := pool.Wait()
*/
package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Task represents a unit of work to be processed by the worker pool
type Task struct {
	// ID identifies the task in results and errors
	ID int

	// Execute performs the work. The context is cancelled when the pool stops.
	Execute func(context.Context) (Result, error)
}

// Result represents the output of a processed task
type Result struct {
	// ID matches the task ID that produced this result
	ID int

	Data any

	// submission order, used to sort results
	order int
}

// Config holds the configuration for the worker pool
type Config struct {
	// Workers is the number of concurrent workers
	Workers int

	// RateLimit is the maximum number of tasks started per second (0 for unlimited)
	RateLimit int

	// OnDone, if set, is called from the worker goroutine after every task
	OnDone func(id int, err error)
}

// Pool defines the interface for a worker pool
type Pool interface {
	// Start launches the workers
	Start(context.Context) error

	// Submit queues a task, blocking while the queue is full
	Submit(Task) error

	// Wait closes the queue, blocks until every queued task is processed and
	// returns the successful results in submission order together with the
	// joined task errors
	Wait() ([]Result, error)

	// Stats returns current statistics about the pool
	Stats() Stats

	Status() Status

	// Stop cancels running tasks and shuts the pool down
	Stop() error
}

type pool struct {
	config  Config
	tasks   chan queuedTask
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards the lifecycle flags and the closing of tasks
	mu        sync.RWMutex
	started   bool
	closed    bool
	closeOnce sync.Once
	startTime time.Time
	nextOrder int

	// resultsMu guards results and errs
	resultsMu sync.Mutex
	results   []Result
	errs      []error

	active    atomic.Int32
	completed atomic.Int64
	failed    atomic.Int64
}

type queuedTask struct {
	Task
	order int
}

// NewPool creates a new worker pool with the given configuration
func NewPool(config Config) (Pool, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &pool{
		config:  config,
		tasks:   make(chan queuedTask, config.Workers*2),
		limiter: limiter,
	}, nil
}

func validateConfig(config Config) error {
	if config.Workers <= 0 {
		return fmt.Errorf("number of workers must be positive")
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}
	return nil
}

func (p *pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("pool already started")
	}
	if p.closed {
		return ErrClosed
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true
	p.startTime = time.Now()

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return nil
}

func (p *pool) Submit(task Task) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	order := p.nextOrder
	p.nextOrder++
	p.mu.Unlock()

	// the read lock keeps the queue open while we block on a full channel
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case <-p.ctx.Done():
		return fmt.Errorf("pool is shutting down: %w", p.ctx.Err())
	case p.tasks <- queuedTask{Task: task, order: order}:
		return nil
	}
}

func (p *pool) Wait() ([]Result, error) {
	p.mu.RLock()
	started := p.started
	p.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	p.closeQueue()
	p.wg.Wait()

	p.resultsMu.Lock()
	defer p.resultsMu.Unlock()

	results := append([]Result(nil), p.results...)
	sort.Slice(results, func(i, j int) bool {
		return results[i].order < results[j].order
	})

	return results, errors.Join(p.errs...)
}

func (p *pool) Stop() error {
	p.mu.RLock()
	started := p.started
	p.mu.RUnlock()

	if !started {
		p.closeQueue()
		return nil
	}

	p.cancel()
	p.closeQueue()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(500 * time.Millisecond):
		return fmt.Errorf("shutdown timed out")
	}
}

// closeQueue stops accepting tasks. Workers drain what is already queued.
func (p *pool) closeQueue() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		p.closed = true
		close(p.tasks)
	})
}

func (p *pool) Stats() Stats {
	var uptime time.Duration
	p.mu.RLock()
	if p.started {
		uptime = time.Since(p.startTime)
	}
	p.mu.RUnlock()

	return Stats{
		ActiveWorkers:  int(p.active.Load()),
		QueuedTasks:    len(p.tasks),
		CompletedTasks: int(p.completed.Load()),
		FailedTasks:    int(p.failed.Load()),
		Status:         p.Status(),
		Uptime:         uptime,
	}
}

func (p *pool) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started || (p.closed && p.active.Load() == 0 && len(p.tasks) == 0) {
		return StatusStopped
	}
	if p.active.Load() > 0 || len(p.tasks) > 0 {
		return StatusProcessing
	}
	return StatusIdle
}

func (p *pool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		p.active.Add(1)
		result, err := p.run(task)
		p.active.Add(-1)

		p.resultsMu.Lock()
		if err != nil {
			p.failed.Add(1)
			p.errs = append(p.errs, fmt.Errorf("task %d failed: %w", task.ID, err))
		} else {
			p.completed.Add(1)
			result.order = task.order
			p.results = append(p.results, result)
		}
		p.resultsMu.Unlock()

		if p.config.OnDone != nil {
			p.config.OnDone(task.ID, err)
		}
	}
}

func (p *pool) run(task queuedTask) (Result, error) {
	if err := p.ctx.Err(); err != nil {
		return Result{}, err
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(p.ctx); err != nil {
			return Result{}, fmt.Errorf("rate limiter error: %w", err)
		}
	}
	return task.Execute(p.ctx)
}

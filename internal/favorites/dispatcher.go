package favorites

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/atelier/internal/domain"
	"golang.org/x/time/rate"
)

var (
	// ErrQueueFull is reported when the remote call queue has no room left
	ErrQueueFull = errors.New("remote call queue is full")

	// ErrDispatcherClosed is reported for calls submitted after Close
	ErrDispatcherClosed = errors.New("remote call dispatcher is closed")
)

// Task is one remote favorites call.
type Task struct {
	Op    domain.RemoteOp
	ID    domain.FavoriteID
	Count int
	Run   func(ctx context.Context) error
}

// DispatcherConfig tunes the background remote call workers.
type DispatcherConfig struct {
	Workers   int           // concurrent calls in flight
	QueueSize int           // pending calls before ErrQueueFull
	RateLimit float64       // calls per second, 0 = unlimited
	Timeout   time.Duration // per call, 0 = none
}

// DefaultDispatcherConfig returns the settings used when none are configured
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:   2,
		QueueSize: 64,
		RateLimit: 0,
		Timeout:   15 * time.Second,
	}
}

type queuedTask struct {
	task Task
	done func(domain.RemoteResult)
}

// Dispatcher runs remote favorites calls in the background.
//
// Tasks start in submission order but may finish in any order. Every task
// reports exactly once through its done callback, including tasks rejected
// because the queue is full or the dispatcher is closed.
type Dispatcher struct {
	queue   chan queuedTask
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex // guards closed and sends on queue
	closed   bool
	inFlight sync.WaitGroup
	workers  sync.WaitGroup
}

// NewDispatcher starts the worker pool
func NewDispatcher(cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultDispatcherConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		queue:   make(chan queuedTask, cfg.QueueSize),
		timeout: cfg.Timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	if cfg.RateLimit > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Workers)
	}

	for i := 0; i < cfg.Workers; i++ {
		d.workers.Add(1)
		go d.work()
	}
	return d
}

// Submit enqueues task without blocking. done may be nil.
func (d *Dispatcher) Submit(task Task, done func(domain.RemoteResult)) {
	if done == nil {
		done = func(domain.RemoteResult) {}
	}

	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		done(resultOf(task, ErrDispatcherClosed))
		return
	}

	d.inFlight.Add(1)
	select {
	case d.queue <- queuedTask{task: task, done: done}:
		d.mu.RUnlock()
	default:
		d.mu.RUnlock()
		d.inFlight.Done()
		d.logger.Warn("remote call dropped", "op", task.Op, "id", task.ID, "error", ErrQueueFull)
		done(resultOf(task, ErrQueueFull))
	}
}

// Wait blocks until every submitted task has reported
func (d *Dispatcher) Wait() {
	d.inFlight.Wait()
}

// Close stops accepting tasks, lets queued ones finish, then stops the workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.workers.Wait()
	d.cancel()
}

func (d *Dispatcher) work() {
	defer d.workers.Done()
	for q := range d.queue {
		d.run(q)
	}
}

func (d *Dispatcher) run(q queuedTask) {
	defer d.inFlight.Done()

	ctx := d.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			q.done(resultOf(q.task, err))
			return
		}
	}

	start := time.Now()
	err := q.task.Run(ctx)
	d.logger.Debug("remote call finished", "op", q.task.Op, "id", q.task.ID, "duration", time.Since(start), "error", err)
	q.done(resultOf(q.task, err))
}

func resultOf(task Task, err error) domain.RemoteResult {
	return domain.RemoteResult{Op: task.Op, ID: task.ID, Count: task.Count, Err: err}
}

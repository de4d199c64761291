// Package workerpool provides the default task-dispatch pool ecsgrid
// systems run on. Grounded on original_source/crates/tasks's Workers:
// a fixed number of long-lived goroutines draining a shared task
// queue, defaulting to 2×NumCPU workers. The crate's SegQueue (a
// lock-free MPMC queue) becomes a buffered Go channel, and its
// per-worker JoinHandle bookkeeping becomes an errgroup.Group, which
// is the idiom golang.org/x/sync ships for "wait for a fixed set of
// goroutines, propagate the first error."
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of work submitted to the pool. Systems hand the pool
// a closure that invokes the user's system function with its already
// constructed access handles, paired with signaling its token.
type Task func()

// Options configures a Pool. A zero Options value is valid and
// resolves to the package default (2 x GOMAXPROCS workers).
type Options struct {
	// Name identifies the pool for diagnostics. Grounded on the Rust
	// tasks crate's WorkersDescriptor{amount, name}; useful once a
	// driver runs more than one pool against the same World (e.g. a
	// "simulation" pool and a "background IO" pool).
	Name string

	// Workers is the number of long-lived goroutines draining the
	// task queue. Zero means 2 x runtime.GOMAXPROCS(0). Pass
	// ecsgrid.Config.DefaultWorkerMultiplier() explicitly here if the
	// World's configured multiplier should apply instead; workerpool
	// cannot import ecsgrid itself without creating an import cycle.
	Workers int

	// QueueSize bounds the number of tasks that can be buffered ahead
	// of the workers before Submit blocks. Zero means a buffer of
	// 4096 tasks (SegQueue's queue never blocks the producer; ecsgrid's
	// default approximates that with a generously sized buffer instead
	// of an actually-unbounded channel, see New).
	QueueSize int
}

// Pool is a fixed-size goroutine pool draining a shared task queue. It
// satisfies the narrow ecsgrid.Pool interface the World depends on, so
// callers may substitute any scheduler of their own instead.
type Pool struct {
	name       string
	tasks      chan Task
	numWorkers int
	group      *errgroup.Group
	cancel     context.CancelFunc
}

const defaultQueueSize = 4096

// New constructs a Pool with the given options. The pool does not
// start running workers until Start is called.
func New(opts Options) *Pool {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkerMultiplier() * runtime.GOMAXPROCS(0)
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	name := opts.Name
	if name == "" {
		name = "ecsgrid workers"
	}
	return &Pool{name: name, tasks: make(chan Task, queueSize), numWorkers: workers}
}

// Name returns the pool's diagnostic name.
func (p *Pool) Name() string { return p.name }

// Start launches the pool's worker goroutines. Calling Start more than
// once is a programmer error; the pool has no restart semantics,
// matching the teacher's Workers type which is built once and
// discarded, never recycled.
func (p *Pool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	g, ctx := errgroup.WithContext(ctx)
	p.group = g
	for i := 0; i < p.numWorkers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case task, ok := <-p.tasks:
					if !ok {
						return nil
					}
					task()
				}
			}
		})
	}
}

// Submit enqueues task for execution by some worker. Blocks if the
// internal queue is full; callers needing non-blocking submission
// should size QueueSize generously or provide their own Pool
// implementation.
func (p *Pool) Submit(task Task) {
	p.tasks <- task
}

// SubmitBatch enqueues every task in tasks, preserving the
// per-task independence spec.md §4.G requires (each is dispatched as
// its own closure, not as one combined unit).
func (p *Pool) SubmitBatch(tasks []Task) {
	for _, t := range tasks {
		p.Submit(t)
	}
}

// Shutdown stops accepting new work, waits for in-flight tasks to
// drain or ctx to expire, and returns the first worker error, if any.
func (p *Pool) Shutdown(ctx context.Context) error {
	close(p.tasks)
	done := make(chan error, 1)
	go func() { done <- p.group.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

func defaultWorkerMultiplier() int {
	return 2
}

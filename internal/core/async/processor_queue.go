// Package async bounds how many documents the daemon processes at once.
package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/core"
)

// ErrQueueClosed is returned by Process after Shutdown.
var ErrQueueClosed = errors.New("processor queue is shutting down")

// Processor is the part of *core.Processor the queue drives.
type Processor interface {
	Process(ctx context.Context, pdf []byte) (*core.Result, error)
}

type job struct {
	ctx   context.Context
	pdf   []byte
	reply chan reply
}

type reply struct {
	res *core.Result
	err error
}

// ProcessorQueue runs Process calls on a fixed set of workers. Callers block
// until their document is done, so a burst of requests waits in the queue
// instead of starting one OCR run per request.
type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: 3 * time.Minute,
		ch:      make(chan job, 32),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for j := range q.ch {
					q.run(workerID, j)
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, j job) {
	// the caller may have gone away while the job waited
	if err := j.ctx.Err(); err != nil {
		j.reply <- reply{err: err}
		return
	}
	ctx, cancel := context.WithTimeout(j.ctx, q.timeout)
	defer cancel()

	res, err := q.proc.Process(ctx, j.pdf)
	if err != nil {
		q.logger.Warn("processing failed", "worker_id", workerID, "source", common.SourceNameFromContext(ctx), "error", err)
	} else {
		q.logger.Debug("processed document", "worker_id", workerID, "run_id", res.RunID)
	}
	j.reply <- reply{res: res, err: err}
}

// Process queues pdf and waits for its result. It applies backpressure when
// the queue is full and gives up when ctx is done.
func (q *ProcessorQueue) Process(ctx context.Context, pdf []byte) (*core.Result, error) {
	j := job{ctx: ctx, pdf: pdf, reply: make(chan reply, 1)}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil, ErrQueueClosed
	}
	select {
	case q.ch <- j:
	default:
		q.logger.Warn("queue full, applying backpressure", "source", common.SourceNameFromContext(ctx))
		select {
		case q.ch <- j:
		case <-ctx.Done():
			q.mu.RUnlock()
			return nil, ctx.Err()
		}
	}
	q.mu.RUnlock()

	select {
	case r := <-j.reply:
		return r.res, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown stops accepting work and waits for queued documents to finish.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

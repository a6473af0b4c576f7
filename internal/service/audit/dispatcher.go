package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

type httpRecorder interface {
	RecordHTTP(ctx context.Context, c HTTPCapture) error
}

type dispatchJob struct {
	ctx     context.Context
	capture HTTPCapture
}

// Dispatcher moves HTTP captures off the request path. Captures are queued
// in a bounded buffer drained by a fixed pool of workers. Dispatch never
// blocks: when the buffer is full the capture is dropped and counted.
// Nothing is retried and queued captures do not survive the process.
type Dispatcher struct {
	rec     httpRecorder
	queue   chan dispatchJob
	metrics *Metrics
	log     *slog.Logger

	dropped   atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts workers goroutines draining a queue of queueSize.
// Non-positive values fall back to 1024 and 2.
func NewDispatcher(log *slog.Logger, rec httpRecorder, queueSize, workers int, metrics *Metrics) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if workers <= 0 {
		workers = 2
	}

	d := &Dispatcher{
		rec:     rec,
		queue:   make(chan dispatchJob, queueSize),
		metrics: metrics,
		log:     log.With("service", "audit", "component", "dispatcher"),
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}

	d.log.Info("audit dispatcher started",
		slog.Int("queue_size", queueSize),
		slog.Int("workers", workers),
	)

	return d
}

// Dispatch enqueues c for a detached write and reports whether it was
// accepted. The write runs with a context that keeps ctx's values but
// ignores its cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, c HTTPCapture) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		d.metrics.incDropped("closed")
		return false
	}

	select {
	case d.queue <- dispatchJob{ctx: context.WithoutCancel(ctx), capture: c}:
		return true
	default:
		d.dropped.Add(1)
		d.metrics.incDropped("queue_full")
		d.log.WarnContext(ctx, "audit queue full, dropping capture",
			slog.String("method", c.Method),
			slog.String("path", c.Path),
		)
		return false
	}
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()

	for job := range d.queue {
		d.write(id, job)
	}
}

func (d *Dispatcher) write(id int, job dispatchJob) {
	defer func() {
		if r := recover(); r != nil {
			d.failed.Add(1)
			d.log.Error("panic while writing audit capture",
				slog.Int("worker", id),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	if err := d.rec.RecordHTTP(job.ctx, job.capture); err != nil {
		d.failed.Add(1)
		d.log.WarnContext(job.ctx, "audit capture failed",
			slog.Int("worker", id),
			slog.String("method", job.capture.Method),
			slog.String("path", job.capture.Path),
			slog.String("error", err.Error()),
		)
		return
	}
	d.processed.Add(1)
}

// Stats returns the dropped, processed and failed capture counts.
func (d *Dispatcher) Stats() (dropped, processed, failed int64) {
	return d.dropped.Load(), d.processed.Load(), d.failed.Load()
}

// Close stops intake and waits until queued captures are written or ctx is
// done. Further Dispatch calls are dropped. Close is idempotent.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain audit queue: %w", ctx.Err())
	}
}

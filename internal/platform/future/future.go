// Package future provides single-assignment results for asynchronous store
// operations and a FIFO queue that runs them one at a time.
package future

import (
	"context"
	"errors"
	"sync"
)

var ErrQueueClosed = errors.New("queue closed")

// Future holds the eventual outcome of one operation. It resolves exactly
// once, with either a value or an error.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func Failed[T any](err error) *Future[T] {
	f := New[T]()
	var zero T
	f.Resolve(zero, err)
	return f
}

// Resolve sets the outcome. Later calls are ignored.
func (f *Future[T]) Resolve(v T, err error) {
	f.once.Do(func() {
		f.val = v
		f.err = err
		close(f.done)
	})
}

// Await blocks until the future resolves or ctx ends. Giving up on the wait
// does not cancel the underlying operation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Queue executes submitted jobs sequentially in submission order.
type Queue struct {
	mu     sync.Mutex
	jobs   chan func()
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(buffer int) *Queue {
	if buffer < 1 {
		buffer = 1
	}
	q := &Queue{jobs: make(chan func(), buffer)}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *Queue) run() {
	defer q.wg.Done()
	for job := range q.jobs {
		job()
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

// Submit enqueues fn on q. Once started, fn runs to completion even if ctx
// is cancelled; only the caller's Await observes the cancellation.
func Submit[T any](q *Queue, ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := New[T]()
	runCtx := context.WithoutCancel(ctx)
	job := func() {
		v, err := fn(runCtx)
		f.Resolve(v, err)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		var zero T
		f.Resolve(zero, ErrQueueClosed)
		return f
	}
	q.jobs <- job
	return f
}

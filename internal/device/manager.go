package device

import (
	"context"
	"sync"
)

// TaskFunc runs one install (or any device-scoped step) against a device serial.
type TaskFunc[T any] func(ctx context.Context, serial string) (T, error)

// Result is the outcome of a task for one device.
type Result[T any] struct {
	Serial string
	Value  T
	Err    error
}

// Manager fans device-scoped tasks out over a bounded worker pool.
type Manager[T any] struct {
	workerLimit int
}

// Option configures a Manager.
type Option[T any] func(*Manager[T])

// WithWorkerLimit sets the maximum number of devices served at once. Values below one are
// treated as one.
func WithWorkerLimit[T any](limit int) Option[T] {
	return func(m *Manager[T]) {
		m.workerLimit = limit
	}
}

// NewManager creates a Manager. Without options it serves one device at a time.
func NewManager[T any](opts ...Option[T]) *Manager[T] {
	m := &Manager[T]{workerLimit: 1}
	for _, opt := range opts {
		opt(m)
	}
	if m.workerLimit <= 0 {
		m.workerLimit = 1
	}
	return m
}

// Run executes task for every serial and returns the results in the order of serials.
// Devices not started before ctx is cancelled report ctx.Err().
func (m *Manager[T]) Run(ctx context.Context, serials []string, task TaskFunc[T]) []Result[T] {
	results := make([]Result[T], len(serials))
	if len(serials) == 0 {
		return results
	}

	workerCount := m.workerLimit
	if workerCount > len(serials) {
		workerCount = len(serials)
	}

	idxCh := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxCh {
				value, err := task(ctx, serials[idx])
				results[idx] = Result[T]{Serial: serials[idx], Value: value, Err: err}
			}
		}()
	}

	next := 0
feed:
	for ; next < len(serials); next++ {
		select {
		case <-ctx.Done():
			break feed
		case idxCh <- next:
		}
	}
	close(idxCh)
	wg.Wait()

	for ; next < len(serials); next++ {
		results[next] = Result[T]{Serial: serials[next], Err: ctx.Err()}
	}
	return results
}

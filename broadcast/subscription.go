package broadcast

import (
	"context"
	"sync"
)

// Subscription is a single subscriber of a Stream.
type Subscription[T any] struct {
	stream *Stream[T]
	ch     chan T
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

func newSubscription[T any](s *Stream[T], bufferSize int) *Subscription[T] {
	return &Subscription[T]{
		stream: s,
		ch:     make(chan T, bufferSize),
		done:   make(chan struct{}),
	}
}

// C returns the channel values are delivered on. It is closed by Close.
func (sub *Subscription[T]) C() <-chan T {
	return sub.ch
}

// Done is closed when the subscription is closed.
func (sub *Subscription[T]) Done() <-chan struct{} {
	return sub.done
}

// Close detaches the subscription from its stream and closes C.
// Values still buffered in C remain readable. Close is idempotent.
func (sub *Subscription[T]) Close() error {
	sub.once.Do(func() {
		// unblocks a Publish waiting on a full buffer before we take the write lock
		close(sub.done)
		sub.stream.remove(sub)

		sub.mu.Lock()
		sub.closed = true
		close(sub.ch)
		sub.mu.Unlock()
	})
	return nil
}

// send delivers v, waiting for buffer space. A closed subscription is
// skipped silently; only the publisher's context aborts delivery.
func (sub *Subscription[T]) send(ctx context.Context, v T) error {
	sub.mu.RLock()
	defer sub.mu.RUnlock()

	if sub.closed {
		return nil
	}

	select {
	case sub.ch <- v:
		return nil
	case <-sub.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

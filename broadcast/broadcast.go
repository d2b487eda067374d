package broadcast

import (
	"context"
	"sync"
)

// DefaultBufferSize is the per-subscriber channel capacity used when no
// WithBufferSize option is given.
const DefaultBufferSize = 64

type options struct {
	bufferSize int
}

// Option configures a Stream.
type Option func(*options)

// WithBufferSize sets the channel capacity of every subscription.
// Values below 1 are raised to 1.
func WithBufferSize(n int) Option {
	return func(o *options) {
		o.bufferSize = max(n, 1)
	}
}

// Stream is an ordered fan-out of values of type T.
// All methods are safe for concurrent use.
type Stream[T any] struct {
	mu         sync.RWMutex
	subs       []*Subscription[T]
	bufferSize int
	closed     bool
}

// NewStream creates an empty stream.
func NewStream[T any](opts ...Option) *Stream[T] {
	o := options{bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Stream[T]{bufferSize: o.bufferSize}
}

// Subscribe registers a new subscriber that receives every value published
// from now on. The subscription is closed when ctx is done. Subscribing to a
// closed stream returns an already-closed subscription.
func (s *Stream[T]) Subscribe(ctx context.Context) *Subscription[T] {
	sub := newSubscription(s, s.bufferSize)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = sub.Close()
		return sub
	}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = sub.Close()
			case <-sub.done:
			}
		}()
	}

	return sub
}

// Publish delivers v to every current subscriber, in subscription order.
// It blocks while a subscriber's buffer is full and returns ctx.Err() if ctx
// is done before delivery completes. Publishing to a closed stream is a no-op.
func (s *Stream[T]) Publish(ctx context.Context, v T) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil
	}
	subs := make([]*Subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.send(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// Subscribers returns the number of open subscriptions.
func (s *Stream[T]) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Close closes every subscription. Subsequent Publish calls are no-ops and
// Subscribe returns closed subscriptions. Close is idempotent.
func (s *Stream[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	return nil
}

func (s *Stream[T]) remove(sub *Subscription[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, candidate := range s.subs {
		if candidate == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

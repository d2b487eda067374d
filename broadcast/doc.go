// Package broadcast provides an ordered, no-replay, one-to-many stream.
//
// A Stream fans every published value out to all current subscribers in
// registration order. Subscribers only see values published after they
// subscribed. Unlike a lossy pub/sub, a Stream never drops values: when a
// subscriber's buffer is full, Publish waits for it (backpressure), for the
// subscriber to be closed, or for the publisher's context to be done.
//
// Basic usage:
//
//	s := broadcast.NewStream[string]()
//	defer s.Close()
//
//	sub := s.Subscribe(ctx)
//	defer sub.Close()
//
//	_ = s.Publish(ctx, "hello")
//	fmt.Println(<-sub.C())
//
// A subscription is removed automatically when its context is cancelled.
package broadcast

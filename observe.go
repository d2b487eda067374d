package graphfsm

import (
	"context"

	"github.com/comalice/graphfsm/broadcast"
)

// ObserveState subscribes to the id of every Dwelling state the graph enters.
// Values published before the call are not replayed.
func (g *Graph) ObserveState(ctx context.Context) *broadcast.Subscription[State] {
	return g.states.Subscribe(ctx)
}

// ObserveStateChanges subscribes to every Inactive, Dwelling and Traversing
// value in the order the engine publishes them.
func (g *Graph) ObserveStateChanges(ctx context.Context) *broadcast.Subscription[MachineState] {
	return g.changes.Subscribe(ctx)
}

// Observe returns the dwelling states of g that have dynamic type T. The
// channel is closed when ctx is done or the graph is closed.
func Observe[T State](ctx context.Context, g *Graph) <-chan T {
	sub := g.ObserveState(ctx)
	out := make(chan T)

	go func() {
		defer close(out)
		defer sub.Close()

		for s := range sub.C() {
			v, ok := s.(T)
			if !ok {
				continue
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

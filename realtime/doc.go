// Package realtime provides a tick-based runtime that serialises events for a
// graphfsm.Graph.
//
// A Graph performs no locking of its own. The Runtime queues events from any
// number of goroutines and feeds them to the graph from a single goroutine at
// fixed tick boundaries:
//   - Events are batched and processed once per tick
//   - Higher priority events are consumed first
//   - Equal priorities keep submission order (sequence numbers)
//
// # Example Usage
//
//	g, _ := graphfsm.NewBuilder().Initial(Solid)...Build()
//	rt := realtime.NewRuntime(g, realtime.Config{
//		TickRate: 16667 * time.Microsecond, // 60 FPS
//	})
//	rt.Start(ctx)
//	rt.SendEvent(Melted)
//
// # Event Ordering Guarantees
//
// Given the same sequence of SendEvent calls, the graph observes the same
// sequence of Consume calls regardless of timing or concurrency. Decision
// cascades triggered by an event complete before the next event of the batch.
//
// # Trade-offs
//
// Latency is bounded by the tick rate: an event waits up to one tick before it
// is consumed. Throughput is bounded by MaxEventsPerTick per tick.
package realtime

// Package graphfsm executes finite state machines described as graphs of
// nodes and edges.
//
// A Graph holds a single current state. Transitions are requested directly
// with TransitionTo or by feeding events to Consume. Every traversal runs its
// hooks in a fixed order:
//
//	from.exit -> edge.enter -> action -> Traversing -> edge.exit -> Dwelling(to) -> to.entry
//
// A failing action reverts to the source node instead. Nodes may carry a
// Decision that computes the next event on arrival, or a nested Graph that is
// started on arrival and halted when the node is left.
//
// Observers subscribe to the dwelling states with ObserveState and to every
// MachineState, including traversals, with ObserveStateChanges.
//
// Graphs are usually declared with a Builder:
//
//	g, err := graphfsm.NewBuilder().
//		Initial(Solid).
//		State(Solid, func(s *graphfsm.StateBuilder) {
//			s.On(Melted, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(Liquid, nil) })
//		}).
//		State(Liquid, func(s *graphfsm.StateBuilder) {
//			s.On(Frozen, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(Solid, nil) })
//		}).
//		Build()
package graphfsm

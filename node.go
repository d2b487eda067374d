package graphfsm

// StateVisitor is a node entry or exit hook. trigger is nil when the node was
// entered by Start or left without an event.
type StateVisitor func(state State, trigger Event)

// Decision computes the event to consume on arrival at a node. It must be
// synchronous and free of side effects. Returning nil leaves the graph
// dwelling in the node. A node with a Decision never runs its entry hook.
type Decision func(state State, trigger Event) Event

// Node is a state of a graph together with its hooks and outgoing transitions.
// Nodes are mutable only while the graph is being constructed.
type Node struct {
	ID          State
	EntryHook   StateVisitor
	ExitHook    StateVisitor
	Decision    Decision
	Transitions map[Event]*Edge

	subgraph *Graph
	exits    map[State]struct{}
}

// NewNode creates a node with no hooks and an empty event table.
func NewNode(id State) *Node {
	return &Node{
		ID:          id,
		Transitions: make(map[Event]*Edge),
	}
}

//
// Construction
//

func (n *Node) OnEntry(v StateVisitor) *Node {
	n.EntryHook = v
	return n
}

func (n *Node) OnExit(v StateVisitor) *Node {
	n.ExitHook = v
	return n
}

// Decide sets the node's decision.
func (n *Node) Decide(d Decision) *Node {
	n.Decision = d
	return n
}

// On registers e as the transition taken when event is consumed in this node.
// A later registration for the same event replaces the earlier one.
func (n *Node) On(event Event, e *Edge) *Node {
	if n.Transitions == nil {
		n.Transitions = make(map[Event]*Edge)
	}
	n.Transitions[event] = e
	return n
}

// Nest makes child a sub-machine of n. The child is started whenever n becomes
// current. While the child dwells in one of exits, events it does not handle
// fall through to n's own transitions. With no exits every child state
// falls through.
func (n *Node) Nest(child *Graph, exits ...State) *Node {
	n.subgraph = child
	n.exits = make(map[State]struct{}, len(exits))
	for _, s := range exits {
		n.exits[s] = struct{}{}
	}
	return n
}

// Subgraph returns the nested sub-machine, or nil.
func (n *Node) Subgraph() *Graph {
	return n.subgraph
}

// Exits returns the exit states of the nested sub-machine.
func (n *Node) Exits() []State {
	out := make([]State, 0, len(n.exits))
	for s := range n.exits {
		out = append(out, s)
	}
	return out
}

func (n *Node) isExit(s State) bool {
	if len(n.exits) == 0 {
		return true
	}
	_, ok := n.exits[s]
	return ok
}

// hasArrivalBehavior reports whether arriving in n runs a decision or starts a
// sub-machine instead of the entry hook.
func (n *Node) hasArrivalBehavior() bool {
	return n.Decision != nil || n.subgraph != nil
}

func (n *Node) enter(trigger Event) {
	if n.EntryHook != nil {
		n.EntryHook(n.ID, trigger)
	}
}

func (n *Node) exit(trigger Event) {
	if n.ExitHook != nil {
		n.ExitHook(n.ID, trigger)
	}
}

package graphfsm

import (
	"fmt"
)

// Builder provides a fluent API for declaring a graph. Every state named as
// a destination is implied and need not be declared with State. Build may be
// called repeatedly; each call creates an independent graph.
type Builder struct {
	initial State
	states  []*StateBuilder
	byID    map[State]*StateBuilder
}

// StateBuilder configures one state of a Builder.
type StateBuilder struct {
	id          State
	enter       StateVisitor
	exit        StateVisitor
	decision    Decision
	allowed     []State
	transitions []*EdgeBuilder
	events      []eventEdge
	child       *Builder
	exits       []State
}

// EdgeBuilder configures one edge of a StateBuilder.
type EdgeBuilder struct {
	destination State
	enter       EdgeVisitor
	exit        EdgeVisitor
	action      EdgeAction
}

type eventEdge struct {
	event Event
	edge  *EdgeBuilder
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{byID: make(map[State]*StateBuilder)}
}

// Initial sets the state Start enters. Without it the graph starts Inactive.
func (b *Builder) Initial(id State) *Builder {
	b.initial = id
	return b
}

// State declares id, or retrieves an earlier declaration, and applies fn to it.
// fn may be nil.
func (b *Builder) State(id State, fn func(*StateBuilder)) *Builder {
	sb, ok := b.byID[id]
	if !ok {
		sb = &StateBuilder{id: id}
		b.byID[id] = sb
		b.states = append(b.states, sb)
	}
	if fn != nil {
		fn(sb)
	}
	return b
}

// Build validates the declarations and constructs the graph.
func (b *Builder) Build(opts ...Option) (*Graph, error) {
	nodes, order, err := b.nodes()
	if err != nil {
		return nil, err
	}

	// children own their initial state
	childOpts := append(opts[:len(opts):len(opts)], WithInitialState(Inactive{}))

	var edges []*Edge
	for _, sb := range b.states {
		from := nodes[sb.id]
		from.EntryHook = sb.enter
		from.ExitHook = sb.exit
		from.Decision = sb.decision

		if sb.child != nil {
			child, err := sb.child.Build(childOpts...)
			if err != nil {
				return nil, fmt.Errorf("subgraph of %s: %w", sb.id.Name(), err)
			}
			from.Nest(child, sb.exits...)
		}

		for _, to := range sb.allowed {
			edges = append(edges, NewEdge(from, nodes[to]))
		}
		for _, eb := range sb.transitions {
			edges = append(edges, eb.build(from, nodes))
		}
		for _, ee := range sb.events {
			e := ee.edge.build(from, nodes)
			edges = append(edges, e)
			from.On(ee.event, e)
		}
	}

	if b.initial != nil {
		if _, ok := nodes[b.initial]; !ok {
			return nil, fmt.Errorf("%w: initial state %s is not declared", ErrUnknownState, b.initial.Name())
		}
		opts = append(opts[:len(opts):len(opts)], WithInitial(b.initial))
	}

	return New(order, edges, opts...)
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild(opts ...Option) *Graph {
	g, err := b.Build(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build graph: %v", err))
	}
	return g
}

// nodes creates one fresh node per declared or implied state, in order of
// first appearance.
func (b *Builder) nodes() (map[State]*Node, []*Node, error) {
	nodes := make(map[State]*Node)
	var order []*Node
	add := func(id State) {
		if _, ok := nodes[id]; !ok {
			n := NewNode(id)
			nodes[id] = n
			order = append(order, n)
		}
	}

	for _, sb := range b.states {
		if sb.id == nil {
			return nil, nil, ErrNilNode
		}
		add(sb.id)
		for _, s := range sb.allowed {
			if s == nil {
				return nil, nil, fmt.Errorf("%w: %s allows a nil state", ErrNilNode, sb.id.Name())
			}
			add(s)
		}
		for _, eb := range sb.transitions {
			add(eb.destination)
		}
		for _, ee := range sb.events {
			if ee.edge.destination == nil {
				return nil, nil, fmt.Errorf("%w: event %s from %s has no destination", ErrInvalidEdge, nameOfEvent(ee.event), sb.id.Name())
			}
			add(ee.edge.destination)
		}
	}
	return nodes, order, nil
}

//
// StateBuilder
//

func (sb *StateBuilder) OnEnter(v StateVisitor) *StateBuilder {
	sb.enter = v
	return sb
}

func (sb *StateBuilder) OnExit(v StateVisitor) *StateBuilder {
	sb.exit = v
	return sb
}

// Decision sets the event producer run on arrival, replacing the entry hook.
func (sb *StateBuilder) Decision(d Decision) *StateBuilder {
	sb.decision = d
	return sb
}

// Allows declares plain edges to states, reachable with TransitionTo.
func (sb *StateBuilder) Allows(states ...State) *StateBuilder {
	sb.allowed = append(sb.allowed, states...)
	return sb
}

// On declares the edge taken when event is consumed in this state. fn must
// call TransitionTo. A later declaration for the same event replaces it.
func (sb *StateBuilder) On(event Event, fn func(*EdgeBuilder)) *StateBuilder {
	eb := &EdgeBuilder{}
	if fn != nil {
		fn(eb)
	}
	for i, ee := range sb.events {
		if ee.event == event {
			sb.events[i].edge = eb
			return sb
		}
	}
	sb.events = append(sb.events, eventEdge{event: event, edge: eb})
	return sb
}

// OnTransitionTo declares an edge to state used by TransitionTo.
func (sb *StateBuilder) OnTransitionTo(state State, fn func(*EdgeBuilder)) *StateBuilder {
	eb := &EdgeBuilder{destination: state}
	if fn != nil {
		fn(eb)
	}
	eb.destination = state
	for i, existing := range sb.transitions {
		if existing.destination == state {
			sb.transitions[i] = eb
			return sb
		}
	}
	sb.transitions = append(sb.transitions, eb)
	return sb
}

// Nest runs the graph built by child as a sub-machine of this state.
// See Node.Nest for the meaning of exits.
func (sb *StateBuilder) Nest(child *Builder, exits ...State) *StateBuilder {
	sb.child = child
	sb.exits = exits
	return sb
}

//
// EdgeBuilder
//

// TransitionTo sets the destination and the action. action may be nil.
func (eb *EdgeBuilder) TransitionTo(id State, action EdgeAction) *EdgeBuilder {
	eb.destination = id
	eb.action = action
	return eb
}

func (eb *EdgeBuilder) Execute(action EdgeAction) *EdgeBuilder {
	eb.action = action
	return eb
}

func (eb *EdgeBuilder) OnEnter(v EdgeVisitor) *EdgeBuilder {
	eb.enter = v
	return eb
}

func (eb *EdgeBuilder) OnExit(v EdgeVisitor) *EdgeBuilder {
	eb.exit = v
	return eb
}

func (eb *EdgeBuilder) build(from *Node, nodes map[State]*Node) *Edge {
	return &Edge{
		From:      from,
		To:        nodes[eb.destination],
		EnterHook: eb.enter,
		ExitHook:  eb.exit,
		Action:    eb.action,
	}
}

func nameOfEvent(e Event) string {
	if e == nil {
		return "<nil>"
	}
	return e.Name()
}

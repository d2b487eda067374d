package graphfsm

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/comalice/graphfsm/broadcast"
	"github.com/comalice/graphfsm/internal/logger"
)

// Graph drives a single current state through the transitions of its nodes.
//
// A Graph provides no mutual exclusion: Start, TransitionTo and Consume must
// not be called concurrently on the same graph. Use the realtime package to
// serialise events from many goroutines.
type Graph struct {
	id    uuid.UUID
	nodes []*Node
	index map[State]*Node
	edges []*Edge

	initial MachineState
	current MachineState

	states  *broadcast.Stream[State]
	changes *broadcast.Stream[MachineState]

	dispatcher Dispatcher
	logger     *slog.Logger
	maxCascade int

	// set when the graph is nested in a node of parent
	parent *Graph
	host   *Node
}

// New creates a graph owning nodes and edges. Node ids must be unique and
// every edge must connect nodes of the graph. Nested sub-machines are linked
// to their host nodes.
func New(nodes []*Node, edges []*Edge, opts ...Option) (*Graph, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	g := &Graph{
		id:         uuid.New(),
		nodes:      make([]*Node, 0, len(nodes)),
		index:      make(map[State]*Node, len(nodes)),
		edges:      make([]*Edge, 0, len(edges)),
		current:    Inactive{},
		states:     broadcast.NewStream[State](broadcast.WithBufferSize(o.bufferSize)),
		changes:    broadcast.NewStream[MachineState](broadcast.WithBufferSize(o.bufferSize)),
		dispatcher: o.dispatcher,
		maxCascade: o.maxCascade,
	}

	base := o.logger
	if base == nil {
		base = slog.Default()
	}
	g.logger = base.With(logger.Component("graphfsm"), logger.GraphID(g.id.String()))

	for _, n := range nodes {
		if n == nil || n.ID == nil {
			return nil, ErrNilNode
		}
		if _, exists := g.index[n.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateState, n.ID.Name())
		}
		g.index[n.ID] = n
		g.nodes = append(g.nodes, n)
	}

	for i, e := range edges {
		if e == nil || e.From == nil || e.To == nil {
			return nil, fmt.Errorf("%w: edge[%d] is incomplete", ErrInvalidEdge, i)
		}
		if g.index[e.From.ID] == nil || g.index[e.To.ID] == nil {
			return nil, fmt.Errorf("%w: edge[%d] %s -> %s", ErrInvalidEdge, i, e.From.ID.Name(), e.To.ID.Name())
		}
		g.edges = append(g.edges, e)
	}

	switch s := o.initial.(type) {
	case Traversing:
		return nil, ErrInvalidStartState
	case Dwelling:
		if g.index[s.State] == nil {
			return nil, fmt.Errorf("%w: initial state %s", ErrUnknownState, nameOf(s.State))
		}
	}
	g.initial = o.initial

	for _, n := range g.nodes {
		child := n.subgraph
		if child == nil {
			continue
		}
		if child == g || (child.parent != nil && child.host != n) {
			return nil, fmt.Errorf("%w: %s", ErrSubgraphInUse, n.ID.Name())
		}
		child.parent = g
		child.host = n
	}

	return g, nil
}

// MustNew is like New but panics on error.
func MustNew(nodes []*Node, edges []*Edge, opts ...Option) *Graph {
	g, err := New(nodes, edges, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create graph: %v", err))
	}
	return g
}

// ID returns the instance id of the graph.
func (g *Graph) ID() uuid.UUID {
	return g.id
}

// Current returns the current state: Inactive or Dwelling.
func (g *Graph) Current() MachineState {
	return g.current
}

// Initial returns the state Start enters.
func (g *Graph) Initial() MachineState {
	return g.initial
}

// Nodes returns the nodes in construction order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the registered edges in construction order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// FindNode returns the node with the given id, or nil.
func (g *Graph) FindNode(id State) *Node {
	if id == nil {
		return nil
	}
	return g.index[id]
}

// FindEdge returns the first registered edge from -> to, or nil.
func (g *Graph) FindEdge(from, to State) *Edge {
	for _, e := range g.edges {
		if e.From.ID == from && e.To.ID == to {
			return e
		}
	}
	return nil
}

// Parent returns the graph this graph is nested in, or nil.
func (g *Graph) Parent() *Graph {
	return g.parent
}

// Equal reports whether both graphs have the same initial and current state
// and the same node and edge ids. Observers and hooks are ignored.
func (g *Graph) Equal(other *Graph) bool {
	if g == other {
		return true
	}
	if g == nil || other == nil {
		return false
	}
	if g.initial != other.initial || g.current != other.current {
		return false
	}
	return sameSet(nodeIDs(g.nodes), nodeIDs(other.nodes)) &&
		sameSet(edgeKeys(g.edges), edgeKeys(other.edges))
}

// Close closes both state streams and those of nested sub-machines.
func (g *Graph) Close() error {
	for _, n := range g.nodes {
		if n.subgraph != nil {
			_ = n.subgraph.Close()
		}
	}
	_ = g.states.Close()
	return g.changes.Close()
}

func nodeIDs(nodes []*Node) map[State]struct{} {
	out := make(map[State]struct{}, len(nodes))
	for _, n := range nodes {
		out[n.ID] = struct{}{}
	}
	return out
}

func edgeKeys(edges []*Edge) map[EdgeKey]struct{} {
	out := make(map[EdgeKey]struct{}, len(edges))
	for _, e := range edges {
		out[e.Key()] = struct{}{}
	}
	return out
}

func sameSet[K comparable](a, b map[K]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

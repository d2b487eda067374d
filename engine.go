package graphfsm

import (
	"context"
	"fmt"

	"github.com/comalice/graphfsm/internal/logger"
)

// Start enters the initial state. See StartAt.
func (g *Graph) Start(ctx context.Context) error {
	return g.StartAt(ctx, g.initial)
}

// StartAt makes state current. Starting in a Dwelling state runs the node's
// entry hook with a nil trigger, then publishes the state. A node with a
// decision or a sub-machine publishes first and then decides or starts the
// sub-machine instead of running its entry hook. Starting a started graph
// halts the running sub-machine, if any, then enters and publishes again.
func (g *Graph) StartAt(ctx context.Context, state MachineState) error {
	switch s := state.(type) {
	case nil, Traversing:
		return ErrInvalidStartState
	case Inactive:
		g.logger.DebugContext(ctx, "starting inactive")
		if err := g.haltChild(ctx); err != nil {
			return err
		}
		g.current = Inactive{}
		return g.publish(ctx, g.current)
	case Dwelling:
		node := g.FindNode(s.State)
		if node == nil {
			return fmt.Errorf("%w: %s", ErrUnknownState, nameOf(s.State))
		}
		g.logger.DebugContext(ctx, "starting", logger.State(node.ID))
		if err := g.haltChild(ctx); err != nil {
			return err
		}
		next, err := g.moveDirectly(ctx, node, nil)
		if err != nil {
			return err
		}
		return g.cascade(ctx, next)
	default:
		return ErrInvalidStartState
	}
}

// TransitionTo moves the graph to target. An inactive graph moves directly;
// a dwelling graph traverses the first registered edge to target, or a
// default edge with no hooks and a succeeding action.
//
// It returns target, also when the edge action reported a failure, and
// (nil, nil) without side effects when target is not a node of the graph.
func (g *Graph) TransitionTo(ctx context.Context, target State, trigger Event) (State, error) {
	node := g.FindNode(target)
	if node == nil {
		g.logger.DebugContext(ctx, "ignoring transition to unknown state", logger.State(target))
		return nil, nil
	}

	var (
		next Event
		err  error
	)
	switch cur := g.current.(type) {
	case Dwelling:
		from := g.FindNode(cur.State)
		if from == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownState, nameOf(cur.State))
		}
		edge := g.FindEdge(from.ID, node.ID)
		if edge == nil {
			edge = NewEdge(from, node)
		}
		next, err = g.moveViaEdge(ctx, edge, trigger)
	default:
		next, err = g.moveDirectly(ctx, node, trigger)
	}
	if err != nil {
		return nil, err
	}
	if err := g.cascade(ctx, next); err != nil {
		return nil, err
	}
	return node.ID, nil
}

// Consume feeds event to the graph. It is ignored unless the graph is
// dwelling. While the current node hosts a running sub-machine the event is
// offered to the sub-machine first. An event the current node has no
// transition for is ignored.
func (g *Graph) Consume(ctx context.Context, event Event) error {
	cur, ok := g.current.(Dwelling)
	if !ok {
		g.logger.DebugContext(ctx, "ignoring event while inactive", logger.Event(event))
		return nil
	}
	node := g.FindNode(cur.State)
	if node == nil {
		return nil
	}
	if child := node.subgraph; child != nil && child.active() {
		return child.Consume(ctx, event)
	}
	return g.consumeAt(ctx, node, event)
}

// consumeAt takes node's transition for event, then consumes the decision
// events that follow.
func (g *Graph) consumeAt(ctx context.Context, node *Node, event Event) error {
	return g.feed(ctx, node, event, 0)
}

// feed consumes event at node and every decision event it produces, with
// steps decision events already consumed. Unhandled events escalate to the
// host node when this graph is a nested sub-machine dwelling in an exit.
func (g *Graph) feed(ctx context.Context, node *Node, event Event, steps int) error {
	for {
		edge := node.Transitions[event]
		if edge == nil {
			if g.escalates(node) {
				g.logger.DebugContext(ctx, "escalating event", logger.Event(event), logger.State(node.ID))
				return g.parent.feed(ctx, g.host, event, steps)
			}
			g.logger.DebugContext(ctx, "ignoring unhandled event", logger.Event(event), logger.State(node.ID))
			return nil
		}

		next, err := g.moveViaEdge(ctx, edge, event)
		if err != nil || next == nil {
			return err
		}
		if steps >= g.maxCascade {
			return fmt.Errorf("%w: %d steps, stopped in %s", ErrDecisionCycle, steps, nameOf(g.current.ID()))
		}
		steps++

		cur, ok := g.current.(Dwelling)
		if !ok {
			return nil
		}
		node, event = g.FindNode(cur.State), next
		g.logger.DebugContext(ctx, "decision", logger.State(node.ID), logger.Event(event))
	}
}

func (g *Graph) escalates(node *Node) bool {
	if g.parent == nil || g.host == nil {
		return false
	}
	hostState, ok := g.parent.current.(Dwelling)
	return ok && hostState.State == g.host.ID && g.host.isExit(node.ID)
}

// cascade consumes the decision event produced on arriving without an edge.
func (g *Graph) cascade(ctx context.Context, next Event) error {
	if next == nil {
		return nil
	}
	cur, ok := g.current.(Dwelling)
	if !ok {
		return nil
	}
	node := g.FindNode(cur.State)
	g.logger.DebugContext(ctx, "decision", logger.State(node.ID), logger.Event(next))
	return g.feed(ctx, node, next, 1)
}

// moveDirectly enters node without an edge. It returns the event produced by
// node's decision, if any.
func (g *Graph) moveDirectly(ctx context.Context, node *Node, trigger Event) (Event, error) {
	g.current = Dwelling{State: node.ID}
	if node.hasArrivalBehavior() {
		if err := g.publish(ctx, g.current); err != nil {
			return nil, err
		}
		return g.arrive(ctx, node, trigger)
	}
	node.enter(trigger)
	return nil, g.publish(ctx, g.current)
}

// moveViaEdge traverses edge. It returns the event produced by the
// destination's decision, if any.
func (g *Graph) moveViaEdge(ctx context.Context, edge *Edge, trigger Event) (Event, error) {
	from, to := edge.From, edge.To
	log := g.logger.With(logger.From(from.ID), logger.To(to.ID), logger.Event(trigger))
	log.DebugContext(ctx, "traversing")

	from.exit(trigger)
	edge.enter()

	result := &resultCaptor{}
	if edge.Action != nil {
		err := g.dispatcher.Run(ctx, func(ctx context.Context) error {
			return edge.Action(ctx, result, trigger)
		})
		if err != nil {
			g.current = Dwelling{State: from.ID}
			log.DebugContext(ctx, "action error", logger.Error(err))
			return nil, &ActionError{From: from.ID, To: to.ID, Err: err}
		}
	}

	if res := result.get(); res != outcomeSuccess {
		if res == outcomeFailAndExit {
			edge.exit()
		}
		g.current = Dwelling{State: from.ID}
		if from.Decision == nil {
			from.enter(trigger)
		}
		log.DebugContext(ctx, "action failed, reverted")
		return nil, g.publish(ctx, g.current)
	}

	if err := g.publish(ctx, Traversing{From: from.ID, To: to.ID, Trigger: trigger}); err != nil {
		return nil, err
	}
	edge.exit()
	if child := from.subgraph; child != nil {
		if err := child.halt(ctx); err != nil {
			return nil, err
		}
	}
	g.current = Dwelling{State: to.ID}
	if err := g.publish(ctx, g.current); err != nil {
		return nil, err
	}
	log.DebugContext(ctx, "arrived")

	if to.hasArrivalBehavior() {
		return g.arrive(ctx, to, trigger)
	}
	to.enter(trigger)
	return nil, nil
}

// arrive runs node's decision, or starts its sub-machine.
func (g *Graph) arrive(ctx context.Context, node *Node, trigger Event) (Event, error) {
	if node.Decision != nil {
		return node.Decision(node.ID, trigger), nil
	}
	return nil, node.subgraph.Start(ctx)
}

// halt makes the graph and its running sub-machines inactive.
func (g *Graph) halt(ctx context.Context) error {
	if !g.active() {
		return nil
	}
	if err := g.haltChild(ctx); err != nil {
		return err
	}
	g.logger.DebugContext(ctx, "halting")
	g.current = Inactive{}
	return g.publish(ctx, g.current)
}

// haltChild halts the sub-machine of the current node, if any.
func (g *Graph) haltChild(ctx context.Context) error {
	cur, ok := g.current.(Dwelling)
	if !ok {
		return nil
	}
	if node := g.FindNode(cur.State); node != nil && node.subgraph != nil {
		return node.subgraph.halt(ctx)
	}
	return nil
}

func (g *Graph) active() bool {
	_, ok := g.current.(Dwelling)
	return ok
}

func (g *Graph) publish(ctx context.Context, s MachineState) error {
	if err := g.changes.Publish(ctx, s); err != nil {
		return err
	}
	if d, ok := s.(Dwelling); ok {
		return g.states.Publish(ctx, d.State)
	}
	return nil
}

package definition

import (
	"errors"
	"fmt"
	"slices"

	"github.com/comalice/graphfsm"
)

// Build validates def and constructs its graph, resolving names through reg.
func Build(def *Definition, reg *Registry, opts ...graphfsm.Option) (*graphfsm.Graph, error) {
	b, err := Builder(def, reg)
	if err != nil {
		return nil, err
	}
	g, err := b.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", def.ID, err)
	}
	return g, nil
}

// Builder translates def into a graphfsm.Builder. Every unresolved name is
// reported.
func Builder(def *Definition, reg *Registry) (*graphfsm.Builder, error) {
	if def == nil {
		return nil, ErrEmptyDocument
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = NewRegistry()
	}

	var errs []error
	b := graphfsm.NewBuilder().Initial(graphfsm.StringState(def.Initial))

	for _, s := range def.States {
		enter, err := reg.Hook(s.OnEnter)
		errs = append(errs, err)
		exit, err := reg.Hook(s.OnExit)
		errs = append(errs, err)
		decision, err := reg.Decision(s.Decision)
		errs = append(errs, err)

		var child *graphfsm.Builder
		var exits []graphfsm.State
		if s.Subgraph != nil {
			child, err = Builder(s.Subgraph, reg)
			if err != nil {
				errs = append(errs, fmt.Errorf("subgraph of %q: %w", s.Name, err))
			}
			for _, e := range s.Subgraph.Exits {
				exits = append(exits, graphfsm.StringState(e))
			}
		}

		edges := make(map[string]transition, len(s.On))
		for event, t := range s.On {
			tr, err := resolve(reg, t)
			if err != nil {
				errs = append(errs, fmt.Errorf("state %q event %q: %w", s.Name, event, err))
			}
			edges[event] = tr
		}

		b.State(graphfsm.StringState(s.Name), func(sb *graphfsm.StateBuilder) {
			sb.OnEnter(enter).OnExit(exit)
			if decision != nil {
				sb.Decision(decision)
			}
			for _, to := range s.Allows {
				sb.Allows(graphfsm.StringState(to))
			}
			if child != nil {
				sb.Nest(child, exits...)
			}
			// sorted so edge order does not depend on map iteration
			events := make([]string, 0, len(edges))
			for event := range edges {
				events = append(events, event)
			}
			slices.Sort(events)
			for _, event := range events {
				tr := edges[event]
				sb.On(graphfsm.StringEvent(event), func(eb *graphfsm.EdgeBuilder) {
					eb.TransitionTo(graphfsm.StringState(tr.target), tr.action)
					eb.OnEnter(tr.enter).OnExit(tr.exit)
				})
			}
		})
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return b, nil
}

type transition struct {
	target string
	action graphfsm.EdgeAction
	enter  graphfsm.EdgeVisitor
	exit   graphfsm.EdgeVisitor
}

func resolve(reg *Registry, t TransitionDef) (transition, error) {
	action, actionErr := reg.Action(t.Action)
	enter, enterErr := reg.EdgeHook(t.OnEnter)
	exit, exitErr := reg.EdgeHook(t.OnExit)
	return transition{target: t.Target, action: action, enter: enter, exit: exit},
		errors.Join(actionErr, enterErr, exitErr)
}

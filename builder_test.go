package graphfsm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/graphfsm"
	"github.com/comalice/graphfsm/testutil"
)

func TestBuilderImpliesStates(t *testing.T) {
	g, err := graphfsm.NewBuilder().
		Initial(StateA).
		State(StateA, func(s *graphfsm.StateBuilder) {
			s.Allows(StateB)
			s.OnTransitionTo(StateC, nil)
			s.On(TestEvent, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(StateD, nil) })
		}).
		Build(quiet)
	require.NoError(t, err)

	var ids []graphfsm.State
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []graphfsm.State{StateA, StateB, StateC, StateD}, ids)

	var keys []graphfsm.EdgeKey
	for _, e := range g.Edges() {
		keys = append(keys, e.Key())
	}
	assert.Equal(t, []graphfsm.EdgeKey{
		{From: StateA, To: StateB},
		{From: StateA, To: StateC},
		{From: StateA, To: StateD},
	}, keys)
	assert.Equal(t, dwelling(StateA), g.Initial())
	assert.Same(t, g.FindEdge(StateA, StateD), g.FindNode(StateA).Transitions[TestEvent])
}

func TestBuilderWiresHooks(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewRecorder()

	g, err := graphfsm.NewBuilder().
		Initial(StateA).
		State(StateA, func(s *graphfsm.StateBuilder) {
			s.OnEnter(rec.Entry()).OnExit(rec.Exit())
			s.On(TestEvent, func(e *graphfsm.EdgeBuilder) {
				e.TransitionTo(StateB, func(_ context.Context, _ graphfsm.ActionResult, trigger graphfsm.Event) error {
					rec.Record("action %s", trigger.Name())
					return nil
				})
				e.OnEnter(rec.EdgeEnter()).OnExit(rec.EdgeExit())
			})
		}).
		State(StateB, func(s *graphfsm.StateBuilder) {
			s.OnEnter(rec.Entry())
		}).
		Build(quiet)
	require.NoError(t, err)

	require.NoError(t, g.Start(ctx))
	require.NoError(t, g.Consume(ctx, TestEvent))

	assert.Equal(t, []string{
		"enter A -",
		"exit A TestEvent",
		"edge.enter A B",
		"action TestEvent",
		"edge.exit A B",
		"enter B TestEvent",
	}, rec.Calls())
}

func TestBuilderOnTransitionTo(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewRecorder()

	g, err := graphfsm.NewBuilder().
		Initial(StateA).
		State(StateA, func(s *graphfsm.StateBuilder) {
			s.OnTransitionTo(StateB, func(e *graphfsm.EdgeBuilder) {
				e.Execute(func(_ context.Context, r graphfsm.ActionResult, _ graphfsm.Event) error {
					rec.Record("refused")
					r.Fail()
					return nil
				})
			})
		}).
		Build(quiet)
	require.NoError(t, err)
	require.NoError(t, g.Start(ctx))

	_, err = g.TransitionTo(ctx, StateB, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"refused"}, rec.Calls())
	assert.Equal(t, dwelling(StateA), g.Current())
}

func TestBuilderRedeclaration(t *testing.T) {
	ctx := context.Background()

	g, err := graphfsm.NewBuilder().
		Initial(StateA).
		State(StateA, func(s *graphfsm.StateBuilder) {
			s.On(TestEvent, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(StateB, nil) })
		}).
		State(StateA, func(s *graphfsm.StateBuilder) {
			s.On(TestEvent, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(StateC, nil) })
		}).
		Build(quiet)
	require.NoError(t, err)
	require.NoError(t, g.Start(ctx))

	require.NoError(t, g.Consume(ctx, TestEvent))

	assert.Equal(t, dwelling(StateC), g.Current())
}

func TestBuilderIsRepeatable(t *testing.T) {
	b := graphfsm.NewBuilder().
		Initial(Solid).
		State(Solid, func(s *graphfsm.StateBuilder) {
			s.On(Melted, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(Liquid, nil) })
		})

	first, err := b.Build(quiet)
	require.NoError(t, err)
	second, err := b.Build(quiet)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.NotSame(t, first.FindNode(Solid), second.FindNode(Solid))
	assert.NotEqual(t, first.ID(), second.ID())

	require.NoError(t, first.Start(context.Background()))
	assert.False(t, first.Equal(second), "current states differ")
}

func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *graphfsm.Builder
		err     error
	}{
		{
			name:    "undeclared initial state",
			builder: graphfsm.NewBuilder().Initial(StateA).State(StateB, nil),
			err:     graphfsm.ErrUnknownState,
		},
		{
			name: "event without destination",
			builder: graphfsm.NewBuilder().State(StateA, func(s *graphfsm.StateBuilder) {
				s.On(TestEvent, func(e *graphfsm.EdgeBuilder) {})
			}),
			err: graphfsm.ErrInvalidEdge,
		},
		{
			name:    "nil state",
			builder: graphfsm.NewBuilder().State(nil, nil),
			err:     graphfsm.ErrNilNode,
		},
		{
			name: "invalid subgraph",
			builder: graphfsm.NewBuilder().State(StateA, func(s *graphfsm.StateBuilder) {
				s.Nest(graphfsm.NewBuilder().Initial(StateB))
			}),
			err: graphfsm.ErrUnknownState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.builder.Build(quiet)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, g)
		})
	}
}

func TestMustBuildPanics(t *testing.T) {
	assert.Panics(t, func() {
		graphfsm.NewBuilder().Initial(StateA).MustBuild(quiet)
	})
}

func TestBuilderChildrenKeepTheirInitialState(t *testing.T) {
	ctx := context.Background()
	withInitial := graphfsm.NewBuilder().Initial(StateC).State(StateC, nil)
	withoutInitial := graphfsm.NewBuilder().State(StateD, nil)

	g, err := graphfsm.NewBuilder().
		State(StateA, func(s *graphfsm.StateBuilder) { s.Nest(withInitial) }).
		State(StateB, func(s *graphfsm.StateBuilder) { s.Nest(withoutInitial) }).
		Build(quiet, graphfsm.WithInitial(StateA))
	require.NoError(t, err)

	assert.Equal(t, dwelling(StateA), g.Initial())
	assert.Equal(t, dwelling(StateC), g.FindNode(StateA).Subgraph().Initial())
	assert.Equal(t, graphfsm.Inactive{}, g.FindNode(StateB).Subgraph().Initial())

	require.NoError(t, g.Start(ctx))
	assert.Equal(t, dwelling(StateC), g.FindNode(StateA).Subgraph().Current())
}

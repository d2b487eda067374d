package graphfsm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/graphfsm"
	"github.com/comalice/graphfsm/testutil"
)

const (
	Idle    testState = "Idle"
	Running testState = "Running"
	Warmup  testState = "Warmup"
	Working testState = "Working"

	Go    testEvent = "Go"
	Stop  testEvent = "Stop"
	Ready testEvent = "Ready"
	Pause testEvent = "Pause"
)

func machineBuilders(rec *testutil.Recorder, exits ...graphfsm.State) *graphfsm.Builder {
	child := graphfsm.NewBuilder().
		Initial(Warmup).
		State(Warmup, func(s *graphfsm.StateBuilder) {
			s.OnEnter(rec.Entry())
			s.On(Ready, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(Working, nil) })
		}).
		State(Working, func(s *graphfsm.StateBuilder) {
			s.OnEnter(rec.Entry())
			s.On(Pause, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(Warmup, nil) })
		})

	return graphfsm.NewBuilder().
		Initial(Idle).
		State(Idle, func(s *graphfsm.StateBuilder) {
			s.OnEnter(rec.Entry())
			s.On(Go, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(Running, nil) })
		}).
		State(Running, func(s *graphfsm.StateBuilder) {
			s.OnEnter(rec.Entry())
			s.OnExit(rec.Exit())
			s.Nest(child, exits...)
			s.On(Stop, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(Idle, nil) })
		})
}

func TestSubgraph(t *testing.T) {
	ctx := context.Background()

	start := func(t *testing.T, exits ...graphfsm.State) (*graphfsm.Graph, *graphfsm.Graph, *testutil.Recorder) {
		t.Helper()
		rec := testutil.NewRecorder()
		g, err := machineBuilders(rec, exits...).Build(quiet)
		require.NoError(t, err)
		child := g.FindNode(Running).Subgraph()
		require.NotNil(t, child)
		assert.Same(t, g, child.Parent())
		require.NoError(t, g.Start(ctx))
		return g, child, rec
	}

	t.Run("arriving in the host starts the child", func(t *testing.T) {
		g, child, rec := start(t, Working)
		changes := g.ObserveStateChanges(ctx)
		childStates := child.ObserveState(ctx)
		rec.Reset()

		require.NoError(t, g.Consume(ctx, Go))

		assert.Equal(t, dwelling(Running), g.Current())
		assert.Equal(t, dwelling(Warmup), child.Current())
		assert.Equal(t, []string{"enter Warmup -"}, rec.Calls(), "host entry hook is replaced by the child start")
		assert.Equal(t, graphfsm.Traversing{From: Idle, To: Running, Trigger: Go}, awaitValue(t, changes))
		assert.Equal(t, dwelling(Running), awaitValue(t, changes))
		assert.Equal(t, graphfsm.State(Warmup), awaitValue(t, childStates))
	})

	t.Run("events are offered to the child first", func(t *testing.T) {
		g, child, _ := start(t, Working)
		require.NoError(t, g.Consume(ctx, Go))

		require.NoError(t, g.Consume(ctx, Ready))

		assert.Equal(t, dwelling(Running), g.Current())
		assert.Equal(t, dwelling(Working), child.Current())
	})

	t.Run("unhandled event outside an exit state is ignored", func(t *testing.T) {
		g, child, _ := start(t, Working)
		require.NoError(t, g.Consume(ctx, Go))

		require.NoError(t, g.Consume(ctx, Stop))

		assert.Equal(t, dwelling(Running), g.Current())
		assert.Equal(t, dwelling(Warmup), child.Current())
	})

	t.Run("exit state inherits host transitions", func(t *testing.T) {
		g, child, rec := start(t, Working)
		require.NoError(t, g.Consume(ctx, Go))
		require.NoError(t, g.Consume(ctx, Ready))
		childChanges := child.ObserveStateChanges(ctx)
		rec.Reset()

		require.NoError(t, g.Consume(ctx, Stop))

		assert.Equal(t, dwelling(Idle), g.Current())
		assert.Equal(t, graphfsm.Inactive{}, child.Current())
		assert.Equal(t, graphfsm.Inactive{}, awaitValue(t, childChanges))
		assert.Equal(t, []string{"exit Running Stop", "enter Idle Stop"}, rec.Calls())
	})

	t.Run("consuming on the child escalates too", func(t *testing.T) {
		g, child, _ := start(t, Working)
		require.NoError(t, g.Consume(ctx, Go))
		require.NoError(t, child.Consume(ctx, Ready))

		require.NoError(t, child.Consume(ctx, Stop))

		assert.Equal(t, dwelling(Idle), g.Current())
		assert.Equal(t, graphfsm.Inactive{}, child.Current())
	})

	t.Run("without exits every child state falls through", func(t *testing.T) {
		g, child, _ := start(t)
		require.NoError(t, g.Consume(ctx, Go))

		require.NoError(t, g.Consume(ctx, Stop))

		assert.Equal(t, dwelling(Idle), g.Current())
		assert.Equal(t, graphfsm.Inactive{}, child.Current())
	})

	t.Run("direct transition halts the child", func(t *testing.T) {
		g, child, _ := start(t, Working)
		require.NoError(t, g.Consume(ctx, Go))

		_, err := g.TransitionTo(ctx, Idle, nil)

		require.NoError(t, err)
		assert.Equal(t, graphfsm.Inactive{}, child.Current())
	})

	t.Run("re-entering the host restarts the child", func(t *testing.T) {
		g, child, _ := start(t, Working)
		require.NoError(t, g.Consume(ctx, Go))
		require.NoError(t, g.Consume(ctx, Ready))
		require.NoError(t, g.Consume(ctx, Stop))

		require.NoError(t, g.Consume(ctx, Go))

		assert.Equal(t, dwelling(Warmup), child.Current())
	})

	t.Run("decision events in an exit state escalate", func(t *testing.T) {
		child := graphfsm.NewBuilder().
			Initial(Warmup).
			State(Warmup, func(s *graphfsm.StateBuilder) {
				s.On(Ready, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(Working, nil) })
			}).
			State(Working, func(s *graphfsm.StateBuilder) {
				s.Decision(func(graphfsm.State, graphfsm.Event) graphfsm.Event { return Stop })
			})
		g, err := graphfsm.NewBuilder().
			Initial(Idle).
			State(Idle, func(s *graphfsm.StateBuilder) {
				s.On(Go, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(Running, nil) })
			}).
			State(Running, func(s *graphfsm.StateBuilder) {
				s.Nest(child, Working)
				s.On(Stop, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(Idle, nil) })
			}).
			Build(quiet)
		require.NoError(t, err)
		require.NoError(t, g.Start(ctx))
		require.NoError(t, g.Consume(ctx, Go))

		require.NoError(t, g.Consume(ctx, Ready))

		assert.Equal(t, dwelling(Idle), g.Current())
		assert.Equal(t, graphfsm.Inactive{}, g.FindNode(Running).Subgraph().Current())
	})

	t.Run("starting inactive halts the child", func(t *testing.T) {
		g, child, _ := start(t, Working)
		require.NoError(t, g.Consume(ctx, Go))
		childChanges := child.ObserveStateChanges(ctx)

		require.NoError(t, g.StartAt(ctx, graphfsm.Inactive{}))

		assert.Equal(t, graphfsm.Inactive{}, g.Current())
		assert.Equal(t, graphfsm.Inactive{}, child.Current())
		assert.Equal(t, graphfsm.Inactive{}, awaitValue(t, childChanges))
	})

	t.Run("restarting the host restarts the child", func(t *testing.T) {
		g, child, _ := start(t, Working)
		require.NoError(t, g.Consume(ctx, Go))
		require.NoError(t, g.Consume(ctx, Ready))
		childChanges := child.ObserveStateChanges(ctx)

		require.NoError(t, g.StartAt(ctx, dwelling(Running)))

		assert.Equal(t, dwelling(Warmup), child.Current())
		assert.Equal(t, graphfsm.Inactive{}, awaitValue(t, childChanges))
		assert.Equal(t, dwelling(Warmup), awaitValue(t, childChanges))
	})

	t.Run("each build gets its own child", func(t *testing.T) {
		b := machineBuilders(testutil.NewRecorder(), Working)
		first, err := b.Build(quiet)
		require.NoError(t, err)
		second, err := b.Build(quiet)
		require.NoError(t, err)

		assert.NotSame(t, first.FindNode(Running).Subgraph(), second.FindNode(Running).Subgraph())
		assert.True(t, first.Equal(second))
	})
}

package graphfsm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comalice/graphfsm"
	"github.com/comalice/graphfsm/broadcast"
	"github.com/comalice/graphfsm/internal/logger"
)

type testState string

func (s testState) Name() string { return string(s) }

type testEvent string

func (e testEvent) Name() string { return string(e) }

const (
	StateA testState = "A"
	StateB testState = "B"
	StateC testState = "C"
	StateD testState = "D"

	TestEvent      testEvent = "TestEvent"
	OtherTestEvent testEvent = "OtherTestEvent"
)

type matter string

func (m matter) Name() string { return string(m) }

type matterEvent string

func (e matterEvent) Name() string { return string(e) }

const (
	Solid  matter = "Solid"
	Liquid matter = "Liquid"
	Gas    matter = "Gas"

	Melted    matterEvent = "Melted"
	Frozen    matterEvent = "Frozen"
	Vaporized matterEvent = "Vaporized"
	Condensed matterEvent = "Condensed"
)

// quiet keeps engine debug logs out of test output.
var quiet = graphfsm.WithLogger(logger.Discard())

func awaitValue[T any](t *testing.T, sub *broadcast.Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a published value")
	}
	var zero T
	return zero
}

func requireNoValue[T any](t *testing.T, sub *broadcast.Subscription[T]) {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected value published: %v", v)
		}
	default:
	}
}

func dwelling(s graphfsm.State) graphfsm.MachineState {
	return graphfsm.Dwelling{State: s}
}

package graphfsm

import "fmt"

// State identifies a node of a graph. Implementations must be comparable:
// states are used as map keys and compared with ==.
type State interface {
	Name() string
}

// Event identifies a trigger. A nil Event means the transition had no trigger.
// Implementations must be comparable.
type Event interface {
	Name() string
}

// StringState provides a simple string-based state implementation for basic use cases.
type StringState string

func (s StringState) Name() string {
	return string(s)
}

// StringEvent provides a simple string-based event implementation for basic use cases.
type StringEvent string

func (e StringEvent) Name() string {
	return string(e)
}

type inactiveState struct{}

func (inactiveState) Name() string { return "Inactive" }

// InactiveState is the id reported by Inactive.
var InactiveState State = inactiveState{}

// CompoundState is the id reported by Traversing.
type CompoundState struct {
	From State
	To   State
}

func (c CompoundState) Name() string {
	return nameOf(c.From) + "->" + nameOf(c.To)
}

// MachineState is the position of a graph: Inactive, Dwelling or Traversing.
// Values are comparable with ==.
type MachineState interface {
	// ID returns the state id this position reports.
	ID() State
	fmt.Stringer

	machineState()
}

// Inactive means the graph has not been started, or its host node was left.
type Inactive struct{}

// Dwelling means the graph rests in State.
type Dwelling struct {
	State State
}

// Traversing is published while a successful edge action completes.
// It is never stored as the current state.
type Traversing struct {
	From    State
	To      State
	Trigger Event
}

func (Inactive) ID() State   { return InactiveState }
func (d Dwelling) ID() State { return d.State }
func (t Traversing) ID() State {
	return CompoundState{From: t.From, To: t.To}
}

func (Inactive) String() string { return "Inactive" }

func (d Dwelling) String() string {
	return "Dwelling(" + nameOf(d.State) + ")"
}

func (t Traversing) String() string {
	if t.Trigger == nil {
		return fmt.Sprintf("Traversing(%s -> %s)", nameOf(t.From), nameOf(t.To))
	}
	return fmt.Sprintf("Traversing(%s -> %s on %s)", nameOf(t.From), nameOf(t.To), t.Trigger.Name())
}

func (Inactive) machineState()   {}
func (Dwelling) machineState()   {}
func (Traversing) machineState() {}

func nameOf(s State) string {
	if s == nil {
		return "<nil>"
	}
	return s.Name()
}

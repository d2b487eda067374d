package graphfsm

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStartState = errors.New("invalid start state: a graph cannot start traversing")
	ErrUnknownState      = errors.New("unknown state")
	ErrDuplicateState    = errors.New("duplicate state")
	ErrNilNode           = errors.New("nil node")
	ErrInvalidEdge       = errors.New("invalid edge: from and to must be nodes of the graph")
	ErrSubgraphInUse     = errors.New("subgraph is already nested in another node")
	ErrDecisionCycle     = errors.New("decision cascade exceeded the configured bound")
)

// ActionError reports an edge action that returned an error or panicked.
// The graph stays dwelling in From and nothing is published.
type ActionError struct {
	From State
	To   State
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action on edge %s -> %s: %v", nameOf(e.From), nameOf(e.To), e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// ActionPanicError carries a value recovered from a panicking edge action.
type ActionPanicError struct {
	Value any
	Stack []byte
}

func (e *ActionPanicError) Error() string {
	return fmt.Sprintf("action panicked: %v", e.Value)
}

func IsActionError(err error) bool {
	var e *ActionError
	return errors.As(err, &e)
}

func IsActionPanic(err error) bool {
	var e *ActionPanicError
	return errors.As(err, &e)
}

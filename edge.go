package graphfsm

import (
	"context"
	"sync"
)

// EdgeVisitor is an edge enter or exit hook.
type EdgeVisitor func(from, to State)

// EdgeAction is the work performed while traversing an edge. It reports its
// outcome through result; returning without calling result means success.
// A non-nil error is a programming error and aborts the transition.
type EdgeAction func(ctx context.Context, result ActionResult, trigger Event) error

// ActionResult collects the outcome of an EdgeAction. A failure, once
// signalled, cannot be undone, and FailAndExit wins over Fail.
type ActionResult interface {
	// Success confirms the default outcome. It does not cancel an earlier failure.
	Success()
	// Fail reverts to the source node without running the edge exit hook.
	Fail()
	// FailAndExit reverts to the source node after running the edge exit hook.
	FailAndExit()
}

// EdgeKey identifies an edge by its endpoints.
type EdgeKey struct {
	From State
	To   State
}

// Edge is a directed transition between two nodes.
type Edge struct {
	From      *Node
	To        *Node
	EnterHook EdgeVisitor
	ExitHook  EdgeVisitor
	Action    EdgeAction
}

// NewEdge creates an edge with no hooks and an always-succeeding action.
func NewEdge(from, to *Node) *Edge {
	return &Edge{From: from, To: to}
}

func (e *Edge) OnEnter(v EdgeVisitor) *Edge {
	e.EnterHook = v
	return e
}

func (e *Edge) OnExit(v EdgeVisitor) *Edge {
	e.ExitHook = v
	return e
}

// Execute sets the action run while traversing the edge.
func (e *Edge) Execute(a EdgeAction) *Edge {
	e.Action = a
	return e
}

// Key returns the (from, to) identity of the edge.
func (e *Edge) Key() EdgeKey {
	return EdgeKey{From: e.From.ID, To: e.To.ID}
}

func (e *Edge) enter() {
	if e.EnterHook != nil {
		e.EnterHook(e.From.ID, e.To.ID)
	}
}

func (e *Edge) exit() {
	if e.ExitHook != nil {
		e.ExitHook(e.From.ID, e.To.ID)
	}
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFail
	outcomeFailAndExit
)

// resultCaptor is safe for use from the action's goroutine. A failure cannot
// be withdrawn and fail-and-exit stays set once signalled.
type resultCaptor struct {
	mu      sync.Mutex
	failed  bool
	andExit bool
}

func (r *resultCaptor) Success() {}

func (r *resultCaptor) Fail() {
	r.mu.Lock()
	r.failed = true
	r.mu.Unlock()
}

func (r *resultCaptor) FailAndExit() {
	r.mu.Lock()
	r.failed = true
	r.andExit = true
	r.mu.Unlock()
}

func (r *resultCaptor) get() outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.andExit:
		return outcomeFailAndExit
	case r.failed:
		return outcomeFail
	default:
		return outcomeSuccess
	}
}

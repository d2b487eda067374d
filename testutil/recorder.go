// Package testutil holds helpers shared by the graphfsm test suites.
package testutil

import (
	"fmt"
	"slices"
	"sync"

	"github.com/comalice/graphfsm"
)

// Recorder records hook and action calls in the order they happen. It is safe
// for concurrent use, so actions running on dispatcher goroutines can record
// into it.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a call.
func (r *Recorder) Record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Reset forgets all calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Entry returns a node entry hook recording "enter <state> <trigger>".
func (r *Recorder) Entry() graphfsm.StateVisitor {
	return func(s graphfsm.State, trigger graphfsm.Event) {
		r.Record("enter %s %s", s.Name(), eventName(trigger))
	}
}

// Exit returns a node exit hook recording "exit <state> <trigger>".
func (r *Recorder) Exit() graphfsm.StateVisitor {
	return func(s graphfsm.State, trigger graphfsm.Event) {
		r.Record("exit %s %s", s.Name(), eventName(trigger))
	}
}

// EdgeEnter returns an edge enter hook recording "edge.enter <from> <to>".
func (r *Recorder) EdgeEnter() graphfsm.EdgeVisitor {
	return func(from, to graphfsm.State) {
		r.Record("edge.enter %s %s", from.Name(), to.Name())
	}
}

// EdgeExit returns an edge exit hook recording "edge.exit <from> <to>".
func (r *Recorder) EdgeExit() graphfsm.EdgeVisitor {
	return func(from, to graphfsm.State) {
		r.Record("edge.exit %s %s", from.Name(), to.Name())
	}
}

// Decision wraps d, recording "decide <state> <trigger>".
func (r *Recorder) Decision(d graphfsm.Decision) graphfsm.Decision {
	return func(s graphfsm.State, trigger graphfsm.Event) graphfsm.Event {
		r.Record("decide %s %s", s.Name(), eventName(trigger))
		return d(s, trigger)
	}
}

func eventName(e graphfsm.Event) string {
	if e == nil {
		return "-"
	}
	return e.Name()
}

package definition

import (
	"fmt"
	"sync"

	"github.com/comalice/graphfsm"
)

// Registry resolves the hook, action and decision names used in documents.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	hooks     map[string]graphfsm.StateVisitor
	edgeHooks map[string]graphfsm.EdgeVisitor
	actions   map[string]graphfsm.EdgeAction
	decisions map[string]graphfsm.Decision
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks:     make(map[string]graphfsm.StateVisitor),
		edgeHooks: make(map[string]graphfsm.EdgeVisitor),
		actions:   make(map[string]graphfsm.EdgeAction),
		decisions: make(map[string]graphfsm.Decision),
	}
}

// RegisterHook names a state entry or exit hook.
func (r *Registry) RegisterHook(name string, v graphfsm.StateVisitor) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = v
	return r
}

// RegisterEdgeHook names an edge enter or exit hook.
func (r *Registry) RegisterEdgeHook(name string, v graphfsm.EdgeVisitor) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edgeHooks[name] = v
	return r
}

// RegisterAction names an edge action.
func (r *Registry) RegisterAction(name string, a graphfsm.EdgeAction) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = a
	return r
}

// RegisterDecision names a decision.
func (r *Registry) RegisterDecision(name string, d graphfsm.Decision) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions[name] = d
	return r
}

// Hook returns the state hook registered as name. An empty name resolves to nil.
func (r *Registry) Hook(name string) (graphfsm.StateVisitor, error) {
	return lookup(r, r.hooks, "hook", name)
}

// EdgeHook returns the edge hook registered as name. An empty name resolves to nil.
func (r *Registry) EdgeHook(name string) (graphfsm.EdgeVisitor, error) {
	return lookup(r, r.edgeHooks, "edge hook", name)
}

// Action returns the action registered as name. An empty name resolves to nil.
func (r *Registry) Action(name string) (graphfsm.EdgeAction, error) {
	return lookup(r, r.actions, "action", name)
}

// Decision returns the decision registered as name. An empty name resolves to nil.
func (r *Registry) Decision(name string) (graphfsm.Decision, error) {
	return lookup(r, r.decisions, "decision", name)
}

func lookup[T any](r *Registry, m map[string]T, kind, name string) (T, error) {
	var zero T
	if name == "" {
		return zero, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := m[name]
	if !ok {
		return zero, fmt.Errorf("%s ID %q %w", kind, name, ErrNotRegistered)
	}
	return v, nil
}

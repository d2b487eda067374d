// Package definition describes graphs in YAML and builds them with hooks,
// actions and decisions looked up by name in a Registry.
//
//	id: matter
//	initial: Solid
//	states:
//	  - name: Solid
//	    on_enter: log
//	    on:
//	      Melted: { target: Liquid }
//	  - name: Liquid
//	    on:
//	      Frozen: { target: Solid, action: cool }
//
// States and events are graphfsm.StringState and graphfsm.StringEvent values
// named as in the document.
package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is a graph document.
type Definition struct {
	ID      string     `yaml:"id"`
	Initial string     `yaml:"initial"`
	States  []StateDef `yaml:"states"`
	// Exits lists the states that inherit the host's transitions. Only
	// meaningful for a subgraph.
	Exits []string `yaml:"exits,omitempty"`
}

// StateDef defines one state.
type StateDef struct {
	Name     string                   `yaml:"name"`
	OnEnter  string                   `yaml:"on_enter,omitempty"`
	OnExit   string                   `yaml:"on_exit,omitempty"`
	Decision string                   `yaml:"decision,omitempty"`
	Allows   []string                 `yaml:"allows,omitempty"`
	On       map[string]TransitionDef `yaml:"on,omitempty"`
	Subgraph *Definition              `yaml:"subgraph,omitempty"`
}

// TransitionDef defines the edge taken for an event.
type TransitionDef struct {
	Target  string `yaml:"target"`
	Action  string `yaml:"action,omitempty"`
	OnEnter string `yaml:"on_enter,omitempty"`
	OnExit  string `yaml:"on_exit,omitempty"`
}

// Parse decodes and validates a YAML document. Unknown fields are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadFile reads and parses the document at path.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Validate checks the document:
// - non-empty ID and Initial
// - Initial, every target, allowed state and exit is a declared state
// - state names are unique and non-empty
// - subgraphs validate recursively
func (d *Definition) Validate() error {
	if d.ID == "" {
		return ErrMissingID
	}
	if d.Initial == "" {
		return fmt.Errorf("%w: %s", ErrMissingInitial, d.ID)
	}
	if len(d.States) == 0 {
		return fmt.Errorf("%w: %s", ErrNoStates, d.ID)
	}

	declared := make(map[string]bool, len(d.States))
	for i, s := range d.States {
		if s.Name == "" {
			return fmt.Errorf("%w: %s state[%d]", ErrMissingName, d.ID, i)
		}
		if declared[s.Name] {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateState, s.Name, d.ID)
		}
		declared[s.Name] = true
	}

	if !declared[d.Initial] {
		return fmt.Errorf("%w: initial state %q in %s", ErrUndeclaredState, d.Initial, d.ID)
	}
	for _, exit := range d.Exits {
		if !declared[exit] {
			return fmt.Errorf("%w: exit state %q in %s", ErrUndeclaredState, exit, d.ID)
		}
	}

	for _, s := range d.States {
		for _, to := range s.Allows {
			if !declared[to] {
				return fmt.Errorf("%w: %q allowed from %q in %s", ErrUndeclaredState, to, s.Name, d.ID)
			}
		}
		for event, t := range s.On {
			if event == "" {
				return fmt.Errorf("%w: empty event name on %q in %s", ErrMissingName, s.Name, d.ID)
			}
			if !declared[t.Target] {
				return fmt.Errorf("%w: target %q (state %q, event %q) in %s", ErrUndeclaredState, t.Target, s.Name, event, d.ID)
			}
		}
		if s.Subgraph != nil {
			if err := s.Subgraph.Validate(); err != nil {
				return fmt.Errorf("subgraph of %q: %w", s.Name, err)
			}
		}
	}
	return nil
}

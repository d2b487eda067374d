package definition

import "errors"

var (
	ErrEmptyDocument   = errors.New("definition document is empty")
	ErrMissingID       = errors.New("definition ID is required")
	ErrMissingInitial  = errors.New("initial state is required")
	ErrNoStates        = errors.New("states are required and cannot be empty")
	ErrMissingName     = errors.New("name is required")
	ErrDuplicateState  = errors.New("duplicate state")
	ErrUndeclaredState = errors.New("state is not declared")
	ErrNotRegistered   = errors.New("not registered")
)

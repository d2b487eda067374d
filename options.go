package graphfsm

import (
	"log/slog"

	"github.com/comalice/graphfsm/broadcast"
)

// DefaultMaxCascade bounds the number of decision events consumed in a row.
const DefaultMaxCascade = 64

// Option configures a Graph during construction.
type Option func(*options)

type options struct {
	dispatcher Dispatcher
	logger     *slog.Logger
	initial    MachineState
	maxCascade int
	bufferSize int
}

func defaultOptions() options {
	return options{
		dispatcher: GoroutineDispatcher{},
		initial:    Inactive{},
		maxCascade: DefaultMaxCascade,
		bufferSize: broadcast.DefaultBufferSize,
	}
}

// WithDispatcher sets the dispatcher edge actions run on. Nil is ignored.
func WithDispatcher(d Dispatcher) Option {
	return func(o *options) {
		if d != nil {
			o.dispatcher = d
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithInitialState sets the state Start enters.
func WithInitialState(s MachineState) Option {
	return func(o *options) {
		if s != nil {
			o.initial = s
		}
	}
}

// WithInitial is WithInitialState(Dwelling{State: s}).
func WithInitial(s State) Option {
	return WithInitialState(Dwelling{State: s})
}

// WithMaxCascade bounds consecutive decision events. Values below 1 are raised to 1.
func WithMaxCascade(n int) Option {
	return func(o *options) {
		o.maxCascade = max(n, 1)
	}
}

// WithStreamBuffer sets the per-observer buffer of both state streams.
func WithStreamBuffer(n int) Option {
	return func(o *options) {
		o.bufferSize = n
	}
}

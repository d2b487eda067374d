package logger

import (
	"log/slog"
	"time"
)

// Named is satisfied by graph states and events.
type Named interface {
	Name() string
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// GraphID records the graph instance identifier under the key "graph_id".
func GraphID(id string) slog.Attr {
	return slog.String("graph_id", id)
}

// State records a state name under the key "state".
func State(s Named) slog.Attr {
	return named("state", s)
}

// From records the source state of a traversal under the key "from".
func From(s Named) slog.Attr {
	return named("from", s)
}

// To records the destination state of a traversal under the key "to".
func To(s Named) slog.Attr {
	return named("to", s)
}

// Event records an event name under the key "event".
// A nil event is logged as an empty string.
func Event(e Named) slog.Attr {
	return named("event", e)
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func named(key string, n Named) slog.Attr {
	if n == nil {
		return slog.String(key, "")
	}
	return slog.String(key, n.Name())
}

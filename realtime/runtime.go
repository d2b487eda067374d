package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/comalice/graphfsm"
	"github.com/comalice/graphfsm/internal/logger"
)

const (
	// DefaultTickRate is 60 ticks per second.
	DefaultTickRate = 16667 * time.Microsecond
	// DefaultMaxEventsPerTick is the default event queue capacity.
	DefaultMaxEventsPerTick = 1000
)

var (
	ErrQueueFull  = errors.New("event queue full")
	ErrNotRunning = errors.New("runtime is not running")
	ErrRunning    = errors.New("runtime is already running")
)

// Config configures the real-time runtime
type Config struct {
	TickRate         time.Duration // fixed tick rate, e.g. 16.67ms for 60 FPS
	MaxEventsPerTick int           // event queue capacity
	Logger           *slog.Logger  // defaults to slog.Default()
}

// Runtime consumes queued events on a graph once per tick.
type Runtime struct {
	graph    *graphfsm.Graph
	logger   *slog.Logger
	tickRate time.Duration

	ticker  *time.Ticker
	tickNum uint64

	eventBatch  []EventWithMeta
	batchMu     sync.Mutex
	sequenceNum uint64

	stateMu sync.RWMutex
	current graphfsm.MachineState

	runMu      sync.Mutex
	tickCtx    context.Context
	tickCancel context.CancelFunc
	stopped    chan struct{}
	sources    sync.WaitGroup
}

// NewRuntime creates a runtime for g. The runtime owns g from Start until
// Stop: no other goroutine may call Start, TransitionTo or Consume on g.
func NewRuntime(g *graphfsm.Graph, cfg Config) *Runtime {
	if cfg.MaxEventsPerTick <= 0 {
		cfg.MaxEventsPerTick = DefaultMaxEventsPerTick
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}

	return &Runtime{
		graph:      g,
		logger:     l.With(logger.Component("realtime"), logger.GraphID(g.ID().String())),
		tickRate:   cfg.TickRate,
		eventBatch: make([]EventWithMeta, 0, cfg.MaxEventsPerTick),
		current:    g.Current(),
	}
}

// Start starts the graph on the caller's goroutine and then begins ticking.
func (rt *Runtime) Start(ctx context.Context) error {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()

	if rt.tickCancel != nil {
		return ErrRunning
	}
	if err := rt.graph.Start(ctx); err != nil {
		return err
	}
	rt.snapshot()

	rt.tickCtx, rt.tickCancel = context.WithCancel(ctx)
	rt.ticker = time.NewTicker(rt.tickRate)
	rt.stopped = make(chan struct{})

	go rt.tickLoop(rt.tickCtx, rt.stopped)

	rt.logger.DebugContext(ctx, "runtime started", slog.Duration("tick_rate", rt.tickRate))
	return nil
}

// Stop stops ticking and waits for the current tick and attached sources to
// finish. Events still queued are discarded. Stopping a stopped runtime is a
// no-op.
func (rt *Runtime) Stop() error {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()

	if rt.tickCancel == nil {
		return nil
	}
	rt.tickCancel()
	rt.ticker.Stop()
	<-rt.stopped
	rt.sources.Wait()

	rt.tickCancel = nil
	rt.logger.Debug("runtime stopped", slog.Uint64("ticks", rt.GetTickNumber()))
	return nil
}

// SendEvent queues an event for the next tick. Safe for concurrent use.
func (rt *Runtime) SendEvent(event graphfsm.Event) error {
	return rt.SendEventWithPriority(event, 0)
}

// SendEventWithPriority queues an event with priority. Higher priorities are
// consumed first within a tick.
func (rt *Runtime) SendEventWithPriority(event graphfsm.Event, priority int) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	if len(rt.eventBatch) >= cap(rt.eventBatch) {
		return ErrQueueFull
	}

	rt.eventBatch = append(rt.eventBatch, EventWithMeta{
		Event:       event,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++

	return nil
}

// Attach queues every event received from src until src is closed or the
// runtime stops. Events arriving while the queue is full are dropped.
func (rt *Runtime) Attach(src <-chan graphfsm.Event) error {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()

	if rt.tickCancel == nil {
		return ErrNotRunning
	}

	ctx := rt.tickCtx
	rt.sources.Add(1)
	go func() {
		defer rt.sources.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-src:
				if !ok {
					return
				}
				if err := rt.SendEvent(ev); err != nil {
					rt.logger.Warn("dropping event", logger.Event(ev), logger.Error(err))
				}
			}
		}
	}()
	return nil
}

// GetTickNumber returns the current tick count
func (rt *Runtime) GetTickNumber() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}

// GetCurrentState returns the state of the graph as of the end of the last tick.
func (rt *Runtime) GetCurrentState() graphfsm.MachineState {
	rt.stateMu.RLock()
	defer rt.stateMu.RUnlock()
	return rt.current
}

// IsInState reports whether the graph was dwelling in s at the end of the last tick.
func (rt *Runtime) IsInState(s graphfsm.State) bool {
	d, ok := rt.GetCurrentState().(graphfsm.Dwelling)
	return ok && d.State == s
}

func (rt *Runtime) snapshot() {
	rt.stateMu.Lock()
	rt.current = rt.graph.Current()
	rt.stateMu.Unlock()
}

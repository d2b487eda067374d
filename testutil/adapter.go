package testutil

import (
	"context"
	"time"

	"github.com/comalice/graphfsm"
	"github.com/comalice/graphfsm/realtime"
)

// Driver feeds events to a graph. It allows running the same test suite
// directly against a graph and through the tick-based runtime.
type Driver interface {
	Start(ctx context.Context) error
	Stop() error
	SendEvent(event graphfsm.Event) error
	IsInState(state graphfsm.State) bool
	GetCurrentState() graphfsm.MachineState
	WaitForStability(timeout time.Duration) error
}

// DirectDriver consumes events on the caller's goroutine.
type DirectDriver struct {
	g   *graphfsm.Graph
	ctx context.Context
}

// NewDirectDriver creates a driver calling g.Consume synchronously.
func NewDirectDriver(g *graphfsm.Graph) *DirectDriver {
	return &DirectDriver{g: g, ctx: context.Background()}
}

func (d *DirectDriver) Start(ctx context.Context) error {
	d.ctx = ctx
	return d.g.Start(ctx)
}

func (d *DirectDriver) Stop() error {
	return nil
}

func (d *DirectDriver) SendEvent(event graphfsm.Event) error {
	return d.g.Consume(d.ctx, event)
}

func (d *DirectDriver) IsInState(state graphfsm.State) bool {
	cur, ok := d.g.Current().(graphfsm.Dwelling)
	return ok && cur.State == state
}

func (d *DirectDriver) GetCurrentState() graphfsm.MachineState {
	return d.g.Current()
}

func (d *DirectDriver) WaitForStability(time.Duration) error {
	return nil
}

// TickDriver wraps the tick-based runtime
type TickDriver struct {
	rt       *realtime.Runtime
	tickRate time.Duration
}

// NewTickDriver creates a driver backed by a realtime.Runtime.
func NewTickDriver(g *graphfsm.Graph, tickRate time.Duration) *TickDriver {
	if tickRate <= 0 {
		tickRate = realtime.DefaultTickRate
	}
	return &TickDriver{
		rt:       realtime.NewRuntime(g, realtime.Config{TickRate: tickRate}),
		tickRate: tickRate,
	}
}

func (d *TickDriver) Start(ctx context.Context) error {
	return d.rt.Start(ctx)
}

func (d *TickDriver) Stop() error {
	return d.rt.Stop()
}

func (d *TickDriver) SendEvent(event graphfsm.Event) error {
	return d.rt.SendEvent(event)
}

func (d *TickDriver) IsInState(state graphfsm.State) bool {
	return d.rt.IsInState(state)
}

func (d *TickDriver) GetCurrentState() graphfsm.MachineState {
	return d.rt.GetCurrentState()
}

// WaitForStability waits until at least two more ticks have completed, so
// every event queued before the call has been consumed.
func (d *TickDriver) WaitForStability(timeout time.Duration) error {
	target := d.rt.GetTickNumber() + 2
	deadline := time.Now().Add(timeout)
	for d.rt.GetTickNumber() < target {
		if time.Now().After(deadline) {
			return context.DeadlineExceeded
		}
		time.Sleep(d.tickRate / 4)
	}
	return nil
}

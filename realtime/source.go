package realtime

import (
	"time"

	"github.com/comalice/graphfsm"
)

// TimerSource emits an event at a fixed interval. Attach its channel to a
// Runtime for timeouts and heartbeats.
type TimerSource struct {
	ch     chan graphfsm.Event
	event  graphfsm.Event
	ticker *time.Ticker
	stop   chan struct{}
}

// NewTimerSource creates a TimerSource that emits event every d.
func NewTimerSource(event graphfsm.Event, d time.Duration) *TimerSource {
	t := &TimerSource{
		ch:     make(chan graphfsm.Event, 10),
		event:  event,
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *TimerSource) run() {
	for {
		select {
		case <-t.ticker.C:
			select {
			case t.ch <- t.event:
			default:
				// drop if full
			}
		case <-t.stop:
			t.ticker.Stop()
			close(t.ch)
			return
		}
	}
}

// Events returns the event channel.
func (t *TimerSource) Events() <-chan graphfsm.Event {
	return t.ch
}

// Stop stops the ticker and closes the channel.
func (t *TimerSource) Stop() {
	close(t.stop)
}

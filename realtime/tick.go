package realtime

import (
	"context"
	"fmt"

	"github.com/comalice/graphfsm/internal/logger"
)

// tickLoop is the main tick execution loop
func (rt *Runtime) tickLoop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	for {
		select {
		case <-ctx.Done():
			return
		case <-rt.ticker.C:
			rt.processTick(ctx)

			rt.batchMu.Lock()
			rt.tickNum++
			rt.batchMu.Unlock()
		}
	}
}

// processTick processes one complete tick
func (rt *Runtime) processTick(ctx context.Context) {
	events := rt.collectEvents()
	sortEvents(events)
	rt.processEvents(ctx, events)
	rt.snapshot()
}

// collectEvents atomically retrieves and clears the event batch
func (rt *Runtime) collectEvents() []EventWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	events := rt.eventBatch
	rt.eventBatch = make([]EventWithMeta, 0, cap(rt.eventBatch))

	return events
}

// processEvents consumes the batch in order. A failing or panicking event is
// logged and does not stop the rest of the batch.
func (rt *Runtime) processEvents(ctx context.Context, events []EventWithMeta) {
	for _, em := range events {
		if ctx.Err() != nil {
			return
		}
		if err := rt.consume(ctx, em); err != nil {
			rt.logger.ErrorContext(ctx, "event failed",
				logger.Event(em.Event), logger.Error(err))
		}
	}
}

func (rt *Runtime) consume(ctx context.Context, em EventWithMeta) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while consuming event #%d: %v", em.SequenceNum, r)
		}
	}()
	return rt.graph.Consume(ctx, em.Event)
}

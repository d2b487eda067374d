package graphfsm

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/comalice/graphfsm/internal/async"
	"github.com/comalice/graphfsm/internal/logger"
)

// Dispatcher runs edge actions. Run must not return before fn has completed.
// A panic in fn is reported as an *ActionPanicError.
type Dispatcher interface {
	Run(ctx context.Context, fn func(context.Context) error) error
}

// GoroutineDispatcher runs each action on a fresh goroutine and awaits it.
type GoroutineDispatcher struct{}

func (GoroutineDispatcher) Run(ctx context.Context, fn func(context.Context) error) error {
	_, err := async.Go(ctx, fn).Await()
	return panicToActionError(err)
}

// InlineDispatcher runs each action on the caller's goroutine.
type InlineDispatcher struct{}

func (InlineDispatcher) Run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ActionPanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(ctx)
}

// PoolDispatcher runs actions on goroutines bounded by a weighted semaphore.
// One pool may be shared by many graphs.
type PoolDispatcher struct {
	sem *semaphore.Weighted
}

// NewPoolDispatcher creates a pool allowing size concurrent actions.
// Values below 1 are raised to 1.
func NewPoolDispatcher(size int) *PoolDispatcher {
	return &PoolDispatcher{sem: semaphore.NewWeighted(int64(max(size, 1)))}
}

// Run waits for a free slot, then runs fn. It returns ctx.Err() if ctx is done
// before a slot frees up.
func (p *PoolDispatcher) Run(ctx context.Context, fn func(context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	_, err := async.Go(ctx, fn).Await()
	return panicToActionError(err)
}

// LoggingDispatcher wraps a Dispatcher and logs the duration and outcome of
// every action.
type LoggingDispatcher struct {
	inner  Dispatcher
	logger *slog.Logger
}

// NewLoggingDispatcher creates a LoggingDispatcher wrapping inner.
// A nil logger means slog.Default().
func NewLoggingDispatcher(inner Dispatcher, l *slog.Logger) *LoggingDispatcher {
	if inner == nil {
		inner = GoroutineDispatcher{}
	}
	if l == nil {
		l = slog.Default()
	}
	return &LoggingDispatcher{
		inner:  inner,
		logger: l.With(logger.Component("dispatcher")),
	}
}

// Run logs before and after delegating to the inner dispatcher.
func (d *LoggingDispatcher) Run(ctx context.Context, fn func(context.Context) error) error {
	d.logger.DebugContext(ctx, "running action")
	start := time.Now()
	err := d.inner.Run(ctx, fn)
	if err != nil {
		d.logger.WarnContext(ctx, "action failed", logger.Duration(time.Since(start)), logger.Error(err))
		return err
	}
	d.logger.DebugContext(ctx, "action completed", logger.Duration(time.Since(start)))
	return nil
}

func panicToActionError(err error) error {
	var pe *async.PanicError
	if errors.As(err, &pe) {
		return &ActionPanicError{Value: pe.Value, Stack: pe.Stack}
	}
	return err
}

// Command demo drives a YAML-defined graph with events read from stdin, one
// per line, and prints every state change.
//
//	$ printf 'Melted\nVaporized\nDeposited\n' | go run ./cmd/demo
//
// A line "Event@N" sends Event with priority N. Lines starting with # are
// ignored. Configuration is read from GRAPHFSM_* environment variables.
package main

import (
	"bufio"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/comalice/graphfsm"
	"github.com/comalice/graphfsm/definition"
	"github.com/comalice/graphfsm/internal/config"
	"github.com/comalice/graphfsm/internal/logger"
	"github.com/comalice/graphfsm/internal/visualizer"
	"github.com/comalice/graphfsm/realtime"
)

//go:embed matter.yaml
var defaultDefinition []byte

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(stderr, "demo: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	log, err := cfg.logger()
	if err != nil {
		return err
	}
	dispatcher, err := cfg.dispatcher(log)
	if err != nil {
		return err
	}

	def, err := loadDefinition(cfg.Definition)
	if err != nil {
		return err
	}
	g, err := definition.Build(def, registry(log), graphfsm.WithLogger(log), graphfsm.WithDispatcher(dispatcher))
	if err != nil {
		return err
	}
	defer g.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	changes := g.ObserveStateChanges(ctx)
	eg.Go(func() error {
		for s := range changes.C() {
			fmt.Fprintln(stdout, s)
		}
		return nil
	})

	rt := realtime.NewRuntime(g, realtime.Config{TickRate: cfg.TickRate, Logger: log})
	if err := rt.Start(ctx); err != nil {
		return err
	}

	events := make(chan graphfsm.Event)
	if err := rt.Attach(events); err != nil {
		return err
	}

	lines := readLines(stdin)
	eg.Go(func() error {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					// let the runtime drain what is queued
					return waitTicks(ctx, rt, 2)
				}
				if err := send(ctx, rt, events, line); err != nil {
					log.Warn("ignoring input", slog.String("line", line), logger.Error(err))
				}
			}
		}
	})

	err = eg.Wait()
	if stopErr := rt.Stop(); stopErr != nil {
		err = errors.Join(err, stopErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("finished", slog.String("state", rt.GetCurrentState().String()), slog.Uint64("ticks", rt.GetTickNumber()))
	if cfg.PrintDOT {
		fmt.Fprint(stdout, visualizer.ExportDOT(g))
	}
	return nil
}

func loadDefinition(path string) (*definition.Definition, error) {
	if path == "" {
		return definition.Parse(defaultDefinition)
	}
	return definition.LoadFile(path)
}

// registry provides the names usable in definitions:
// hooks "log", edge hooks "trace", actions "refuse" and "refuse_and_exit".
func registry(log *slog.Logger) *definition.Registry {
	return definition.NewRegistry().
		RegisterHook("log", func(s graphfsm.State, trigger graphfsm.Event) {
			log.Info("entered", logger.State(s), logger.Event(trigger))
		}).
		RegisterEdgeHook("trace", func(from, to graphfsm.State) {
			log.Debug("traversing", logger.From(from), logger.To(to))
		}).
		RegisterAction("refuse", func(_ context.Context, r graphfsm.ActionResult, _ graphfsm.Event) error {
			r.Fail()
			return nil
		}).
		RegisterAction("refuse_and_exit", func(_ context.Context, r graphfsm.ActionResult, _ graphfsm.Event) error {
			r.FailAndExit()
			return nil
		})
}

// readLines delivers trimmed lines of r until EOF. The goroutine blocks on r
// and may outlive the caller.
func readLines(r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			out <- strings.TrimSpace(scanner.Text())
		}
	}()
	return out
}

func send(ctx context.Context, rt *realtime.Runtime, events chan<- graphfsm.Event, line string) error {
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	name, prio, found := strings.Cut(line, "@")
	if found {
		p, err := strconv.Atoi(prio)
		if err != nil {
			return fmt.Errorf("invalid priority %q: %w", prio, err)
		}
		return rt.SendEventWithPriority(graphfsm.StringEvent(name), p)
	}
	select {
	case events <- graphfsm.StringEvent(name):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func waitTicks(ctx context.Context, rt *realtime.Runtime, n uint64) error {
	target := rt.GetTickNumber() + n
	for rt.GetTickNumber() < target {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Millisecond):
		}
	}
	return nil
}

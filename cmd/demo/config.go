package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/comalice/graphfsm"
	"github.com/comalice/graphfsm/internal/logger"
)

// Config is read from the environment, or a .env file in the working directory.
type Config struct {
	Definition string        `env:"GRAPHFSM_DEFINITION"`
	LogLevel   string        `env:"GRAPHFSM_LOG_LEVEL" envDefault:"info"`
	LogFormat  string        `env:"GRAPHFSM_LOG_FORMAT" envDefault:"text"`
	TickRate   time.Duration `env:"GRAPHFSM_TICK_RATE" envDefault:"10ms"`
	Dispatcher string        `env:"GRAPHFSM_DISPATCHER" envDefault:"goroutine"`
	PoolSize   int           `env:"GRAPHFSM_POOL_SIZE" envDefault:"4"`
	PrintDOT   bool          `env:"GRAPHFSM_PRINT_DOT" envDefault:"false"`
}

func (c Config) logger() (*slog.Logger, error) {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	format := logger.Format(c.LogFormat)
	if format != logger.FormatJSON && format != logger.FormatText {
		return nil, fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return logger.New(logger.WithLevel(level), logger.WithFormat(format), logger.WithOutput(stderr)), nil
}

func (c Config) dispatcher(l *slog.Logger) (graphfsm.Dispatcher, error) {
	var d graphfsm.Dispatcher
	switch c.Dispatcher {
	case "", "goroutine":
		d = graphfsm.GoroutineDispatcher{}
	case "inline":
		d = graphfsm.InlineDispatcher{}
	case "pool":
		d = graphfsm.NewPoolDispatcher(c.PoolSize)
	default:
		return nil, fmt.Errorf("unknown dispatcher %q: must be goroutine, inline or pool", c.Dispatcher)
	}
	return graphfsm.NewLoggingDispatcher(d, l), nil
}

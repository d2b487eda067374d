package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type name string

func (n name) Name() string { return string(n) }

func TestNew(t *testing.T) {
	t.Run("json output with static attrs", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(WithOutput(&buf), WithAttr(Component("graph")))
		l.Info("hello", State(name("Solid")))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "hello", rec["msg"])
		assert.Equal(t, "graph", rec["component"])
		assert.Equal(t, "Solid", rec["state"])
	})

	t.Run("text output respects level", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(WithOutput(&buf), WithFormat(FormatText), WithLevel(slog.LevelWarn))
		l.Info("dropped")
		l.Warn("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("invalid format panics", func(t *testing.T) {
		assert.Panics(t, func() { New(WithFormat("xml")) })
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestAttrs(t *testing.T) {
	assert.Equal(t, slog.String("event", ""), Event(nil))
	assert.Equal(t, slog.String("from", "A"), From(name("A")))
	assert.Equal(t, slog.String("to", "B"), To(name("B")))
	assert.Equal(t, slog.Attr{}, Error(nil))
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.Any().(error).Error())
	assert.Equal(t, slog.Duration("duration", time.Second), Duration(time.Second))
}

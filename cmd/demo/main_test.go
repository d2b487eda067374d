package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Setenv("GRAPHFSM_TICK_RATE", "2ms")
	t.Setenv("GRAPHFSM_LOG_LEVEL", "error")
	t.Setenv("GRAPHFSM_DISPATCHER", "pool")
	t.Setenv("GRAPHFSM_PRINT_DOT", "true")

	var out, errOut bytes.Buffer
	stdin = strings.NewReader("# comment\nMelted\n\nVaporized\nDeposited\nBogus@x\n")
	stdout, stderr = &out, &errOut

	require.NoError(t, run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Dwelling(Solid)\n")
	assert.Contains(t, got, "Traversing(Solid -> Liquid on Melted)\n")
	assert.Contains(t, got, "Dwelling(Gas)\n")
	assert.NotContains(t, got, "Traversing(Gas -> Solid")
	assert.Contains(t, got, "digraph Graph {")
	assert.Empty(t, errOut.String())
}

package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearTransitions(t *testing.T) {
	sm := NewLinear([]string{"a", "b", "c"}, "done")

	assert.True(t, sm.CanTransition("a", "b"))
	assert.True(t, sm.CanTransition("b", "a"))
	assert.True(t, sm.CanTransition("b", "c"))
	assert.True(t, sm.CanTransition("c", "done"))

	assert.False(t, sm.CanTransition("a", "c"))
	assert.False(t, sm.CanTransition("a", "done"))
	assert.False(t, sm.CanTransition("done", "a"))
	assert.False(t, sm.CanTransition("unknown", "a"))
}

func TestTerminalState(t *testing.T) {
	sm := NewLinear([]string{"a", "b"}, "done")

	assert.True(t, sm.IsTerminal("done"))
	assert.False(t, sm.IsTerminal("a"))
	assert.False(t, sm.IsTerminal("missing"))
	assert.Empty(t, sm.GetAllowedTransitions("done"))
}

package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallDuration(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(41*time.Second + 900*time.Millisecond)

	call := &Call{StartedAt: &start, EndedAt: &end}
	assert.Equal(t, 41, call.Duration(), "sub-second remainder truncates")

	assert.Equal(t, 0, (&Call{StartedAt: &start}).Duration())
	assert.Equal(t, 0, (&Call{EndedAt: &end}).Duration())
	assert.Equal(t, 0, (&Call{}).Duration())
}

func TestCallStatusTerminal(t *testing.T) {
	assert.True(t, StatusEnded.Terminal())
	for _, s := range []CallStatus{StatusQueued, StatusRinging, StatusInProgress, StatusForwarding} {
		assert.False(t, s.Terminal(), "%s is not terminal", s)
	}
}

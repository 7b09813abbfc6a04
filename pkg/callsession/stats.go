package callsession

import (
	"sync"
	"time"

	"github.com/coldline-crm/coldline/pkg/provider"
)

const (
	// AudioLevelDecay is the exponential decay factor applied to the
	// instantaneous audio level on each tick.
	AudioLevelDecay = 0.95

	// AudioLevelThreshold floors decayed levels to zero once they drop
	// below it.
	AudioLevelThreshold = 0.1

	// MaxStatEvents bounds the rolling event log.
	MaxStatEvents = 10
)

// StatEvent is one entry in the rolling monitoring event log.
type StatEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// StatsView is an immutable snapshot of the monitoring state.
type StatsView struct {
	Duration   int                 `json:"duration"`
	Status     provider.CallStatus `json:"status"`
	Quality    int                 `json:"quality"`
	PacketLoss float64             `json:"packetLoss"`
	Latency    int                 `json:"latency"`
	AudioLevel float64             `json:"audioLevel"`
	Events     []StatEvent         `json:"events"`
}

// Stats holds the ephemeral per-session monitoring view state. It exists
// only for the lifetime of the session and is never persisted.
type Stats struct {
	mu         sync.Mutex
	duration   int
	status     provider.CallStatus
	quality    int
	packetLoss float64
	latency    int
	audioLevel float64
	events     []StatEvent
	now        func() time.Time
}

// NewStats creates monitoring state for a fresh session.
func NewStats() *Stats {
	return &Stats{
		status:  provider.StatusQueued,
		quality: 100,
		now:     time.Now,
	}
}

// AddEvent appends to the rolling event log, keeping the newest
// MaxStatEvents entries.
func (s *Stats) AddEvent(eventType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, StatEvent{Type: eventType, Timestamp: s.now()})
	if len(s.events) > MaxStatEvents {
		s.events = s.events[len(s.events)-MaxStatEvents:]
	}
}

// SetStatus overwrites the observed call status.
func (s *Stats) SetStatus(status provider.CallStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// SetDuration updates the elapsed call time in seconds.
func (s *Stats) SetDuration(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds >= 0 {
		s.duration = seconds
	}
}

// SetAudioLevel raises the instantaneous audio level. Incoming levels are
// scaled to percent; values at or below the threshold floor to zero.
func (s *Stats) SetAudioLevel(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := level * 100
	if next < s.audioLevel {
		next = s.audioLevel
	}
	if next <= AudioLevelThreshold {
		next = 0
	}
	s.audioLevel = next
}

// DecayAudioLevel applies one tick of exponential decay.
func (s *Stats) DecayAudioLevel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audioLevel *= AudioLevelDecay
	if s.audioLevel < AudioLevelThreshold {
		s.audioLevel = 0
	}
}

// ResetAudioLevel zeroes the level, used when the monitor disconnects.
func (s *Stats) ResetAudioLevel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audioLevel = 0
}

// View returns a copy of the current monitoring state.
func (s *Stats) View() StatsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]StatEvent, len(s.events))
	copy(events, s.events)
	return StatsView{
		Duration:   s.duration,
		Status:     s.status,
		Quality:    s.quality,
		PacketLoss: s.packetLoss,
		Latency:    s.latency,
		AudioLevel: s.audioLevel,
		Events:     events,
	}
}

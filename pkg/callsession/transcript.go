package callsession

import (
	"strings"
	"sync"
	"time"

	"github.com/coldline-crm/coldline/pkg/provider"
)

// TranscriptMessage is one user-visible transcript entry.
type TranscriptMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Assembler merges transcript messages arriving from status polls and the
// live monitor channel into one ordered, filtered sequence.
//
// Poll snapshots are authoritative: a snapshot replaces the working list
// wholesale in provider-ordinal order, superseding any live-channel
// ordering for the session. Live-channel messages append incrementally.
// Accepted messages are never reordered.
type Assembler struct {
	mu       sync.RWMutex
	markers  []string
	messages []TranscriptMessage
	now      func() time.Time
}

// NewAssembler creates an assembler filtering out messages whose
// lower-cased content contains any of the given system-priming markers.
func NewAssembler(markers []string) *Assembler {
	lowered := make([]string, len(markers))
	for i, m := range markers {
		lowered[i] = strings.ToLower(m)
	}
	return &Assembler{markers: lowered, now: time.Now}
}

// admit reports whether a message may enter the transcript. System
// priming text is excluded for every role.
func (a *Assembler) admit(content string) bool {
	lowered := strings.ToLower(content)
	for _, marker := range a.markers {
		if strings.Contains(lowered, marker) {
			return false
		}
	}
	return true
}

// ApplySnapshot replaces the transcript with the provider's message list.
// Slice position is the message identity: repeated content at distinct
// positions stays, and re-applying an identical snapshot reproduces the
// same transcript. Ordering follows the slice position, not message
// timestamps, since the provider does not guarantee strictly increasing
// times.
func (a *Assembler) ApplySnapshot(messages []provider.Message) {
	replacement := make([]TranscriptMessage, 0, len(messages))
	for _, msg := range messages {
		if !a.admit(msg.Message) {
			continue
		}
		ts := a.now()
		if msg.Time > 0 {
			ts = time.Unix(int64(msg.Time), 0)
		}
		replacement = append(replacement, TranscriptMessage{
			Role:      msg.Role,
			Content:   msg.Message,
			Timestamp: ts,
		})
	}

	a.mu.Lock()
	a.messages = replacement
	a.mu.Unlock()
}

// Append adds one live-channel message to the end of the transcript,
// subject to the same filter as snapshots. Returns whether the message
// was admitted.
func (a *Assembler) Append(role, content string) bool {
	if role == "" || content == "" || !a.admit(content) {
		return false
	}
	a.mu.Lock()
	a.messages = append(a.messages, TranscriptMessage{
		Role:      role,
		Content:   content,
		Timestamp: a.now(),
	})
	a.mu.Unlock()
	return true
}

// Messages returns a copy of the assembled transcript.
func (a *Assembler) Messages() []TranscriptMessage {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]TranscriptMessage, len(a.messages))
	copy(out, a.messages)
	return out
}

// Lines renders the transcript as "role: content" lines for call notes.
func (a *Assembler) Lines() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	lines := make([]string, len(a.messages))
	for i, m := range a.messages {
		lines[i] = m.Role + ": " + m.Content
	}
	return lines
}

// Len returns the number of accepted messages.
func (a *Assembler) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.messages)
}

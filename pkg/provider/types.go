package provider

import "time"

// CallStatus 通话状态
type CallStatus string

const (
	StatusQueued     CallStatus = "queued"
	StatusRinging    CallStatus = "ringing"
	StatusInProgress CallStatus = "in-progress"
	StatusForwarding CallStatus = "forwarding"
	StatusEnded      CallStatus = "ended"
)

// Terminal reports whether the status admits no further transitions.
func (s CallStatus) Terminal() bool {
	return s == StatusEnded
}

// Call is the provider's call resource as returned by create and status
// requests.
type Call struct {
	ID          string     `json:"id"`
	OrgID       string     `json:"orgId,omitempty"`
	Type        string     `json:"type,omitempty"`
	Status      CallStatus `json:"status"`
	EndedReason string     `json:"endedReason,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	Cost        float64    `json:"cost,omitempty"`
	Customer    *Customer  `json:"customer,omitempty"`
	Artifact    *Artifact  `json:"artifact,omitempty"`
	Monitor     *Monitor   `json:"monitor,omitempty"`
}

// Customer identifies the called party.
type Customer struct {
	Number string `json:"number"`
}

// Artifact carries the transcript material attached to a call snapshot.
type Artifact struct {
	Transcript   string    `json:"transcript,omitempty"`
	Messages     []Message `json:"messages,omitempty"`
	RecordingURL string    `json:"recordingUrl,omitempty"`
}

// Message is one transcript entry in provider ordinal order. The provider
// does not guarantee strictly increasing timestamps, so ordering follows
// the slice position.
type Message struct {
	Role             string  `json:"role"`
	Message          string  `json:"message"`
	Time             float64 `json:"time,omitempty"`
	EndTime          float64 `json:"endTime,omitempty"`
	SecondsFromStart float64 `json:"secondsFromStart,omitempty"`
}

// Monitor carries the push-channel endpoints for an active call.
type Monitor struct {
	ListenURL  string `json:"listenUrl,omitempty"`
	ControlURL string `json:"controlUrl,omitempty"`
}

// Duration returns the call length in whole seconds, 0 when either
// boundary is missing.
func (c *Call) Duration() int {
	if c.StartedAt == nil || c.EndedAt == nil {
		return 0
	}
	return int(c.EndedAt.Sub(*c.StartedAt).Seconds())
}

package callsession

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/coldline-crm/coldline/pkg/provider"
	"go.uber.org/zap"
)

// State is the coordinator's lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateActive   State = "active"
	StateEnded    State = "ended"
)

var (
	// ErrNoActiveCall is returned by End when no session is active.
	ErrNoActiveCall = errors.New("no active call")

	// ErrCallInProgress is returned by Start while a session is being
	// created or is active.
	ErrCallInProgress = errors.New("a call is already in progress")
)

// CallAPI is the provider surface the coordinator needs.
type CallAPI interface {
	CreateCall(ctx context.Context, phoneNumber, historyContext string) (*provider.Call, error)
	HangCall(ctx context.Context, callID string) error
	GetCall(ctx context.Context, callID string) (*provider.Call, error)
	MonitorURL(callID string) string
}

// Options configures a coordinator.
type Options struct {
	// PollInterval overrides the status polling interval (default 2s).
	PollInterval time.Duration

	// TranscriptMarkers are the system-priming markers filtered from
	// transcripts.
	TranscriptMarkers []string

	// OnStart fires once a session id has been assigned.
	OnStart func(sessionID string)

	// OnEnd fires exactly once per terminal transition, whether the
	// terminal state was observed by the poller or by an explicit End.
	OnEnd func(final *provider.Call)
}

// Coordinator orchestrates one outbound call at a time: start ->
// monitoring -> end. Lifecycle: idle -> starting -> active -> ended;
// starting falls back to idle on provider error; there is no transition
// out of ended — a new Start begins a fresh session identity.
type Coordinator struct {
	api    CallAPI
	opt    Options
	logger *zap.Logger

	mu         sync.Mutex
	state      State
	sessionID  string
	endFired   bool
	pollCancel context.CancelFunc

	assembler *Assembler
	stats     *Stats
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator(api CallAPI, opt Options, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		api:       api,
		opt:       opt,
		logger:    logger,
		state:     StateIdle,
		assembler: NewAssembler(opt.TranscriptMarkers),
		stats:     NewStats(),
	}
}

// FormatHistoryContext renders the last three "[timestamp] content"
// history entries into the personalization context sent with the call.
func FormatHistoryContext(history []string) string {
	if len(history) == 0 {
		return ""
	}
	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	lines := make([]string, 0, len(recent))
	for _, entry := range recent {
		ts, content, found := strings.Cut(entry, "] ")
		if found {
			lines = append(lines, strings.TrimPrefix(ts, "[")+": "+content)
		} else {
			lines = append(lines, entry)
		}
	}
	return "Previous interactions with this contact:\n" +
		strings.Join(lines, "\n") +
		"\n\nUse this context to personalize the conversation and reference relevant past interactions when appropriate."
}

// Start validates the phone number, creates the call and begins status
// polling. Returns the provider-assigned session id. Credential and
// validation failures surface before any network call; provider errors
// roll the state back to idle.
func (c *Coordinator) Start(ctx context.Context, phoneNumber string, history []string) (string, error) {
	c.mu.Lock()
	if c.state == StateStarting || c.state == StateActive {
		c.mu.Unlock()
		return "", ErrCallInProgress
	}
	// Fresh session identity.
	c.state = StateStarting
	c.endFired = false
	c.sessionID = ""
	c.assembler = NewAssembler(c.opt.TranscriptMarkers)
	c.stats = NewStats()
	c.mu.Unlock()

	call, err := c.api.CreateCall(ctx, phoneNumber, FormatHistoryContext(history))
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return "", err
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.sessionID = call.ID
	c.state = StateActive
	c.pollCancel = cancel
	c.mu.Unlock()
	c.stats.SetStatus(call.Status)

	c.logger.Info("call session started",
		zap.String("sessionId", call.ID),
		zap.String("phoneNumber", phoneNumber))
	if c.opt.OnStart != nil {
		c.opt.OnStart(call.ID)
	}

	interval := c.opt.PollInterval
	poller := NewPoller(c.api, call.ID, interval, c.handlePoll, c.handlePollError, c.logger)
	go poller.Run(pollCtx)

	return call.ID, nil
}

// handlePoll applies one status snapshot. The snapshot replaces the
// transcript wholesale and, on terminal status, drives the session to
// ended.
func (c *Coordinator) handlePoll(call *provider.Call) {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.stats.SetStatus(call.Status)
	if call.StartedAt != nil {
		end := time.Now()
		if call.EndedAt != nil {
			end = *call.EndedAt
		}
		c.stats.SetDuration(int(end.Sub(*call.StartedAt).Seconds()))
	}
	if call.Artifact != nil {
		c.assembler.ApplySnapshot(call.Artifact.Messages)
	}
	c.stats.DecayAudioLevel()

	if call.Status.Terminal() {
		c.finish(call)
	}
}

func (c *Coordinator) handlePollError(err error) {
	c.logger.Error("call status polling degraded", zap.Error(err))
	c.stats.AddEvent("Poll Error")
}

// End hangs up the active call. The final snapshot is fetched first and
// local state is left untouched when either provider request fails, so a
// retry of End is safe.
func (c *Coordinator) End(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateActive || c.sessionID == "" {
		c.mu.Unlock()
		return ErrNoActiveCall
	}
	sessionID := c.sessionID
	c.mu.Unlock()

	final, err := c.api.GetCall(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := c.api.HangCall(ctx, sessionID); err != nil {
		return err
	}

	final.Status = provider.StatusEnded
	c.finish(final)
	return nil
}

// finish performs the single transition into the terminal state. The
// first observer of "ended" wins; later callers are a no-op, so OnEnd
// fires exactly once per session.
func (c *Coordinator) finish(final *provider.Call) {
	c.mu.Lock()
	if c.endFired {
		c.mu.Unlock()
		return
	}
	c.endFired = true
	c.state = StateEnded
	c.sessionID = ""
	cancel := c.pollCancel
	c.pollCancel = nil
	c.mu.Unlock()

	c.stats.SetStatus(provider.StatusEnded)
	if final != nil && final.Artifact != nil {
		c.assembler.ApplySnapshot(final.Artifact.Messages)
	}
	if cancel != nil {
		cancel()
	}

	c.logger.Info("call session ended", zap.String("sessionId", sessionIDOf(final)))
	if c.opt.OnEnd != nil {
		c.opt.OnEnd(final)
	}
}

func sessionIDOf(call *provider.Call) string {
	if call == nil {
		return ""
	}
	return call.ID
}

// OpenMonitor opens the live update channel for the active session and
// wires its events into the transcript assembler and stats. The caller
// owns closing the returned channel.
func (c *Coordinator) OpenMonitor(ctx context.Context) (*Channel, error) {
	c.mu.Lock()
	sessionID := c.sessionID
	state := c.state
	c.mu.Unlock()
	if state != StateActive || sessionID == "" {
		return nil, ErrNoActiveCall
	}

	ch := NewChannel(c.api.MonitorURL(sessionID), ChannelCallbacks{
		OnMessage: c.HandleMonitorMessage,
		OnConnect: func() {
			c.stats.AddEvent("Monitor Connected")
		},
		OnDisconnect: func() {
			c.stats.ResetAudioLevel()
			c.stats.AddEvent("Monitor Disconnected")
		},
		OnError: func(err error) {
			c.stats.AddEvent("Monitor Error")
			c.logger.Warn("call monitoring error", zap.String("sessionId", sessionID), zap.Error(err))
		},
	}, nil, c.logger)
	ch.Open(ctx)
	return ch, nil
}

// HandleMonitorMessage applies one live-channel event: audio levels feed
// the stats view, transcripts append through the assembler's filter, and
// status messages authoritatively overwrite the observed status.
func (c *Coordinator) HandleMonitorMessage(msg MonitorMessage) {
	switch msg.Type {
	case MonitorTypeAudio:
		if msg.Level != nil {
			c.stats.SetAudioLevel(*msg.Level)
		}
	case MonitorTypeTranscript:
		c.assembler.Append(msg.Role, msg.Text)
	case MonitorTypeStatus:
		if msg.Status != "" {
			c.stats.SetStatus(msg.Status)
		}
	}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the active provider call id, empty outside active.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Transcript returns the assembled transcript so far.
func (c *Coordinator) Transcript() []TranscriptMessage {
	return c.assembler.Messages()
}

// TranscriptLines returns the transcript as notes lines.
func (c *Coordinator) TranscriptLines() []string {
	return c.assembler.Lines()
}

// Stats returns a snapshot of the monitoring view state.
func (c *Coordinator) Stats() StatsView {
	return c.stats.View()
}

// Cancel stops polling without a provider hang-up, used on teardown.
// Idempotent.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	cancel := c.pollCancel
	c.pollCancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

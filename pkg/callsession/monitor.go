package callsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coldline-crm/coldline/pkg/provider"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrorCooldown rate-limits surfaced channel errors.
const ErrorCooldown = 5 * time.Second

// MonitorMessage is one inbound payload on the live update channel.
type MonitorMessage struct {
	Type   string              `json:"type"`
	Level  *float64            `json:"level,omitempty"`
	Role   string              `json:"role,omitempty"`
	Text   string              `json:"text,omitempty"`
	Status provider.CallStatus `json:"status,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// Recognized monitor message kinds.
const (
	MonitorTypeAudio      = "audio"
	MonitorTypeTranscript = "transcript"
	MonitorTypeStatus     = "status"
)

// ChannelCallbacks receive live-channel lifecycle and payload events.
// Malformed payloads surface through OnError without closing the channel.
type ChannelCallbacks struct {
	OnMessage    func(MonitorMessage)
	OnConnect    func()
	OnDisconnect func()
	OnError      func(error)
}

type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type dialFunc func(ctx context.Context, url string) (wsConn, error)

func gorillaDial(ctx context.Context, url string) (wsConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Channel is a reconnecting push channel delivering audio-level,
// transcript and status events for an active call.
//
// Lifecycle: disconnected -> connecting -> connected -> backoff-wait ->
// connecting... Abnormal closes reconnect with exponential backoff up to
// the strategy's attempt bound; exhausting it surfaces one rate-limited
// error and stops. An explicit Close never reconnects.
type Channel struct {
	url       string
	callbacks ChannelCallbacks
	strategy  BackoffStrategy
	logger    *zap.Logger

	dial dialFunc
	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) bool

	mu            sync.Mutex
	conn          wsConn
	connected     bool
	closed        bool
	cancel        context.CancelFunc
	lastErrorTime time.Time

	done chan struct{}
}

// NewChannel creates a channel for the given monitor endpoint. A nil
// strategy uses the default exponential backoff.
func NewChannel(url string, callbacks ChannelCallbacks, strategy BackoffStrategy, logger *zap.Logger) *Channel {
	if strategy == nil {
		strategy = NewExponentialBackoff()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel{
		url:       url,
		callbacks: callbacks,
		strategy:  strategy,
		logger:    logger,
		dial:      gorillaDial,
		now:       time.Now,
		wait:      sleepWait,
		done:      make(chan struct{}),
	}
}

func sleepWait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Open starts the connect/read loop. Safe to call once per channel.
func (ch *Channel) Open(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	ch.mu.Lock()
	ch.cancel = cancel
	ch.mu.Unlock()
	go ch.run(ctx)
}

func (ch *Channel) run(ctx context.Context) {
	defer close(ch.done)
	attempt := 0

	for {
		if ctx.Err() != nil || ch.isClosed() {
			return
		}

		conn, err := ch.dial(ctx, ch.url)
		if err == nil {
			ch.setConn(conn)
			attempt = 0
			if ch.callbacks.OnConnect != nil {
				ch.callbacks.OnConnect()
			}

			abnormal := ch.readLoop(conn)
			ch.setConn(nil)
			if ch.callbacks.OnDisconnect != nil {
				ch.callbacks.OnDisconnect()
			}
			if !abnormal || ch.isClosed() || ctx.Err() != nil {
				return
			}
			err = errors.New("connection closed abnormally")
		}

		if !ch.strategy.ShouldRetry(attempt) {
			ch.emitError(fmt.Errorf("max reconnection attempts reached: %w", err))
			return
		}

		delay := ch.strategy.NextDelay(attempt)
		attempt++
		ch.logger.Warn("monitor channel reconnecting",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		if !ch.wait(ctx, delay) {
			return
		}
	}
}

// readLoop consumes messages until the connection drops. Returns whether
// the closure was abnormal (reconnect-worthy).
func (ch *Channel) readLoop(conn wsConn) bool {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ch.isClosed() ||
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return false
			}
			return true
		}
		ch.dispatch(data)
	}
}

// dispatch validates and forwards one inbound payload. Malformed payloads
// are reported locally and never crash the channel.
func (ch *Channel) dispatch(data []byte) {
	var msg MonitorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		ch.emitError(fmt.Errorf("malformed monitor payload: %w", err))
		return
	}
	switch msg.Type {
	case MonitorTypeAudio, MonitorTypeTranscript, MonitorTypeStatus:
	case "":
		ch.emitError(errors.New("monitor payload missing type"))
		return
	default:
		ch.logger.Debug("ignoring unknown monitor message", zap.String("type", msg.Type))
		return
	}
	if ch.callbacks.OnMessage != nil {
		ch.callbacks.OnMessage(msg)
	}
}

// emitError surfaces an error to the caller, rate-limited to one per
// cooldown window.
func (ch *Channel) emitError(err error) {
	ch.mu.Lock()
	now := ch.now()
	if now.Sub(ch.lastErrorTime) < ErrorCooldown {
		ch.mu.Unlock()
		ch.logger.Debug("monitor channel error suppressed", zap.Error(err))
		return
	}
	ch.lastErrorTime = now
	ch.mu.Unlock()

	ch.logger.Error("monitor channel error", zap.Error(err))
	if ch.callbacks.OnError != nil {
		ch.callbacks.OnError(err)
	}
}

func (ch *Channel) setConn(conn wsConn) {
	ch.mu.Lock()
	ch.conn = conn
	ch.connected = conn != nil
	ch.mu.Unlock()
}

// IsConnected reports whether the channel currently holds an open
// connection.
func (ch *Channel) IsConnected() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.connected
}

func (ch *Channel) isClosed() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.closed
}

// Close performs a normal closure: no reconnect is attempted. Idempotent.
func (ch *Channel) Close() {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.closed = true
	conn := ch.conn
	cancel := ch.cancel
	ch.mu.Unlock()

	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}
	if cancel != nil {
		cancel()
	}
}

// Done closes when the connect/read loop has fully stopped.
func (ch *Channel) Done() <-chan struct{} {
	return ch.done
}

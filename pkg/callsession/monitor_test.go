package callsession

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRead struct {
	data []byte
	err  error
}

// fakeConn feeds scripted reads to the channel's read loop.
type fakeConn struct {
	reads  chan fakeRead
	closed chan struct{}
	once   sync.Once
}

func newFakeConn(reads ...fakeRead) *fakeConn {
	c := &fakeConn{reads: make(chan fakeRead, len(reads)+1), closed: make(chan struct{})}
	for _, r := range reads {
		c.reads <- r
	}
	return c
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case r := <-c.reads:
		return websocket.TextMessage, r.data, r.err
	case <-c.closed:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error { return nil }

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

var errAbnormal = errors.New("connection reset")

func normalClose() fakeRead {
	return fakeRead{err: &websocket.CloseError{Code: websocket.CloseNormalClosure}}
}

// channelHarness collects callback activity for assertions.
type channelHarness struct {
	mu          sync.Mutex
	messages    []MonitorMessage
	errors      []error
	connects    int32
	disconnects int32
}

func (h *channelHarness) callbacks() ChannelCallbacks {
	return ChannelCallbacks{
		OnMessage: func(msg MonitorMessage) {
			h.mu.Lock()
			h.messages = append(h.messages, msg)
			h.mu.Unlock()
		},
		OnError: func(err error) {
			h.mu.Lock()
			h.errors = append(h.errors, err)
			h.mu.Unlock()
		},
		OnConnect:    func() { atomic.AddInt32(&h.connects, 1) },
		OnDisconnect: func() { atomic.AddInt32(&h.disconnects, 1) },
	}
}

func (h *channelHarness) errorCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.errors)
}

func waitDone(t *testing.T, ch *Channel) {
	t.Helper()
	select {
	case <-ch.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not stop in time")
	}
}

func TestChannelStopsAfterRetryLimit(t *testing.T) {
	h := &channelHarness{}
	ch := NewChannel("ws://unreachable.test", h.callbacks(), nil, nil)

	var dials int32
	ch.dial = func(ctx context.Context, url string) (wsConn, error) {
		atomic.AddInt32(&dials, 1)
		return nil, errors.New("dial refused")
	}
	var delays []time.Duration
	ch.wait = func(ctx context.Context, d time.Duration) bool {
		delays = append(delays, d)
		return true
	}

	ch.Open(context.Background())
	waitDone(t, ch)

	// Initial dial plus three reconnect attempts, then give up.
	assert.Equal(t, int32(4), atomic.LoadInt32(&dials))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, delays)
	require.Equal(t, 1, h.errorCount(), "exhausting the retry limit surfaces exactly one error")
	assert.Contains(t, h.errors[0].Error(), "max reconnection attempts reached")
}

func TestChannelNormalCloseDoesNotReconnect(t *testing.T) {
	h := &channelHarness{}
	ch := NewChannel("ws://test", h.callbacks(), nil, nil)

	var dials int32
	ch.dial = func(ctx context.Context, url string) (wsConn, error) {
		atomic.AddInt32(&dials, 1)
		return newFakeConn(normalClose()), nil
	}
	ch.wait = func(ctx context.Context, d time.Duration) bool { return true }

	ch.Open(context.Background())
	waitDone(t, ch)

	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
	assert.Equal(t, int32(1), atomic.LoadInt32(&h.connects))
	assert.Equal(t, int32(1), atomic.LoadInt32(&h.disconnects))
	assert.Zero(t, h.errorCount())
}

func TestChannelReconnectsOnAbnormalClose(t *testing.T) {
	h := &channelHarness{}
	ch := NewChannel("ws://test", h.callbacks(), nil, nil)

	var dials int32
	ch.dial = func(ctx context.Context, url string) (wsConn, error) {
		n := atomic.AddInt32(&dials, 1)
		if n == 1 {
			return newFakeConn(fakeRead{err: errAbnormal}), nil
		}
		return newFakeConn(normalClose()), nil
	}
	ch.wait = func(ctx context.Context, d time.Duration) bool { return true }

	ch.Open(context.Background())
	waitDone(t, ch)

	assert.Equal(t, int32(2), atomic.LoadInt32(&dials))
	assert.Equal(t, int32(2), atomic.LoadInt32(&h.connects))
	assert.Equal(t, int32(2), atomic.LoadInt32(&h.disconnects))
	assert.Zero(t, h.errorCount())
}

func TestChannelDispatch(t *testing.T) {
	h := &channelHarness{}
	level := `{"type":"audio","level":0.6}`
	transcript := `{"type":"transcript","role":"assistant","text":"hello"}`
	status := `{"type":"status","status":"in-progress"}`
	unknown := `{"type":"heartbeat"}`

	ch := NewChannel("ws://test", h.callbacks(), nil, nil)
	ch.dial = func(ctx context.Context, url string) (wsConn, error) {
		return newFakeConn(
			fakeRead{data: []byte(level)},
			fakeRead{data: []byte(transcript)},
			fakeRead{data: []byte(status)},
			fakeRead{data: []byte(unknown)},
			normalClose(),
		), nil
	}
	ch.wait = func(ctx context.Context, d time.Duration) bool { return true }

	ch.Open(context.Background())
	waitDone(t, ch)

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.messages, 3, "unknown message kinds are dropped silently")
	require.NotNil(t, h.messages[0].Level)
	assert.InDelta(t, 0.6, *h.messages[0].Level, 1e-9)
	assert.Equal(t, "hello", h.messages[1].Text)
	assert.Equal(t, "in-progress", string(h.messages[2].Status))
}

func TestChannelMalformedPayloadsSurfaceLocally(t *testing.T) {
	h := &channelHarness{}
	ch := NewChannel("ws://test", h.callbacks(), nil, nil)
	ch.dial = func(ctx context.Context, url string) (wsConn, error) {
		return newFakeConn(
			fakeRead{data: []byte("{not json")},
			fakeRead{data: []byte(`{"role":"user","text":"no type"}`)},
			fakeRead{data: []byte(`{"type":"transcript","role":"user","text":"still alive"}`)},
			normalClose(),
		), nil
	}
	ch.wait = func(ctx context.Context, d time.Duration) bool { return true }

	ch.Open(context.Background())
	waitDone(t, ch)

	h.mu.Lock()
	defer h.mu.Unlock()
	// Both payloads are bad but arrive within one cooldown window, so only
	// the first surfaces. The channel keeps reading either way.
	assert.Equal(t, 1, len(h.errors))
	require.Len(t, h.messages, 1)
	assert.Equal(t, "still alive", h.messages[0].Text)
}

func TestChannelErrorRateLimit(t *testing.T) {
	h := &channelHarness{}
	ch := NewChannel("ws://test", h.callbacks(), nil, nil)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ch.now = func() time.Time { return current }

	ch.emitError(errors.New("first"))
	ch.emitError(errors.New("suppressed"))
	assert.Equal(t, 1, h.errorCount())

	current = current.Add(ErrorCooldown)
	ch.emitError(errors.New("second window"))
	assert.Equal(t, 2, h.errorCount())
}

func TestChannelCloseIdempotent(t *testing.T) {
	h := &channelHarness{}
	ch := NewChannel("ws://test", h.callbacks(), nil, nil)
	ch.dial = func(ctx context.Context, url string) (wsConn, error) {
		return newFakeConn(), nil
	}
	ch.wait = func(ctx context.Context, d time.Duration) bool { return true }

	ch.Open(context.Background())
	// Let the read loop attach before closing.
	require.Eventually(t, ch.IsConnected, time.Second, 5*time.Millisecond)

	ch.Close()
	ch.Close()
	waitDone(t, ch)

	assert.False(t, ch.IsConnected())
	assert.Zero(t, h.errorCount())
}

func TestChannelAgainstWebsocketServer(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"transcript","role":"user","text":"over the wire"}`)))
		deadline := time.Now().Add(time.Second)
		require.NoError(t, conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline))
		// Wait for the close handshake so the client sees a normal close.
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	h := &channelHarness{}
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ch := NewChannel(url, h.callbacks(), nil, nil)
	ch.Open(context.Background())
	waitDone(t, ch)

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.messages, 1)
	assert.Equal(t, "over the wire", h.messages[0].Text)
	assert.Zero(t, len(h.errors))
}

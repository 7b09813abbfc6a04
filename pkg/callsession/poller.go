package callsession

import (
	"context"
	"time"

	"github.com/coldline-crm/coldline/pkg/provider"
	"go.uber.org/zap"
)

const (
	// DefaultPollInterval is the fixed status polling interval.
	DefaultPollInterval = 2 * time.Second

	// MaxConsecutivePollFailures is how many back-to-back poll failures
	// are tolerated before one error is escalated to the caller.
	MaxConsecutivePollFailures = 3
)

// CallFetcher fetches a call status snapshot.
type CallFetcher interface {
	GetCall(ctx context.Context, callID string) (*provider.Call, error)
}

// Poller requests a call's status at a fixed interval until the call
// reaches a terminal state or the context is cancelled. A single
// transient failure is swallowed and the poller continues on the next
// tick; MaxConsecutivePollFailures back-to-back failures escalate one
// error without stopping the poller.
type Poller struct {
	fetcher  CallFetcher
	callID   string
	interval time.Duration
	onUpdate func(*provider.Call)
	onError  func(error)
	logger   *zap.Logger
}

// NewPoller creates a poller for one call. interval <= 0 uses the
// default.
func NewPoller(fetcher CallFetcher, callID string, interval time.Duration,
	onUpdate func(*provider.Call), onError func(error), logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		fetcher:  fetcher,
		callID:   callID,
		interval: interval,
		onUpdate: onUpdate,
		onError:  onError,
		logger:   logger,
	}
}

// Run blocks until terminal status or cancellation. Callers run it in its
// own goroutine; cancellation is idempotent via the context.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		call, err := p.fetcher.GetCall(ctx, p.callID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			p.logger.Debug("poll tick failed",
				zap.String("callId", p.callID),
				zap.Int("consecutiveFailures", failures),
				zap.Error(err))
			if failures == MaxConsecutivePollFailures && p.onError != nil {
				p.onError(err)
			}
			continue
		}

		failures = 0
		if p.onUpdate != nil {
			p.onUpdate(call)
		}
		if call.Status.Terminal() {
			return
		}
	}
}

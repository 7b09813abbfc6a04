// Package calllog persists the outcome of a finished call session into
// the record store: a call log entry, client and campaign counter
// updates, and a best-effort customer contact flag.
package calllog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coldline-crm/coldline/internal/models"
	"github.com/coldline-crm/coldline/internal/store"
	"github.com/coldline-crm/coldline/pkg/provider"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// loggedSessions bounds how many session ids the duplicate guard
// remembers. Old entries age out; the unique index on the provider call
// id backstops the guard.
const loggedSessions = 1024

// Record carries everything the persister needs about one finished call.
type Record struct {
	ClientID   string
	CampaignID string
	AgentID    string
	Customer   struct {
		Name  string
		Phone string
	}
	Call       *provider.Call
	Transcript []string
	Notes      string
}

// Persister writes call outcomes. LogCall runs at most once per session
// id: repeated invocations for the same session are no-ops.
type Persister struct {
	store  *store.Store
	logged *lru.Cache[string, struct{}]
	logger *zap.Logger
}

// NewPersister 创建呼叫记录持久化器
func NewPersister(s *store.Store, logger *zap.Logger) (*Persister, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	guard, err := lru.New[string, struct{}](loggedSessions)
	if err != nil {
		return nil, err
	}
	return &Persister{store: s, logged: guard, logger: logger}, nil
}

// answered reports whether the call actually reached a person: the call
// ended normally rather than being missed or hitting voicemail. This
// drives only the per-call outcome label; counter increments key on the
// final status alone (see LogCall).
func answered(call *provider.Call) bool {
	if call.Status != provider.StatusEnded {
		return false
	}
	reason := strings.ToLower(call.EndedReason)
	if strings.Contains(reason, "voicemail") {
		return false
	}
	switch {
	case strings.Contains(reason, "no-answer"),
		strings.Contains(reason, "busy"),
		strings.Contains(reason, "failed"),
		strings.Contains(reason, "error"):
		return false
	}
	return true
}

func voicemailLeft(call *provider.Call) bool {
	return strings.Contains(strings.ToLower(call.EndedReason), "voicemail")
}

func outcome(call *provider.Call) models.CallOutcome {
	switch {
	case voicemailLeft(call):
		return models.CallOutcomeVoicemail
	case answered(call):
		return models.CallOutcomeCompleted
	default:
		return models.CallOutcomeMissed
	}
}

// buildNotes assembles the stored note body: operator notes, then the
// transcript, then the call cost.
func buildNotes(rec *Record) string {
	var b strings.Builder
	b.WriteString(rec.Notes)
	if len(rec.Transcript) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Transcript:\n")
		b.WriteString(strings.Join(rec.Transcript, "\n"))
	}
	if rec.Call.Cost > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fmt.Sprintf("Call Cost: $%.2f", rec.Call.Cost))
	}
	return b.String()
}

// LogCall persists the finished call. Each persistence step is attempted
// independently even when an earlier one fails; the returned error joins
// every step failure. Nothing is rolled back: a partial write stays.
func (p *Persister) LogCall(ctx context.Context, rec *Record) error {
	if rec == nil || rec.Call == nil {
		return errors.New("calllog: nil record")
	}
	sessionID := rec.Call.ID
	if sessionID == "" {
		return errors.New("calllog: record has no session id")
	}
	if _, dup := p.logged.Get(sessionID); dup {
		p.logger.Debug("call already logged, skipping", zap.String("sessionId", sessionID))
		return nil
	}
	p.logged.Add(sessionID, struct{}{})

	call := rec.Call
	// Counters count every call that reached "ended", voicemail and
	// unanswered outcomes included; only the outcome label distinguishes
	// them.
	ended := call.Status == provider.StatusEnded
	wasVoicemail := voicemailLeft(call)
	notes := buildNotes(rec)
	now := time.Now()

	var errs []error

	entry := &models.CallLog{
		CampaignID:     rec.CampaignID,
		ClientID:       rec.ClientID,
		Name:           rec.Customer.Name,
		Phone:          rec.Customer.Phone,
		Status:         string(call.Status),
		ProviderCallID: sessionID,
		DateTime:       now.Format(time.RFC3339),
		CallType:       models.CallTypeOutgoing,
		CallStatus:     outcome(call),
		Duration:       call.Duration(),
		VoicemailLeft:  wasVoicemail,
		CallNotes:      notes,
		LastContact:    models.DateOnly(now),
		ImportTime:     now.Format(time.RFC3339),
		AgentID:        rec.AgentID,
	}
	if err := p.store.CreateCallLog(ctx, entry); err != nil {
		errs = append(errs, fmt.Errorf("create call log: %w", err))
	}

	if rec.ClientID != "" {
		if err := p.store.ApplyClientCallOutcome(ctx, rec.ClientID, ended, wasVoicemail); err != nil {
			errs = append(errs, fmt.Errorf("update client counters: %w", err))
		}
	}

	if rec.CampaignID != "" {
		if err := p.store.ApplyCampaignCallOutcome(ctx, rec.CampaignID, ended, call.Cost); err != nil {
			errs = append(errs, fmt.Errorf("update campaign counters: %w", err))
		}
	}

	if err := p.store.MarkCustomerContacted(ctx, rec.Customer.Phone, notes); err != nil {
		errs = append(errs, fmt.Errorf("mark customer contacted: %w", err))
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		p.logger.Error("call log persistence incomplete",
			zap.String("sessionId", sessionID),
			zap.Int("failedSteps", len(errs)),
			zap.Error(err))
		return err
	}

	p.logger.Info("call logged",
		zap.String("sessionId", sessionID),
		zap.String("outcome", string(entry.CallStatus)),
		zap.Int("duration", entry.Duration))
	return nil
}

package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/coldline-crm/coldline/pkg/calllog"
	"github.com/coldline-crm/coldline/pkg/callsession"
	"github.com/coldline-crm/coldline/pkg/events"
	"github.com/coldline-crm/coldline/pkg/provider"
	"github.com/coldline-crm/coldline/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// sessionRegistry tracks live coordinators by session id so later
// requests can inspect or end them.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*callsession.Coordinator
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*callsession.Coordinator)}
}

func (r *sessionRegistry) put(id string, c *callsession.Coordinator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = c
}

func (r *sessionRegistry) get(id string) (*callsession.Coordinator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sessions[id]
	return c, ok
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// startCallRequest 发起外呼请求体
type startCallRequest struct {
	PhoneNumber  string   `json:"phoneNumber" binding:"required"`
	ClientID     string   `json:"clientId"`
	CampaignID   string   `json:"campaignId"`
	AgentID      string   `json:"agentId"`
	CustomerName string   `json:"customerName"`
	Notes        string   `json:"notes"`
	History      []string `json:"history"`
}

// StartCall launches an outbound call session. The coordinator's end
// hook persists the call log and publishes call.ended on the bus, plus
// call.logged when persistence succeeded.
func (h *Handlers) StartCall(c *gin.Context) {
	var req startCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var coord *callsession.Coordinator
	coord = callsession.NewCoordinator(h.provider, callsession.Options{
		PollInterval:      h.cfg.PollInterval,
		TranscriptMarkers: h.cfg.TranscriptMarkers,
		OnStart: func(sessionID string) {
			// Register before the poller launches so the end hook's
			// removal can never precede registration.
			h.sessions.put(sessionID, coord)
			h.bus.Publish(events.Event{
				Type:   events.EventCallStarted,
				Source: "handler.calls",
				Data: map[string]interface{}{
					"sessionId": sessionID,
					"phone":     req.PhoneNumber,
					"clientId":  req.ClientID,
				},
			})
		},
		OnEnd: func(final *provider.Call) {
			h.finishSession(final, &req, coord)
		},
	}, h.logger)

	sessionID, err := coord.Start(c.Request.Context(), req.PhoneNumber, req.History)
	if err != nil {
		status := http.StatusBadGateway
		if provider.IsValidationError(err) {
			status = http.StatusBadRequest
		} else if provider.IsConfigError(err) {
			status = http.StatusServiceUnavailable
		}
		response.FailWithStatus(c, status, err.Error())
		return
	}

	response.Ok(c, gin.H{"sessionId": sessionID, "state": coord.State()})
}

// finishSession runs once per terminated session. Persistence failures
// are logged; the session still leaves the registry.
func (h *Handlers) finishSession(final *provider.Call, req *startCallRequest, coord *callsession.Coordinator) {
	rec := &calllog.Record{
		ClientID:   req.ClientID,
		CampaignID: req.CampaignID,
		AgentID:    req.AgentID,
		Call:       final,
		Transcript: coord.TranscriptLines(),
		Notes:      req.Notes,
	}
	rec.Customer.Name = req.CustomerName
	rec.Customer.Phone = req.PhoneNumber

	ctx := context.Background()
	if err := h.persister.LogCall(ctx, rec); err != nil {
		h.logger.Error("persist call outcome failed",
			zap.String("sessionId", final.ID), zap.Error(err))
	} else {
		h.bus.Publish(events.Event{
			Type:   events.EventCallLogged,
			Source: "handler.calls",
			Data: map[string]interface{}{
				"sessionId":  final.ID,
				"clientId":   req.ClientID,
				"campaignId": req.CampaignID,
			},
		})
	}

	h.bus.Publish(events.Event{
		Type:   events.EventCallEnded,
		Source: "handler.calls",
		Data: map[string]interface{}{
			"sessionId":   final.ID,
			"phone":       req.PhoneNumber,
			"clientId":    req.ClientID,
			"campaignId":  req.CampaignID,
			"endedReason": final.EndedReason,
			"duration":    final.Duration(),
		},
	})

	h.sessions.remove(final.ID)
}

// GetCallSession returns the live view of an active session: state,
// transcript, and monitoring stats.
func (h *Handlers) GetCallSession(c *gin.Context) {
	id := c.Param("id")
	coord, ok := h.sessions.get(id)
	if !ok {
		response.FailWithStatus(c, http.StatusNotFound, "no such session")
		return
	}
	response.Ok(c, gin.H{
		"sessionId":  id,
		"state":      coord.State(),
		"transcript": coord.Transcript(),
		"stats":      coord.Stats(),
	})
}

// HangCallSession ends an active session. The session stays registered
// on failure so the request can be retried.
func (h *Handlers) HangCallSession(c *gin.Context) {
	id := c.Param("id")
	coord, ok := h.sessions.get(id)
	if !ok {
		response.FailWithStatus(c, http.StatusNotFound, "no such session")
		return
	}
	if err := coord.End(c.Request.Context()); err != nil {
		response.FailWithStatus(c, http.StatusBadGateway, err.Error())
		return
	}
	response.Ok(c, gin.H{"sessionId": id, "state": coord.State()})
}

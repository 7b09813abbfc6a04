package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Options{
		BaseURL:       baseURL,
		MonitorBase:   "ws://monitor.test",
		Token:         "test-token",
		AssistantID:   "assistant-1",
		PhoneNumberID: "phone-1",
	}, zap.NewNop())
}

func TestCreateCall(t *testing.T) {
	var received createCallRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/call", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(Call{ID: "call-123", Status: StatusQueued})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	call, err := client.CreateCall(context.Background(), "+61412345678", "")
	require.NoError(t, err)

	assert.Equal(t, "call-123", call.ID)
	assert.Equal(t, StatusQueued, call.Status)
	assert.Equal(t, "outboundPhoneCall", received.Type)
	assert.Equal(t, "phone-1", received.PhoneNumberID)
	assert.Equal(t, "assistant-1", received.AssistantID)
	assert.Equal(t, "+61412345678", received.Customer.Number)
	assert.Equal(t, "Call to +61412345678", received.Name)
	assert.Nil(t, received.AssistantOverrides)
}

func TestCreateCallWithHistoryContext(t *testing.T) {
	var received createCallRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(Call{ID: "call-123", Status: StatusQueued})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateCall(context.Background(), "+61412345678", "prior contact notes")
	require.NoError(t, err)

	require.NotNil(t, received.AssistantOverrides)
	require.Len(t, received.AssistantOverrides.Messages, 1)
	assert.Equal(t, "system", received.AssistantOverrides.Messages[0].Role)
	assert.Equal(t, "prior contact notes", received.AssistantOverrides.Messages[0].Content)
}

func TestCreateCallValidationBeforeNetwork(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateCall(context.Background(), "0412345678", "")
	assert.True(t, IsValidationError(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests), "invalid number must not reach the wire")
}

func TestCreateCallMissingCredentials(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL}, zap.NewNop())
	_, err := client.CreateCall(context.Background(), "+61412345678", "")
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), "VOICE_API_TOKEN")
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))

	client = NewClient(Options{BaseURL: srv.URL, Token: "t"}, zap.NewNop())
	_, err = client.CreateCall(context.Background(), "+61412345678", "")
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), "VOICE_ASSISTANT_ID")
}

func TestCreateCallMissingIDInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateCall(context.Background(), "+61412345678", "")
	require.Error(t, err)
	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestCreateCallAPIErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "assistant not found"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateCall(context.Background(), "+61412345678", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assistant not found")
}

func TestHangCall(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	require.NoError(t, client.HangCall(context.Background(), "call-123"))
	assert.Equal(t, "/call/call-123/hang", path)

	err := client.HangCall(context.Background(), "")
	assert.True(t, IsValidationError(err))
}

func TestGetCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/call/call-123", r.URL.Path)
		json.NewEncoder(w).Encode(Call{
			ID:          "call-123",
			Status:      StatusEnded,
			EndedReason: "customer-ended-call",
			Cost:        0.42,
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	call, err := client.GetCall(context.Background(), "call-123")
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, call.Status)
	assert.Equal(t, "customer-ended-call", call.EndedReason)
	assert.InDelta(t, 0.42, call.Cost, 1e-9)
	assert.True(t, call.Status.Terminal())
}

func TestMonitorURL(t *testing.T) {
	client := newTestClient("http://api.test")
	assert.Equal(t, "ws://monitor.test/call/call-9/monitor", client.MonitorURL("call-9"))
}

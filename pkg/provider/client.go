package provider

import (
	"context"
	"fmt"

	"github.com/carlmjohnson/requests"
	"go.uber.org/zap"
)

// Options 呼叫服务商客户端配置
type Options struct {
	BaseURL       string `json:"baseUrl" yaml:"base_url" env:"VOICE_API_BASE"`
	MonitorBase   string `json:"monitorBase" yaml:"monitor_base" env:"VOICE_MONITOR_BASE"`
	Token         string `json:"-" yaml:"token" env:"VOICE_API_TOKEN"`
	AssistantID   string `json:"assistantId" yaml:"assistant_id" env:"VOICE_ASSISTANT_ID"`
	PhoneNumberID string `json:"phoneNumberId" yaml:"phone_number_id" env:"VOICE_PHONE_NUMBER_ID"`
}

// Client is a thin REST client for the voice-calling provider.
type Client struct {
	opt    Options
	logger *zap.Logger
}

// NewClient creates a provider client. Credentials are checked per
// operation, not here, so a partially configured client can still serve
// read paths.
func NewClient(opt Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{opt: opt, logger: logger}
}

// checkCredentials returns a ConfigError naming the first missing required
// credential.
func (c *Client) checkCredentials(needAssistant bool) error {
	if c.opt.Token == "" {
		return &ConfigError{Missing: "VOICE_API_TOKEN"}
	}
	if needAssistant {
		if c.opt.AssistantID == "" {
			return &ConfigError{Missing: "VOICE_ASSISTANT_ID"}
		}
		if c.opt.PhoneNumberID == "" {
			return &ConfigError{Missing: "VOICE_PHONE_NUMBER_ID"}
		}
	}
	return nil
}

type createCallRequest struct {
	Type               string              `json:"type"`
	PhoneNumberID      string              `json:"phoneNumberId"`
	Customer           Customer            `json:"customer"`
	AssistantID        string              `json:"assistantId"`
	Name               string              `json:"name"`
	AssistantOverrides *assistantOverrides `json:"assistantOverrides,omitempty"`
}

type assistantOverrides struct {
	Messages []overrideMessage `json:"messages"`
}

type overrideMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiError struct {
	Message string `json:"message"`
}

// CreateCall places an outbound call. The phone number is validated before
// any network I/O; credential and validation failures never reach the
// wire.
func (c *Client) CreateCall(ctx context.Context, phoneNumber, historyContext string) (*Call, error) {
	if err := c.checkCredentials(true); err != nil {
		return nil, err
	}
	if err := ValidatePhoneNumber(phoneNumber); err != nil {
		return nil, err
	}

	body := createCallRequest{
		Type:          "outboundPhoneCall",
		PhoneNumberID: c.opt.PhoneNumberID,
		Customer:      Customer{Number: phoneNumber},
		AssistantID:   c.opt.AssistantID,
		Name:          "Call to " + phoneNumber,
	}
	if historyContext != "" {
		body.AssistantOverrides = &assistantOverrides{
			Messages: []overrideMessage{{Role: "system", Content: historyContext}},
		}
	}

	var call Call
	var apiErr apiError
	err := requests.
		URL(c.opt.BaseURL).
		Path("/call").
		Bearer(c.opt.Token).
		BodyJSON(&body).
		ToJSON(&call).
		ErrorJSON(&apiErr).
		Fetch(ctx)
	if err != nil {
		c.logger.Error("create call failed",
			zap.String("phoneNumber", phoneNumber),
			zap.String("apiMessage", apiErr.Message),
			zap.Error(err))
		return nil, &APIError{Op: "create", Err: wrapAPIMessage(err, apiErr)}
	}
	// Fail closed on malformed responses.
	if call.ID == "" {
		return nil, &APIError{Op: "create", Err: fmt.Errorf("response missing call id")}
	}

	c.logger.Info("call created",
		zap.String("callId", call.ID),
		zap.String("status", string(call.Status)))
	return &call, nil
}

// HangCall asks the provider to terminate an in-flight call.
func (c *Client) HangCall(ctx context.Context, callID string) error {
	if callID == "" {
		return &ValidationError{Reason: "call id is required"}
	}
	if err := c.checkCredentials(false); err != nil {
		return err
	}

	var apiErr apiError
	err := requests.
		URL(c.opt.BaseURL).
		Pathf("/call/%s/hang", callID).
		Post().
		Bearer(c.opt.Token).
		ErrorJSON(&apiErr).
		Fetch(ctx)
	if err != nil {
		c.logger.Error("hang call failed",
			zap.String("callId", callID),
			zap.String("apiMessage", apiErr.Message),
			zap.Error(err))
		return &APIError{Op: "hang", Err: wrapAPIMessage(err, apiErr)}
	}
	return nil
}

// GetCall fetches the current status snapshot of a call, including its
// message list, cost and ended reason.
func (c *Client) GetCall(ctx context.Context, callID string) (*Call, error) {
	if callID == "" {
		return nil, &ValidationError{Reason: "call id is required"}
	}
	if err := c.checkCredentials(false); err != nil {
		return nil, err
	}

	var call Call
	var apiErr apiError
	err := requests.
		URL(c.opt.BaseURL).
		Pathf("/call/%s", callID).
		Bearer(c.opt.Token).
		ToJSON(&call).
		ErrorJSON(&apiErr).
		Fetch(ctx)
	if err != nil {
		return nil, &APIError{Op: "status", Err: wrapAPIMessage(err, apiErr)}
	}
	if call.ID == "" {
		return nil, &APIError{Op: "status", Err: fmt.Errorf("response missing call id")}
	}
	return &call, nil
}

// MonitorURL returns the push-channel endpoint for a call.
func (c *Client) MonitorURL(callID string) string {
	return fmt.Sprintf("%s/call/%s/monitor", c.opt.MonitorBase, callID)
}

func wrapAPIMessage(err error, apiErr apiError) error {
	if apiErr.Message != "" {
		return fmt.Errorf("%s: %w", apiErr.Message, err)
	}
	return err
}

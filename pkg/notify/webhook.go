// Package notify pushes lifecycle events to an external webhook.
package notify

import (
	"time"

	"github.com/coldline-crm/coldline/pkg/events"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookNotifier POSTs call lifecycle events as JSON to a configured URL.
type WebhookNotifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewWebhookNotifier 创建 Webhook 通知器
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second)
	return &WebhookNotifier{client: client, url: url, logger: logger}
}

// SubscribeTo registers the notifier for call.ended events on the bus.
// With no URL configured the notifier stays inert.
func (n *WebhookNotifier) SubscribeTo(bus *events.EventBus) {
	if n.url == "" {
		return
	}
	bus.Subscribe(events.EventCallEnded, n.handle)
}

func (n *WebhookNotifier) handle(event events.Event) error {
	resp, err := n.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(n.url)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.String("url", n.url), zap.Error(err))
		return err
	}
	if resp.IsError() {
		n.logger.Warn("webhook returned error status",
			zap.String("url", n.url),
			zap.Int("status", resp.StatusCode()))
	}
	return nil
}

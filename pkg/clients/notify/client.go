// Package notify posts admin event notifications to an optional webhook.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Event describes a destructive admin action worth broadcasting.
type Event struct {
	Event      string    `json:"event"`
	ActorID    string    `json:"actor_id"`
	Detail     string    `json:"detail"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Client publishes admin events.
type Client interface {
	Publish(ctx context.Context, event Event) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookClient builds a webhook publisher for the given URL.
func NewWebhookClient(url string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		url:        url,
	}
}

// Publish delivers the event with a single POST.
func (c *WebhookClient) Publish(ctx context.Context, event Event) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post admin event: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("admin webhook rejected event: status=%d", resp.StatusCode())
	}

	return nil
}

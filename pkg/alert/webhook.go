package alert

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"
)

// EventCategoryEntered is the event name of generic webhook deliveries.
const EventCategoryEntered = "keywords.category_entered"

// Webhook POSTs the notification as JSON to any endpoint. With a secret the
// body is signed in the X-Signature-256 header.
type Webhook struct {
	client *http.Client
	url    string
	secret string
}

// NewWebhook creates a new generic webhook notifier.
func NewWebhook(url, secret string) *Webhook {
	return &Webhook{client: newClient(), url: url, secret: secret}
}

func (w *Webhook) Name() string { return "webhook" }

type webhookPayload struct {
	Event  string    `json:"event"`
	SentAt time.Time `json:"sent_at"`
	*Notification
}

func (w *Webhook) Send(ctx context.Context, n *Notification) error {
	payload := webhookPayload{
		Event:        EventCategoryEntered,
		SentAt:       time.Now().UTC(),
		Notification: n,
	}

	var sign func(*http.Request, []byte)
	if w.secret != "" {
		sign = func(req *http.Request, body []byte) {
			req.Header.Set("X-Signature-256", "sha256="+Sign(w.secret, body))
		}
	}
	return postJSON(ctx, w.client, "webhook", w.url, payload, sign)
}

// Sign returns the hex HMAC-SHA256 of body, the value receivers compare
// against X-Signature-256.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

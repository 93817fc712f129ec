package alert

import (
	"context"
	"fmt"
	"net/http"
)

// Slack posts Block Kit messages to an incoming webhook.
type Slack struct {
	client     *http.Client
	webhookURL string
}

// NewSlack creates a new Slack notifier.
func NewSlack(webhookURL string) *Slack {
	return &Slack{client: newClient(), webhookURL: webhookURL}
}

func (s *Slack) Name() string { return "slack" }

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

func (s *Slack) Send(ctx context.Context, n *Notification) error {
	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: "📈 " + n.Title}},
		{Type: "section", Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("*%s*: %s", n.Category, n.Body)}},
	}

	if lines := keywordLines(n, "*%s* %s searches, %s"); len(lines) > 0 {
		ctxBlock := slackBlock{Type: "context"}
		for _, l := range lines {
			ctxBlock.Elements = append(ctxBlock.Elements, slackText{Type: "mrkdwn", Text: l})
		}
		blocks = append(blocks, ctxBlock)
	}

	return postJSON(ctx, s.client, "slack webhook", s.webhookURL, map[string]any{"blocks": blocks}, nil)
}

package alert

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// embedColor is the accent bar of Discord embeds.
const embedColor = 0x2E86DE

// Discord posts embeds to a Discord channel webhook.
type Discord struct {
	client     *http.Client
	webhookURL string
}

// NewDiscord creates a new Discord notifier.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{client: newClient(), webhookURL: webhookURL}
}

func (d *Discord) Name() string { return "discord" }

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

func (d *Discord) Send(ctx context.Context, n *Notification) error {
	desc := fmt.Sprintf("**%s**: %s", n.Category, n.Body)
	if lines := keywordLines(n, "• **%s** %s searches, %s"); len(lines) > 0 {
		desc += "\n\n" + strings.Join(lines, "\n")
	}

	payload := struct {
		Embeds []discordEmbed `json:"embeds"`
	}{
		Embeds: []discordEmbed{{
			Title:       "📈 " + n.Title,
			Description: desc,
			Color:       embedColor,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}},
	}
	return postJSON(ctx, d.client, "discord webhook", d.webhookURL, payload, nil)
}

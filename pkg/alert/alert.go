package alert

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/elonfeng/kwradar/pkg/keyword"
	"github.com/elonfeng/kwradar/pkg/lifecycle"
)

// MessageLimit is how many keywords chat notifiers list in a message body.
const MessageLimit = 5

// Notification is the data sent to alert destinations: the keywords that
// entered one watched category during an analysis run.
type Notification struct {
	Title    string             `json:"title"`
	Body     string             `json:"body"`
	Category lifecycle.Category `json:"category"`
	Keywords []keyword.Record   `json:"keywords"`
}

// NewNotification builds a notification for keywords newly in category,
// ordered by search volume, largest first.
func NewNotification(category lifecycle.Category, records []keyword.Record) *Notification {
	sorted := make([]keyword.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SearchVolume > sorted[j].SearchVolume
	})

	noun := "keywords"
	if len(sorted) == 1 {
		noun = "keyword"
	}
	return &Notification{
		Title:    fmt.Sprintf("%d %s entered %s", len(sorted), noun, category),
		Body:     category.Description(),
		Category: category,
		Keywords: sorted,
	}
}

// Top returns at most limit keywords of the notification.
func (n *Notification) Top(limit int) []keyword.Record {
	if len(n.Keywords) < limit {
		return n.Keywords
	}
	return n.Keywords[:limit]
}

// Growth formats a record's growth for chat messages, YoY first.
func Growth(r *keyword.Record) string {
	switch {
	case r.YoYChange.Valid:
		return fmt.Sprintf("%+.0f%% YoY", r.YoYChange.Float64)
	case r.ThreeMonthChange.Valid:
		return fmt.Sprintf("%+.0f%% 3M", r.ThreeMonthChange.Float64)
	}
	return "n/a"
}

func formatVolume(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	}
	return fmt.Sprintf("%.0f", math.Round(v))
}

// Notifier delivers alerts to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
	onSent    func(notifier string)
}

// NewManager creates a new alert manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// OnSent registers a callback run after every successful delivery.
func (m *Manager) OnSent(fn func(notifier string)) {
	m.onSent = fn
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers and reports how
// many delivered it. Failures are joined into the error.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) (int, error) {
	var errs []error
	delivered := 0
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
			continue
		}
		delivered++
		if m.onSent != nil {
			m.onSent(notifier.Name())
		}
	}
	return delivered, errors.Join(errs...)
}

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fridgevision"
	"fridgevision/inventory"
)

// ExpiryReporter posts a digest of soon-to-expire items to a channel.
type ExpiryReporter struct {
	slack   fridgevision.SlackClient
	channel string
	now     func() time.Time
}

func NewExpiryReporter(slack fridgevision.SlackClient, channel string) *ExpiryReporter {
	return &ExpiryReporter{
		slack:   slack,
		channel: channel,
		now:     time.Now,
	}
}

// Report sends one message listing the given items. No items means no
// message.
func (r *ExpiryReporter) Report(ctx context.Context, items []inventory.Item, windowDays int) error {
	if len(items) == 0 {
		slog.Info("NOTIFY: Nothing expiring; skipping report", "window_days", windowDays)
		return nil
	}

	msg := r.formatMessage(items, windowDays)
	if err := r.slack.PostMessage(ctx, r.channel, msg); err != nil {
		return fmt.Errorf("failed to send expiry report: %w", err)
	}
	slog.Info("NOTIFY: Expiry report sent", "items", len(items), "channel", r.channel)
	return nil
}

func (r *ExpiryReporter) formatMessage(items []inventory.Item, windowDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d item(s) expiring within %d day(s):\n", len(items), windowDays)

	now := r.now()
	for _, it := range items {
		fmt.Fprintf(&b, "• %s (%s", it.Name, it.Location)
		if it.Quantity != "" {
			fmt.Fprintf(&b, ", %s", it.Quantity)
			if it.Unit != "" {
				fmt.Fprintf(&b, " %s", it.Unit)
			}
		}
		if it.ExpiryDate != nil {
			days := int(it.ExpiryDate.Sub(now).Hours() / 24)
			if days < 0 {
				b.WriteString(", already expired")
			} else {
				fmt.Fprintf(&b, ", %d day(s) left", days)
			}
		}
		b.WriteString(")\n")
	}
	return b.String()
}

package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"fridgevision/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSlack struct {
	channel  string
	messages []string
	err      error
}

func (r *recordingSlack) PostMessage(ctx context.Context, channel string, message string) error {
	r.channel = channel
	r.messages = append(r.messages, message)
	return r.err
}

func TestExpiryReporter_Report(t *testing.T) {
	slack := &recordingSlack{}
	rep := NewExpiryReporter(slack, "#fridge")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rep.now = func() time.Time { return now }

	soon := now.AddDate(0, 0, 2)
	past := now.AddDate(0, 0, -1)
	items := []inventory.Item{
		{Name: "milk", Location: inventory.LocationFridge, Quantity: "1", Unit: "l", ExpiryDate: &soon},
		{Name: "yogurt", Location: inventory.LocationFridge, Quantity: "2", ExpiryDate: &past},
	}

	require.NoError(t, rep.Report(context.Background(), items, 3))
	require.Len(t, slack.messages, 1)

	msg := slack.messages[0]
	assert.Equal(t, "#fridge", slack.channel)
	assert.Contains(t, msg, "2 item(s) expiring within 3 day(s)")
	assert.Contains(t, msg, "milk (Fridge, 1 l, 2 day(s) left)")
	assert.Contains(t, msg, "yogurt (Fridge, 2, already expired)")
}

func TestExpiryReporter_NothingToReport(t *testing.T) {
	slack := &recordingSlack{}
	rep := NewExpiryReporter(slack, "#fridge")

	require.NoError(t, rep.Report(context.Background(), nil, 3))
	assert.Empty(t, slack.messages, "no message when nothing expires")
}

func TestExpiryReporter_SlackFailure(t *testing.T) {
	slack := &recordingSlack{err: errors.New("webhook gone")}
	rep := NewExpiryReporter(slack, "#fridge")

	soon := time.Now().Add(24 * time.Hour)
	err := rep.Report(context.Background(), []inventory.Item{{Name: "milk", ExpiryDate: &soon}}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send expiry report")
}

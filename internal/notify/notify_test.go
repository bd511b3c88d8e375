package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationsStackIndependently(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	center := New(WithClock(func() time.Time { return clock }))

	center.Success("Income added successfully!")
	center.Error("Failed to delete expense")
	center.Info("Report generated")

	active := center.Active()
	require.Len(t, active, 3, "messages stack, they do not replace each other")
	assert.Equal(t, SeveritySuccess, active[0].Severity)
	assert.Equal(t, SeverityError, active[1].Severity)
	assert.Equal(t, "Report generated", active[2].Message)
}

func TestNotificationsExpireIndividually(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	center := New(WithClock(func() time.Time { return clock }))

	center.Success("first")
	clock = clock.Add(2 * time.Second)
	center.Success("second")

	// 1.5s later the first (3s TTL, 3.5s old) is gone, the second stays.
	clock = clock.Add(1500 * time.Millisecond)
	active := center.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "second", active[0].Message)

	clock = clock.Add(2 * time.Second)
	assert.Empty(t, center.Active())
}

func TestSinkReceivesEveryNotification(t *testing.T) {
	var seen []Notification
	center := New(WithSink(func(n Notification) { seen = append(seen, n) }))

	center.Error("Network error")
	center.Success("Settings saved successfully!")

	require.Len(t, seen, 2)
	assert.Equal(t, "Network error", seen[0].Message)
	assert.Equal(t, SeveritySuccess, seen[1].Severity)
}

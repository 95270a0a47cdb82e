package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/remindkit/remindkit/internal/errors"
)

func TestBuildNotification(t *testing.T) {
	reminder := &ReminderInfo{
		RoomID:  "!room:example.org",
		Message: "buy **milk**",
		ReplyTo: "$cmd",
	}

	content := BuildNotification(reminder, "@alice:example.org")

	assert.Equal(t, event.MsgText, content.MsgType)
	assert.Equal(t, "@alice:example.org: buy **milk**", content.Body)
	assert.Equal(t, event.FormatHTML, content.Format)
	assert.Equal(t,
		`<a href="https://matrix.to/#/@alice:example.org">@alice:example.org</a>: <p>buy <strong>milk</strong></p>`,
		content.FormattedBody)

	require.NotNil(t, content.Mentions)
	assert.Equal(t, []id.UserID{"@alice:example.org"}, content.Mentions.UserIDs)

	require.NotNil(t, content.RelatesTo)
	require.NotNil(t, content.RelatesTo.InReplyTo)
	assert.Equal(t, id.EventID("$cmd"), content.RelatesTo.InReplyTo.EventID)
}

func TestBuildNotification_NoReply(t *testing.T) {
	reminder := &ReminderInfo{
		RoomID:  "!room:example.org",
		Message: "standup",
	}

	content := BuildNotification(reminder, "@alice:example.org")
	assert.Nil(t, content.RelatesTo)
}

func TestDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()
	notifier := NewMockNotifier()
	dispatcher := NewDispatcher(notifier, DefaultDispatcherConfig())

	reminder := &ReminderInfo{
		ID:        "rem-1",
		RoomID:    "!room:example.org",
		Message:   "water the plants",
		TriggerAt: time.Now(),
		Users: map[id.UserID]id.EventID{
			"@alice:example.org": "$cmd",
			"@bob:example.org":   "$react-1",
			"@carol:example.org": "$react-2",
		},
	}

	sent, err := dispatcher.Dispatch(ctx, reminder)
	require.NoError(t, err)
	require.Len(t, sent, 3)
	assert.Equal(t, 3, notifier.SentCount())

	// Every subscriber got their own notification event
	seen := make(map[id.EventID]bool)
	for _, user := range reminder.UserIDs() {
		eventID, ok := sent[user]
		require.True(t, ok, "no notification for %s", user)
		assert.False(t, seen[eventID], "event %s reused", eventID)
		seen[eventID] = true
	}
}

func TestDispatcher_Dispatch_Failure(t *testing.T) {
	ctx := context.Background()
	notifier := NewMockNotifier()
	notifier.ShouldFail = true
	dispatcher := NewDispatcher(notifier, DefaultDispatcherConfig())

	reminder := &ReminderInfo{
		ID:      "rem-1",
		RoomID:  "!room:example.org",
		Message: "water the plants",
		Users:   map[id.UserID]id.EventID{"@alice:example.org": "$cmd"},
	}

	sent, err := dispatcher.Dispatch(ctx, reminder)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDispatchFailed))
	assert.Empty(t, sent)
}

func TestDispatcher_Dispatch_NoNotifier(t *testing.T) {
	ctx := context.Background()
	dispatcher := NewDispatcher(nil, DefaultDispatcherConfig())

	_, err := dispatcher.Dispatch(ctx, &ReminderInfo{ID: "rem-1"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDispatchFailed))
}

func TestNewDispatcher_ZeroConfig(t *testing.T) {
	ctx := context.Background()
	notifier := NewMockNotifier()

	// Zero values fall back to the defaults instead of dividing by zero
	dispatcher := NewDispatcher(notifier, DispatcherConfig{})

	reminder := &ReminderInfo{
		ID:      "rem-1",
		RoomID:  "!room:example.org",
		Message: "standup",
		Users:   map[id.UserID]id.EventID{"@alice:example.org": "$cmd"},
	}

	sent, err := dispatcher.Dispatch(ctx, reminder)
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}

func TestDefaultDispatcherConfig(t *testing.T) {
	cfg := DefaultDispatcherConfig()
	assert.Equal(t, 10, cfg.MessagesPerSecond)
	assert.Equal(t, 20, cfg.Burst)
	assert.Equal(t, 4, cfg.MaxConcurrent)
}

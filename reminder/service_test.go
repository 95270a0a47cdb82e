package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maunium.net/go/mautrix/id"

	"github.com/remindkit/remindkit/internal/errors"
)

// testNow is a Wednesday, pinned so parsed trigger times are deterministic.
var testNow = time.Date(2024, 4, 10, 10, 30, 0, 0, time.UTC)

func newTestService(notifier Notifier) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	svc := NewService(store, notifier)
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(NewMockNotifier())

	reminder, err := svc.Create(ctx, &CreateRequest{
		RoomID:  "!room:example.org",
		EventID: "$cmd",
		Sender:  "@alice:example.org",
		Text:    "2d water the plants",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, reminder.ID)
	assert.Equal(t, id.RoomID("!room:example.org"), reminder.RoomID)
	assert.Equal(t, "water the plants", reminder.Message)
	assert.Equal(t, testNow.Add(48*time.Hour), reminder.TriggerAt)
	assert.Equal(t, time.UTC, reminder.TriggerAt.Location())
	assert.Equal(t, id.EventID("$cmd"), reminder.ReplyTo)

	// The sender is subscribed from the start
	assert.True(t, reminder.Subscribed("@alice:example.org"))
	assert.Equal(t, 1, store.Len())
}

func TestService_Create_MessageDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(NewMockNotifier())

	reminder, err := svc.Create(ctx, &CreateRequest{
		RoomID:  "!room:example.org",
		EventID: "$cmd",
		Sender:  "@alice:example.org",
		Text:    "2d",
	})
	require.NoError(t, err)
	assert.Equal(t, "Reminder", reminder.Message)
}

func TestService_Create_Timezone(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(NewMockNotifier())

	reminder, err := svc.Create(ctx, &CreateRequest{
		RoomID:   "!room:example.org",
		EventID:  "$cmd",
		Sender:   "@alice:example.org",
		Text:     "tomorrow at 09:00 standup",
		Timezone: "America/New_York",
	})
	require.NoError(t, err)

	// 09:00 Thursday in New York is 13:00 UTC during DST
	assert.Equal(t, time.Date(2024, 4, 11, 13, 0, 0, 0, time.UTC), reminder.TriggerAt)
	assert.Equal(t, "standup", reminder.Message)
}

func TestService_Create_InvalidTimezone(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(NewMockNotifier())

	_, err := svc.Create(ctx, &CreateRequest{
		RoomID:   "!room:example.org",
		EventID:  "$cmd",
		Sender:   "@alice:example.org",
		Text:     "2d water the plants",
		Timezone: "Mars/Olympus_Mons",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	assert.Contains(t, err.Error(), "not a valid time zone")
}

func TestService_Create_NoTime(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(NewMockNotifier())

	_, err := svc.Create(ctx, &CreateRequest{
		RoomID:  "!room:example.org",
		EventID: "$cmd",
		Sender:  "@alice:example.org",
		Text:    "buy milk",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	assert.Contains(t, err.Error(), "no time found")
}

func TestService_Create_PastTrigger(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(NewMockNotifier())

	// 09:00 has already passed on the pinned clock
	_, err := svc.Create(ctx, &CreateRequest{
		RoomID:  "!room:example.org",
		EventID: "$cmd",
		Sender:  "@alice:example.org",
		Text:    "today at 09:00 retro",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	assert.Contains(t, err.Error(), "past")
}

func TestService_Confirmation(t *testing.T) {
	svc, _ := newTestService(NewMockNotifier())

	near := &ReminderInfo{TriggerAt: testNow.Add(48 * time.Hour)}
	assert.Equal(t, "Reminding you in 2 days.", svc.Confirmation(near))

	far := &ReminderInfo{TriggerAt: time.Date(2024, 4, 25, 13, 0, 0, 0, time.UTC)}
	assert.Equal(t, "Reminding you at 13:00:00 UTC on Thursday, April 25 2024.", svc.Confirmation(far))
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(NewMockNotifier())

	reminder, err := svc.Create(ctx, &CreateRequest{
		RoomID:  "!room:example.org",
		EventID: "$cmd",
		Sender:  "@alice:example.org",
		Text:    "2d water the plants",
	})
	require.NoError(t, err)

	err = svc.Cancel(ctx, reminder.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())

	err = svc.Cancel(ctx, reminder.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestService_SubscribeUnsubscribe(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(NewMockNotifier())

	reminder, err := svc.Create(ctx, &CreateRequest{
		RoomID:  "!room:example.org",
		EventID: "$cmd",
		Sender:  "@alice:example.org",
		Text:    "2d water the plants",
	})
	require.NoError(t, err)

	err = svc.Subscribe(ctx, reminder.ID, "@bob:example.org", "$react")
	require.NoError(t, err)

	got, _ := svc.Get(ctx, reminder.ID)
	assert.True(t, got.Subscribed("@bob:example.org"))

	err = svc.Subscribe(ctx, reminder.ID, "@bob:example.org", "$react")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already subscribed")

	err = svc.Unsubscribe(ctx, reminder.ID, "@bob:example.org")
	require.NoError(t, err)

	err = svc.Unsubscribe(ctx, reminder.ID, "@bob:example.org")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not subscribed")

	err = svc.Subscribe(ctx, "missing", "@bob:example.org", "$react")
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestService_Upcoming(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(NewMockNotifier())

	_ = store.Create(ctx, &ReminderInfo{
		ID:        "past",
		RoomID:    "!room:example.org",
		TriggerAt: testNow.Add(-time.Hour),
	})
	_ = store.Create(ctx, &ReminderInfo{
		ID:        "soon",
		RoomID:    "!room:example.org",
		TriggerAt: testNow.Add(time.Hour),
	})
	_ = store.Create(ctx, &ReminderInfo{
		ID:        "later",
		RoomID:    "!room:example.org",
		TriggerAt: testNow.Add(2 * time.Hour),
	})

	all, err := svc.List(ctx, "!room:example.org")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	upcoming, err := svc.Upcoming(ctx, "!room:example.org")
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "soon", upcoming[0].ID)
	assert.Equal(t, "later", upcoming[1].ID)
}

func TestService_ProcessDue(t *testing.T) {
	ctx := context.Background()
	notifier := NewMockNotifier()
	svc, store := newTestService(notifier)

	due := &ReminderInfo{
		ID:        "due",
		RoomID:    "!room:example.org",
		Message:   "water the plants",
		TriggerAt: testNow.Add(-5 * time.Minute),
		Users: map[id.UserID]id.EventID{
			"@alice:example.org": "$cmd",
			"@bob:example.org":   "$react",
		},
	}
	require.NoError(t, store.Create(ctx, due))
	require.NoError(t, store.Create(ctx, &ReminderInfo{
		ID:        "future",
		RoomID:    "!room:example.org",
		TriggerAt: testNow.Add(time.Hour),
		Users:     map[id.UserID]id.EventID{"@alice:example.org": "$cmd"},
	}))

	processed, err := svc.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	// One notification per subscriber, then the reminder is gone
	assert.Equal(t, 2, notifier.SentCount())
	assert.Equal(t, 1, store.Len())
	_, err = store.Get(ctx, "future")
	assert.NoError(t, err)

	// Subscription events were replaced by notification events
	for user, eventID := range due.Users {
		assert.Contains(t, string(eventID), "$mock-", "user %s", user)
	}
}

func TestService_ProcessDue_Empty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(NewMockNotifier())

	processed, err := svc.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestService_ProcessDue_DispatchFailure(t *testing.T) {
	ctx := context.Background()
	notifier := NewMockNotifier()
	notifier.ShouldFail = true
	svc, store := newTestService(notifier)

	require.NoError(t, store.Create(ctx, &ReminderInfo{
		ID:        "due",
		RoomID:    "!room:example.org",
		Message:   "water the plants",
		TriggerAt: testNow.Add(-5 * time.Minute),
		Users:     map[id.UserID]id.EventID{"@alice:example.org": "$cmd"},
	}))

	processed, err := svc.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)

	// Failed reminders stay stored for the next cycle
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 0, notifier.SentCount())
}

func BenchmarkService_Create(b *testing.B) {
	ctx := context.Background()
	svc, _ := newTestService(NewMockNotifier())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := svc.Create(ctx, &CreateRequest{
			RoomID:  "!room:example.org",
			EventID: "$cmd",
			Sender:  "@alice:example.org",
			Text:    "2d water the plants",
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMemoryStore_GetDue(b *testing.B) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	for i := 0; i < 1000; i++ {
		_ = store.Create(ctx, &ReminderInfo{
			ID:        fmt.Sprintf("bench-%d", i),
			TriggerAt: now.Add(time.Duration(i-500) * time.Minute),
		})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := store.GetDue(ctx, now)
		if err != nil {
			b.Fatal(err)
		}
	}
}

package reminder

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/remindkit/remindkit/internal/errors"
	"github.com/remindkit/remindkit/internal/observability"
)

// DispatcherConfig controls notification fan-out.
type DispatcherConfig struct {
	MessagesPerSecond int // Send rate towards the homeserver
	Burst             int // Short burst allowance above the rate
	MaxConcurrent     int // Parallel sends per dispatch
}

// DefaultDispatcherConfig returns conservative fan-out defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		MessagesPerSecond: 10,
		Burst:             20,
		MaxConcurrent:     4,
	}
}

// Dispatcher builds per-user notification events for due reminders and
// sends them through a Notifier, throttled so a large audience does not
// flood the homeserver.
type Dispatcher struct {
	notifier  Notifier
	limiter   *rate.Limiter
	sendLimit int
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher around a notifier.
func NewDispatcher(notifier Notifier, config DispatcherConfig) *Dispatcher {
	if config.MessagesPerSecond <= 0 {
		config.MessagesPerSecond = 10
	}
	if config.Burst <= 0 {
		config.Burst = config.MessagesPerSecond
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 4
	}

	return &Dispatcher{
		notifier:  notifier,
		limiter:   rate.NewLimiter(rate.Every(time.Second/time.Duration(config.MessagesPerSecond)), config.Burst),
		sendLimit: config.MaxConcurrent,
		logger:    slog.Default(),
	}
}

// SetLogger sets a custom logger.
func (d *Dispatcher) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

// Dispatch sends one notification per subscribed user and returns the
// created event IDs keyed by user. On partial failure the map holds the
// sends that succeeded alongside the first error.
func (d *Dispatcher) Dispatch(ctx context.Context, reminder *ReminderInfo) (map[id.UserID]id.EventID, error) {
	if d.notifier == nil {
		return nil, errors.DispatchFailed("notifier not configured", nil)
	}

	var (
		mu   sync.Mutex
		sent = make(map[id.UserID]id.EventID, len(reminder.Users))
	)

	// Correlate sends with the scheduler cycle when one is active
	cycle, traced := observability.FromContext(ctx)
	if traced {
		cycle = cycle.ForRoom(string(reminder.RoomID))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.sendLimit)

	for _, user := range reminder.UserIDs() {
		g.Go(func() error {
			if err := d.limiter.Wait(ctx); err != nil {
				return err
			}

			content := BuildNotification(reminder, user)
			eventID, err := d.notifier.SendMessage(ctx, reminder.RoomID, content)
			if err != nil {
				return errors.DispatchFailed(fmt.Sprintf("notify %s", user), err)
			}

			mu.Lock()
			sent[user] = eventID
			mu.Unlock()

			if traced {
				cycle.Debug("notification sent",
					slog.String(observability.LogFieldReminderID, reminder.ID),
					slog.String(observability.LogFieldUserID, user.String()),
				)
			} else {
				d.logger.Debug("notification sent",
					"reminder_id", reminder.ID,
					"user_id", user,
					"event_id", eventID,
				)
			}
			return nil
		})
	}

	err := g.Wait()
	return sent, err
}

// BuildNotification renders the message event for one user: a plain
// text body plus a markdown-rendered HTML body with a mention pill,
// replying to the event that created the reminder.
func BuildNotification(reminder *ReminderInfo, user id.UserID) *event.MessageEventContent {
	html := reminder.Message
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(reminder.Message), &buf); err == nil {
		html = strings.TrimSpace(buf.String())
	}

	content := &event.MessageEventContent{
		MsgType:       event.MsgText,
		Body:          fmt.Sprintf("%s: %s", user, reminder.Message),
		Format:        event.FormatHTML,
		FormattedBody: fmt.Sprintf(`<a href="https://matrix.to/#/%s">%s</a>: %s`, user, user, html),
		Mentions:      &event.Mentions{UserIDs: []id.UserID{user}},
	}

	if reminder.ReplyTo != "" {
		content.RelatesTo = &event.RelatesTo{
			InReplyTo: &event.InReplyTo{EventID: reminder.ReplyTo},
		}
	}

	return content
}

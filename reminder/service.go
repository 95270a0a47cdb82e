package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/remindkit/remindkit/humantime"
	"github.com/remindkit/remindkit/internal/errors"
	"github.com/remindkit/remindkit/timeparse"
	"github.com/remindkit/remindkit/timezone"
)

// defaultMessage is used when a reminder is created with no text after
// the temporal expression.
const defaultMessage = "Reminder"

// Store defines the storage interface for reminders.
type Store interface {
	Create(ctx context.Context, reminder *ReminderInfo) error
	Get(ctx context.Context, reminderID string) (*ReminderInfo, error)
	GetByRoom(ctx context.Context, roomID id.RoomID) ([]*ReminderInfo, error)
	GetDue(ctx context.Context, before time.Time) ([]*ReminderInfo, error)
	Update(ctx context.Context, reminder *ReminderInfo) error
	Delete(ctx context.Context, reminderID string) error
}

// Notifier delivers a message event to a room and returns the created
// event's ID. The hosting bot plugs in its homeserver client here.
type Notifier interface {
	SendMessage(ctx context.Context, roomID id.RoomID, content *event.MessageEventContent) (id.EventID, error)
}

// CreateRequest carries everything needed to schedule a reminder from a
// chat command.
type CreateRequest struct {
	RoomID   id.RoomID
	EventID  id.EventID // the command event; notifications reply to it
	Sender   id.UserID
	Text     string // temporal expression followed by the message
	Timezone string // IANA name; empty keeps the service default
}

// Service provides reminder management on top of a Store and Notifier.
type Service struct {
	store      Store
	dispatcher *Dispatcher
	timezone   *time.Location
	now        func() time.Time
	logger     *slog.Logger
	mu         sync.Mutex // serializes ProcessDue cycles
}

// NewService creates a reminder service. The default reference timezone
// is UTC until SetTimezone is called.
func NewService(store Store, notifier Notifier) *Service {
	return &Service{
		store:      store,
		dispatcher: NewDispatcher(notifier, DefaultDispatcherConfig()),
		timezone:   time.UTC,
		now:        time.Now,
		logger:     slog.Default(),
	}
}

// SetTimezone sets the default timezone used to interpret temporal
// expressions when a request carries none.
func (s *Service) SetTimezone(loc *time.Location) {
	if loc != nil {
		s.timezone = loc
	}
}

// SetLogger sets a custom logger.
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
	s.dispatcher.SetLogger(logger)
}

// Create parses the request text and schedules a reminder. The sender
// is subscribed immediately; everything after the temporal expression
// becomes the reminder message.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*ReminderInfo, error) {
	loc, err := timezone.Resolve(req.Timezone)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = s.timezone
	}

	parser := timeparse.NewParser(loc).WithNow(s.now)
	rest, when := parser.Parse(strings.TrimSpace(req.Text))
	if when == nil {
		return nil, errors.InvalidArgumentf("no time found in %q", req.Text)
	}

	now := s.now()
	if when.Before(now) {
		return nil, errors.InvalidArgument("trigger time cannot be in the past")
	}

	message := strings.TrimSpace(rest)
	if message == "" {
		message = defaultMessage
	}

	reminder := &ReminderInfo{
		ID:        shortuuid.New(),
		RoomID:    req.RoomID,
		EventID:   req.EventID,
		Message:   message,
		TriggerAt: when.UTC(),
		ReplyTo:   req.EventID,
		Users:     map[id.UserID]id.EventID{req.Sender: req.EventID},
		CreatedAt: now.UTC(),
	}

	if err := s.store.Create(ctx, reminder); err != nil {
		return nil, err
	}

	s.logger.Info("reminder created",
		"reminder_id", reminder.ID,
		"room_id", reminder.RoomID,
		"trigger_at", reminder.TriggerAt,
	)

	return reminder, nil
}

// Confirmation renders the chat reply acknowledging a new reminder,
// e.g. "Reminding you in 2 days." for near targets or an absolute
// calendar phrase for far ones.
func (s *Service) Confirmation(reminder *ReminderInfo) string {
	return fmt.Sprintf("Reminding you %s.", humantime.Format(reminder.TriggerAt, s.now()))
}

// Cancel removes a pending reminder.
func (s *Service) Cancel(ctx context.Context, reminderID string) error {
	if err := s.store.Delete(ctx, reminderID); err != nil {
		return err
	}

	s.logger.Info("reminder cancelled", "reminder_id", reminderID)
	return nil
}

// Subscribe adds a user to an existing reminder's audience.
func (s *Service) Subscribe(ctx context.Context, reminderID string, user id.UserID, via id.EventID) error {
	reminder, err := s.store.Get(ctx, reminderID)
	if err != nil {
		return err
	}

	if !reminder.Subscribe(user, via) {
		return errors.InvalidArgumentf("%s is already subscribed to reminder %s", user, reminderID)
	}

	return s.store.Update(ctx, reminder)
}

// Unsubscribe removes a user from a reminder's audience.
func (s *Service) Unsubscribe(ctx context.Context, reminderID string, user id.UserID) error {
	reminder, err := s.store.Get(ctx, reminderID)
	if err != nil {
		return err
	}

	if !reminder.Unsubscribe(user) {
		return errors.InvalidArgumentf("%s is not subscribed to reminder %s", user, reminderID)
	}

	return s.store.Update(ctx, reminder)
}

// Get returns a single reminder.
func (s *Service) Get(ctx context.Context, reminderID string) (*ReminderInfo, error) {
	return s.store.Get(ctx, reminderID)
}

// List returns all reminders for a room, soonest first.
func (s *Service) List(ctx context.Context, roomID id.RoomID) ([]*ReminderInfo, error) {
	return s.store.GetByRoom(ctx, roomID)
}

// Upcoming returns the reminders for a room that have not fired yet.
func (s *Service) Upcoming(ctx context.Context, roomID id.RoomID) ([]*ReminderInfo, error) {
	reminders, err := s.store.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var upcoming []*ReminderInfo
	for _, r := range reminders {
		if !r.IsDue(now) {
			upcoming = append(upcoming, r)
		}
	}

	return upcoming, nil
}

// ProcessDue dispatches every reminder due at the current moment and
// removes it from the store. Reminders whose dispatch fails stay stored
// and are retried on the next cycle. Returns the number dispatched.
func (s *Service) ProcessDue(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	due, err := s.store.GetDue(ctx, now)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, r := range due {
		sent, err := s.dispatcher.Dispatch(ctx, r)
		for user, notification := range sent {
			r.RecordNotification(user, notification)
		}
		if err != nil {
			s.logger.Warn("reminder dispatch failed",
				"reminder_id", r.ID,
				"room_id", r.RoomID,
				"error", err,
			)
			continue
		}

		if err := s.store.Delete(ctx, r.ID); err != nil {
			s.logger.Warn("failed to remove dispatched reminder",
				"reminder_id", r.ID,
				"error", err,
			)
			continue
		}
		processed++
	}

	return processed, nil
}

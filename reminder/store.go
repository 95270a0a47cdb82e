package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/remindkit/remindkit/internal/errors"
)

// MemoryStore is an in-memory Store for tests and single-process hosts.
type MemoryStore struct {
	reminders map[string]*ReminderInfo
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory reminder store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reminders: make(map[string]*ReminderInfo),
	}
}

// Create stores a new reminder.
func (s *MemoryStore) Create(ctx context.Context, reminder *ReminderInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reminders[reminder.ID]; exists {
		return errors.AlreadyExists(reminder.ID)
	}

	s.reminders[reminder.ID] = reminder
	return nil
}

// Get retrieves a reminder by ID.
func (s *MemoryStore) Get(ctx context.Context, reminderID string) (*ReminderInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reminder, ok := s.reminders[reminderID]
	if !ok {
		return nil, errors.NotFound(reminderID)
	}

	return reminder, nil
}

// GetByRoom retrieves all reminders for a room, soonest first.
func (s *MemoryStore) GetByRoom(ctx context.Context, roomID id.RoomID) ([]*ReminderInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ReminderInfo
	for _, r := range s.reminders {
		if r.RoomID == roomID {
			result = append(result, r)
		}
	}
	SortByTriggerTime(result)

	return result, nil
}

// GetDue retrieves all reminders due at or before the given time,
// soonest first.
func (s *MemoryStore) GetDue(ctx context.Context, before time.Time) ([]*ReminderInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ReminderInfo
	for _, r := range s.reminders {
		if !r.TriggerAt.After(before) {
			result = append(result, r)
		}
	}
	SortByTriggerTime(result)

	return result, nil
}

// Update replaces an existing reminder.
func (s *MemoryStore) Update(ctx context.Context, reminder *ReminderInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reminders[reminder.ID]; !exists {
		return errors.NotFound(reminder.ID)
	}

	s.reminders[reminder.ID] = reminder
	return nil
}

// Delete removes a reminder.
func (s *MemoryStore) Delete(ctx context.Context, reminderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reminders[reminderID]; !exists {
		return errors.NotFound(reminderID)
	}

	delete(s.reminders, reminderID)
	return nil
}

// Len returns the number of stored reminders.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reminders)
}

// MockNotifier is a Notifier that records notifications for tests
// instead of talking to a homeserver.
type MockNotifier struct {
	Sent       []SentNotification
	ShouldFail bool
	mu         sync.Mutex
}

// SentNotification is one message captured by MockNotifier.
type SentNotification struct {
	RoomID  id.RoomID
	Content *event.MessageEventContent
	SentAt  time.Time
}

// NewMockNotifier creates a notifier that records instead of sending.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		Sent: make([]SentNotification, 0),
	}
}

// SendMessage records the message and mints a fake event ID.
func (n *MockNotifier) SendMessage(ctx context.Context, roomID id.RoomID, content *event.MessageEventContent) (id.EventID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.ShouldFail {
		return "", errors.DispatchFailed("mock notifier failure", nil)
	}

	n.Sent = append(n.Sent, SentNotification{
		RoomID:  roomID,
		Content: content,
		SentAt:  time.Now(),
	})

	return id.EventID(fmt.Sprintf("$mock-%d", len(n.Sent))), nil
}

// SentCount returns the number of recorded notifications.
func (n *MockNotifier) SentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Sent)
}

// Clear drops all recorded notifications.
func (n *MockNotifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = make([]SentNotification, 0)
}

// Package reminder provides reminder management for chat rooms:
// scheduling reminders from natural language commands, tracking the
// users subscribed to each one, and dispatching notifications when they
// fall due.
package reminder

import (
	"sort"
	"time"

	"maunium.net/go/mautrix/id"
)

// ReminderInfo is a single scheduled reminder in a room.
//
// TriggerAt is always stored in UTC; display timezones are resolved per
// viewer at format time. Users covers both phases of the lifecycle:
// while the reminder is pending, keys are the subscribed users and
// values the events that subscribed them; during dispatch each value is
// replaced with that user's notification event.
type ReminderInfo struct {
	ID        string                   `json:"id"`
	RoomID    id.RoomID                `json:"room_id"`
	EventID   id.EventID               `json:"event_id"`
	Message   string                   `json:"message"`
	TriggerAt time.Time                `json:"trigger_at"`
	ReplyTo   id.EventID               `json:"reply_to,omitempty"`
	Users     map[id.UserID]id.EventID `json:"users"`
	CreatedAt time.Time                `json:"created_at"`
}

// Subscribe adds a user to the reminder's audience, recording the event
// that subscribed them. Returns false when the user is already there.
func (r *ReminderInfo) Subscribe(user id.UserID, via id.EventID) bool {
	if r.Users == nil {
		r.Users = make(map[id.UserID]id.EventID)
	}
	if _, ok := r.Users[user]; ok {
		return false
	}
	r.Users[user] = via
	return true
}

// Unsubscribe removes a user from the audience. Returns false when the
// user was not subscribed.
func (r *ReminderInfo) Unsubscribe(user id.UserID) bool {
	if _, ok := r.Users[user]; !ok {
		return false
	}
	delete(r.Users, user)
	return true
}

// Subscribed reports whether the user will be notified.
func (r *ReminderInfo) Subscribed(user id.UserID) bool {
	_, ok := r.Users[user]
	return ok
}

// UserIDs returns the subscribed users in stable order.
func (r *ReminderInfo) UserIDs() []id.UserID {
	users := make([]id.UserID, 0, len(r.Users))
	for user := range r.Users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

// RecordNotification stores the notification event delivered to a user
// during dispatch.
func (r *ReminderInfo) RecordNotification(user id.UserID, notification id.EventID) {
	if r.Users == nil {
		r.Users = make(map[id.UserID]id.EventID)
	}
	r.Users[user] = notification
}

// IsDue reports whether the reminder should fire at the given moment.
func (r *ReminderInfo) IsDue(now time.Time) bool {
	return !r.TriggerAt.After(now)
}

// SortByTriggerTime sorts reminders chronologically, soonest first.
func SortByTriggerTime(reminders []*ReminderInfo) {
	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].TriggerAt.Before(reminders[j].TriggerAt)
	})
}

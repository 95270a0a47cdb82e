package reminder

import (
	"fmt"
	"time"

	"github.com/gorilla/feeds"
	"maunium.net/go/mautrix/id"

	"github.com/remindkit/remindkit/humantime"
)

// AgendaFormat selects the serialization of an agenda feed.
type AgendaFormat string

const (
	AgendaAtom AgendaFormat = "atom"
	AgendaRSS  AgendaFormat = "rss"
)

// BuildAgendaFeed renders a room's reminders as a web feed the host can
// serve. Times are described in the viewer's timezone; a nil location
// falls back to UTC.
func BuildAgendaFeed(roomID id.RoomID, reminders []*ReminderInfo, now time.Time, loc *time.Location) *feeds.Feed {
	if loc == nil {
		loc = time.UTC
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Reminders for %s", roomID),
		Link:        &feeds.Link{Href: fmt.Sprintf("https://matrix.to/#/%s", roomID)},
		Description: "Upcoming reminders",
		Created:     now,
	}

	sorted := make([]*ReminderInfo, len(reminders))
	copy(sorted, reminders)
	SortByTriggerTime(sorted)

	for _, r := range sorted {
		target := r.TriggerAt.In(loc)
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          r.ID,
			Title:       r.Message,
			Link:        &feeds.Link{Href: fmt.Sprintf("https://matrix.to/#/%s/%s", r.RoomID, r.EventID)},
			Description: fmt.Sprintf("%s (%s)", humantime.Format(target, now.In(loc)), target.Format(time.RFC3339)),
			Created:     r.CreatedAt,
		})
	}

	return feed
}

// RenderAgenda serializes an agenda feed as Atom or RSS.
func RenderAgenda(feed *feeds.Feed, format AgendaFormat) (string, error) {
	switch format {
	case AgendaRSS:
		return feed.ToRss()
	default:
		return feed.ToAtom()
	}
}

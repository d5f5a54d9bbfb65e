package notify

import (
	"errors"
	"fmt"

	"github.com/mmynk/outings/internal/models"
)

// Kind names what happened to an event.
type Kind string

const (
	KindReminder  Kind = "reminder"
	KindNewEvent  Kind = "new_event"
	KindJoined    Kind = "joined"
	KindComment   Kind = "comment"
	KindUpdated   Kind = "updated"
	KindCancelled Kind = "cancelled"
)

const dateLayout = "Mon 2 Jan 15:04"

// BuildPayload renders the notification for kind. actor is the display name
// of whoever caused it and is ignored for reminders. Dates are formatted in
// the event date's location.
func BuildPayload(kind Kind, event *models.Event, actor string) (Payload, error) {
	if event == nil || event.Title == "" {
		return Payload{}, errors.New("missing event title")
	}
	p := Payload{
		URL: "/events/" + event.ID,
		Tag: string(kind) + ":" + event.ID,
	}
	when := event.Date.Format(dateLayout)

	switch kind {
	case KindReminder:
		p.Title = "Reminder: " + event.Title
		p.Body = fmt.Sprintf("%s starts %s at %s.", event.Title, when, event.Location.Text)
	case KindNewEvent:
		p.Title = "New outing: " + event.Title
		p.Body = fmt.Sprintf("%s proposes %s on %s.", actor, event.Title, when)
	case KindJoined:
		p.Title = event.Title
		p.Body = fmt.Sprintf("%s joined %s.", actor, event.Title)
		if left := event.SpotsLeft(); left >= 0 {
			p.Body += fmt.Sprintf(" %d spot(s) left.", left)
		}
	case KindComment:
		p.Title = event.Title
		p.Body = fmt.Sprintf("%s commented on %s.", actor, event.Title)
	case KindUpdated:
		p.Title = event.Title + " has been updated"
		p.Body = fmt.Sprintf("%s changed %s, now on %s. Please check the details.", actor, event.Title, when)
	case KindCancelled:
		p.Title = event.Title + " is cancelled"
		p.Body = fmt.Sprintf("%s cancelled %s planned on %s.", actor, event.Title, when)
		p.URL = "/"
	default:
		return Payload{}, fmt.Errorf("unknown notification kind: %s", kind)
	}
	return p, nil
}

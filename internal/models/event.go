package models

import (
	"strings"
	"time"
)

// Category classifies an outing.
type Category string

const (
	CategoryOutdoor  Category = "outdoor"
	CategoryCulture  Category = "culture"
	CategorySport    Category = "sport"
	CategoryWorkshop Category = "workshop"
	CategoryPlaydate Category = "playdate"
	CategoryOther    Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryOutdoor, CategoryCulture, CategorySport, CategoryWorkshop, CategoryPlaydate, CategoryOther:
		return true
	}
	return false
}

// Age bounds accepted for AgeMin/AgeMax.
const (
	MinAge = 0
	MaxAge = 17
)

// freePrices are the price sentinels meaning "no cost".
var freePrices = []string{"gratuit", "free"}

// Location is where an outing takes place. Lat/Lng come from the client's
// address lookup and are optional.
type Location struct {
	Text string
	Lat  *float64
	Lng  *float64
}

// Event represents one concrete outing instance.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// SeriesID is shared by all instances created by one recurrence
	// expansion. Empty for standalone events.
	SeriesID string

	Title       string
	Description string
	Category    Category
	Location    Location

	// Date is the start time. Required.
	Date time.Time

	// EndDate is optional and never before Date.
	EndDate *time.Time

	// Price is free text. "Gratuit"/"Free" (or empty) means no cost.
	Price string

	// MaxParticipants caps len(Attendees) when set. Always positive.
	MaxParticipants *int

	// AgeMin and AgeMax bound the children's age range, 0-17 inclusive.
	AgeMin *int
	AgeMax *int

	// Organizer is the display name of the creator. Only this name may
	// edit or delete the event.
	Organizer string

	// GroupID is empty for events visible to everyone.
	GroupID string

	// Image is an opaque reference to the event picture.
	Image string

	// Attendees are display names in join order. Managed exclusively through
	// subscribe/unsubscribe, never through event updates.
	Attendees []string

	// RemindedAt is set once the reminder sweep has claimed this event.
	RemindedAt *time.Time

	// CreatedAt is the Unix timestamp when the event was stored.
	CreatedAt int64
}

// IsFree reports whether the event has no cost.
func (e *Event) IsFree() bool {
	p := strings.ToLower(strings.TrimSpace(e.Price))
	if p == "" {
		return true
	}
	for _, f := range freePrices {
		if p == f {
			return true
		}
	}
	return false
}

// IsFull reports whether the attendee list reached MaxParticipants.
func (e *Event) IsFull() bool {
	return e.MaxParticipants != nil && len(e.Attendees) >= *e.MaxParticipants
}

// SpotsLeft returns the remaining capacity, or -1 when unlimited.
func (e *Event) SpotsLeft() int {
	if e.MaxParticipants == nil {
		return -1
	}
	left := *e.MaxParticipants - len(e.Attendees)
	if left < 0 {
		return 0
	}
	return left
}

// HasStarted reports whether the start time is at or before now.
func (e *Event) HasStarted(now time.Time) bool {
	return !e.Date.After(now)
}

// Duration returns EndDate - Date, or zero without an end date.
func (e *Event) Duration() time.Duration {
	if e.EndDate == nil {
		return 0
	}
	return e.EndDate.Sub(e.Date)
}

// HasAttendee reports whether name is in the attendee list (case-insensitive).
func (e *Event) HasAttendee(name string) bool {
	for _, a := range e.Attendees {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// EventPatch carries the editable fields of an event. Nil fields are left
// unchanged. Attendees, comments, organizer, group and series membership
// are not editable.
type EventPatch struct {
	Title       *string
	Description *string
	Category    *Category
	Location    *Location
	Date        *time.Time
	EndDate     *time.Time
	Price       *string
	Image       *string

	// ClearEndDate removes the end date. Takes precedence over EndDate.
	ClearEndDate bool

	MaxParticipants      *int
	ClearMaxParticipants bool

	AgeMin      *int
	ClearAgeMin bool
	AgeMax      *int
	ClearAgeMax bool
}

// Apply returns a copy of e with the patch applied. e is not modified.
func (p *EventPatch) Apply(e *Event) *Event {
	out := *e
	out.Attendees = append([]string(nil), e.Attendees...)

	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.ClearEndDate {
		out.EndDate = nil
	} else if p.EndDate != nil {
		end := *p.EndDate
		out.EndDate = &end
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.Image != nil {
		out.Image = *p.Image
	}
	out.MaxParticipants = patchInt(out.MaxParticipants, p.MaxParticipants, p.ClearMaxParticipants)
	out.AgeMin = patchInt(out.AgeMin, p.AgeMin, p.ClearAgeMin)
	out.AgeMax = patchInt(out.AgeMax, p.AgeMax, p.ClearAgeMax)
	return &out
}

func patchInt(cur, next *int, clear bool) *int {
	if clear {
		return nil
	}
	if next != nil {
		v := *next
		return &v
	}
	return cur
}

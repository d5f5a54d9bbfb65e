// Package calendar renders outings as iCalendar documents.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/mmynk/outings/internal/models"
)

const (
	productID = "-//outings//outings calendar//EN"
	uidDomain = "outings"
	// defaultDuration applies to events without an end date.
	defaultDuration = 2 * time.Hour
)

// Export builds a PUBLISH calendar with one VEVENT per event. now stamps
// DTSTAMP.
func Export(name string, events []*models.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}

	for _, ev := range events {
		addEvent(cal, ev, now)
	}
	return cal.Serialize()
}

func addEvent(cal *ical.Calendar, ev *models.Event, now time.Time) {
	vev := cal.AddEvent(ev.ID + "@" + uidDomain)
	vev.SetDtStampTime(now.UTC())
	vev.SetCreatedTime(time.Unix(ev.CreatedAt, 0).UTC())
	vev.SetStartAt(ev.Date.UTC())
	if ev.EndDate != nil {
		vev.SetEndAt(ev.EndDate.UTC())
	} else {
		vev.SetEndAt(ev.Date.Add(defaultDuration).UTC())
	}

	vev.SetSummary(ev.Title)
	if desc := description(ev); desc != "" {
		vev.SetDescription(desc)
	}
	vev.SetLocation(ev.Location.Text)
	if ev.Location.Lat != nil && ev.Location.Lng != nil {
		vev.SetProperty(ical.ComponentPropertyGeo, fmt.Sprintf("%.6f;%.6f", *ev.Location.Lat, *ev.Location.Lng))
	}
	vev.SetProperty(ical.ComponentPropertyCategories, strings.ToUpper(string(ev.Category)))
	vev.SetOrganizer("mailto:noreply@"+uidDomain, ical.WithCN(ev.Organizer))
}

func description(ev *models.Event) string {
	var lines []string
	if ev.Description != "" {
		lines = append(lines, ev.Description)
	}
	if ev.IsFree() {
		lines = append(lines, "Price: free")
	} else {
		lines = append(lines, "Price: "+ev.Price)
	}
	switch {
	case ev.AgeMin != nil && ev.AgeMax != nil:
		lines = append(lines, fmt.Sprintf("Ages: %d-%d", *ev.AgeMin, *ev.AgeMax))
	case ev.AgeMin != nil:
		lines = append(lines, fmt.Sprintf("Ages: %d+", *ev.AgeMin))
	case ev.AgeMax != nil:
		lines = append(lines, fmt.Sprintf("Ages: up to %d", *ev.AgeMax))
	}
	if ev.MaxParticipants != nil {
		lines = append(lines, fmt.Sprintf("Participants: %d/%d", len(ev.Attendees), *ev.MaxParticipants))
	}
	return strings.Join(lines, "\n")
}

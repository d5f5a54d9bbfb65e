package calendar

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/mmynk/outings/internal/models"
)

func TestExport(t *testing.T) {
	lat, lng := 45.7772, 4.8553
	end := time.Date(2030, 5, 4, 12, 30, 0, 0, time.UTC)
	max, ageMin, ageMax := 6, 3, 8
	events := []*models.Event{
		{
			ID:              "e1",
			Title:           "Zoo",
			Description:     "Bring a hat",
			Category:        models.CategoryOutdoor,
			Location:        models.Location{Text: "Parc de la Tête d'Or", Lat: &lat, Lng: &lng},
			Date:            time.Date(2030, 5, 4, 10, 0, 0, 0, time.UTC),
			EndDate:         &end,
			Price:           "Gratuit",
			MaxParticipants: &max,
			AgeMin:          &ageMin,
			AgeMax:          &ageMax,
			Organizer:       "Alice",
			Attendees:       []string{"Alice", "Bob"},
			CreatedAt:       1900000000,
		},
		{
			ID:        "e2",
			Title:     "Musée",
			Category:  models.CategoryCulture,
			Location:  models.Location{Text: "Musée des Confluences"},
			Date:      time.Date(2030, 5, 11, 14, 0, 0, 0, time.UTC),
			Price:     "5 €",
			Organizer: "Bob",
		},
	}
	now := time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC)

	out := Export("Outings", events, now)
	if !strings.Contains(out, "METHOD:PUBLISH") {
		t.Error("expected PUBLISH method")
	}

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("exported calendar does not parse: %v", err)
	}
	vevents := cal.Events()
	if len(vevents) != 2 {
		t.Fatalf("expected 2 events, got %d", len(vevents))
	}

	first := vevents[0]
	if uid := first.GetProperty(ical.ComponentPropertyUniqueId).Value; uid != "e1@outings" {
		t.Errorf("unexpected UID: %s", uid)
	}
	start, err := first.GetStartAt()
	if err != nil || !start.Equal(events[0].Date) {
		t.Errorf("DTSTART = %s (%v), want %s", start, err, events[0].Date)
	}
	gotEnd, err := first.GetEndAt()
	if err != nil || !gotEnd.Equal(end) {
		t.Errorf("DTEND = %s (%v), want %s", gotEnd, err, end)
	}
	if geo := first.GetProperty(ical.ComponentPropertyGeo).Value; geo != "45.777200;4.855300" {
		t.Errorf("unexpected GEO: %s", geo)
	}
	if cat := first.GetProperty(ical.ComponentPropertyCategories).Value; cat != "OUTDOOR" {
		t.Errorf("unexpected CATEGORIES: %s", cat)
	}
	desc := first.GetProperty(ical.ComponentPropertyDescription).Value
	for _, want := range []string{"Bring a hat", "Price: free", "Ages: 3-8", "Participants: 2/6"} {
		if !strings.Contains(desc, want) {
			t.Errorf("description %q missing %q", desc, want)
		}
	}
	if org := first.GetProperty(ical.ComponentPropertyOrganizer); org == nil || !strings.Contains(out, "CN=Alice") {
		t.Error("expected organizer with CN")
	}

	second := vevents[1]
	secondEnd, _ := second.GetEndAt()
	if !secondEnd.Equal(events[1].Date.Add(defaultDuration)) {
		t.Errorf("expected default duration end, got %s", secondEnd)
	}
	if second.GetProperty(ical.ComponentPropertyGeo) != nil {
		t.Error("event without coordinates should have no GEO")
	}
}

func TestExport_Empty(t *testing.T) {
	out := Export("", nil, time.Now())
	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("empty calendar does not parse: %v", err)
	}
	if len(cal.Events()) != 0 {
		t.Errorf("expected no events, got %d", len(cal.Events()))
	}
}

package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/mmynk/outings/internal/models"
)

func TestBuildPayload(t *testing.T) {
	max := 3
	event := &models.Event{
		ID:              "e1",
		Title:           "Zoo",
		Location:        models.Location{Text: "Parc de la Tête d'Or"},
		Date:            time.Date(2030, 5, 4, 10, 0, 0, 0, time.UTC),
		MaxParticipants: &max,
		Attendees:       []string{"Alice"},
	}

	tests := []struct {
		kind     Kind
		wantBody string
		wantURL  string
	}{
		{KindReminder, "Zoo starts Sat 4 May 10:00 at Parc de la Tête d'Or.", "/events/e1"},
		{KindNewEvent, "Bob proposes Zoo", "/events/e1"},
		{KindJoined, "Bob joined Zoo. 2 spot(s) left.", "/events/e1"},
		{KindComment, "Bob commented on Zoo.", "/events/e1"},
		{KindUpdated, "Bob changed Zoo", "/events/e1"},
		{KindCancelled, "Bob cancelled Zoo", "/"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			p, err := BuildPayload(tt.kind, event, "Bob")
			if err != nil {
				t.Fatalf("BuildPayload failed: %v", err)
			}
			if !strings.Contains(p.Body, tt.wantBody) {
				t.Errorf("body %q does not contain %q", p.Body, tt.wantBody)
			}
			if p.URL != tt.wantURL {
				t.Errorf("url = %q, want %q", p.URL, tt.wantURL)
			}
			if p.Title == "" {
				t.Error("expected a title")
			}
		})
	}
}

func TestBuildPayload_Errors(t *testing.T) {
	if _, err := BuildPayload(KindReminder, &models.Event{}, ""); err == nil {
		t.Error("expected error for missing title")
	}
	if _, err := BuildPayload(Kind("bogus"), &models.Event{Title: "x"}, ""); err == nil {
		t.Error("expected error for unknown kind")
	}
}

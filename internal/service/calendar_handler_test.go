package service

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/mmynk/outings/pkg/api"
)

func TestCalendarHandler(t *testing.T) {
	env := setupTestServer(t)

	ev := createEvent(t, env, "Alice", futureEvent("Ferme pédagogique"))
	series, err := env.events.CreateEventSeries(context.Background(), as("Alice", &api.CreateEventSeriesRequest{
		Event:           futureEvent("Bibliothèque"),
		Recurrence:      api.RecurrenceBiweekly,
		OccurrenceCount: 4,
	}))
	if err != nil {
		t.Fatalf("CreateEventSeries failed: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantEvents int
	}{
		{"single event", "/calendar/events/" + ev.ID + ".ics", http.StatusOK, 1},
		{"series", "/calendar/series/" + series.Msg.SeriesID + ".ics", http.StatusOK, 4},
		{"unknown event", "/calendar/events/missing.ics", http.StatusNotFound, 0},
		{"unknown series", "/calendar/series/missing.ics", http.StatusNotFound, 0},
		{"missing suffix", "/calendar/events/" + ev.ID, http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(env.server.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
				t.Errorf("unexpected content type %q", ct)
			}
			body, _ := io.ReadAll(resp.Body)
			if got := strings.Count(string(body), "BEGIN:VEVENT"); got != tt.wantEvents {
				t.Errorf("expected %d VEVENTs, got %d", tt.wantEvents, got)
			}
		})
	}
}

package service

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmynk/outings/internal/apperr"
	"github.com/mmynk/outings/internal/calendar"
	"github.com/mmynk/outings/internal/events"
	"github.com/mmynk/outings/internal/models"
)

// CalendarHandler serves events and series as .ics files.
type CalendarHandler struct {
	events *events.Manager
	now    func() time.Time
}

// NewCalendarHandler creates a calendar handler.
func NewCalendarHandler(manager *events.Manager) *CalendarHandler {
	return &CalendarHandler{events: manager, now: time.Now}
}

// Register mounts the calendar routes on mux.
func (h *CalendarHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /calendar/events/{file}", h.serveEvent)
	mux.HandleFunc("GET /calendar/series/{file}", h.serveSeries)
}

func (h *CalendarHandler) serveEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := icsName(r.PathValue("file"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	ev, err := h.events.GetEvent(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, ev.Title, []*models.Event{ev})
}

func (h *CalendarHandler) serveSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := icsName(r.PathValue("file"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	list, err := h.events.ListSeries(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, list[0].Title, list)
}

func (h *CalendarHandler) write(w http.ResponseWriter, name string, list []*models.Event) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="outing.ics"`)
	w.Write([]byte(calendar.Export(name, list, h.now())))
}

func (h *CalendarHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	slog.Error("Calendar export failed", "path", r.URL.Path, "error", err)
	http.Error(w, "calendar unavailable", http.StatusServiceUnavailable)
}

func icsName(file string) (string, bool) {
	id, ok := strings.CutSuffix(file, ".ics")
	return id, ok && id != ""
}

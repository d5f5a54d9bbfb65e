package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/outings/internal/events"
	"github.com/mmynk/outings/internal/middleware"
	"github.com/mmynk/outings/internal/storage"
	"github.com/mmynk/outings/pkg/api"
)

// EventService implements the Connect EventService.
type EventService struct {
	events *events.Manager
	now    func() time.Time
}

// NewEventService creates a new EventService over the given manager.
func NewEventService(manager *events.Manager) *EventService {
	return &EventService{events: manager, now: time.Now}
}

// nameOr returns explicit when set, else the caller's display name.
func nameOr(ctx context.Context, explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return middleware.GetDisplayName(ctx)
}

// CreateEventSeries creates one event or a recurring series.
func (s *EventService) CreateEventSeries(ctx context.Context, req *connect.Request[api.CreateEventSeriesRequest]) (*connect.Response[api.CreateEventSeriesResponse], error) {
	slog.Info("CreateEventSeries request received",
		"title", req.Msg.Event.Title,
		"recurrence", req.Msg.Recurrence,
		"occurrence_count", req.Msg.OccurrenceCount,
		"group_id", req.Msg.Event.GroupID,
	)

	template := fromEventInput(&req.Msg.Event)
	template.Organizer = nameOr(ctx, template.Organizer)

	result, err := s.events.CreateSeries(ctx, template, toRecurrenceSpec(req.Msg))
	if err != nil {
		slog.Error("CreateEventSeries failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("CreateEventSeries successful", "series_id", result.SeriesID, "events_count", len(result.Events))

	return connect.NewResponse(&api.CreateEventSeriesResponse{
		SeriesID: result.SeriesID,
		Events:   toAPIEvents(result.Events),
	}), nil
}

// GetEvent retrieves an event by ID.
func (s *EventService) GetEvent(ctx context.Context, req *connect.Request[api.GetEventRequest]) (*connect.Response[api.GetEventResponse], error) {
	slog.Info("GetEvent request received", "event_id", req.Msg.EventID)

	ev, err := s.events.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("GetEvent failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetEventResponse{Event: toAPIEvent(ev)}), nil
}

// ListEvents lists events of the given groups and, optionally, ungrouped
// events.
func (s *EventService) ListEvents(ctx context.Context, req *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	slog.Info("ListEvents request received",
		"groups_count", len(req.Msg.GroupIDs),
		"include_ungrouped", req.Msg.IncludeUngrouped,
		"upcoming_only", req.Msg.UpcomingOnly,
	)

	filter := storage.EventFilter{
		GroupIDs:         req.Msg.GroupIDs,
		IncludeUngrouped: req.Msg.IncludeUngrouped,
	}
	if req.Msg.UpcomingOnly {
		filter.From = s.now()
	}

	list, err := s.events.ListEvents(ctx, filter)
	if err != nil {
		slog.Error("ListEvents failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListEvents successful", "count", len(list))

	return connect.NewResponse(&api.ListEventsResponse{Events: toAPIEvents(list)}), nil
}

// ListSeries lists the remaining instances of a series.
func (s *EventService) ListSeries(ctx context.Context, req *connect.Request[api.ListSeriesRequest]) (*connect.Response[api.ListSeriesResponse], error) {
	slog.Info("ListSeries request received", "series_id", req.Msg.SeriesID)

	list, err := s.events.ListSeries(ctx, req.Msg.SeriesID)
	if err != nil {
		slog.Error("ListSeries failed", "series_id", req.Msg.SeriesID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListSeriesResponse{Events: toAPIEvents(list)}), nil
}

// UpdateEvent edits an event. Only its organizer may do so.
func (s *EventService) UpdateEvent(ctx context.Context, req *connect.Request[api.UpdateEventRequest]) (*connect.Response[api.UpdateEventResponse], error) {
	requester := middleware.GetDisplayName(ctx)
	slog.Info("UpdateEvent request received", "event_id", req.Msg.EventID, "requester", requester)

	ev, err := s.events.UpdateEvent(ctx, req.Msg.EventID, fromEventPatch(&req.Msg.Patch), requester)
	if err != nil {
		slog.Error("UpdateEvent failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Event updated", "event_id", ev.ID)

	return connect.NewResponse(&api.UpdateEventResponse{Event: toAPIEvent(ev)}), nil
}

// DeleteEvent removes one event. Only its organizer may do so.
func (s *EventService) DeleteEvent(ctx context.Context, req *connect.Request[api.DeleteEventRequest]) (*connect.Response[api.DeleteEventResponse], error) {
	requester := middleware.GetDisplayName(ctx)
	slog.Info("DeleteEvent request received", "event_id", req.Msg.EventID, "requester", requester)

	if err := s.events.DeleteEvent(ctx, req.Msg.EventID, requester); err != nil {
		slog.Error("DeleteEvent failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Event deleted", "event_id", req.Msg.EventID)

	return connect.NewResponse(&api.DeleteEventResponse{}), nil
}

// Subscribe adds a participant to an event.
func (s *EventService) Subscribe(ctx context.Context, req *connect.Request[api.SubscribeRequest]) (*connect.Response[api.SubscribeResponse], error) {
	name := nameOr(ctx, req.Msg.Name)
	slog.Info("Subscribe request received", "event_id", req.Msg.EventID, "name", name)

	attendees, err := s.events.Subscribe(ctx, req.Msg.EventID, name)
	if err != nil {
		slog.Info("Subscribe rejected", "event_id", req.Msg.EventID, "name", name, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Subscribe successful", "event_id", req.Msg.EventID, "attendees_count", len(attendees))

	return connect.NewResponse(&api.SubscribeResponse{Attendees: attendees}), nil
}

// Unsubscribe removes a participant from an event.
func (s *EventService) Unsubscribe(ctx context.Context, req *connect.Request[api.UnsubscribeRequest]) (*connect.Response[api.UnsubscribeResponse], error) {
	name := nameOr(ctx, req.Msg.Name)
	slog.Info("Unsubscribe request received", "event_id", req.Msg.EventID, "name", name)

	attendees, err := s.events.Unsubscribe(ctx, req.Msg.EventID, name)
	if err != nil {
		slog.Error("Unsubscribe failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.UnsubscribeResponse{Attendees: attendees}), nil
}

// AddComment posts a comment on an event.
func (s *EventService) AddComment(ctx context.Context, req *connect.Request[api.AddCommentRequest]) (*connect.Response[api.AddCommentResponse], error) {
	author := nameOr(ctx, req.Msg.Author)
	slog.Info("AddComment request received", "event_id", req.Msg.EventID, "author", author)

	comment, err := s.events.AddComment(ctx, req.Msg.EventID, author, req.Msg.Content)
	if err != nil {
		slog.Error("AddComment failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Comment created", "comment_id", comment.ID)

	return connect.NewResponse(&api.AddCommentResponse{Comment: toAPIComment(comment)}), nil
}

// ListComments lists the comments of an event, oldest first.
func (s *EventService) ListComments(ctx context.Context, req *connect.Request[api.ListCommentsRequest]) (*connect.Response[api.ListCommentsResponse], error) {
	slog.Info("ListComments request received", "event_id", req.Msg.EventID)

	comments, err := s.events.ListComments(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("ListComments failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Comment, len(comments))
	for i, c := range comments {
		out[i] = toAPIComment(c)
	}
	return connect.NewResponse(&api.ListCommentsResponse{Comments: out}), nil
}

package service

import (
	"github.com/mmynk/outings/internal/models"
	"github.com/mmynk/outings/pkg/api"
)

func toAPIEvent(e *models.Event) *api.Event {
	attendees := e.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return &api.Event{
		ID:              e.ID,
		SeriesID:        e.SeriesID,
		Title:           e.Title,
		Description:     e.Description,
		Category:        string(e.Category),
		Location:        api.Location{Text: e.Location.Text, Lat: e.Location.Lat, Lng: e.Location.Lng},
		Date:            e.Date,
		EndDate:         e.EndDate,
		Price:           e.Price,
		IsFree:          e.IsFree(),
		MaxParticipants: e.MaxParticipants,
		AgeMin:          e.AgeMin,
		AgeMax:          e.AgeMax,
		Organizer:       e.Organizer,
		GroupID:         e.GroupID,
		Image:           e.Image,
		Attendees:       attendees,
		SpotsLeft:       e.SpotsLeft(),
		IsFull:          e.IsFull(),
		CreatedAt:       e.CreatedAt,
	}
}

func toAPIEvents(events []*models.Event) []*api.Event {
	out := make([]*api.Event, len(events))
	for i, e := range events {
		out[i] = toAPIEvent(e)
	}
	return out
}

func fromEventInput(in *api.EventInput) *models.Event {
	return &models.Event{
		Title:           in.Title,
		Description:     in.Description,
		Category:        models.Category(in.Category),
		Location:        models.Location{Text: in.Location.Text, Lat: in.Location.Lat, Lng: in.Location.Lng},
		Date:            in.Date,
		EndDate:         in.EndDate,
		Price:           in.Price,
		MaxParticipants: in.MaxParticipants,
		AgeMin:          in.AgeMin,
		AgeMax:          in.AgeMax,
		Organizer:       in.Organizer,
		GroupID:         in.GroupID,
		Image:           in.Image,
	}
}

func fromEventPatch(in *api.EventPatch) *models.EventPatch {
	patch := &models.EventPatch{
		Title:                in.Title,
		Description:          in.Description,
		Date:                 in.Date,
		EndDate:              in.EndDate,
		ClearEndDate:         in.ClearEndDate,
		Price:                in.Price,
		Image:                in.Image,
		MaxParticipants:      in.MaxParticipants,
		ClearMaxParticipants: in.ClearMaxParticipants,
		AgeMin:               in.AgeMin,
		ClearAgeMin:          in.ClearAgeMin,
		AgeMax:               in.AgeMax,
		ClearAgeMax:          in.ClearAgeMax,
	}
	if in.Category != nil {
		c := models.Category(*in.Category)
		patch.Category = &c
	}
	if in.Location != nil {
		patch.Location = &models.Location{Text: in.Location.Text, Lat: in.Location.Lat, Lng: in.Location.Lng}
	}
	return patch
}

func toRecurrenceSpec(req *api.CreateEventSeriesRequest) models.RecurrenceSpec {
	return models.RecurrenceSpec{
		Mode:         models.RecurrenceMode(req.Recurrence),
		IntervalDays: req.IntervalDays,
		Count:        req.OccurrenceCount,
	}
}

func toAPIComment(c *models.Comment) *api.Comment {
	return &api.Comment{
		ID:        c.ID,
		EventID:   c.EventID,
		Author:    c.Author,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Code:      g.Code,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
}

package api

import "time"

// Location is where an event takes place.
type Location struct {
	Text string   `json:"text"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

// Event is an outing as returned by the server.
type Event struct {
	ID              string     `json:"id"`
	SeriesID        string     `json:"seriesId,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category"`
	Location        Location   `json:"location"`
	Date            time.Time  `json:"date"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Price           string     `json:"price,omitempty"`
	IsFree          bool       `json:"isFree"`
	MaxParticipants *int       `json:"maxParticipants,omitempty"`
	AgeMin          *int       `json:"ageMin,omitempty"`
	AgeMax          *int       `json:"ageMax,omitempty"`
	Organizer       string     `json:"organizer"`
	GroupID         string     `json:"groupId,omitempty"`
	Image           string     `json:"image,omitempty"`
	Attendees       []string   `json:"attendees"`
	// SpotsLeft is -1 when the event has no capacity limit.
	SpotsLeft int   `json:"spotsLeft"`
	IsFull    bool  `json:"isFull"`
	CreatedAt int64 `json:"createdAt"`
}

// EventInput is the template of a new event or series.
type EventInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category,omitempty"`
	Location        Location   `json:"location"`
	Date            time.Time  `json:"date"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Price           string     `json:"price,omitempty"`
	MaxParticipants *int       `json:"maxParticipants,omitempty"`
	AgeMin          *int       `json:"ageMin,omitempty"`
	AgeMax          *int       `json:"ageMax,omitempty"`
	// Organizer defaults to the caller's display name.
	Organizer string `json:"organizer,omitempty"`
	GroupID   string `json:"groupId,omitempty"`
	Image     string `json:"image,omitempty"`
}

// EventPatch lists the fields to change. Absent fields are kept.
type EventPatch struct {
	Title                *string    `json:"title,omitempty"`
	Description          *string    `json:"description,omitempty"`
	Category             *string    `json:"category,omitempty"`
	Location             *Location  `json:"location,omitempty"`
	Date                 *time.Time `json:"date,omitempty"`
	EndDate              *time.Time `json:"endDate,omitempty"`
	ClearEndDate         bool       `json:"clearEndDate,omitempty"`
	Price                *string    `json:"price,omitempty"`
	Image                *string    `json:"image,omitempty"`
	MaxParticipants      *int       `json:"maxParticipants,omitempty"`
	ClearMaxParticipants bool       `json:"clearMaxParticipants,omitempty"`
	AgeMin               *int       `json:"ageMin,omitempty"`
	ClearAgeMin          bool       `json:"clearAgeMin,omitempty"`
	AgeMax               *int       `json:"ageMax,omitempty"`
	ClearAgeMax          bool       `json:"clearAgeMax,omitempty"`
}

type Comment struct {
	ID        string `json:"id"`
	EventID   string `json:"eventId"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
}

type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	CreatedBy string `json:"createdBy"`
	CreatedAt int64  `json:"createdAt"`
}

// Recurrence modes accepted by CreateEventSeries.
const (
	RecurrenceNone     = "none"
	RecurrenceWeekly   = "weekly"
	RecurrenceBiweekly = "biweekly"
	RecurrenceMonthly  = "monthly"
	RecurrenceCustom   = "custom"
)

type CreateEventSeriesRequest struct {
	Event      EventInput `json:"event"`
	Recurrence string     `json:"recurrence,omitempty"`
	// IntervalDays applies to custom recurrence only.
	IntervalDays    int `json:"intervalDays,omitempty"`
	OccurrenceCount int `json:"occurrenceCount,omitempty"`
}

type CreateEventSeriesResponse struct {
	SeriesID string   `json:"seriesId,omitempty"`
	Events   []*Event `json:"events"`
}

type GetEventRequest struct {
	EventID string `json:"eventId"`
}

type GetEventResponse struct {
	Event *Event `json:"event"`
}

type ListEventsRequest struct {
	GroupIDs         []string `json:"groupIds,omitempty"`
	IncludeUngrouped bool     `json:"includeUngrouped"`
	// UpcomingOnly drops events that already started.
	UpcomingOnly bool `json:"upcomingOnly,omitempty"`
}

type ListEventsResponse struct {
	Events []*Event `json:"events"`
}

type ListSeriesRequest struct {
	SeriesID string `json:"seriesId"`
}

type ListSeriesResponse struct {
	Events []*Event `json:"events"`
}

type UpdateEventRequest struct {
	EventID string     `json:"eventId"`
	Patch   EventPatch `json:"patch"`
}

type UpdateEventResponse struct {
	Event *Event `json:"event"`
}

type DeleteEventRequest struct {
	EventID string `json:"eventId"`
}

type DeleteEventResponse struct{}

// SubscribeRequest joins or leaves an event. Name defaults to the caller's
// display name.
type SubscribeRequest struct {
	EventID string `json:"eventId"`
	Name    string `json:"name,omitempty"`
}

type SubscribeResponse struct {
	Attendees []string `json:"attendees"`
}

type UnsubscribeRequest struct {
	EventID string `json:"eventId"`
	Name    string `json:"name,omitempty"`
}

type UnsubscribeResponse struct {
	Attendees []string `json:"attendees"`
}

// AddCommentRequest posts a comment. Author defaults to the caller's display
// name.
type AddCommentRequest struct {
	EventID string `json:"eventId"`
	Author  string `json:"author,omitempty"`
	Content string `json:"content"`
}

type AddCommentResponse struct {
	Comment *Comment `json:"comment"`
}

type ListCommentsRequest struct {
	EventID string `json:"eventId"`
}

type ListCommentsResponse struct {
	Comments []*Comment `json:"comments"`
}

// CreateGroupRequest creates a group. CreatedBy defaults to the caller's
// display name.
type CreateGroupRequest struct {
	Name      string `json:"name"`
	CreatedBy string `json:"createdBy,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type JoinGroupRequest struct {
	Code string `json:"code"`
}

type JoinGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
	Confirm bool   `json:"confirm"`
}

type DeleteGroupResponse struct{}

// PushKeys are the keys of a browser PushSubscription.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscribeRequest mirrors a browser PushSubscription plus the
// notification preferences. Username defaults to the caller's display name.
type PushSubscribeRequest struct {
	Endpoint string   `json:"endpoint"`
	Keys     PushKeys `json:"keys"`
	Username string   `json:"username,omitempty"`
	GroupIDs []string `json:"groupIds,omitempty"`
}

type PushSubscribeResponse struct{}

type PushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

type PushUnsubscribeResponse struct{}

type VAPIDPublicKeyRequest struct{}

type VAPIDPublicKeyResponse struct {
	// PublicKey is empty when Web Push is not configured.
	PublicKey string `json:"publicKey"`
}

// RunReminderSweepRequest triggers a sweep. Now defaults to the server
// clock.
type RunReminderSweepRequest struct {
	Now *time.Time `json:"now,omitempty"`
}

type RunReminderSweepResponse struct {
	EventsNotified     int `json:"eventsNotified"`
	RecipientsNotified int `json:"recipientsNotified"`
}

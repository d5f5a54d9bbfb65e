package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Fully-qualified service names.
const (
	EventServiceName = "outings.v1.EventService"
	GroupServiceName = "outings.v1.GroupService"
	PushServiceName  = "outings.v1.PushService"
)

// Procedure paths.
const (
	EventServiceCreateEventSeriesProcedure = "/outings.v1.EventService/CreateEventSeries"
	EventServiceGetEventProcedure          = "/outings.v1.EventService/GetEvent"
	EventServiceListEventsProcedure        = "/outings.v1.EventService/ListEvents"
	EventServiceListSeriesProcedure        = "/outings.v1.EventService/ListSeries"
	EventServiceUpdateEventProcedure       = "/outings.v1.EventService/UpdateEvent"
	EventServiceDeleteEventProcedure       = "/outings.v1.EventService/DeleteEvent"
	EventServiceSubscribeProcedure         = "/outings.v1.EventService/Subscribe"
	EventServiceUnsubscribeProcedure       = "/outings.v1.EventService/Unsubscribe"
	EventServiceAddCommentProcedure        = "/outings.v1.EventService/AddComment"
	EventServiceListCommentsProcedure      = "/outings.v1.EventService/ListComments"

	GroupServiceCreateGroupProcedure = "/outings.v1.GroupService/CreateGroup"
	GroupServiceJoinGroupProcedure   = "/outings.v1.GroupService/JoinGroup"
	GroupServiceGetGroupProcedure    = "/outings.v1.GroupService/GetGroup"
	GroupServiceDeleteGroupProcedure = "/outings.v1.GroupService/DeleteGroup"

	PushServiceSubscribeProcedure        = "/outings.v1.PushService/Subscribe"
	PushServiceUnsubscribeProcedure      = "/outings.v1.PushService/Unsubscribe"
	PushServiceVAPIDPublicKeyProcedure   = "/outings.v1.PushService/VAPIDPublicKey"
	PushServiceRunReminderSweepProcedure = "/outings.v1.PushService/RunReminderSweep"
)

// IsProcedurePath reports whether path belongs to one of the services.
func IsProcedurePath(path string) bool {
	return strings.HasPrefix(path, "/outings.v1.")
}

func handle[Req, Res any](mux *http.ServeMux, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) {
	opts = append(opts[:len(opts):len(opts)], connect.WithCodec(JSONCodec{}))
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	opts = append(opts[:len(opts):len(opts)], connect.WithCodec(JSONCodec{}))
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

// EventServiceHandler is implemented by the event service.
type EventServiceHandler interface {
	CreateEventSeries(context.Context, *connect.Request[CreateEventSeriesRequest]) (*connect.Response[CreateEventSeriesResponse], error)
	GetEvent(context.Context, *connect.Request[GetEventRequest]) (*connect.Response[GetEventResponse], error)
	ListEvents(context.Context, *connect.Request[ListEventsRequest]) (*connect.Response[ListEventsResponse], error)
	ListSeries(context.Context, *connect.Request[ListSeriesRequest]) (*connect.Response[ListSeriesResponse], error)
	UpdateEvent(context.Context, *connect.Request[UpdateEventRequest]) (*connect.Response[UpdateEventResponse], error)
	DeleteEvent(context.Context, *connect.Request[DeleteEventRequest]) (*connect.Response[DeleteEventResponse], error)
	Subscribe(context.Context, *connect.Request[SubscribeRequest]) (*connect.Response[SubscribeResponse], error)
	Unsubscribe(context.Context, *connect.Request[UnsubscribeRequest]) (*connect.Response[UnsubscribeResponse], error)
	AddComment(context.Context, *connect.Request[AddCommentRequest]) (*connect.Response[AddCommentResponse], error)
	ListComments(context.Context, *connect.Request[ListCommentsRequest]) (*connect.Response[ListCommentsResponse], error)
}

// NewEventServiceHandler returns the mount path and handler of the event
// service.
func NewEventServiceHandler(svc EventServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, EventServiceCreateEventSeriesProcedure, svc.CreateEventSeries, opts)
	handle(mux, EventServiceGetEventProcedure, svc.GetEvent, opts)
	handle(mux, EventServiceListEventsProcedure, svc.ListEvents, opts)
	handle(mux, EventServiceListSeriesProcedure, svc.ListSeries, opts)
	handle(mux, EventServiceUpdateEventProcedure, svc.UpdateEvent, opts)
	handle(mux, EventServiceDeleteEventProcedure, svc.DeleteEvent, opts)
	handle(mux, EventServiceSubscribeProcedure, svc.Subscribe, opts)
	handle(mux, EventServiceUnsubscribeProcedure, svc.Unsubscribe, opts)
	handle(mux, EventServiceAddCommentProcedure, svc.AddComment, opts)
	handle(mux, EventServiceListCommentsProcedure, svc.ListComments, opts)
	return "/" + EventServiceName + "/", mux
}

// EventServiceClient calls the event service.
type EventServiceClient struct {
	createEventSeries *connect.Client[CreateEventSeriesRequest, CreateEventSeriesResponse]
	getEvent          *connect.Client[GetEventRequest, GetEventResponse]
	listEvents        *connect.Client[ListEventsRequest, ListEventsResponse]
	listSeries        *connect.Client[ListSeriesRequest, ListSeriesResponse]
	updateEvent       *connect.Client[UpdateEventRequest, UpdateEventResponse]
	deleteEvent       *connect.Client[DeleteEventRequest, DeleteEventResponse]
	subscribe         *connect.Client[SubscribeRequest, SubscribeResponse]
	unsubscribe       *connect.Client[UnsubscribeRequest, UnsubscribeResponse]
	addComment        *connect.Client[AddCommentRequest, AddCommentResponse]
	listComments      *connect.Client[ListCommentsRequest, ListCommentsResponse]
}

// NewEventServiceClient creates a client for the server at baseURL.
func NewEventServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *EventServiceClient {
	return &EventServiceClient{
		createEventSeries: newClient[CreateEventSeriesRequest, CreateEventSeriesResponse](httpClient, baseURL, EventServiceCreateEventSeriesProcedure, opts),
		getEvent:          newClient[GetEventRequest, GetEventResponse](httpClient, baseURL, EventServiceGetEventProcedure, opts),
		listEvents:        newClient[ListEventsRequest, ListEventsResponse](httpClient, baseURL, EventServiceListEventsProcedure, opts),
		listSeries:        newClient[ListSeriesRequest, ListSeriesResponse](httpClient, baseURL, EventServiceListSeriesProcedure, opts),
		updateEvent:       newClient[UpdateEventRequest, UpdateEventResponse](httpClient, baseURL, EventServiceUpdateEventProcedure, opts),
		deleteEvent:       newClient[DeleteEventRequest, DeleteEventResponse](httpClient, baseURL, EventServiceDeleteEventProcedure, opts),
		subscribe:         newClient[SubscribeRequest, SubscribeResponse](httpClient, baseURL, EventServiceSubscribeProcedure, opts),
		unsubscribe:       newClient[UnsubscribeRequest, UnsubscribeResponse](httpClient, baseURL, EventServiceUnsubscribeProcedure, opts),
		addComment:        newClient[AddCommentRequest, AddCommentResponse](httpClient, baseURL, EventServiceAddCommentProcedure, opts),
		listComments:      newClient[ListCommentsRequest, ListCommentsResponse](httpClient, baseURL, EventServiceListCommentsProcedure, opts),
	}
}

func (c *EventServiceClient) CreateEventSeries(ctx context.Context, req *connect.Request[CreateEventSeriesRequest]) (*connect.Response[CreateEventSeriesResponse], error) {
	return c.createEventSeries.CallUnary(ctx, req)
}

func (c *EventServiceClient) GetEvent(ctx context.Context, req *connect.Request[GetEventRequest]) (*connect.Response[GetEventResponse], error) {
	return c.getEvent.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListEvents(ctx context.Context, req *connect.Request[ListEventsRequest]) (*connect.Response[ListEventsResponse], error) {
	return c.listEvents.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListSeries(ctx context.Context, req *connect.Request[ListSeriesRequest]) (*connect.Response[ListSeriesResponse], error) {
	return c.listSeries.CallUnary(ctx, req)
}

func (c *EventServiceClient) UpdateEvent(ctx context.Context, req *connect.Request[UpdateEventRequest]) (*connect.Response[UpdateEventResponse], error) {
	return c.updateEvent.CallUnary(ctx, req)
}

func (c *EventServiceClient) DeleteEvent(ctx context.Context, req *connect.Request[DeleteEventRequest]) (*connect.Response[DeleteEventResponse], error) {
	return c.deleteEvent.CallUnary(ctx, req)
}

func (c *EventServiceClient) Subscribe(ctx context.Context, req *connect.Request[SubscribeRequest]) (*connect.Response[SubscribeResponse], error) {
	return c.subscribe.CallUnary(ctx, req)
}

func (c *EventServiceClient) Unsubscribe(ctx context.Context, req *connect.Request[UnsubscribeRequest]) (*connect.Response[UnsubscribeResponse], error) {
	return c.unsubscribe.CallUnary(ctx, req)
}

func (c *EventServiceClient) AddComment(ctx context.Context, req *connect.Request[AddCommentRequest]) (*connect.Response[AddCommentResponse], error) {
	return c.addComment.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListComments(ctx context.Context, req *connect.Request[ListCommentsRequest]) (*connect.Response[ListCommentsResponse], error) {
	return c.listComments.CallUnary(ctx, req)
}

// GroupServiceHandler is implemented by the group service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	JoinGroup(context.Context, *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
}

// NewGroupServiceHandler returns the mount path and handler of the group
// service.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, GroupServiceCreateGroupProcedure, svc.CreateGroup, opts)
	handle(mux, GroupServiceJoinGroupProcedure, svc.JoinGroup, opts)
	handle(mux, GroupServiceGetGroupProcedure, svc.GetGroup, opts)
	handle(mux, GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts)
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient calls the group service.
type GroupServiceClient struct {
	createGroup *connect.Client[CreateGroupRequest, CreateGroupResponse]
	joinGroup   *connect.Client[JoinGroupRequest, JoinGroupResponse]
	getGroup    *connect.Client[GetGroupRequest, GetGroupResponse]
	deleteGroup *connect.Client[DeleteGroupRequest, DeleteGroupResponse]
}

// NewGroupServiceClient creates a client for the server at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	return &GroupServiceClient{
		createGroup: newClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, opts),
		joinGroup:   newClient[JoinGroupRequest, JoinGroupResponse](httpClient, baseURL, GroupServiceJoinGroupProcedure, opts),
		getGroup:    newClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL, GroupServiceGetGroupProcedure, opts),
		deleteGroup: newClient[DeleteGroupRequest, DeleteGroupResponse](httpClient, baseURL, GroupServiceDeleteGroupProcedure, opts),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) JoinGroup(ctx context.Context, req *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error) {
	return c.joinGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

// PushServiceHandler is implemented by the push service.
type PushServiceHandler interface {
	Subscribe(context.Context, *connect.Request[PushSubscribeRequest]) (*connect.Response[PushSubscribeResponse], error)
	Unsubscribe(context.Context, *connect.Request[PushUnsubscribeRequest]) (*connect.Response[PushUnsubscribeResponse], error)
	VAPIDPublicKey(context.Context, *connect.Request[VAPIDPublicKeyRequest]) (*connect.Response[VAPIDPublicKeyResponse], error)
	RunReminderSweep(context.Context, *connect.Request[RunReminderSweepRequest]) (*connect.Response[RunReminderSweepResponse], error)
}

// NewPushServiceHandler returns the mount path and handler of the push
// service.
func NewPushServiceHandler(svc PushServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, PushServiceSubscribeProcedure, svc.Subscribe, opts)
	handle(mux, PushServiceUnsubscribeProcedure, svc.Unsubscribe, opts)
	handle(mux, PushServiceVAPIDPublicKeyProcedure, svc.VAPIDPublicKey, opts)
	handle(mux, PushServiceRunReminderSweepProcedure, svc.RunReminderSweep, opts)
	return "/" + PushServiceName + "/", mux
}

// PushServiceClient calls the push service.
type PushServiceClient struct {
	subscribe        *connect.Client[PushSubscribeRequest, PushSubscribeResponse]
	unsubscribe      *connect.Client[PushUnsubscribeRequest, PushUnsubscribeResponse]
	vapidPublicKey   *connect.Client[VAPIDPublicKeyRequest, VAPIDPublicKeyResponse]
	runReminderSweep *connect.Client[RunReminderSweepRequest, RunReminderSweepResponse]
}

// NewPushServiceClient creates a client for the server at baseURL.
func NewPushServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PushServiceClient {
	return &PushServiceClient{
		subscribe:        newClient[PushSubscribeRequest, PushSubscribeResponse](httpClient, baseURL, PushServiceSubscribeProcedure, opts),
		unsubscribe:      newClient[PushUnsubscribeRequest, PushUnsubscribeResponse](httpClient, baseURL, PushServiceUnsubscribeProcedure, opts),
		vapidPublicKey:   newClient[VAPIDPublicKeyRequest, VAPIDPublicKeyResponse](httpClient, baseURL, PushServiceVAPIDPublicKeyProcedure, opts),
		runReminderSweep: newClient[RunReminderSweepRequest, RunReminderSweepResponse](httpClient, baseURL, PushServiceRunReminderSweepProcedure, opts),
	}
}

func (c *PushServiceClient) Subscribe(ctx context.Context, req *connect.Request[PushSubscribeRequest]) (*connect.Response[PushSubscribeResponse], error) {
	return c.subscribe.CallUnary(ctx, req)
}

func (c *PushServiceClient) Unsubscribe(ctx context.Context, req *connect.Request[PushUnsubscribeRequest]) (*connect.Response[PushUnsubscribeResponse], error) {
	return c.unsubscribe.CallUnary(ctx, req)
}

func (c *PushServiceClient) VAPIDPublicKey(ctx context.Context, req *connect.Request[VAPIDPublicKeyRequest]) (*connect.Response[VAPIDPublicKeyResponse], error) {
	return c.vapidPublicKey.CallUnary(ctx, req)
}

func (c *PushServiceClient) RunReminderSweep(ctx context.Context, req *connect.Request[RunReminderSweepRequest]) (*connect.Response[RunReminderSweepResponse], error) {
	return c.runReminderSweep.CallUnary(ctx, req)
}

package service

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/outings/internal/events"
	"github.com/mmynk/outings/internal/groups"
	"github.com/mmynk/outings/internal/middleware"
	"github.com/mmynk/outings/internal/notify"
	"github.com/mmynk/outings/internal/reminder"
	"github.com/mmynk/outings/internal/storage/sqlite"
	"github.com/mmynk/outings/pkg/api"
)

const testTriggerToken = "sweep-secret"

type testEnv struct {
	server  *httptest.Server
	store   *sqlite.SQLiteStore
	manager *events.Manager

	events *api.EventServiceClient
	groups *api.GroupServiceClient
	push   *api.PushServiceClient
}

// setupTestServer serves every service over a temp database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	notifier := notify.NewNotifier(store, notify.LogSender{}, 2, time.UTC)
	manager := events.NewManager(store, store, notifier)
	dispatcher := reminder.NewDispatcher(store, notifier, 0)

	interceptors := connect.WithInterceptors(
		middleware.IdentityInterceptor(),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewEventServiceHandler(NewEventService(manager), interceptors))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(groups.NewManager(store)), interceptors))
	mux.Handle(api.NewPushServiceHandler(NewPushService(store, dispatcher, "test-public-key", testTriggerToken), interceptors))
	NewCalendarHandler(manager).Register(mux)

	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		manager.Wait()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return &testEnv{
		server:  server,
		store:   store,
		manager: manager,
		events:  api.NewEventServiceClient(http.DefaultClient, server.URL),
		groups:  api.NewGroupServiceClient(http.DefaultClient, server.URL),
		push:    api.NewPushServiceClient(http.DefaultClient, server.URL),
	}
}

// as builds a request sent under the given display name.
func as[T any](name string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if name != "" {
		req.Header().Set(middleware.DisplayNameHeader, name)
	}
	return req
}

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}

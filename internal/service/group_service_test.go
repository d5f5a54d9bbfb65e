package service

import (
	"context"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/outings/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.groups.CreateGroup(context.Background(), as("Alice", &api.CreateGroupRequest{
		Name: "Crèche des Lilas",
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if resp.Msg.Group == nil {
		t.Fatal("expected group in response")
	}
	if resp.Msg.Group.CreatedBy != "Alice" {
		t.Errorf("expected creator Alice, got %q", resp.Msg.Group.CreatedBy)
	}
	if len(resp.Msg.Group.Code) != 6 {
		t.Errorf("expected a 6-character code, got %q", resp.Msg.Group.Code)
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.groups.CreateGroup(context.Background(), as("Alice", &api.CreateGroupRequest{Name: "  "}))
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{Name: "Parc"}))
	expectCode(t, err, connect.CodeInvalidArgument)
}

func TestJoinGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	created, err := env.groups.CreateGroup(ctx, as("Alice", &api.CreateGroupRequest{Name: "Voisins"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	tests := []struct {
		name string
		code string
		want connect.Code
	}{
		{"exact", created.Msg.Group.Code, 0},
		{"lowercase with spaces", "  " + strings.ToLower(created.Msg.Group.Code) + " ", 0},
		{"unknown", "ZZZZZZ", connect.CodeNotFound},
		{"malformed", "ABC", connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.groups.JoinGroup(ctx, connect.NewRequest(&api.JoinGroupRequest{Code: tt.code}))
			if tt.want != 0 {
				expectCode(t, err, tt.want)
				return
			}
			if err != nil {
				t.Fatalf("JoinGroup failed: %v", err)
			}
			if resp.Msg.Group.ID != created.Msg.Group.ID {
				t.Errorf("joined %q, want %q", resp.Msg.Group.ID, created.Msg.Group.ID)
			}
		})
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.groups.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{
		GroupID: "non-existent-id",
	}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	created, err := env.groups.CreateGroup(ctx, as("Alice", &api.CreateGroupRequest{Name: "Foot"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := created.Msg.Group.ID

	in := futureEvent("Match")
	in.GroupID = groupID
	ev := createEvent(t, env, "Alice", in)

	_, err = env.groups.DeleteGroup(ctx, as("Alice", &api.DeleteGroupRequest{GroupID: groupID}))
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.DeleteGroup(ctx, as("Bob", &api.DeleteGroupRequest{GroupID: groupID, Confirm: true}))
	expectCode(t, err, connect.CodePermissionDenied)

	if _, err := env.groups.DeleteGroup(ctx, as("Alice", &api.DeleteGroupRequest{GroupID: groupID, Confirm: true})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err = env.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
	expectCode(t, err, connect.CodeNotFound)

	_, err = env.events.GetEvent(ctx, connect.NewRequest(&api.GetEventRequest{EventID: ev.ID}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestCreateEvent_UnknownGroup(t *testing.T) {
	env := setupTestServer(t)

	in := futureEvent("Orphan")
	in.GroupID = "missing"
	_, err := env.events.CreateEventSeries(context.Background(), as("Alice", &api.CreateEventSeriesRequest{Event: in}))
	expectCode(t, err, connect.CodeInvalidArgument)
}

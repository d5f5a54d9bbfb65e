package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/outings/internal/groups"
	"github.com/mmynk/outings/internal/middleware"
	"github.com/mmynk/outings/pkg/api"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	groups *groups.Manager
}

// NewGroupService creates a new GroupService over the given manager.
func NewGroupService(manager *groups.Manager) *GroupService {
	return &GroupService{groups: manager}
}

// CreateGroup creates a new group with a fresh join code.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	createdBy := nameOr(ctx, req.Msg.CreatedBy)
	slog.Info("CreateGroup request received", "name", req.Msg.Name, "created_by", createdBy)

	group, err := s.groups.Create(ctx, req.Msg.Name, createdBy)
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID, "code", group.Code)

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// JoinGroup resolves a join code. Membership is kept by the client.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	slog.Info("JoinGroup request received", "code", req.Msg.Code)

	group, err := s.groups.Join(ctx, req.Msg.Code)
	if err != nil {
		slog.Error("JoinGroup failed", "code", req.Msg.Code, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("JoinGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&api.JoinGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.groups.Get(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup removes a group and its events. Only its creator may do so.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	requester := middleware.GetDisplayName(ctx)
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID, "requester", requester)

	if err := s.groups.Delete(ctx, req.Msg.GroupID, requester, req.Msg.Confirm); err != nil {
		slog.Error("DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

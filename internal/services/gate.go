package services

import (
	"context"

	"github.com/yukikurage/taskquest-api/internal/models"
)

// TaskAction names an action gated by task permissions.
type TaskAction int

const (
	ActionViewTask TaskAction = iota
	ActionEditTask
	ActionChangeStatus
	ActionDeleteTask
	ActionManageCollaborators
)

// TaskPermissions is the result of CanModifyTask.
type TaskPermissions struct {
	Member bool `json:"member"`
	Admin  bool `json:"admin"`
}

// Allows applies the task policy table. Every action requires membership.
func (p TaskPermissions) Allows(action TaskAction) bool {
	if !p.Member {
		return false
	}
	switch action {
	case ActionViewTask, ActionChangeStatus:
		return true
	case ActionEditTask, ActionDeleteTask, ActionManageCollaborators:
		return p.Admin
	}
	return false
}

// AllowsCollaboratorUpdate reports whether actorID may change the
// collaborator record of collaboratorID.
func (p TaskPermissions) AllowsCollaboratorUpdate(actorID, collaboratorID uint64) bool {
	return p.Member && (p.Admin || actorID == collaboratorID)
}

// AuthorizationGate composes membership answers with task ownership.
type AuthorizationGate struct {
	membership *MembershipService
}

// NewAuthorizationGate creates a new AuthorizationGate.
func NewAuthorizationGate(membership *MembershipService) *AuthorizationGate {
	return &AuthorizationGate{membership: membership}
}

// CanModifyTask computes the permissions a user holds on a task.
func (g *AuthorizationGate) CanModifyTask(ctx context.Context, userID uint64, task *models.Task) TaskPermissions {
	perms := TaskPermissions{
		Member: g.membership.IsTeamMember(ctx, userID, task.TeamID),
	}
	if !perms.Member {
		return perms
	}
	perms.Admin = task.CreatedByUserID == userID || g.membership.IsTeamAdmin(ctx, userID, task.TeamID)
	return perms
}

// CanCreateTask requires team membership and team or workspace admin rights.
func (g *AuthorizationGate) CanCreateTask(ctx context.Context, userID, teamID uint64) bool {
	return g.membership.IsTeamMember(ctx, userID, teamID) && g.membership.IsTeamAdmin(ctx, userID, teamID)
}

// Authorize returns nil if perms allow action, or the matching Forbidden error.
func (g *AuthorizationGate) Authorize(perms TaskPermissions, action TaskAction) error {
	if perms.Allows(action) {
		return nil
	}
	if !perms.Member {
		return ErrNotTeamMember
	}
	return ErrNotTaskAdmin
}

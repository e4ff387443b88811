package services

import (
	"context"
	"errors"
	"log"

	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"gorm.io/gorm"
)

// MembershipService answers team and workspace membership questions. Every
// method fails closed: a missing row or a storage error yields false.
type MembershipService struct {
	store *repository.Store
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(store *repository.Store) *MembershipService {
	return &MembershipService{store: store}
}

// IsTeamMember reports whether a TeamMember row exists for the pair.
func (s *MembershipService) IsTeamMember(ctx context.Context, userID, teamID uint64) bool {
	_, err := s.store.WithContext(ctx).Teams.FindMember(teamID, userID)
	return s.found(err, "team member", userID, teamID)
}

// IsTeamAdmin reports whether the user is the team's admin or an admin of
// the workspace owning the team.
func (s *MembershipService) IsTeamAdmin(ctx context.Context, userID, teamID uint64) bool {
	store := s.store.WithContext(ctx)

	team, err := store.Teams.FindByID(teamID)
	if !s.found(err, "team", userID, teamID) {
		return false
	}
	if team.AdminUserID == userID {
		return true
	}

	return s.isWorkspaceAdmin(store, userID, team.WorkspaceID)
}

// IsWorkspaceMember reports whether the user belongs to the workspace.
func (s *MembershipService) IsWorkspaceMember(ctx context.Context, userID, workspaceID uint64) bool {
	_, err := s.store.WithContext(ctx).Workspaces.FindMember(workspaceID, userID)
	return s.found(err, "workspace member", userID, workspaceID)
}

// IsWorkspaceAdmin reports whether the user holds the admin role in the workspace.
func (s *MembershipService) IsWorkspaceAdmin(ctx context.Context, userID, workspaceID uint64) bool {
	return s.isWorkspaceAdmin(s.store.WithContext(ctx), userID, workspaceID)
}

func (s *MembershipService) isWorkspaceAdmin(store *repository.Store, userID, workspaceID uint64) bool {
	member, err := store.Workspaces.FindMember(workspaceID, userID)
	if !s.found(err, "workspace member", userID, workspaceID) {
		return false
	}
	return member.Role == models.WorkspaceRoleAdmin
}

func (s *MembershipService) found(err error, what string, userID, scopeID uint64) bool {
	if err == nil {
		return true
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("membership: %s lookup failed for user %d in %d: %v", what, userID, scopeID, err)
	}
	return false
}

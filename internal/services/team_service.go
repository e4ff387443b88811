package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamNameEmpty         = validationError("team name cannot be empty")
	ErrTargetNotInWorkspace  = validationError("user is not a member of this workspace")
	ErrCannotRemoveTeamAdmin = validationError("the team admin cannot be removed")
)

// TeamService provides business logic for team operations.
type TeamService struct {
	store      *repository.Store
	membership *MembershipService
}

// NewTeamService creates a new TeamService.
func NewTeamService(store *repository.Store, membership *MembershipService) *TeamService {
	return &TeamService{
		store:      store,
		membership: membership,
	}
}

// ListMyTeams returns the teams the user is a member of.
func (s *TeamService) ListMyTeams(ctx context.Context, userID uint64) ([]models.Team, error) {
	memberships, err := s.store.WithContext(ctx).Teams.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	teams := make([]models.Team, 0, len(memberships))
	for _, m := range memberships {
		if m.Team.ID == 0 {
			continue
		}
		teams = append(teams, m.Team)
	}
	return teams, nil
}

// CreateTeam creates a team in a workspace. Workspace admins only; the
// creator becomes the team admin.
func (s *TeamService) CreateTeam(ctx context.Context, workspaceID, actorID uint64, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameEmpty
	}

	store := s.store.WithContext(ctx)
	if _, err := store.Workspaces.FindByID(workspaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if !s.membership.IsWorkspaceMember(ctx, actorID, workspaceID) {
		return nil, ErrNotWorkspaceMember
	}
	if !s.membership.IsWorkspaceAdmin(ctx, actorID, workspaceID) {
		return nil, ErrNotWorkspaceAdmin
	}

	team := &models.Team{
		WorkspaceID: workspaceID,
		Name:        name,
		AdminUserID: actorID,
	}
	if err := store.Teams.CreateWithAdmin(team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

// AddMember adds a workspace member to a team. Team or workspace admins only.
func (s *TeamService) AddMember(ctx context.Context, teamID, actorID, userID uint64) error {
	team, err := s.findTeam(ctx, teamID)
	if err != nil {
		return err
	}

	if !s.membership.IsTeamAdmin(ctx, actorID, teamID) {
		return ErrNotTeamAdmin
	}
	if !s.membership.IsWorkspaceMember(ctx, userID, team.WorkspaceID) {
		return ErrTargetNotInWorkspace
	}

	if err := s.store.WithContext(ctx).Teams.AddMember(&models.TeamMember{TeamID: teamID, UserID: userID}); err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

// RemoveMember removes a user from a team. Admins may remove others; members
// may leave on their own.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, actorID, userID uint64) error {
	team, err := s.findTeam(ctx, teamID)
	if err != nil {
		return err
	}

	if actorID != userID && !s.membership.IsTeamAdmin(ctx, actorID, teamID) {
		return ErrNotTeamAdmin
	}
	if userID == team.AdminUserID {
		return ErrCannotRemoveTeamAdmin
	}

	store := s.store.WithContext(ctx)
	if _, err := store.Teams.FindMember(teamID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find team member: %w", err)
	}

	if err := store.Teams.RemoveMember(teamID, userID); err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return nil
}

func (s *TeamService) findTeam(ctx context.Context, teamID uint64) (*models.Team, error) {
	team, err := s.store.WithContext(ctx).Teams.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"github.com/yukikurage/taskquest-api/internal/utils"
	"gorm.io/gorm"
)

const defaultWorkspaceName = "Workspace"

var (
	ErrWorkspaceCodeRequired      = validationError("code is required")
	ErrWorkspaceNameEmpty         = validationError("workspace name cannot be empty")
	ErrCodeGenerationFailed       = errors.New("failed to generate workspace code")
	ErrAlreadyWorkspaceMember     = fmt.Errorf("%w: user is already a member of this workspace", ErrConflict)
	ErrCannotRemoveWorkspaceAdmin = validationError("the workspace admin cannot be removed")
)

// WorkspaceService provides business logic for workspace operations.
type WorkspaceService struct {
	store      *repository.Store
	membership *MembershipService
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(store *repository.Store, membership *MembershipService) *WorkspaceService {
	return &WorkspaceService{
		store:      store,
		membership: membership,
	}
}

// WorkspaceWithTeam is a workspace together with the team new members land in.
type WorkspaceWithTeam struct {
	Workspace     *models.Workspace
	DefaultTeamID uint64
}

// WorkspaceSummary is the detail view of a workspace.
type WorkspaceSummary struct {
	Workspace      *models.Workspace
	Role           models.WorkspaceRole
	Members        []models.UserWorkspace
	TotalTasks     int64
	CompletedTasks int64
}

// CreateWorkspace creates a workspace with its personal team, owned by adminID.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, adminID uint64, name string) (*WorkspaceWithTeam, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultWorkspaceName
	}

	code, err := utils.GenerateWorkspaceCode(constants.WorkspaceCodeLength)
	if err != nil {
		return nil, ErrCodeGenerationFailed
	}

	workspace := &models.Workspace{
		Name:        name,
		Code:        code,
		AdminUserID: adminID,
	}

	team, err := s.store.WithContext(ctx).Workspaces.CreateWithAdmin(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return &WorkspaceWithTeam{Workspace: workspace, DefaultTeamID: team.ID}, nil
}

// JoinWorkspace adds the user as a member of the workspace identified by
// code and to its personal team.
func (s *WorkspaceService) JoinWorkspace(ctx context.Context, userID uint64, code string) (*WorkspaceWithTeam, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrWorkspaceCodeRequired
	}

	var result *WorkspaceWithTeam
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		workspace, err := tx.Workspaces.FindByCode(code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkspaceNotFound
			}
			return fmt.Errorf("failed to find workspace: %w", err)
		}

		if _, err := tx.Workspaces.FindMember(workspace.ID, userID); err == nil {
			return ErrAlreadyWorkspaceMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check membership: %w", err)
		}

		if err := tx.Workspaces.AddMember(&models.UserWorkspace{
			UserID:      userID,
			WorkspaceID: workspace.ID,
			Role:        models.WorkspaceRoleMember,
			JoinedAt:    time.Now(),
		}); err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}

		team, err := tx.Teams.FindByName(workspace.ID, models.PersonalTeamName)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			team = &models.Team{
				WorkspaceID: workspace.ID,
				Name:        models.PersonalTeamName,
				AdminUserID: workspace.AdminUserID,
			}
			err = tx.Teams.CreateWithAdmin(team)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve personal team: %w", err)
		}

		if err := tx.Teams.AddMember(&models.TeamMember{TeamID: team.ID, UserID: userID}); err != nil {
			return fmt.Errorf("failed to add team member: %w", err)
		}

		result = &WorkspaceWithTeam{Workspace: workspace, DefaultTeamID: team.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListWorkspacesForUser returns workspaces the user belongs to.
func (s *WorkspaceService) ListWorkspacesForUser(ctx context.Context, userID uint64) ([]models.UserWorkspace, error) {
	memberships, err := s.store.WithContext(ctx).Workspaces.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return memberships, nil
}

// GetMembership returns the workspace and the user's membership in it.
func (s *WorkspaceService) GetMembership(ctx context.Context, workspaceID, userID uint64) (*models.Workspace, *models.UserWorkspace, error) {
	store := s.store.WithContext(ctx)

	workspace, err := store.Workspaces.FindByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrWorkspaceNotFound
		}
		return nil, nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	member, err := store.Workspaces.FindMember(workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotWorkspaceMember
		}
		return nil, nil, fmt.Errorf("failed to find membership: %w", err)
	}

	return workspace, member, nil
}

// ListTeams returns the teams of a workspace the user belongs to.
func (s *WorkspaceService) ListTeams(ctx context.Context, workspaceID, userID uint64) ([]models.Team, error) {
	if _, _, err := s.GetMembership(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	teams, err := s.store.WithContext(ctx).Teams.ListByWorkspace(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// GetSummary returns members and task counts of a workspace.
func (s *WorkspaceService) GetSummary(ctx context.Context, workspaceID, userID uint64) (*WorkspaceSummary, error) {
	workspace, member, err := s.GetMembership(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	store := s.store.WithContext(ctx)
	members, err := store.Workspaces.ListMembers(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	total, err := store.Workspaces.CountTasks(workspaceID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	complete := models.TaskStatusComplete
	completed, err := store.Workspaces.CountTasks(workspaceID, &complete)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return &WorkspaceSummary{
		Workspace:      workspace,
		Role:           member.Role,
		Members:        members,
		TotalTasks:     total,
		CompletedTasks: completed,
	}, nil
}

// RenameWorkspace changes the workspace name. Admin only.
func (s *WorkspaceService) RenameWorkspace(ctx context.Context, workspaceID, actorID uint64, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrWorkspaceNameEmpty
	}

	workspace, err := s.requireAdmin(ctx, workspaceID, actorID)
	if err != nil {
		return nil, err
	}

	workspace.Name = name
	if err := s.store.WithContext(ctx).Workspaces.Update(workspace); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return workspace, nil
}

// RegenerateCode issues a new join code. Admin only.
func (s *WorkspaceService) RegenerateCode(ctx context.Context, workspaceID, actorID uint64) (*models.Workspace, error) {
	workspace, err := s.requireAdmin(ctx, workspaceID, actorID)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateWorkspaceCode(constants.WorkspaceCodeLength)
	if err != nil {
		return nil, ErrCodeGenerationFailed
	}

	workspace.Code = code
	if err := s.store.WithContext(ctx).Workspaces.Update(workspace); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return workspace, nil
}

// DeleteWorkspace removes the workspace and everything it owns. Admin only.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, workspaceID, actorID uint64) error {
	if _, err := s.requireAdmin(ctx, workspaceID, actorID); err != nil {
		return err
	}

	if err := s.store.WithContext(ctx).Workspaces.Delete(workspaceID); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	return nil
}

// RemoveMember removes a user from the workspace and its teams. Admins may
// remove anyone but the workspace admin; members may remove themselves.
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, actorID, targetUserID uint64) error {
	workspace, _, err := s.GetMembership(ctx, workspaceID, actorID)
	if err != nil {
		return err
	}

	if actorID != targetUserID && !s.membership.IsWorkspaceAdmin(ctx, actorID, workspaceID) {
		return ErrNotWorkspaceAdmin
	}
	if targetUserID == workspace.AdminUserID {
		return ErrCannotRemoveWorkspaceAdmin
	}

	store := s.store.WithContext(ctx)
	if _, err := store.Workspaces.FindMember(workspaceID, targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}

	if err := store.Workspaces.RemoveMember(workspaceID, targetUserID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

func (s *WorkspaceService) requireAdmin(ctx context.Context, workspaceID, actorID uint64) (*models.Workspace, error) {
	workspace, member, err := s.GetMembership(ctx, workspaceID, actorID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.WorkspaceRoleAdmin {
		return nil, ErrNotWorkspaceAdmin
	}
	return workspace, nil
}

package dto

import (
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/services"
)

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	AdminUserID uint64 `json:"admin_user_id"`
}

// WorkspaceWithRoleDTO represents a workspace with the user's role
type WorkspaceWithRoleDTO struct {
	WorkspaceDTO
	Role models.WorkspaceRole `json:"role"`
}

// CreatedWorkspaceDTO is returned when a workspace is created or joined
type CreatedWorkspaceDTO struct {
	WorkspaceDTO
	DefaultTeamID uint64 `json:"default_team_id"`
}

// WorkspaceMemberDTO represents a member of a workspace
type WorkspaceMemberDTO struct {
	User     UserSummaryDTO       `json:"user"`
	Role     models.WorkspaceRole `json:"role"`
	JoinedAt time.Time            `json:"joined_at"`
}

// WorkspaceSummaryDTO represents detailed workspace information
type WorkspaceSummaryDTO struct {
	WorkspaceDTO
	YourRole       models.WorkspaceRole `json:"your_role"`
	Members        []WorkspaceMemberDTO `json:"members"`
	TotalTasks     int64                `json:"total_tasks"`
	CompletedTasks int64                `json:"completed_tasks"`
}

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO. The join code is
// only exposed to admins.
func ToWorkspaceDTO(workspace models.Workspace, includeCode bool) WorkspaceDTO {
	dto := WorkspaceDTO{
		ID:          workspace.ID,
		Name:        workspace.Name,
		AdminUserID: workspace.AdminUserID,
	}
	if includeCode {
		dto.Code = workspace.Code
	}
	return dto
}

// ToWorkspaceWithRoleDTOs converts memberships to DTOs
func ToWorkspaceWithRoleDTOs(memberships []models.UserWorkspace) []WorkspaceWithRoleDTO {
	out := make([]WorkspaceWithRoleDTO, len(memberships))
	for i, m := range memberships {
		out[i] = WorkspaceWithRoleDTO{
			WorkspaceDTO: ToWorkspaceDTO(m.Workspace, m.Role == models.WorkspaceRoleAdmin),
			Role:         m.Role,
		}
	}
	return out
}

// ToCreatedWorkspaceDTO converts a workspace with its default team
func ToCreatedWorkspaceDTO(result *services.WorkspaceWithTeam, includeCode bool) CreatedWorkspaceDTO {
	return CreatedWorkspaceDTO{
		WorkspaceDTO:  ToWorkspaceDTO(*result.Workspace, includeCode),
		DefaultTeamID: result.DefaultTeamID,
	}
}

// ToWorkspaceSummaryDTO converts a workspace summary
func ToWorkspaceSummaryDTO(summary *services.WorkspaceSummary) WorkspaceSummaryDTO {
	members := make([]WorkspaceMemberDTO, len(summary.Members))
	for i, m := range summary.Members {
		members[i] = WorkspaceMemberDTO{
			User:     ToUserSummaryDTO(m.User),
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		}
	}

	return WorkspaceSummaryDTO{
		WorkspaceDTO:   ToWorkspaceDTO(*summary.Workspace, summary.Role == models.WorkspaceRoleAdmin),
		YourRole:       summary.Role,
		Members:        members,
		TotalTasks:     summary.TotalTasks,
		CompletedTasks: summary.CompletedTasks,
	}
}

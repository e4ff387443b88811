package dto

import (
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/services"
	"github.com/yukikurage/taskquest-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID                uint64          `json:"id"`
	Username          string          `json:"username"`
	Email             string          `json:"email,omitempty"`
	Role              models.UserRole `json:"role,omitempty"`
	FullName          string          `json:"full_name,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	Country           string          `json:"country,omitempty"`
	City              string          `json:"city,omitempty"`
	Timezone          string          `json:"timezone,omitempty"`
	Theme             string          `json:"theme,omitempty"`
	AvatarURL         string          `json:"avatar_url,omitempty"`
	Level             int             `json:"level"`
	XP                int             `json:"xp"`
	NumTasksCompleted int             `json:"num_tasks_completed"`
}

// UserSummaryDTO is the public view of another user
type UserSummaryDTO struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Level     int    `json:"level"`
}

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID          uint64 `json:"id"`
	WorkspaceID uint64 `json:"workspace_id"`
	Name        string `json:"name"`
	AdminUserID uint64 `json:"admin_user_id"`
}

// CollaboratorDTO represents a task collaborator in API responses
type CollaboratorDTO struct {
	TaskID          uint64                    `json:"task_id"`
	UserID          uint64                    `json:"user_id"`
	InvitedByUserID *uint64                   `json:"invited_by_user_id"`
	Status          models.CollaboratorStatus `json:"status"`
	Role            models.CollaboratorRole   `json:"role"`
	User            *UserSummaryDTO           `json:"user,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                  uint64                `json:"id"`
	TeamID              uint64                `json:"team_id"`
	CreatedByUserID     uint64                `json:"created_by_user_id"`
	TaskName            string                `json:"task_name"`
	TaskDesc            *string               `json:"task_desc"`
	Difficulty          models.TaskDifficulty `json:"difficulty"`
	TaskXP              int                   `json:"task_xp"`
	DateDue             *time.Time            `json:"date_due"`
	Status              models.TaskStatus     `json:"status"`
	AssignedToUserID    *uint64               `json:"assigned_to_user_id"`
	AssignedToUsername  *string               `json:"assigned_to_username"`
	CompletedByUserID   *uint64               `json:"completed_by_user_id"`
	CompletedByUsername *string               `json:"completed_by_username"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
	Team                *TeamDTO              `json:"team,omitempty"`
	Collaborators       []CollaboratorDTO     `json:"collaborators,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// AchievementDTO represents an achievement in API responses
type AchievementDTO struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AwardDTO is an achievement held by the user
type AwardDTO struct {
	AchievementDTO
	AwardedAt time.Time `json:"awarded_at"`
}

// StatusChangeResponse is returned by a status change. User is null unless
// the change completed the task.
type StatusChangeResponse struct {
	Task         TaskDTO          `json:"task"`
	User         *UserDTO         `json:"user"`
	Achievements []AchievementDTO `json:"achievements"`
}

// GeneratedTaskDTO is an AI drafted task
type GeneratedTaskDTO struct {
	TaskName   string     `json:"task_name"`
	TaskDesc   string     `json:"task_desc"`
	Difficulty string     `json:"difficulty"`
	DateDue    *time.Time `json:"date_due"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		Role:              user.Role,
		FullName:          user.FullName,
		Phone:             user.Phone,
		Country:           user.Country,
		City:              user.City,
		Timezone:          user.Timezone,
		Theme:             user.Theme,
		AvatarURL:         user.AvatarURL,
		Level:             user.Level,
		XP:                user.XP,
		NumTasksCompleted: user.NumTasksCompleted,
	}
}

// ToUserSummaryDTO converts a User model to UserSummaryDTO
func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:        user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		Level:     user.Level,
	}
}

// ToUserSummaryDTOs converts users to summaries
func ToUserSummaryDTOs(users []models.User) []UserSummaryDTO {
	out := make([]UserSummaryDTO, len(users))
	for i, user := range users {
		out[i] = ToUserSummaryDTO(user)
	}
	return out
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	return TeamDTO{
		ID:          team.ID,
		WorkspaceID: team.WorkspaceID,
		Name:        team.Name,
		AdminUserID: team.AdminUserID,
	}
}

// ToTeamDTOs converts teams to DTOs
func ToTeamDTOs(teams []models.Team) []TeamDTO {
	out := make([]TeamDTO, len(teams))
	for i, team := range teams {
		out[i] = ToTeamDTO(team)
	}
	return out
}

// ToCollaboratorDTO converts a TaskCollaborator model to CollaboratorDTO
func ToCollaboratorDTO(collaborator models.TaskCollaborator) CollaboratorDTO {
	dto := CollaboratorDTO{
		TaskID:          collaborator.TaskID,
		UserID:          collaborator.UserID,
		InvitedByUserID: collaborator.InvitedByUserID,
		Status:          collaborator.Status,
		Role:            collaborator.Role,
	}

	// Include user if preloaded
	if collaborator.User.ID != 0 {
		user := ToUserSummaryDTO(collaborator.User)
		dto.User = &user
	}

	return dto
}

// ToCollaboratorDTOs converts collaborators to DTOs
func ToCollaboratorDTOs(collaborators []models.TaskCollaborator) []CollaboratorDTO {
	out := make([]CollaboratorDTO, len(collaborators))
	for i, collaborator := range collaborators {
		out[i] = ToCollaboratorDTO(collaborator)
	}
	return out
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:                  task.ID,
		TeamID:              task.TeamID,
		CreatedByUserID:     task.CreatedByUserID,
		TaskName:            task.TaskName,
		TaskDesc:            task.TaskDesc,
		Difficulty:          task.Difficulty,
		TaskXP:              task.TaskXP,
		DateDue:             task.DateDue,
		Status:              task.Status,
		AssignedToUserID:    task.AssignedToUserID,
		AssignedToUsername:  task.AssignedToUsername,
		CompletedByUserID:   task.CompletedByUserID,
		CompletedByUsername: task.CompletedByUsername,
		CreatedAt:           task.CreatedAt,
		UpdatedAt:           task.UpdatedAt,
	}

	// Include team if preloaded
	if task.Team.ID != 0 {
		team := ToTeamDTO(task.Team)
		dto.Team = &team
	}

	// Include collaborators if preloaded
	if len(task.Collaborators) > 0 {
		dto.Collaborators = ToCollaboratorDTOs(task.Collaborators)
	}

	return dto
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: totalCount,
		TotalPages: params.TotalPages(totalCount),
	}
}

// ToAchievementDTOs converts achievements to DTOs; the result is never nil
func ToAchievementDTOs(achievements []models.Achievement) []AchievementDTO {
	out := make([]AchievementDTO, len(achievements))
	for i, a := range achievements {
		out[i] = AchievementDTO{Code: a.Code, Name: a.Name, Description: a.Description}
	}
	return out
}

// ToAwardDTOs converts awards to DTOs
func ToAwardDTOs(awards []models.UserAchievement) []AwardDTO {
	out := make([]AwardDTO, len(awards))
	for i, award := range awards {
		out[i] = AwardDTO{
			AchievementDTO: AchievementDTO{
				Code:        award.Achievement.Code,
				Name:        award.Achievement.Name,
				Description: award.Achievement.Description,
			},
			AwardedAt: award.AwardedAt,
		}
	}
	return out
}

// ToStatusChangeResponse converts the outcome of a status change
func ToStatusChangeResponse(result *services.StatusChangeResult) StatusChangeResponse {
	response := StatusChangeResponse{
		Task:         ToTaskDTO(*result.Task),
		Achievements: ToAchievementDTOs(result.Achievements),
	}
	if result.User != nil {
		user := ToUserDTO(*result.User)
		response.User = &user
	}
	return response
}

// ToGeneratedTaskDTOs converts AI drafts to DTOs
func ToGeneratedTaskDTOs(drafts []services.GeneratedTask) []GeneratedTaskDTO {
	out := make([]GeneratedTaskDTO, len(drafts))
	for i, d := range drafts {
		out[i] = GeneratedTaskDTO{
			TaskName:   d.TaskName,
			TaskDesc:   d.TaskDesc,
			Difficulty: d.Difficulty,
			DateDue:    d.DateDue,
		}
	}
	return out
}

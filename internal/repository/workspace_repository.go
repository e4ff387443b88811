package repository

import (
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

// CreateWithAdmin creates a workspace together with its personal team
func (r *GormWorkspaceRepository) CreateWithAdmin(workspace *models.Workspace) (*models.Team, error) {
	var team models.Team

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return err
		}

		now := time.Now()
		member := models.UserWorkspace{
			UserID:      workspace.AdminUserID,
			WorkspaceID: workspace.ID,
			Role:        models.WorkspaceRoleAdmin,
			JoinedAt:    now,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		team = models.Team{
			WorkspaceID: workspace.ID,
			Name:        models.PersonalTeamName,
			AdminUserID: workspace.AdminUserID,
		}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}

		return tx.Create(&models.TeamMember{
			TeamID:   team.ID,
			UserID:   workspace.AdminUserID,
			JoinedAt: now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &team, nil
}

// FindByID finds a workspace by ID
func (r *GormWorkspaceRepository) FindByID(id uint64) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.First(&workspace, id).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// FindByCode finds a workspace by its join code
func (r *GormWorkspaceRepository) FindByCode(code string) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.Where("code = ?", code).First(&workspace).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// Update updates a workspace
func (r *GormWorkspaceRepository) Update(workspace *models.Workspace) error {
	return r.db.Save(workspace).Error
}

// Delete deletes a workspace and all related data in a transaction
func (r *GormWorkspaceRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		teamIDs := tx.Model(&models.Team{}).Select("id").Where("workspace_id = ?", id)
		taskIDs := tx.Unscoped().Model(&models.Task{}).Select("id").Where("team_id IN (?)", teamIDs)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskCollaborator{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("team_id IN (?)", teamIDs).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id IN (?)", teamIDs).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&models.Team{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&models.UserWorkspace{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Workspace{}, id).Error
	})
}

// AddMember adds a member to a workspace
func (r *GormWorkspaceRepository) AddMember(member *models.UserWorkspace) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a member from a workspace and all of its teams
func (r *GormWorkspaceRepository) RemoveMember(workspaceID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		teamIDs := tx.Model(&models.Team{}).Select("id").Where("workspace_id = ?", workspaceID)
		if err := tx.Where("user_id = ? AND team_id IN (?)", userID, teamIDs).
			Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		return tx.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
			Delete(&models.UserWorkspace{}).Error
	})
}

// FindMember finds a specific workspace member
func (r *GormWorkspaceRepository) FindMember(workspaceID, userID uint64) (*models.UserWorkspace, error) {
	var member models.UserWorkspace
	if err := r.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembersByUserID lists all workspaces a user is a member of
func (r *GormWorkspaceRepository) ListMembersByUserID(userID uint64) ([]models.UserWorkspace, error) {
	var memberships []models.UserWorkspace
	if err := r.db.Preload("Workspace").
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembers lists all members of a workspace
func (r *GormWorkspaceRepository) ListMembers(workspaceID uint64) ([]models.UserWorkspace, error) {
	var members []models.UserWorkspace
	if err := r.db.Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CountTasks counts live tasks across the teams of a workspace
func (r *GormWorkspaceRepository) CountTasks(workspaceID uint64, status *models.TaskStatus) (int64, error) {
	var count int64
	query := r.db.Model(&models.Task{}).
		Joins("JOIN teams ON teams.id = tasks.team_id").
		Where("teams.workspace_id = ?", workspaceID)
	if status != nil {
		query = query.Where("tasks.status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

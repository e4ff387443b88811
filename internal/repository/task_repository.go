package repository

import (
	"github.com/yukikurage/taskquest-api/internal/database"
	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks of the given teams
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	if len(filter.TeamIDs) == 0 {
		return []models.Task{}, nil
	}

	query := r.filtered(filter)
	if filter.Page != nil {
		query = query.Scopes(database.Paginate(*filter.Page))
	}

	if err := query.
		Scopes(database.OldestFirst("tasks")).
		Preload("Team").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Count counts tasks of the given teams
func (r *GormTaskRepository) Count(filter TaskFilter) (int64, error) {
	if len(filter.TeamIDs) == 0 {
		return 0, nil
	}

	var total int64
	err := r.filtered(filter).Count(&total).Error
	return total, err
}

func (r *GormTaskRepository) filtered(filter TaskFilter) *gorm.DB {
	query := r.db.Model(&models.Task{}).Where("tasks.team_id IN ?", filter.TeamIDs)
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	return query
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	// Status, assignee and completer only change through UpdateStatus.
	return r.db.Model(task).
		Select("task_name", "task_desc", "difficulty", "task_xp", "date_due").
		Updates(task).Error
}

// UpdateStatus is a compare-and-swap on the stored status.
func (r *GormTaskRepository) UpdateStatus(task *models.Task, prev models.TaskStatus) error {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND status = ?", task.ID, prev).
		Updates(map[string]any{
			"status":                task.Status,
			"assigned_to_user_id":   task.AssignedToUserID,
			"assigned_to_username":  task.AssignedToUsername,
			"completed_by_user_id":  task.CompletedByUserID,
			"completed_by_username": task.CompletedByUsername,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskCollaborator{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// ListCollaborators lists collaborators of a task
func (r *GormTaskRepository) ListCollaborators(taskID uint64) ([]models.TaskCollaborator, error) {
	var collaborators []models.TaskCollaborator
	if err := r.db.Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&collaborators).Error; err != nil {
		return nil, err
	}
	return collaborators, nil
}

// FindCollaborator finds a specific collaborator
func (r *GormTaskRepository) FindCollaborator(taskID, userID uint64) (*models.TaskCollaborator, error) {
	var collaborator models.TaskCollaborator
	if err := r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&collaborator).Error; err != nil {
		return nil, err
	}
	return &collaborator, nil
}

// UpsertCollaborator inserts a collaborator or overwrites updateColumns on
// the existing row.
func (r *GormTaskRepository) UpsertCollaborator(collaborator *models.TaskCollaborator, updateColumns ...string) error {
	conflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
	}
	if len(updateColumns) == 0 {
		conflict.DoNothing = true
	} else {
		conflict.DoUpdates = clause.AssignmentColumns(append(updateColumns, "updated_at"))
	}

	return r.db.Clauses(conflict).Create(collaborator).Error
}

// UpdateCollaboratorStatus changes the status of a collaborator
func (r *GormTaskRepository) UpdateCollaboratorStatus(taskID, userID uint64, status models.CollaboratorStatus) error {
	result := r.db.Model(&models.TaskCollaborator{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RemoveCollaborator removes a collaborator
func (r *GormTaskRepository) RemoveCollaborator(taskID, userID uint64) error {
	result := r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&models.TaskCollaborator{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package repository

import (
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/progression"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernameOrEmail finds a user matching either identifier
func (r *GormUserRepository) FindByUsernameOrEmail(username, email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ? OR email = ?", username, email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile saves the given profile columns
func (r *GormUserRepository) UpdateProfile(id uint64, updates map[string]any) error {
	return r.db.Model(&models.User{ID: id}).Updates(updates).Error
}

// UpdateProgress is a compare-and-swap on (level, xp, num_tasks_completed).
func (r *GormUserRepository) UpdateProgress(id uint64, from, to progression.Snapshot) error {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND level = ? AND xp = ? AND num_tasks_completed = ?", id, from.Level, from.XP, from.NumTasksCompleted).
		Updates(map[string]any{
			"level":               to.Level,
			"xp":                  to.XP,
			"num_tasks_completed": to.NumTasksCompleted,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

// Search finds users by username or email substring
func (r *GormUserRepository) Search(excludeID uint64, query string, limit int) ([]models.User, error) {
	var users []models.User
	q := r.db.Where("id <> ?", excludeID)
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("username LIKE ? OR email LIKE ?", like, like)
	}
	if err := q.Order("username ASC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListByIDs loads the given users
func (r *GormUserRepository) ListByIDs(ids []uint64) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

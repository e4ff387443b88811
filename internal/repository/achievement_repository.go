package repository

import (
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAchievementRepository is a GORM implementation of AchievementRepository
type GormAchievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository creates a new AchievementRepository
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &GormAchievementRepository{db: db}
}

// Ensure creates the catalog row if missing, then reloads it by code
func (r *GormAchievementRepository) Ensure(achievement *models.Achievement) error {
	candidate := models.Achievement{
		Code:        achievement.Code,
		Name:        achievement.Name,
		Description: achievement.Description,
	}
	if err := r.db.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&candidate).Error; err != nil {
		return err
	}

	return r.db.Where("code = ?", achievement.Code).First(achievement).Error
}

// Award records an award unless the user already holds it
func (r *GormAchievementRepository) Award(userID, achievementID uint64, at time.Time) (bool, error) {
	result := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(&models.UserAchievement{
			UserID:        userID,
			AchievementID: achievementID,
			AwardedAt:     at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListByUserID lists awards of a user, oldest first
func (r *GormAchievementRepository) ListByUserID(userID uint64) ([]models.UserAchievement, error) {
	var awards []models.UserAchievement
	if err := r.db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Order("achievement_id ASC").
		Find(&awards).Error; err != nil {
		return nil, err
	}
	return awards, nil
}

package models

import "time"

type Achievement struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	Code        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name        string `gorm:"type:varchar(150);not null" json:"name"`
	Description string `gorm:"type:varchar(255);not null" json:"description"`
}

// UserAchievement records an award. The composite primary key guarantees at
// most one award per user per achievement.
type UserAchievement struct {
	UserID        uint64    `gorm:"primarykey" json:"user_id"`
	AchievementID uint64    `gorm:"primarykey" json:"achievement_id"`
	AwardedAt     time.Time `gorm:"not null" json:"awarded_at"`

	// Relations
	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

type User struct {
	ID                uint64         `gorm:"primarykey" json:"id"`
	Username          string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email             string         `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	PasswordHash      string         `gorm:"type:varchar(255);not null" json:"-"`
	Role              UserRole       `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	FullName          string         `gorm:"type:varchar(150)" json:"full_name"`
	Phone             string         `gorm:"type:varchar(50)" json:"phone"`
	Country           string         `gorm:"type:varchar(100)" json:"country"`
	City              string         `gorm:"type:varchar(100)" json:"city"`
	Timezone          string         `gorm:"type:varchar(100)" json:"timezone"`
	Theme             string         `gorm:"type:varchar(50);not null;default:'dark'" json:"theme"`
	AvatarURL         string         `gorm:"type:varchar(255)" json:"avatar_url"`
	Level             int            `gorm:"not null;default:1" json:"level"`
	XP                int            `gorm:"column:xp;not null;default:0" json:"xp"`
	NumTasksCompleted int            `gorm:"not null;default:0" json:"num_tasks_completed"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Workspaces []UserWorkspace `gorm:"foreignKey:UserID" json:"-"`
	Teams      []TeamMember    `gorm:"foreignKey:UserID" json:"-"`
}

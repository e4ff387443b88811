package models

import "time"

type Workspace struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(150);not null;default:'Workspace'" json:"name"`
	Code        string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	AdminUserID uint64    `gorm:"not null" json:"admin_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Members []UserWorkspace `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
	Teams   []Team          `gorm:"foreignKey:WorkspaceID" json:"teams,omitempty"`
}

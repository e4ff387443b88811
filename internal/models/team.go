package models

import "time"

// PersonalTeamName is the team every workspace starts with.
const PersonalTeamName = "personal"

type Team struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	WorkspaceID uint64    `gorm:"not null;index" json:"workspace_id"`
	Name        string    `gorm:"type:varchar(150);not null" json:"name"`
	AdminUserID uint64    `gorm:"not null" json:"admin_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Workspace Workspace    `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Members   []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Tasks     []Task       `gorm:"foreignKey:TeamID" json:"tasks,omitempty"`
}

type TeamMember struct {
	TeamID   uint64    `gorm:"primarykey" json:"team_id"`
	UserID   uint64    `gorm:"primarykey;index" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

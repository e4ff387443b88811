package models

import "time"

type WorkspaceRole string

const (
	WorkspaceRoleAdmin  WorkspaceRole = "admin"
	WorkspaceRoleMember WorkspaceRole = "member"
)

// UserWorkspace is the per-workspace membership record. The role here is
// independent of the global User.Role flag.
type UserWorkspace struct {
	UserID      uint64        `gorm:"primarykey" json:"user_id"`
	WorkspaceID uint64        `gorm:"primarykey;index" json:"workspace_id"`
	Role        WorkspaceRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt    time.Time     `json:"joined_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

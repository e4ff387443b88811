package models

import "time"

type CollaboratorStatus string

const (
	CollaboratorInvited  CollaboratorStatus = "invited"
	CollaboratorAccepted CollaboratorStatus = "accepted"
	CollaboratorDeclined CollaboratorStatus = "declined"
)

func (s CollaboratorStatus) Valid() bool {
	switch s {
	case CollaboratorInvited, CollaboratorAccepted, CollaboratorDeclined:
		return true
	}
	return false
}

type CollaboratorRole string

const (
	CollaboratorParticipant CollaboratorRole = "participant"
	CollaboratorAdmin       CollaboratorRole = "admin"
)

func (r CollaboratorRole) Valid() bool {
	return r == CollaboratorParticipant || r == CollaboratorAdmin
}

type TaskCollaborator struct {
	TaskID          uint64             `gorm:"primarykey" json:"task_id"`
	UserID          uint64             `gorm:"primarykey;index" json:"user_id"`
	InvitedByUserID *uint64            `json:"invited_by_user_id"`
	Status          CollaboratorStatus `gorm:"type:varchar(20);not null;default:'accepted'" json:"status"`
	Role            CollaboratorRole   `gorm:"type:varchar(20);not null;default:'participant'" json:"role"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

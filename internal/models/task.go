package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "inprogress"
	TaskStatusComplete   TaskStatus = "complete"
	TaskStatusArchived   TaskStatus = "archived"
)

// Valid reports whether s is one of the enumerated task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusComplete, TaskStatusArchived:
		return true
	}
	return false
}

type TaskDifficulty string

const (
	DifficultyEasy   TaskDifficulty = "easy"
	DifficultyMedium TaskDifficulty = "medium"
	DifficultyHard   TaskDifficulty = "hard"
	DifficultyInsane TaskDifficulty = "insane"
)

// Task belongs to a team. The AssignedTo* and CompletedBy* username fields
// are snapshots taken at the time of the transition that set them; they are
// not updated when the user later renames.
type Task struct {
	ID                  uint64         `gorm:"primarykey" json:"id"`
	TeamID              uint64         `gorm:"not null;index" json:"team_id"`
	CreatedByUserID     uint64         `gorm:"not null;index" json:"created_by_user_id"`
	TaskName            string         `gorm:"type:varchar(150);not null" json:"task_name"`
	TaskDesc            *string        `gorm:"type:text" json:"task_desc"`
	Difficulty          TaskDifficulty `gorm:"type:varchar(20);not null;default:'easy'" json:"difficulty"`
	TaskXP              int            `gorm:"column:task_xp;not null;default:10" json:"task_xp"`
	DateDue             *time.Time     `json:"date_due"`
	Status              TaskStatus     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	AssignedToUserID    *uint64        `json:"assigned_to_user_id"`
	AssignedToUsername  *string        `gorm:"type:varchar(150)" json:"assigned_to_username"`
	CompletedByUserID   *uint64        `json:"completed_by_user_id"`
	CompletedByUsername *string        `gorm:"type:varchar(150)" json:"completed_by_username"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Team          Team               `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Creator       User               `gorm:"foreignKey:CreatedByUserID" json:"creator,omitempty"`
	Collaborators []TaskCollaborator `gorm:"foreignKey:TaskID" json:"collaborators,omitempty"`
}

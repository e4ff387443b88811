package models

import "time"

// Message is either a direct message (RecipientUserID set) or a task
// message (TaskID set), never both.
type Message struct {
	ID              uint64    `gorm:"primarykey" json:"id"`
	TaskID          *uint64   `gorm:"index" json:"task_id"`
	SenderUserID    uint64    `gorm:"not null;index:idx_messages_pair,priority:1" json:"sender_user_id"`
	RecipientUserID *uint64   `gorm:"index:idx_messages_pair,priority:2" json:"recipient_user_id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type UserBlock struct {
	UserID        uint64    `gorm:"primarykey" json:"user_id"`
	BlockedUserID uint64    `gorm:"primarykey" json:"blocked_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

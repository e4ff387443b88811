package dto

import (
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/services"
)

// MessageDTO represents a direct or task message
type MessageDTO struct {
	ID              uint64    `json:"id"`
	TaskID          *uint64   `json:"task_id,omitempty"`
	SenderUserID    uint64    `json:"sender_user_id"`
	RecipientUserID *uint64   `json:"recipient_user_id,omitempty"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ConversationDTO is one entry of the recent conversations list
type ConversationDTO struct {
	User        UserSummaryDTO `json:"user"`
	LastMessage MessageDTO     `json:"last_message"`
}

// BlockDTO represents a user blocked by the caller
type BlockDTO struct {
	BlockedUserID uint64    `json:"blocked_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToMessageDTO converts a Message model to MessageDTO
func ToMessageDTO(message models.Message) MessageDTO {
	return MessageDTO{
		ID:              message.ID,
		TaskID:          message.TaskID,
		SenderUserID:    message.SenderUserID,
		RecipientUserID: message.RecipientUserID,
		Content:         message.Content,
		CreatedAt:       message.CreatedAt,
		UpdatedAt:       message.UpdatedAt,
	}
}

// ToMessageDTOs converts messages to DTOs
func ToMessageDTOs(messages []models.Message) []MessageDTO {
	out := make([]MessageDTO, len(messages))
	for i, m := range messages {
		out[i] = ToMessageDTO(m)
	}
	return out
}

// ToConversationDTOs converts recent conversations to DTOs
func ToConversationDTOs(conversations []services.Conversation) []ConversationDTO {
	out := make([]ConversationDTO, len(conversations))
	for i, c := range conversations {
		out[i] = ConversationDTO{
			User:        ToUserSummaryDTO(c.User),
			LastMessage: ToMessageDTO(c.LastMessage),
		}
	}
	return out
}

// ToBlockDTOs converts blocks to DTOs
func ToBlockDTOs(blocks []models.UserBlock) []BlockDTO {
	out := make([]BlockDTO, len(blocks))
	for i, b := range blocks {
		out[i] = BlockDTO{BlockedUserID: b.BlockedUserID, CreatedAt: b.CreatedAt}
	}
	return out
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrMessageContentRequired = validationError("content is required")
	ErrCannotBlockSelf        = validationError("cannot block yourself")
)

// MessageService handles direct messages, task messages and blocks.
type MessageService struct {
	store      *repository.Store
	membership *MembershipService
}

// NewMessageService creates a new MessageService.
func NewMessageService(store *repository.Store, membership *MembershipService) *MessageService {
	return &MessageService{
		store:      store,
		membership: membership,
	}
}

// Conversation is the latest direct message exchanged with another user.
type Conversation struct {
	User        models.User
	LastMessage models.Message
}

// ListDirect returns the conversation between userID and otherID.
func (s *MessageService) ListDirect(ctx context.Context, userID, otherID uint64) ([]models.Message, error) {
	if err := s.ensureCanMessage(ctx, userID, otherID); err != nil {
		return nil, err
	}

	messages, err := s.store.WithContext(ctx).Messages.ListDirect(userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// SendDirect sends a direct message unless either user blocked the other.
func (s *MessageService) SendDirect(ctx context.Context, userID, otherID uint64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageContentRequired
	}
	if err := s.ensureCanMessage(ctx, userID, otherID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderUserID:    userID,
		RecipientUserID: &otherID,
		Content:         content,
	}
	if err := s.store.WithContext(ctx).Messages.Create(message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return message, nil
}

// ListRecentConversations returns one entry per counterpart, most recent first.
func (s *MessageService) ListRecentConversations(ctx context.Context, userID uint64) ([]Conversation, error) {
	store := s.store.WithContext(ctx)

	messages, err := store.Messages.ListRecentDirect(userID, constants.MaxRecentMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}

	var order []uint64
	latest := make(map[uint64]models.Message)
	for _, m := range messages {
		otherID := m.SenderUserID
		if otherID == userID {
			if m.RecipientUserID == nil {
				continue
			}
			otherID = *m.RecipientUserID
		}
		if _, seen := latest[otherID]; seen {
			continue
		}
		latest[otherID] = m
		order = append(order, otherID)
	}

	users, err := store.Users.ListByIDs(order)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	byID := make(map[uint64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	conversations := make([]Conversation, 0, len(order))
	for _, id := range order {
		user, ok := byID[id]
		if !ok {
			continue
		}
		conversations = append(conversations, Conversation{User: user, LastMessage: latest[id]})
	}
	return conversations, nil
}

// ClearConversation deletes every direct message between the two users.
func (s *MessageService) ClearConversation(ctx context.Context, userID, otherID uint64) error {
	if err := s.store.WithContext(ctx).Messages.DeleteConversation(userID, otherID); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	return nil
}

// ListTaskMessages returns the messages of a task. Team members only.
func (s *MessageService) ListTaskMessages(ctx context.Context, taskID, userID uint64) ([]models.Message, error) {
	if err := s.ensureTaskMember(ctx, taskID, userID); err != nil {
		return nil, err
	}

	messages, err := s.store.WithContext(ctx).Messages.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task messages: %w", err)
	}
	return messages, nil
}

// SendTaskMessage posts a message on a task. Team members only.
func (s *MessageService) SendTaskMessage(ctx context.Context, taskID, userID uint64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageContentRequired
	}
	if err := s.ensureTaskMember(ctx, taskID, userID); err != nil {
		return nil, err
	}

	message := &models.Message{
		TaskID:       &taskID,
		SenderUserID: userID,
		Content:      content,
	}
	if err := s.store.WithContext(ctx).Messages.Create(message); err != nil {
		return nil, fmt.Errorf("failed to send task message: %w", err)
	}
	return message, nil
}

// EditMessage replaces the content of a message. Sender only.
func (s *MessageService) EditMessage(ctx context.Context, messageID, userID uint64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageContentRequired
	}

	message, err := s.ownMessage(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	store := s.store.WithContext(ctx)
	if err := store.Messages.UpdateContent(message.ID, content); err != nil {
		return nil, fmt.Errorf("failed to edit message: %w", err)
	}
	return store.Messages.FindByID(message.ID)
}

// DeleteMessage deletes a message. Sender only.
func (s *MessageService) DeleteMessage(ctx context.Context, messageID, userID uint64) error {
	message, err := s.ownMessage(ctx, messageID, userID)
	if err != nil {
		return err
	}

	if err := s.store.WithContext(ctx).Messages.Delete(message.ID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// Block stops messaging between userID and targetID in both directions.
func (s *MessageService) Block(ctx context.Context, userID, targetID uint64) (*models.UserBlock, error) {
	if userID == targetID {
		return nil, ErrCannotBlockSelf
	}

	store := s.store.WithContext(ctx)
	if _, err := store.Users.FindByID(targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	block, err := store.Messages.Block(userID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to block user: %w", err)
	}
	return block, nil
}

// Unblock removes a block created by userID.
func (s *MessageService) Unblock(ctx context.Context, userID, targetID uint64) error {
	if err := s.store.WithContext(ctx).Messages.Unblock(userID, targetID); err != nil {
		return fmt.Errorf("failed to unblock user: %w", err)
	}
	return nil
}

// ListBlocks lists blocks created by userID.
func (s *MessageService) ListBlocks(ctx context.Context, userID uint64) ([]models.UserBlock, error) {
	blocks, err := s.store.WithContext(ctx).Messages.ListBlocks(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	return blocks, nil
}

func (s *MessageService) ensureCanMessage(ctx context.Context, userID, otherID uint64) error {
	store := s.store.WithContext(ctx)

	if _, err := store.Users.FindByID(otherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	blocked, err := store.Messages.IsBlocked(userID, otherID)
	if err != nil {
		return fmt.Errorf("failed to check blocks: %w", err)
	}
	if blocked {
		return ErrMessagingBlocked
	}
	return nil
}

func (s *MessageService) ensureTaskMember(ctx context.Context, taskID, userID uint64) error {
	task, err := s.store.WithContext(ctx).Tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !s.membership.IsTeamMember(ctx, userID, task.TeamID) {
		return ErrNotTeamMember
	}
	return nil
}

func (s *MessageService) ownMessage(ctx context.Context, messageID, userID uint64) (*models.Message, error) {
	message, err := s.store.WithContext(ctx).Messages.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	if message.SenderUserID != userID {
		return nil, ErrNotMessageSender
	}
	return message, nil
}

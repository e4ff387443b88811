package repository

import (
	"github.com/yukikurage/taskquest-api/internal/database"
	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

// Create creates a new message
func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// FindByID finds a message by ID
func (r *GormMessageRepository) FindByID(id uint64) (*models.Message, error) {
	var message models.Message
	if err := r.db.First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// UpdateContent replaces the content of a message
func (r *GormMessageRepository) UpdateContent(id uint64, content string) error {
	return r.db.Model(&models.Message{ID: id}).Update("content", content).Error
}

// Delete deletes a message
func (r *GormMessageRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Message{}, id).Error
}

func (r *GormMessageRepository) directBetween(userID, otherID uint64) *gorm.DB {
	return r.db.Model(&models.Message{}).
		Where("task_id IS NULL").
		Where("(sender_user_id = ? AND recipient_user_id = ?) OR (sender_user_id = ? AND recipient_user_id = ?)",
			userID, otherID, otherID, userID)
}

// ListDirect lists a direct conversation, oldest first
func (r *GormMessageRepository) ListDirect(userID, otherID uint64) ([]models.Message, error) {
	var messages []models.Message
	if err := r.directBetween(userID, otherID).
		Scopes(database.OldestFirst("messages")).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListByTask lists messages of a task, oldest first
func (r *GormMessageRepository) ListByTask(taskID uint64) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.Where("task_id = ?", taskID).
		Scopes(database.OldestFirst("messages")).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListRecentDirect lists the latest direct messages sent or received by a user
func (r *GormMessageRepository) ListRecentDirect(userID uint64, limit int) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.Where("task_id IS NULL").
		Where("sender_user_id = ? OR recipient_user_id = ?", userID, userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteConversation removes every direct message between two users
func (r *GormMessageRepository) DeleteConversation(userID, otherID uint64) error {
	return r.db.
		Where("task_id IS NULL").
		Where("(sender_user_id = ? AND recipient_user_id = ?) OR (sender_user_id = ? AND recipient_user_id = ?)",
			userID, otherID, otherID, userID).
		Delete(&models.Message{}).Error
}

// IsBlocked reports whether either user blocked the other
func (r *GormMessageRepository) IsBlocked(userID, otherID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.UserBlock{}).
		Where("(user_id = ? AND blocked_user_id = ?) OR (user_id = ? AND blocked_user_id = ?)",
			userID, otherID, otherID, userID).
		Count(&count).Error
	return count > 0, err
}

// Block records a block
func (r *GormMessageRepository) Block(userID, blockedUserID uint64) (*models.UserBlock, error) {
	if err := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "blocked_user_id"}},
			DoNothing: true,
		}).
		Create(&models.UserBlock{UserID: userID, BlockedUserID: blockedUserID}).Error; err != nil {
		return nil, err
	}

	var block models.UserBlock
	if err := r.db.Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		First(&block).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

// Unblock removes a block
func (r *GormMessageRepository) Unblock(userID, blockedUserID uint64) error {
	return r.db.Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		Delete(&models.UserBlock{}).Error
}

// ListBlocks lists blocks created by a user
func (r *GormMessageRepository) ListBlocks(userID uint64) ([]models.UserBlock, error) {
	var blocks []models.UserBlock
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

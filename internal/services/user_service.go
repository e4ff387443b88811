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

var ErrNoProfileUpdates = validationError("no updates provided")

// UserService handles profile and user lookup logic.
type UserService struct {
	store *repository.Store
}

// NewUserService creates a new UserService.
func NewUserService(store *repository.Store) *UserService {
	return &UserService{store: store}
}

// UpdateProfileInput holds optional profile fields; nil means unchanged.
type UpdateProfileInput struct {
	Username  *string
	Email     *string
	FullName  *string
	Phone     *string
	Country   *string
	City      *string
	Timezone  *string
	Theme     *string
	AvatarURL *string
}

// UpdateProfile applies the given profile fields. A username change does
// not rewrite the username snapshots stored on tasks.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint64, input UpdateProfileInput) (*models.User, error) {
	updates := map[string]any{}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if !validUsername(username) {
			return nil, ErrInvalidUsername
		}
		updates["username"] = username
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if !validEmail(email) {
			return nil, ErrInvalidEmail
		}
		updates["email"] = email
	}

	optional := map[string]*string{
		"full_name":  input.FullName,
		"phone":      input.Phone,
		"country":    input.Country,
		"city":       input.City,
		"timezone":   input.Timezone,
		"theme":      input.Theme,
		"avatar_url": input.AvatarURL,
	}
	for column, value := range optional {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}

	if len(updates) == 0 {
		return nil, ErrNoProfileUpdates
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		user, err = tx.Users.FindByID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		if err := s.ensureUnique(tx, user, updates); err != nil {
			return err
		}

		if err := tx.Users.UpdateProfile(userID, updates); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		user, err = tx.Users.FindByID(userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ensureUnique rejects a new username or email already held by someone else.
func (s *UserService) ensureUnique(tx *repository.Store, user *models.User, updates map[string]any) error {
	username, _ := updates["username"].(string)
	email, _ := updates["email"].(string)
	if username == user.Username {
		username = ""
	}
	if email == user.Email {
		email = ""
	}
	if username == "" && email == "" {
		return nil
	}

	_, err := tx.Users.FindByUsernameOrEmail(username, email)
	switch {
	case err == nil:
		return ErrUsernameTaken
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	}
	return fmt.Errorf("failed to check username: %w", err)
}

// SearchUsers finds other users by username or email substring.
func (s *UserService) SearchUsers(ctx context.Context, userID uint64, query string) ([]models.User, error) {
	users, err := s.store.WithContext(ctx).Users.Search(userID, strings.TrimSpace(query), constants.MaxUserSearchResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

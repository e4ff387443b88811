package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/progression"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"github.com/yukikurage/taskquest-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	starterTaskName = "Getting started"
	starterTaskDesc = "This is a sample task to get you going."
)

var (
	ErrUsernameTaken        = fmt.Errorf("%w: a user with that username or email already exists", ErrConflict)
	ErrPasswordTooShort     = validationError(fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	ErrInvalidUsername      = validationError(fmt.Sprintf("username must be %d-%d characters of letters, digits and underscores", constants.MinUsernameLength, constants.MaxUsernameLength))
	ErrInvalidEmail         = validationError("must be a valid email address")
	ErrInvalidRole          = validationError("role must be either user or admin")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	store *repository.Store
}

// NewAuthService creates a new AuthService.
func NewAuthService(store *repository.Store) *AuthService {
	return &AuthService{
		store: store,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username  string
	Email     string
	Password  string
	Role      string
	AvatarURL string
}

// Signup creates a new user along with a default workspace, its personal
// team and a starter task.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if !validUsername(username) {
		return nil, ErrInvalidUsername
	}
	email := strings.TrimSpace(input.Email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	role := models.UserRoleUser
	if input.Role != "" {
		role = models.UserRole(input.Role)
	}
	if role != models.UserRoleUser && role != models.UserRoleAdmin {
		return nil, ErrInvalidRole
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	code, err := utils.GenerateWorkspaceCode(constants.WorkspaceCodeLength)
	if err != nil {
		return nil, ErrCodeGenerationFailed
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		AvatarURL:    strings.TrimSpace(input.AvatarURL),
		Level:        1,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.FindByUsernameOrEmail(username, email); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check username: %w", err)
		}

		if err := tx.Users.Create(user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		team, err := tx.Workspaces.CreateWithAdmin(&models.Workspace{
			Name:        defaultWorkspaceName,
			Code:        code,
			AdminUserID: user.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}

		desc := starterTaskDesc
		xp, _ := progression.XPForDifficulty(models.DifficultyEasy)
		if err := tx.Tasks.Create(&models.Task{
			TeamID:          team.ID,
			CreatedByUserID: user.ID,
			TaskName:        starterTaskName,
			TaskDesc:        &desc,
			Difficulty:      models.DifficultyEasy,
			TaskXP:          xp,
			Status:          models.TaskStatusOpen,
		}); err != nil {
			return fmt.Errorf("failed to create starter task: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	// Login is either the username or the email address.
	Login    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	login := strings.TrimSpace(input.Login)
	user, err := s.store.WithContext(ctx).Users.FindByUsernameOrEmail(login, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.store.WithContext(ctx).Users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

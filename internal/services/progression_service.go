package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/progression"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"gorm.io/gorm"
)

// CompletionResult is the outcome of one applied completion.
type CompletionResult struct {
	User         *models.User
	Achievements []models.Achievement
}

// ProgressionService persists XP, levels and achievement awards.
type ProgressionService struct {
	store      *repository.Store
	maxRetries int
}

// NewProgressionService creates a new ProgressionService. maxRetries bounds
// the attempts made when the user row changes underneath an update.
func NewProgressionService(store *repository.Store, maxRetries int) *ProgressionService {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &ProgressionService{store: store, maxRetries: maxRetries}
}

// ApplyCompletion credits one completion worth xp to the user in its own
// transaction.
func (s *ProgressionService) ApplyCompletion(ctx context.Context, userID uint64, xp int) (*CompletionResult, error) {
	var result *CompletionResult

	err := withRetry(s.maxRetries, fmt.Sprintf("completion for user %d", userID), func() error {
		return s.store.Transaction(ctx, func(tx *repository.Store) error {
			var err error
			result, err = s.applyCompletionTx(tx, userID, xp)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// applyCompletionTx runs the read-modify-write on tx. A lost race on the
// user row is reported as ErrConcurrencyConflict so the caller can retry the
// whole transaction.
func (s *ProgressionService) applyCompletionTx(tx *repository.Store, userID uint64, xp int) (*CompletionResult, error) {
	user, err := tx.Users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	from := progression.SnapshotOf(*user)
	to := progression.Apply(from, xp)

	if err := tx.Users.UpdateProgress(userID, from, to); err != nil {
		if errors.Is(err, repository.ErrStaleUpdate) {
			return nil, ErrConcurrencyConflict
		}
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	user.Level = to.Level
	user.XP = to.XP
	user.NumTasksCompleted = to.NumTasksCompleted

	awarded, err := s.awardAchievements(tx, userID, to)
	if err != nil {
		return nil, err
	}

	return &CompletionResult{User: user, Achievements: awarded}, nil
}

// awardAchievements evaluates every rule against snap and returns only the
// achievements awarded for the first time.
func (s *ProgressionService) awardAchievements(tx *repository.Store, userID uint64, snap progression.Snapshot) ([]models.Achievement, error) {
	awarded := []models.Achievement{}
	now := time.Now()

	for _, rule := range progression.Evaluate(snap) {
		achievement := models.Achievement{
			Code:        rule.Code,
			Name:        rule.Name,
			Description: rule.Description,
		}
		if err := tx.Achievements.Ensure(&achievement); err != nil {
			return nil, fmt.Errorf("failed to ensure achievement %s: %w", rule.Code, err)
		}

		created, err := tx.Achievements.Award(userID, achievement.ID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to award achievement %s: %w", rule.Code, err)
		}
		if created {
			awarded = append(awarded, achievement)
		}
	}

	return awarded, nil
}

// ListUserAchievements returns the awards of a user, oldest first.
func (s *ProgressionService) ListUserAchievements(ctx context.Context, userID uint64) ([]models.UserAchievement, error) {
	awards, err := s.store.WithContext(ctx).Achievements.ListByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return awards, nil
}

// withRetry runs fn until it returns something other than
// ErrConcurrencyConflict or attempts run out.
func withRetry(attempts int, what string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
		log.Printf("%s: concurrent update, attempt %d/%d", what, attempt, attempts)
	}
	return err
}

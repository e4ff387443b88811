package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle, so a set of
// writes can run inside a single transaction.
type Store struct {
	db *gorm.DB

	Users        UserRepository
	Workspaces   WorkspaceRepository
	Teams        TeamRepository
	Tasks        TaskRepository
	Achievements AchievementRepository
	Messages     MessageRepository
}

// NewStore creates a Store backed by db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        NewUserRepository(db),
		Workspaces:   NewWorkspaceRepository(db),
		Teams:        NewTeamRepository(db),
		Tasks:        NewTaskRepository(db),
		Achievements: NewAchievementRepository(db),
		Messages:     NewMessageRepository(db),
	}
}

// WithContext returns a Store whose queries run under ctx.
func (s *Store) WithContext(ctx context.Context) *Store {
	return NewStore(s.db.WithContext(ctx))
}

// Transaction runs fn with a Store bound to a single transaction. The
// transaction commits if fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

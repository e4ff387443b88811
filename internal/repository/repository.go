package repository

import (
	"errors"
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/progression"
	"github.com/yukikurage/taskquest-api/internal/utils"
)

// ErrStaleUpdate is returned by compare-and-swap updates when the row no
// longer holds the values it was read with.
var ErrStaleUpdate = errors.New("repository: row changed since it was read")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByUsernameOrEmail finds a user matching either identifier
	FindByUsernameOrEmail(username, email string) (*models.User, error)

	// UpdateProfile saves the given profile columns
	UpdateProfile(id uint64, updates map[string]any) error

	// UpdateProgress atomically replaces the progression fields, but only if
	// they still equal from. Returns ErrStaleUpdate otherwise.
	UpdateProgress(id uint64, from, to progression.Snapshot) error

	// Search finds users by username or email substring, excluding one user
	Search(excludeID uint64, query string, limit int) ([]models.User, error)

	// ListByIDs loads the given users
	ListByIDs(ids []uint64) ([]models.User, error)
}

// WorkspaceRepository defines the interface for workspace data access
type WorkspaceRepository interface {
	// CreateWithAdmin creates the workspace, the admin membership, the
	// personal team and the admin's team membership in one transaction.
	CreateWithAdmin(workspace *models.Workspace) (*models.Team, error)

	// FindByID finds a workspace by ID
	FindByID(id uint64) (*models.Workspace, error)

	// FindByCode finds a workspace by its join code
	FindByCode(code string) (*models.Workspace, error)

	// Update updates a workspace
	Update(workspace *models.Workspace) error

	// Delete removes the workspace and everything it owns
	Delete(id uint64) error

	// AddMember adds a member to a workspace
	AddMember(member *models.UserWorkspace) error

	// RemoveMember removes a member from the workspace and from its teams
	RemoveMember(workspaceID, userID uint64) error

	// FindMember finds a specific workspace member
	FindMember(workspaceID, userID uint64) (*models.UserWorkspace, error)

	// ListMembersByUserID lists all workspaces a user is a member of
	ListMembersByUserID(userID uint64) ([]models.UserWorkspace, error)

	// ListMembers lists all members of a workspace
	ListMembers(workspaceID uint64) ([]models.UserWorkspace, error)

	// CountTasks counts tasks of the workspace, optionally by status
	CountTasks(workspaceID uint64, status *models.TaskStatus) (int64, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// CreateWithAdmin creates the team and adds its admin as a member
	CreateWithAdmin(team *models.Team) error

	// FindByID finds a team by ID
	FindByID(id uint64) (*models.Team, error)

	// FindByName finds a team of a workspace by name
	FindByName(workspaceID uint64, name string) (*models.Team, error)

	// ListByWorkspace lists teams of a workspace
	ListByWorkspace(workspaceID uint64) ([]models.Team, error)

	// AddMember adds a member; adding an existing member is a no-op
	AddMember(member *models.TeamMember) error

	// RemoveMember removes a member from a team
	RemoveMember(teamID, userID uint64) error

	// FindMember finds a specific team member
	FindMember(teamID, userID uint64) (*models.TeamMember, error)

	// ListMembershipsByUserID lists team memberships of a user with their teams
	ListMembershipsByUserID(userID uint64) ([]models.TeamMember, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering
	List(filter TaskFilter) ([]models.Task, error)

	// Count counts tasks matching filter, ignoring its page
	Count(filter TaskFilter) (int64, error)

	// Update saves task fields
	Update(task *models.Task) error

	// UpdateStatus writes the status and snapshot fields of task, but only if
	// the stored status is still prev. Returns ErrStaleUpdate otherwise.
	UpdateStatus(task *models.Task, prev models.TaskStatus) error

	// Delete soft deletes a task and removes its collaborators
	Delete(id uint64) error

	// ListCollaborators lists collaborators of a task with their users
	ListCollaborators(taskID uint64) ([]models.TaskCollaborator, error)

	// FindCollaborator finds a specific collaborator
	FindCollaborator(taskID, userID uint64) (*models.TaskCollaborator, error)

	// UpsertCollaborator inserts the collaborator or, if the pair exists,
	// overwrites only the named columns.
	UpsertCollaborator(collaborator *models.TaskCollaborator, updateColumns ...string) error

	// UpdateCollaboratorStatus changes the status of a collaborator
	UpdateCollaboratorStatus(taskID, userID uint64, status models.CollaboratorStatus) error

	// RemoveCollaborator removes a collaborator
	RemoveCollaborator(taskID, userID uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	TeamIDs []uint64
	Status  *models.TaskStatus
	// Page limits the result when set
	Page *utils.PaginationParams
}

// AchievementRepository defines the interface for achievement data access
type AchievementRepository interface {
	// Ensure creates the catalog entry if its code is unknown and loads the
	// stored row into achievement.
	Ensure(achievement *models.Achievement) error

	// Award records the award; created is false if it already existed.
	Award(userID, achievementID uint64, at time.Time) (created bool, err error)

	// ListByUserID lists awards of a user, oldest first
	ListByUserID(userID uint64) ([]models.UserAchievement, error)
}

// MessageRepository defines the interface for message and block data access
type MessageRepository interface {
	Create(message *models.Message) error
	FindByID(id uint64) (*models.Message, error)
	UpdateContent(id uint64, content string) error
	Delete(id uint64) error

	// ListDirect lists the direct conversation between two users, oldest first
	ListDirect(userID, otherID uint64) ([]models.Message, error)

	// ListByTask lists messages of a task, oldest first
	ListByTask(taskID uint64) ([]models.Message, error)

	// ListRecentDirect lists the latest direct messages involving a user
	ListRecentDirect(userID uint64, limit int) ([]models.Message, error)

	// DeleteConversation removes every direct message between two users
	DeleteConversation(userID, otherID uint64) error

	// IsBlocked reports whether either user blocked the other
	IsBlocked(userID, otherID uint64) (bool, error)

	// Block records a block; blocking twice is a no-op
	Block(userID, blockedUserID uint64) (*models.UserBlock, error)

	// Unblock removes a block
	Unblock(userID, blockedUserID uint64) error

	// ListBlocks lists blocks created by a user
	ListBlocks(userID uint64) ([]models.UserBlock, error)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/progression"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"github.com/yukikurage/taskquest-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNameRequired          = validationError("task_name is required")
	ErrTaskNameTooLong           = validationError(fmt.Sprintf("task_name must be at most %d characters", constants.MaxTaskNameLength))
	ErrNoTaskUpdates             = validationError("no updates provided")
	ErrCollaboratorNotInTeam     = validationError("user is not a member of this team")
	ErrInvalidCollaboratorRole   = validationError("invalid collaborator role")
	ErrInvalidCollaboratorStatus = validationError("invalid collaborator status")
	ErrAIServiceNotConfigured    = errors.New("AI service is not configured")
	ErrAINoTasksGenerated        = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks            = errors.New("no valid tasks could be created from AI output")
)

// AchievementNotifier is told about newly awarded achievements once the
// awarding transaction has committed.
type AchievementNotifier interface {
	AchievementsAwarded(ctx context.Context, user *models.User, achievements []models.Achievement) error
}

// TaskConfig holds the tunable parts of the task state machine.
type TaskConfig struct {
	// AllowUnarchive permits status changes out of archived.
	AllowUnarchive bool
	// MaxRetries bounds the attempts of a status change that loses a race.
	MaxRetries int
}

// TaskService handles task business logic
type TaskService struct {
	store       *repository.Store
	gate        *AuthorizationGate
	progression *ProgressionService
	notifier    AchievementNotifier
	aiService   *AIService
	cfg         TaskConfig
}

// NewTaskService creates a new TaskService. notifier and aiService may be nil.
func NewTaskService(
	store *repository.Store,
	gate *AuthorizationGate,
	progressionService *ProgressionService,
	notifier AchievementNotifier,
	aiService *AIService,
	cfg TaskConfig,
) *TaskService {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &TaskService{
		store:       store,
		gate:        gate,
		progression: progressionService,
		notifier:    notifier,
		aiService:   aiService,
		cfg:         cfg,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	TeamID     uint64
	ActorID    uint64
	TaskName   string
	TaskDesc   *string
	Difficulty string
	Status     string
	DateDue    *time.Time
}

// UpdateTaskInput represents input for editing task fields
type UpdateTaskInput struct {
	TaskName     *string
	TaskDesc     *string
	Difficulty   *string
	DateDue      *time.Time
	ClearDateDue bool
}

// ChangeStatusInput represents a requested status change
type ChangeStatusInput struct {
	TaskID  uint64
	ActorID uint64
	Status  string
}

// StatusChangeResult carries the updated task and, when the change awarded
// XP, the updated user and the newly awarded achievements.
type StatusChangeResult struct {
	Task         *models.Task
	User         *models.User
	Achievements []models.Achievement
}

// AddCollaboratorInput represents input for adding a collaborator
type AddCollaboratorInput struct {
	TaskID  uint64
	ActorID uint64
	UserID  uint64
	Role    string
	Status  string
}

// ListMyTasks returns tasks of every team the user belongs to, with the
// total count ignoring page. A nil page returns everything.
func (s *TaskService) ListMyTasks(ctx context.Context, userID uint64, status string, page *utils.PaginationParams) ([]models.Task, int64, error) {
	store := s.store.WithContext(ctx)

	filter := repository.TaskFilter{Page: page}
	if status != "" {
		st := models.TaskStatus(status)
		if !st.Valid() {
			return nil, 0, ErrInvalidStatus
		}
		filter.Status = &st
	}

	memberships, err := store.Teams.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch team memberships: %w", err)
	}
	for _, m := range memberships {
		filter.TeamIDs = append(filter.TeamIDs, m.TeamID)
	}

	tasks, err := store.Tasks.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	total := int64(len(tasks))
	if page != nil {
		if total, err = store.Tasks.Count(filter); err != nil {
			return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
		}
	}

	return tasks, total, nil
}

// LoadTask finds a task and computes the actor's permissions on it
func (s *TaskService) LoadTask(ctx context.Context, taskID, actorID uint64) (*models.Task, TaskPermissions, error) {
	task, err := s.store.WithContext(ctx).Tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, TaskPermissions{}, ErrTaskNotFound
		}
		return nil, TaskPermissions{}, fmt.Errorf("failed to find task: %w", err)
	}

	return task, s.gate.CanModifyTask(ctx, actorID, task), nil
}

func (s *TaskService) authorize(ctx context.Context, taskID, actorID uint64, action TaskAction) (*models.Task, TaskPermissions, error) {
	task, perms, err := s.LoadTask(ctx, taskID, actorID)
	if err != nil {
		return nil, perms, err
	}
	if err := s.gate.Authorize(perms, action); err != nil {
		return nil, perms, err
	}
	return task, perms, nil
}

// GetTask returns a task with its collaborators
func (s *TaskService) GetTask(ctx context.Context, taskID, actorID uint64) (*models.Task, error) {
	if _, _, err := s.authorize(ctx, taskID, actorID, ActionViewTask); err != nil {
		return nil, err
	}
	return s.reload(ctx, taskID)
}

// CreateTask creates a new task in a team
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	name, err := validateTaskName(input.TaskName)
	if err != nil {
		return nil, err
	}

	difficulty, xp, err := resolveDifficulty(input.Difficulty)
	if err != nil {
		return nil, err
	}

	status := models.TaskStatusOpen
	if input.Status != "" {
		status = models.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
	}

	store := s.store.WithContext(ctx)
	if _, err := store.Teams.FindByID(input.TeamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	if !s.gate.CanCreateTask(ctx, input.ActorID, input.TeamID) {
		return nil, ErrNotTeamAdmin
	}

	task := &models.Task{
		TeamID:          input.TeamID,
		CreatedByUserID: input.ActorID,
		TaskName:        name,
		TaskDesc:        input.TaskDesc,
		Difficulty:      difficulty,
		TaskXP:          xp,
		DateDue:         input.DateDue,
		Status:          status,
	}

	if err := store.Tasks.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask edits the name, description, difficulty or due date of a task
func (s *TaskService) UpdateTask(ctx context.Context, taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	if input.TaskName == nil && input.TaskDesc == nil && input.Difficulty == nil && input.DateDue == nil && !input.ClearDateDue {
		return nil, ErrNoTaskUpdates
	}

	task, _, err := s.authorize(ctx, taskID, actorID, ActionEditTask)
	if err != nil {
		return nil, err
	}

	if input.TaskName != nil {
		name, err := validateTaskName(*input.TaskName)
		if err != nil {
			return nil, err
		}
		task.TaskName = name
	}
	if input.TaskDesc != nil {
		task.TaskDesc = input.TaskDesc
	}
	if input.Difficulty != nil {
		// Past awards keep the XP they were granted with.
		difficulty, xp, err := resolveDifficulty(*input.Difficulty)
		if err != nil {
			return nil, err
		}
		task.Difficulty = difficulty
		task.TaskXP = xp
	}
	if input.ClearDateDue {
		task.DateDue = nil
	} else if input.DateDue != nil {
		task.DateDue = input.DateDue
	}

	if err := s.store.WithContext(ctx).Tasks.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.reload(ctx, task.ID)
}

// DeleteTask soft deletes a task
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID uint64) error {
	if _, _, err := s.authorize(ctx, taskID, actorID, ActionDeleteTask); err != nil {
		return err
	}

	if err := s.store.WithContext(ctx).Tasks.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ChangeStatus moves a task to the requested status. Entering complete from
// any other status credits the task's XP to the actor in the same
// transaction as the status change.
func (s *TaskService) ChangeStatus(ctx context.Context, input ChangeStatusInput) (*StatusChangeResult, error) {
	status := models.TaskStatus(strings.TrimSpace(input.Status))
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if _, _, err := s.authorize(ctx, input.TaskID, input.ActorID, ActionChangeStatus); err != nil {
		return nil, err
	}

	var result *StatusChangeResult
	err := withRetry(s.cfg.MaxRetries, fmt.Sprintf("status change of task %d", input.TaskID), func() error {
		var err error
		result, err = s.changeStatusOnce(ctx, input.TaskID, input.ActorID, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	task, err := s.reload(ctx, input.TaskID)
	if err != nil {
		return nil, err
	}
	result.Task = task

	s.announce(ctx, result)

	return result, nil
}

func (s *TaskService) changeStatusOnce(ctx context.Context, taskID, actorID uint64, status models.TaskStatus) (*StatusChangeResult, error) {
	result := &StatusChangeResult{Achievements: []models.Achievement{}}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := tx.Tasks.FindByID(taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		prev := task.Status
		if prev == models.TaskStatusArchived && status != prev && !s.cfg.AllowUnarchive {
			return ErrInvalidTransition
		}

		actor, err := tx.Users.FindByID(actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to find user: %w", err)
		}
		actorUserID, actorName := actor.ID, actor.Username

		switch status {
		case models.TaskStatusInProgress:
			task.AssignedToUserID = &actorUserID
			task.AssignedToUsername = &actorName
			task.CompletedByUserID = nil
			task.CompletedByUsername = nil
		case models.TaskStatusComplete:
			if task.AssignedToUserID == nil {
				task.AssignedToUserID = &actorUserID
				task.AssignedToUsername = &actorName
			}
			task.CompletedByUserID = &actorUserID
			task.CompletedByUsername = &actorName
		}
		task.Status = status

		if err := tx.Tasks.UpdateStatus(task, prev); err != nil {
			if errors.Is(err, repository.ErrStaleUpdate) {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("failed to update status: %w", err)
		}

		if status != models.TaskStatusComplete {
			return nil
		}

		if err := tx.Tasks.UpsertCollaborator(&models.TaskCollaborator{
			TaskID:          task.ID,
			UserID:          actorUserID,
			InvitedByUserID: &actorUserID,
			Status:          models.CollaboratorAccepted,
			Role:            models.CollaboratorParticipant,
		}, "status"); err != nil {
			return fmt.Errorf("failed to record completer as collaborator: %w", err)
		}

		if prev == models.TaskStatusComplete {
			return nil
		}

		completion, err := s.progression.applyCompletionTx(tx, actorUserID, task.TaskXP)
		if err != nil {
			return err
		}
		result.User = completion.User
		result.Achievements = completion.Achievements
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *TaskService) announce(ctx context.Context, result *StatusChangeResult) {
	if s.notifier == nil || result.User == nil || len(result.Achievements) == 0 {
		return
	}
	if err := s.notifier.AchievementsAwarded(ctx, result.User, result.Achievements); err != nil {
		log.Printf("failed to announce achievements for user %d: %v", result.User.ID, err)
	}
}

// ListCollaborators lists collaborators of a task
func (s *TaskService) ListCollaborators(ctx context.Context, taskID, actorID uint64) ([]models.TaskCollaborator, error) {
	if _, _, err := s.authorize(ctx, taskID, actorID, ActionViewTask); err != nil {
		return nil, err
	}

	collaborators, err := s.store.WithContext(ctx).Tasks.ListCollaborators(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	return collaborators, nil
}

// AddCollaborator invites a team member to a task, or updates the role and
// status of an existing collaborator
func (s *TaskService) AddCollaborator(ctx context.Context, input AddCollaboratorInput) (*models.TaskCollaborator, error) {
	role := models.CollaboratorParticipant
	if input.Role != "" {
		role = models.CollaboratorRole(input.Role)
	}
	if !role.Valid() {
		return nil, ErrInvalidCollaboratorRole
	}
	status := models.CollaboratorInvited
	if input.Status != "" {
		status = models.CollaboratorStatus(input.Status)
	}
	if !status.Valid() {
		return nil, ErrInvalidCollaboratorStatus
	}

	task, _, err := s.authorize(ctx, input.TaskID, input.ActorID, ActionManageCollaborators)
	if err != nil {
		return nil, err
	}

	store := s.store.WithContext(ctx)
	if _, err := store.Teams.FindMember(task.TeamID, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollaboratorNotInTeam
		}
		return nil, fmt.Errorf("failed to check team membership: %w", err)
	}

	collaborator := &models.TaskCollaborator{
		TaskID:          task.ID,
		UserID:          input.UserID,
		InvitedByUserID: &input.ActorID,
		Status:          status,
		Role:            role,
	}
	if err := store.Tasks.UpsertCollaborator(collaborator, "status", "role"); err != nil {
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}

	return store.Tasks.FindCollaborator(task.ID, input.UserID)
}

// UpdateCollaboratorStatus changes the status of a collaborator. Admins may
// change anyone; other members only themselves.
func (s *TaskService) UpdateCollaboratorStatus(ctx context.Context, taskID, actorID, userID uint64, status string) (*models.TaskCollaborator, error) {
	st := models.CollaboratorStatus(status)
	if !st.Valid() {
		return nil, ErrInvalidCollaboratorStatus
	}

	task, perms, err := s.authorize(ctx, taskID, actorID, ActionViewTask)
	if err != nil {
		return nil, err
	}
	if !perms.AllowsCollaboratorUpdate(actorID, userID) {
		return nil, ErrNotTaskAdmin
	}

	store := s.store.WithContext(ctx)
	if err := store.Tasks.UpdateCollaboratorStatus(task.ID, userID, st); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollaboratorNotFound
		}
		return nil, fmt.Errorf("failed to update collaborator: %w", err)
	}

	return store.Tasks.FindCollaborator(task.ID, userID)
}

// RemoveCollaborator removes a collaborator. Admins may remove anyone; other
// members only themselves.
func (s *TaskService) RemoveCollaborator(ctx context.Context, taskID, actorID, userID uint64) error {
	task, perms, err := s.authorize(ctx, taskID, actorID, ActionViewTask)
	if err != nil {
		return err
	}
	if !perms.AllowsCollaboratorUpdate(actorID, userID) {
		return ErrNotTaskAdmin
	}

	if err := s.store.WithContext(ctx).Tasks.RemoveCollaborator(task.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCollaboratorNotFound
		}
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	return nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	TeamID  uint64
	ActorID uint64
	Text    string
}

// GenerateTasks uses AI to draft tasks for a team. Drafts are not saved.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, validationError("text is required")
	}

	if _, err := s.store.WithContext(ctx).Teams.FindByID(input.TeamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	if !s.gate.CanCreateTask(ctx, input.ActorID, input.TeamID) {
		return nil, ErrNotTeamAdmin
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		name, err := validateTaskName(aiTask.TaskName)
		if err != nil {
			continue
		}
		aiTask.TaskName = name

		if _, ok := progression.XPForDifficulty(models.TaskDifficulty(aiTask.Difficulty)); !ok {
			aiTask.Difficulty = string(models.DifficultyEasy)
		}
		if aiTask.DateDue != nil && aiTask.DateDue.Before(cutoff) {
			aiTask.DateDue = nil
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func (s *TaskService) reload(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.store.WithContext(ctx).Tasks.FindByID(taskID, "Collaborators", "Collaborators.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func validateTaskName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrTaskNameRequired
	}
	if len([]rune(name)) > constants.MaxTaskNameLength {
		return "", ErrTaskNameTooLong
	}
	return name, nil
}

// resolveDifficulty defaults an empty difficulty to easy.
func resolveDifficulty(raw string) (models.TaskDifficulty, int, error) {
	difficulty := models.TaskDifficulty(strings.TrimSpace(raw))
	if difficulty == "" {
		difficulty = models.DifficultyEasy
	}
	xp, ok := progression.XPForDifficulty(difficulty)
	if !ok {
		return "", 0, ErrInvalidDifficulty
	}
	return difficulty, xp, nil
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/database"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db          *gorm.DB
	store       *repository.Store
	membership  *MembershipService
	gate        *AuthorizationGate
	progression *ProgressionService
	tasks       *TaskService
	workspaces  *WorkspaceService
	teams       *TeamService
	messages    *MessageService
	users       *UserService
	auth        *AuthService
	notifier    *recordingNotifier
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (n *recordingNotifier) AchievementsAwarded(_ context.Context, _ *models.User, achievements []models.Achievement) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	codes := make([]string, 0, len(achievements))
	for _, a := range achievements {
		codes = append(codes, a.Code)
	}
	n.calls = append(n.calls, codes)
	return n.err
}

func setupServiceTestEnv(t *testing.T, cfg TaskConfig) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Each in-memory sqlite connection opens its own database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.AutoMigrate(db))

	store := repository.NewStore(db)
	membership := NewMembershipService(store)
	gate := NewAuthorizationGate(membership)
	progressionService := NewProgressionService(store, cfg.MaxRetries)
	notifier := &recordingNotifier{}

	return serviceTestEnv{
		db:          db,
		store:       store,
		membership:  membership,
		gate:        gate,
		progression: progressionService,
		tasks:       NewTaskService(store, gate, progressionService, notifier, nil, cfg),
		workspaces:  NewWorkspaceService(store, membership),
		teams:       NewTeamService(store, membership),
		messages:    NewMessageService(store, membership),
		users:       NewUserService(store),
		auth:        NewAuthService(store),
		notifier:    notifier,
	}
}

func defaultTaskConfig() TaskConfig {
	return TaskConfig{AllowUnarchive: true, MaxRetries: 3}
}

func createServiceTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed",
		Level:        1,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func setUserProgress(t *testing.T, db *gorm.DB, user *models.User, level, xp, completed int) {
	t.Helper()
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"level":               level,
		"xp":                  xp,
		"num_tasks_completed": completed,
	}).Error)
	user.Level, user.XP, user.NumTasksCompleted = level, xp, completed
}

// createWorkspaceFixture creates a workspace owned by admin and returns its
// personal team.
func createWorkspaceFixture(t *testing.T, env serviceTestEnv, admin *models.User) (*models.Workspace, *models.Team) {
	t.Helper()
	created, err := env.workspaces.CreateWorkspace(context.Background(), admin.ID, "Acme")
	require.NoError(t, err)

	team, err := env.store.Teams.FindByID(created.DefaultTeamID)
	require.NoError(t, err)
	return created.Workspace, team
}

func joinWorkspaceFixture(t *testing.T, env serviceTestEnv, workspace *models.Workspace, user *models.User) {
	t.Helper()
	_, err := env.workspaces.JoinWorkspace(context.Background(), user.ID, workspace.Code)
	require.NoError(t, err)
}

func createTaskFixture(t *testing.T, env serviceTestEnv, team *models.Team, creator *models.User, difficulty models.TaskDifficulty) *models.Task {
	t.Helper()
	task, err := env.tasks.CreateTask(context.Background(), CreateTaskInput{
		TeamID:     team.ID,
		ActorID:    creator.ID,
		TaskName:   "Write report " + time.Now().Format(time.RFC3339Nano),
		Difficulty: string(difficulty),
	})
	require.NoError(t, err)
	return task
}

func reloadUser(t *testing.T, db *gorm.DB, id uint64) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}

func achievementCodes(achievements []models.Achievement) []string {
	codes := make([]string, 0, len(achievements))
	for _, a := range achievements {
		codes = append(codes, a.Code)
	}
	return codes
}

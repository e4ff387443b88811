package services

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/progression"
	"github.com/yukikurage/taskquest-api/internal/utils"
	"gorm.io/gorm"
)

type TaskServiceSuite struct {
	suite.Suite

	env       serviceTestEnv
	ctx       context.Context
	admin     *models.User
	member    *models.User
	outsider  *models.User
	workspace *models.Workspace
	team      *models.Team
	task      *models.Task
}

func TestTaskServiceSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceSuite))
}

func (s *TaskServiceSuite) SetupTest() {
	t := s.T()
	s.ctx = context.Background()
	s.env = setupServiceTestEnv(t, defaultTaskConfig())

	s.admin = createServiceTestUser(t, s.env.db, "admin")
	s.member = createServiceTestUser(t, s.env.db, "member")
	s.outsider = createServiceTestUser(t, s.env.db, "outsider")

	s.workspace, s.team = createWorkspaceFixture(t, s.env, s.admin)
	joinWorkspaceFixture(t, s.env, s.workspace, s.member)
	s.task = createTaskFixture(t, s.env, s.team, s.admin, models.DifficultyEasy)
}

func (s *TaskServiceSuite) changeStatus(user *models.User, status models.TaskStatus) (*StatusChangeResult, error) {
	return s.env.tasks.ChangeStatus(s.ctx, ChangeStatusInput{
		TaskID:  s.task.ID,
		ActorID: user.ID,
		Status:  string(status),
	})
}

func (s *TaskServiceSuite) TestCreateTaskSetsXPFromDifficulty() {
	task := createTaskFixture(s.T(), s.env, s.team, s.admin, models.DifficultyHard)
	s.Equal(50, task.TaskXP)
	s.Equal(models.TaskStatusOpen, task.Status)
	s.Equal(s.admin.ID, task.CreatedByUserID)
}

func (s *TaskServiceSuite) TestCreateTaskValidation() {
	_, err := s.env.tasks.CreateTask(s.ctx, CreateTaskInput{TeamID: s.team.ID, ActorID: s.admin.ID, TaskName: "  "})
	s.ErrorIs(err, ErrValidationFailed)

	_, err = s.env.tasks.CreateTask(s.ctx, CreateTaskInput{TeamID: s.team.ID, ActorID: s.admin.ID, TaskName: "x", Difficulty: "legendary"})
	s.ErrorIs(err, ErrInvalidDifficulty)

	_, err = s.env.tasks.CreateTask(s.ctx, CreateTaskInput{TeamID: 9999, ActorID: s.admin.ID, TaskName: "x"})
	s.ErrorIs(err, ErrNotFound)
}

func (s *TaskServiceSuite) TestSelfServiceTransition() {
	result, err := s.changeStatus(s.member, models.TaskStatusInProgress)
	s.Require().NoError(err)
	s.Nil(result.User)
	s.Require().NotNil(result.Task.AssignedToUserID)
	s.Equal(s.member.ID, *result.Task.AssignedToUserID)
	s.Equal("member", *result.Task.AssignedToUsername)
	s.Nil(result.Task.CompletedByUserID)

	result, err = s.changeStatus(s.member, models.TaskStatusComplete)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusComplete, result.Task.Status)
	s.Require().NotNil(result.Task.CompletedByUserID)
	s.Equal(s.member.ID, *result.Task.CompletedByUserID)
	s.Equal("member", *result.Task.CompletedByUsername)

	s.Require().NotNil(result.User)
	s.Equal(10, result.User.XP)
	s.Equal(1, result.User.NumTasksCompleted)
	s.Equal([]string{"task_1"}, achievementCodes(result.Achievements))

	collaborator, err := s.env.store.Tasks.FindCollaborator(s.task.ID, s.member.ID)
	s.Require().NoError(err)
	s.Equal(models.CollaboratorAccepted, collaborator.Status)
	s.Equal(models.CollaboratorParticipant, collaborator.Role)

	s.Equal([][]string{{"task_1"}}, s.env.notifier.calls)
}

func (s *TaskServiceSuite) TestFailedAnnouncementKeepsCompletion() {
	s.env.notifier.err = errors.New("discord down")

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	result, err := s.changeStatus(s.admin, models.TaskStatusComplete)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusComplete, result.Task.Status)
	s.Equal([][]string{{"task_1"}}, s.env.notifier.calls)
	s.Equal(1, strings.Count(buf.String(), "discord down"))
}

func (s *TaskServiceSuite) TestDirectCompletionAssignsActor() {
	result, err := s.changeStatus(s.member, models.TaskStatusComplete)
	s.Require().NoError(err)
	s.Require().NotNil(result.Task.AssignedToUserID)
	s.Equal(s.member.ID, *result.Task.AssignedToUserID)
}

func (s *TaskServiceSuite) TestCompletionKeepsExistingAssignee() {
	_, err := s.changeStatus(s.admin, models.TaskStatusInProgress)
	s.Require().NoError(err)

	result, err := s.changeStatus(s.member, models.TaskStatusComplete)
	s.Require().NoError(err)
	s.Equal(s.admin.ID, *result.Task.AssignedToUserID)
	s.Equal(s.member.ID, *result.Task.CompletedByUserID)
}

func (s *TaskServiceSuite) TestIdempotentCompletion() {
	_, err := s.changeStatus(s.member, models.TaskStatusComplete)
	s.Require().NoError(err)
	before := reloadUser(s.T(), s.env.db, s.member.ID)

	result, err := s.changeStatus(s.member, models.TaskStatusComplete)
	s.Require().NoError(err)
	s.Nil(result.User)
	s.Empty(result.Achievements)

	after := reloadUser(s.T(), s.env.db, s.member.ID)
	s.Equal(before.XP, after.XP)
	s.Equal(before.Level, after.Level)
	s.Equal(before.NumTasksCompleted, after.NumTasksCompleted)
}

func (s *TaskServiceSuite) TestConcreteScenario() {
	setUserProgress(s.T(), s.env.db, s.member, 1, 90, 0)

	result, err := s.changeStatus(s.member, models.TaskStatusComplete)
	s.Require().NoError(err)
	s.Require().NotNil(result.User)
	s.Equal(2, result.User.Level)
	s.Equal(0, result.User.XP)
	s.Equal(1, result.User.NumTasksCompleted)
	s.Equal([]string{"task_1"}, achievementCodes(result.Achievements))

	stored := reloadUser(s.T(), s.env.db, s.member.ID)
	s.Equal(2, stored.Level)
	s.Equal(0, stored.XP)
}

func (s *TaskServiceSuite) TestInProgressClearsCompletionSnapshot() {
	_, err := s.changeStatus(s.member, models.TaskStatusComplete)
	s.Require().NoError(err)

	result, err := s.changeStatus(s.admin, models.TaskStatusInProgress)
	s.Require().NoError(err)
	s.Nil(result.Task.CompletedByUserID)
	s.Nil(result.Task.CompletedByUsername)
	s.Equal(s.admin.ID, *result.Task.AssignedToUserID)
}

func (s *TaskServiceSuite) TestOpenAndArchivedOnlyChangeStatus() {
	_, err := s.changeStatus(s.member, models.TaskStatusInProgress)
	s.Require().NoError(err)

	result, err := s.changeStatus(s.admin, models.TaskStatusArchived)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusArchived, result.Task.Status)
	s.Equal(s.member.ID, *result.Task.AssignedToUserID)
	s.Nil(result.User)
}

func (s *TaskServiceSuite) TestSnapshotSurvivesRename() {
	_, err := s.changeStatus(s.member, models.TaskStatusComplete)
	s.Require().NoError(err)

	renamed := "member_two"
	_, err = s.env.users.UpdateProfile(s.ctx, s.member.ID, UpdateProfileInput{Username: &renamed})
	s.Require().NoError(err)

	task, err := s.env.tasks.GetTask(s.ctx, s.task.ID, s.member.ID)
	s.Require().NoError(err)
	s.Equal("member", *task.CompletedByUsername)
}

func (s *TaskServiceSuite) TestUnknownStatusAndMissingTask() {
	_, err := s.changeStatus(s.member, "done")
	s.ErrorIs(err, ErrInvalidStatus)

	_, err = s.env.tasks.ChangeStatus(s.ctx, ChangeStatusInput{TaskID: 9999, ActorID: s.member.ID, Status: "complete"})
	s.ErrorIs(err, ErrNotFound)
}

func (s *TaskServiceSuite) TestCompletionAfterArchiveAwardsAgain() {
	_, err := s.changeStatus(s.member, models.TaskStatusComplete)
	s.Require().NoError(err)
	_, err = s.changeStatus(s.admin, models.TaskStatusArchived)
	s.Require().NoError(err)

	result, err := s.changeStatus(s.member, models.TaskStatusComplete)
	s.Require().NoError(err)
	s.Require().NotNil(result.User)
	s.Equal(2, result.User.NumTasksCompleted)
}

func (s *TaskServiceSuite) TestAuthorizationBoundaryForOutsider() {
	ctx, id, outsider := s.ctx, s.task.ID, s.outsider.ID

	actions := map[string]func() error{
		"get": func() error {
			_, err := s.env.tasks.GetTask(ctx, id, outsider)
			return err
		},
		"create": func() error {
			_, err := s.env.tasks.CreateTask(ctx, CreateTaskInput{TeamID: s.team.ID, ActorID: outsider, TaskName: "x"})
			return err
		},
		"edit": func() error {
			name := "renamed"
			_, err := s.env.tasks.UpdateTask(ctx, id, outsider, UpdateTaskInput{TaskName: &name})
			return err
		},
		"status": func() error {
			_, err := s.env.tasks.ChangeStatus(ctx, ChangeStatusInput{TaskID: id, ActorID: outsider, Status: "complete"})
			return err
		},
		"delete": func() error {
			return s.env.tasks.DeleteTask(ctx, id, outsider)
		},
		"list collaborators": func() error {
			_, err := s.env.tasks.ListCollaborators(ctx, id, outsider)
			return err
		},
		"add collaborator": func() error {
			_, err := s.env.tasks.AddCollaborator(ctx, AddCollaboratorInput{TaskID: id, ActorID: outsider, UserID: s.member.ID})
			return err
		},
		"update own collaborator status": func() error {
			_, err := s.env.tasks.UpdateCollaboratorStatus(ctx, id, outsider, outsider, "accepted")
			return err
		},
		"remove collaborator": func() error {
			return s.env.tasks.RemoveCollaborator(ctx, id, outsider, s.member.ID)
		},
		"task messages": func() error {
			_, err := s.env.messages.ListTaskMessages(ctx, id, outsider)
			return err
		},
	}

	for name, action := range actions {
		s.Run(name, func() {
			s.ErrorIs(action(), ErrForbidden)
		})
	}

	stored := reloadUser(s.T(), s.env.db, outsider)
	s.Zero(stored.NumTasksCompleted)
}

func (s *TaskServiceSuite) TestPlainMemberCannotShapeBacklog() {
	ctx, id, member := s.ctx, s.task.ID, s.member.ID

	_, err := s.env.tasks.CreateTask(ctx, CreateTaskInput{TeamID: s.team.ID, ActorID: member, TaskName: "x"})
	s.ErrorIs(err, ErrForbidden)

	name := "renamed"
	_, err = s.env.tasks.UpdateTask(ctx, id, member, UpdateTaskInput{TaskName: &name})
	s.ErrorIs(err, ErrForbidden)

	s.ErrorIs(s.env.tasks.DeleteTask(ctx, id, member), ErrForbidden)

	_, err = s.env.tasks.AddCollaborator(ctx, AddCollaboratorInput{TaskID: id, ActorID: member, UserID: s.admin.ID})
	s.ErrorIs(err, ErrForbidden)

	_, err = s.env.tasks.GetTask(ctx, id, member)
	s.NoError(err)
}

func (s *TaskServiceSuite) TestTeamAdminCanShapeBacklog() {
	lead := createServiceTestUser(s.T(), s.env.db, "lead")
	joinWorkspaceFixture(s.T(), s.env, s.workspace, lead)

	team, err := s.env.teams.CreateTeam(s.ctx, s.workspace.ID, s.admin.ID, "Platform")
	s.Require().NoError(err)
	s.Require().NoError(s.env.db.Model(team).Update("admin_user_id", lead.ID).Error)
	s.Require().NoError(s.env.teams.AddMember(s.ctx, team.ID, s.admin.ID, lead.ID))

	s.True(s.env.membership.IsTeamAdmin(s.ctx, lead.ID, team.ID))
	s.False(s.env.membership.IsWorkspaceAdmin(s.ctx, lead.ID, s.workspace.ID))

	// Created by the workspace admin, managed by the team admin.
	task, err := s.env.tasks.CreateTask(s.ctx, CreateTaskInput{TeamID: team.ID, ActorID: s.admin.ID, TaskName: "Deploy"})
	s.Require().NoError(err)

	perms := s.env.gate.CanModifyTask(s.ctx, lead.ID, task)
	s.True(perms.Member)
	s.True(perms.Admin)

	_, err = s.env.tasks.CreateTask(s.ctx, CreateTaskInput{TeamID: team.ID, ActorID: lead.ID, TaskName: "Rollback plan"})
	s.NoError(err)
}

func (s *TaskServiceSuite) TestUpdateTaskRecomputesXP() {
	difficulty := string(models.DifficultyInsane)
	task, err := s.env.tasks.UpdateTask(s.ctx, s.task.ID, s.admin.ID, UpdateTaskInput{Difficulty: &difficulty})
	s.Require().NoError(err)
	s.Equal(100, task.TaskXP)

	_, err = s.env.tasks.UpdateTask(s.ctx, s.task.ID, s.admin.ID, UpdateTaskInput{})
	s.ErrorIs(err, ErrValidationFailed)
}

func (s *TaskServiceSuite) TestDeleteTask() {
	s.Require().NoError(s.env.tasks.DeleteTask(s.ctx, s.task.ID, s.admin.ID))

	_, err := s.env.tasks.GetTask(s.ctx, s.task.ID, s.admin.ID)
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *TaskServiceSuite) TestCollaboratorLifecycle() {
	collaborator, err := s.env.tasks.AddCollaborator(s.ctx, AddCollaboratorInput{
		TaskID: s.task.ID, ActorID: s.admin.ID, UserID: s.member.ID,
	})
	s.Require().NoError(err)
	s.Equal(models.CollaboratorInvited, collaborator.Status)
	s.Equal(models.CollaboratorParticipant, collaborator.Role)
	s.Require().NotNil(collaborator.InvitedByUserID)
	s.Equal(s.admin.ID, *collaborator.InvitedByUserID)

	// The collaborator answers the invitation.
	collaborator, err = s.env.tasks.UpdateCollaboratorStatus(s.ctx, s.task.ID, s.member.ID, s.member.ID, "accepted")
	s.Require().NoError(err)
	s.Equal(models.CollaboratorAccepted, collaborator.Status)

	// A plain member cannot change somebody else's record.
	_, err = s.env.tasks.AddCollaborator(s.ctx, AddCollaboratorInput{TaskID: s.task.ID, ActorID: s.admin.ID, UserID: s.admin.ID, Role: "admin"})
	s.Require().NoError(err)
	_, err = s.env.tasks.UpdateCollaboratorStatus(s.ctx, s.task.ID, s.member.ID, s.admin.ID, "declined")
	s.ErrorIs(err, ErrForbidden)

	collaborators, err := s.env.tasks.ListCollaborators(s.ctx, s.task.ID, s.member.ID)
	s.Require().NoError(err)
	s.Len(collaborators, 2)

	s.Require().NoError(s.env.tasks.RemoveCollaborator(s.ctx, s.task.ID, s.member.ID, s.member.ID))
	err = s.env.tasks.RemoveCollaborator(s.ctx, s.task.ID, s.admin.ID, s.member.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *TaskServiceSuite) TestAddCollaboratorRequiresTeamMember() {
	_, err := s.env.tasks.AddCollaborator(s.ctx, AddCollaboratorInput{TaskID: s.task.ID, ActorID: s.admin.ID, UserID: s.outsider.ID})
	s.ErrorIs(err, ErrValidationFailed)

	_, err = s.env.tasks.AddCollaborator(s.ctx, AddCollaboratorInput{TaskID: s.task.ID, ActorID: s.admin.ID, UserID: s.member.ID, Role: "owner"})
	s.ErrorIs(err, ErrValidationFailed)
}

func (s *TaskServiceSuite) TestCompletionKeepsCollaboratorRole() {
	_, err := s.env.tasks.AddCollaborator(s.ctx, AddCollaboratorInput{
		TaskID: s.task.ID, ActorID: s.admin.ID, UserID: s.member.ID, Role: "admin", Status: "declined",
	})
	s.Require().NoError(err)

	_, err = s.changeStatus(s.member, models.TaskStatusComplete)
	s.Require().NoError(err)

	collaborator, err := s.env.store.Tasks.FindCollaborator(s.task.ID, s.member.ID)
	s.Require().NoError(err)
	s.Equal(models.CollaboratorAccepted, collaborator.Status)
	s.Equal(models.CollaboratorAdmin, collaborator.Role)
}

func (s *TaskServiceSuite) TestListMyTasks() {
	other := createTaskFixture(s.T(), s.env, s.team, s.admin, models.DifficultyMedium)
	_, err := s.env.tasks.ChangeStatus(s.ctx, ChangeStatusInput{TaskID: other.ID, ActorID: s.member.ID, Status: "complete"})
	s.Require().NoError(err)

	tasks, total, err := s.env.tasks.ListMyTasks(s.ctx, s.member.ID, "", nil)
	s.Require().NoError(err)
	s.Len(tasks, 2)
	s.Equal(int64(2), total)

	tasks, _, err = s.env.tasks.ListMyTasks(s.ctx, s.member.ID, "complete", nil)
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
	s.Equal(other.ID, tasks[0].ID)

	tasks, total, err = s.env.tasks.ListMyTasks(s.ctx, s.member.ID, "", &utils.PaginationParams{Page: 2, Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
	s.Equal(other.ID, tasks[0].ID)
	s.Equal(int64(2), total)

	tasks, _, err = s.env.tasks.ListMyTasks(s.ctx, s.outsider.ID, "", nil)
	s.Require().NoError(err)
	s.Empty(tasks)

	_, _, err = s.env.tasks.ListMyTasks(s.ctx, s.member.ID, "finished", nil)
	s.ErrorIs(err, ErrInvalidStatus)
}

func TestChangeStatusRejectsUnarchiveWhenDisabled(t *testing.T) {
	cfg := defaultTaskConfig()
	cfg.AllowUnarchive = false
	env := setupServiceTestEnv(t, cfg)
	ctx := context.Background()

	admin := createServiceTestUser(t, env.db, "admin")
	_, team := createWorkspaceFixture(t, env, admin)
	task := createTaskFixture(t, env, team, admin, models.DifficultyEasy)

	_, err := env.tasks.ChangeStatus(ctx, ChangeStatusInput{TaskID: task.ID, ActorID: admin.ID, Status: "archived"})
	require.NoError(t, err)

	_, err = env.tasks.ChangeStatus(ctx, ChangeStatusInput{TaskID: task.ID, ActorID: admin.ID, Status: "complete"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// Re-archiving an archived task is still accepted.
	_, err = env.tasks.ChangeStatus(ctx, ChangeStatusInput{TaskID: task.ID, ActorID: admin.ID, Status: "archived"})
	require.NoError(t, err)

	assert.Zero(t, reloadUser(t, env.db, admin.ID).NumTasksCompleted)
}

// registerConcurrentWriter makes the next n updates of the users table lose
// a race against another writer bumping the user's XP inside the same
// transaction.
func registerConcurrentWriter(t *testing.T, db *gorm.DB, userID uint64, n int) *int {
	t.Helper()
	remaining := n
	err := db.Callback().Update().Before("gorm:update").Register("test:concurrent_writer", func(d *gorm.DB) {
		if d.Statement.Table != "users" || remaining == 0 {
			return
		}
		remaining--
		if _, err := d.Statement.ConnPool.ExecContext(d.Statement.Context, "UPDATE users SET xp = xp + 1 WHERE id = ?", userID); err != nil {
			d.AddError(err)
		}
	})
	require.NoError(t, err)
	return &remaining
}

func TestChangeStatusRetriesLostUpdate(t *testing.T) {
	env := setupServiceTestEnv(t, defaultTaskConfig())
	ctx := context.Background()

	admin := createServiceTestUser(t, env.db, "admin")
	_, team := createWorkspaceFixture(t, env, admin)
	task := createTaskFixture(t, env, team, admin, models.DifficultyMedium)

	remaining := registerConcurrentWriter(t, env.db, admin.ID, 1)

	result, err := env.tasks.ChangeStatus(ctx, ChangeStatusInput{TaskID: task.ID, ActorID: admin.ID, Status: "complete"})
	require.NoError(t, err)
	assert.Zero(t, *remaining)

	require.NotNil(t, result.User)
	assert.Equal(t, 25, result.User.XP)
	assert.Equal(t, 1, result.User.NumTasksCompleted)
}

func TestChangeStatusRollsBackWhenRetriesExhausted(t *testing.T) {
	env := setupServiceTestEnv(t, defaultTaskConfig())
	ctx := context.Background()

	admin := createServiceTestUser(t, env.db, "admin")
	_, team := createWorkspaceFixture(t, env, admin)
	task := createTaskFixture(t, env, team, admin, models.DifficultyMedium)

	registerConcurrentWriter(t, env.db, admin.ID, 100)

	_, err := env.tasks.ChangeStatus(ctx, ChangeStatusInput{TaskID: task.ID, ActorID: admin.ID, Status: "complete"})
	require.ErrorIs(t, err, ErrConcurrencyConflict)

	var stored models.Task
	require.NoError(t, env.db.First(&stored, task.ID).Error)
	assert.Equal(t, models.TaskStatusOpen, stored.Status)

	user := reloadUser(t, env.db, admin.ID)
	assert.Zero(t, user.XP)
	assert.Zero(t, user.NumTasksCompleted)

	var collaborators int64
	env.db.Model(&models.TaskCollaborator{}).Where("task_id = ?", task.ID).Count(&collaborators)
	assert.Zero(t, collaborators)
}

func TestUpdateTaskKeepsConcurrentCompletion(t *testing.T) {
	env := setupServiceTestEnv(t, defaultTaskConfig())
	ctx := context.Background()

	admin := createServiceTestUser(t, env.db, "admin")
	_, team := createWorkspaceFixture(t, env, admin)
	task := createTaskFixture(t, env, team, admin, models.DifficultyMedium)

	// The first tasks update lands after another request completed the task.
	remaining := 1
	err := env.db.Callback().Update().Before("gorm:update").Register("test:concurrent_completion", func(d *gorm.DB) {
		if d.Statement.Table != "tasks" || remaining == 0 {
			return
		}
		remaining--
		if _, err := d.Statement.ConnPool.ExecContext(d.Statement.Context,
			"UPDATE tasks SET status = 'complete', completed_by_user_id = ?, completed_by_username = ? WHERE id = ?",
			admin.ID, admin.Username, task.ID); err != nil {
			d.AddError(err)
		}
	})
	require.NoError(t, err)

	name := "renamed"
	updated, err := env.tasks.UpdateTask(ctx, task.ID, admin.ID, UpdateTaskInput{TaskName: &name})
	require.NoError(t, err)
	assert.Zero(t, remaining)
	assert.Equal(t, "renamed", updated.TaskName)
	assert.Equal(t, models.TaskStatusComplete, updated.Status)
	require.NotNil(t, updated.CompletedByUserID)
	assert.Equal(t, admin.ID, *updated.CompletedByUserID)

	result, err := env.tasks.ChangeStatus(ctx, ChangeStatusInput{TaskID: task.ID, ActorID: admin.ID, Status: "complete"})
	require.NoError(t, err)
	assert.Nil(t, result.User)

	user := reloadUser(t, env.db, admin.ID)
	assert.Zero(t, user.XP)
	assert.Zero(t, user.NumTasksCompleted)
}

// The single-connection test database runs these completions one after
// another, so this checks that progress accumulates. The conflict path is
// covered by registerConcurrentWriter.
func TestConcurrentCompletionsBySameUser(t *testing.T) {
	env := setupServiceTestEnv(t, defaultTaskConfig())
	ctx := context.Background()

	admin := createServiceTestUser(t, env.db, "admin")
	_, team := createWorkspaceFixture(t, env, admin)

	const n = 8
	tasks := make([]*models.Task, n)
	for i := range tasks {
		tasks[i] = createTaskFixture(t, env, team, admin, models.DifficultyHard)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, task := range tasks {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			_, err := env.tasks.ChangeStatus(ctx, ChangeStatusInput{TaskID: id, ActorID: admin.ID, Status: "complete"})
			errs <- err
		}(task.ID)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	user := reloadUser(t, env.db, admin.ID)
	assert.Equal(t, n, user.NumTasksCompleted)
	assert.Equal(t, n*50, progression.TotalXP(user.Level, user.XP))
}

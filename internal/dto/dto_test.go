package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/services"
	"github.com/yukikurage/taskquest-api/internal/utils"
)

func TestToStatusChangeResponse_NullUserAndEmptyAchievements(t *testing.T) {
	response := ToStatusChangeResponse(&services.StatusChangeResult{
		Task: &models.Task{ID: 1, TaskName: "Write", Status: models.TaskStatusInProgress},
	})

	body, err := json.Marshal(response)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Nil(t, decoded["user"])
	assert.Equal(t, []any{}, decoded["achievements"])
}

func TestToStatusChangeResponse_Completion(t *testing.T) {
	response := ToStatusChangeResponse(&services.StatusChangeResult{
		Task:         &models.Task{ID: 1, Status: models.TaskStatusComplete},
		User:         &models.User{ID: 2, Username: "alice", Level: 2, XP: 0, NumTasksCompleted: 1},
		Achievements: []models.Achievement{{Code: "task_1", Name: "Getting Started", Description: "Complete your first task."}},
	})

	require.NotNil(t, response.User)
	assert.Equal(t, 2, response.User.Level)
	assert.Equal(t, []AchievementDTO{{Code: "task_1", Name: "Getting Started", Description: "Complete your first task."}}, response.Achievements)
}

func TestToWorkspaceDTO_CodeOnlyForAdmins(t *testing.T) {
	workspace := models.Workspace{ID: 1, Name: "Acme", Code: "SECRET"}

	assert.Equal(t, "SECRET", ToWorkspaceDTO(workspace, true).Code)
	assert.Empty(t, ToWorkspaceDTO(workspace, false).Code)

	memberships := ToWorkspaceWithRoleDTOs([]models.UserWorkspace{
		{Workspace: workspace, Role: models.WorkspaceRoleAdmin},
		{Workspace: workspace, Role: models.WorkspaceRoleMember},
	})
	assert.Equal(t, "SECRET", memberships[0].Code)
	assert.Empty(t, memberships[1].Code)
}

func TestToTaskListResponse(t *testing.T) {
	tasks := []models.Task{{ID: 1}, {ID: 2}}

	response := ToTaskListResponse(tasks, utils.PaginationParams{Page: 1, Limit: 2}, 5)
	assert.Len(t, response.Tasks, 2)
	assert.Equal(t, 3, response.TotalPages)

	assert.Equal(t, 0, ToTaskListResponse(nil, utils.PaginationParams{Page: 1}, 0).TotalPages)
}

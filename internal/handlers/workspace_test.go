package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/models"
)

func createWorkspace(t *testing.T, client *testClient, name string) dto.CreatedWorkspaceDTO {
	t.Helper()
	w := client.do(t, http.MethodPost, "/api/workspaces", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.CreatedWorkspaceDTO
	decode(t, w, &created)
	return created
}

func TestWorkspaceHandler_CreateAndJoin(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.signup(t, "admin")
	member := env.signup(t, "member")

	created := createWorkspace(t, admin, "  Acme  ")
	assert.Equal(t, "Acme", created.Name)
	assert.NotEmpty(t, created.Code)
	assert.NotZero(t, created.DefaultTeamID)

	w := member.do(t, http.MethodPost, "/api/workspaces/join", map[string]string{"code": created.Code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var joined dto.CreatedWorkspaceDTO
	decode(t, w, &joined)
	assert.Equal(t, created.ID, joined.ID)
	assert.Equal(t, created.DefaultTeamID, joined.DefaultTeamID)
	assert.Empty(t, joined.Code, "members never see the join code")

	w = member.do(t, http.MethodPost, "/api/workspaces/join", map[string]string{"code": created.Code})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = member.do(t, http.MethodPost, "/api/workspaces/join", map[string]string{"code": "does-not-exist"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = member.do(t, http.MethodPost, "/api/workspaces/join", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = member.do(t, http.MethodGet, "/api/workspaces/my", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Workspaces []dto.WorkspaceWithRoleDTO `json:"workspaces"`
	}
	decode(t, w, &mine)
	require.Len(t, mine.Workspaces, 2)
	roles := map[uint64]models.WorkspaceRole{}
	for _, ws := range mine.Workspaces {
		roles[ws.ID] = ws.Role
	}
	assert.Equal(t, models.WorkspaceRoleMember, roles[created.ID])
}

func TestWorkspaceHandler_SummaryAndTeams(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.signup(t, "admin")
	member := env.signup(t, "member")
	outsider := env.signup(t, "outsider")

	created := createWorkspace(t, admin, "Acme")
	w := member.do(t, http.MethodPost, "/api/workspaces/join", map[string]string{"code": created.Code})
	require.Equal(t, http.StatusOK, w.Code)

	w = admin.do(t, http.MethodPost, "/api/tasks", map[string]any{"team_id": created.DefaultTeamID, "task_name": "One"})
	require.Equal(t, http.StatusCreated, w.Code)

	summaryPath := fmt.Sprintf("/api/workspaces/%d/summary", created.ID)
	w = member.do(t, http.MethodGet, summaryPath, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary dto.WorkspaceSummaryDTO
	decode(t, w, &summary)
	assert.Equal(t, models.WorkspaceRoleMember, summary.YourRole)
	assert.Len(t, summary.Members, 2)
	assert.EqualValues(t, 1, summary.TotalTasks)
	assert.EqualValues(t, 0, summary.CompletedTasks)
	assert.Empty(t, summary.Code)

	w = outsider.do(t, http.MethodGet, summaryPath, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = outsider.do(t, http.MethodGet, "/api/workspaces/9999/summary", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	teamsPath := fmt.Sprintf("/api/workspaces/%d/teams", created.ID)
	w = member.do(t, http.MethodPost, teamsPath, map[string]string{"name": "Ops"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = admin.do(t, http.MethodPost, teamsPath, map[string]string{"name": "Ops"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var team dto.TeamDTO
	decode(t, w, &team)
	assert.Equal(t, "Ops", team.Name)
	assert.Equal(t, admin.user.ID, team.AdminUserID)

	w = member.do(t, http.MethodGet, teamsPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var teams struct {
		Teams []dto.TeamDTO `json:"teams"`
	}
	decode(t, w, &teams)
	assert.Len(t, teams.Teams, 2)
}

func TestWorkspaceHandler_AdminOperations(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.signup(t, "admin")
	member := env.signup(t, "member")

	created := createWorkspace(t, admin, "Acme")
	w := member.do(t, http.MethodPost, "/api/workspaces/join", map[string]string{"code": created.Code})
	require.Equal(t, http.StatusOK, w.Code)

	path := fmt.Sprintf("/api/workspaces/%d", created.ID)

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPut, path, map[string]string{"name": "Renamed"}},
		{http.MethodPost, path + "/regenerate-code", nil},
		{http.MethodDelete, fmt.Sprintf("%s/members/%d", path, admin.user.ID), nil},
		{http.MethodDelete, path, nil},
	}
	for _, tt := range tests {
		t.Run("member "+tt.method+" "+tt.path, func(t *testing.T) {
			w := member.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, apierrors.ErrCodeForbidden, errorCode(t, w))
		})
	}

	w = admin.do(t, http.MethodPut, path, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	var renamed dto.WorkspaceDTO
	decode(t, w, &renamed)
	assert.Equal(t, "Renamed", renamed.Name)

	w = admin.do(t, http.MethodPut, path, map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = admin.do(t, http.MethodPost, path+"/regenerate-code", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var regenerated dto.WorkspaceDTO
	decode(t, w, &regenerated)
	assert.NotEqual(t, created.Code, regenerated.Code)

	w = admin.do(t, http.MethodDelete, fmt.Sprintf("%s/members/%d", path, admin.user.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "the admin cannot be removed")

	w = admin.do(t, http.MethodDelete, fmt.Sprintf("%s/members/%d", path, member.user.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = member.do(t, http.MethodGet, path+"/summary", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = admin.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = admin.do(t, http.MethodGet, path+"/summary", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeamHandler_Members(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.signup(t, "admin")
	member := env.signup(t, "member")
	outsider := env.signup(t, "outsider")

	created := createWorkspace(t, admin, "Acme")
	w := member.do(t, http.MethodPost, "/api/workspaces/join", map[string]string{"code": created.Code})
	require.Equal(t, http.StatusOK, w.Code)

	w = admin.do(t, http.MethodPost, fmt.Sprintf("/api/workspaces/%d/teams", created.ID), map[string]string{"name": "Ops"})
	require.Equal(t, http.StatusCreated, w.Code)
	var team dto.TeamDTO
	decode(t, w, &team)

	membersPath := fmt.Sprintf("/api/teams/%d/members", team.ID)

	w = admin.do(t, http.MethodPost, membersPath, map[string]any{"user_id": outsider.user.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code, "outsider is not in the workspace")

	w = member.do(t, http.MethodPost, membersPath, map[string]any{"user_id": member.user.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = admin.do(t, http.MethodPost, membersPath, map[string]any{"user_id": member.user.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = member.do(t, http.MethodGet, "/api/teams/my", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Teams []dto.TeamDTO `json:"teams"`
	}
	decode(t, w, &mine)
	names := make([]string, 0, len(mine.Teams))
	for _, tm := range mine.Teams {
		names = append(names, tm.Name)
	}
	assert.Contains(t, names, "Ops")

	w = admin.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", membersPath, admin.user.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "the team admin cannot be removed")

	w = admin.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", membersPath, member.user.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = admin.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", membersPath, member.user.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = admin.do(t, http.MethodPost, "/api/teams/9999/members", map[string]any{"user_id": member.user.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

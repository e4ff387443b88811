package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/services"
)

// WorkspaceHandler serves workspace routes. Routes under /:id run behind
// RequireWorkspaceAccess.
type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
	teamService      *services.TeamService
}

func NewWorkspaceHandler(workspaceService *services.WorkspaceService, teamService *services.TeamService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		teamService:      teamService,
	}
}

// ListMyWorkspaces returns every workspace the current user belongs to with their role
func (h *WorkspaceHandler) ListMyWorkspaces(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	memberships, err := h.workspaceService.ListWorkspacesForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"workspaces": dto.ToWorkspaceWithRoleDTOs(memberships)})
}

type workspaceNameRequest struct {
	Name string `json:"name"`
}

// CreateWorkspace creates a workspace owned by the current user
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req workspaceNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.workspaceService.CreateWorkspace(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCreatedWorkspaceDTO(result, true))
}

// JoinWorkspace joins a workspace by its code
func (h *WorkspaceHandler) JoinWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type JoinWorkspaceRequest struct {
		Code string `json:"code" binding:"required"`
	}

	var req JoinWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "code is required")
		return
	}

	result, err := h.workspaceService.JoinWorkspace(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCreatedWorkspaceDTO(result, false))
}

// ListTeams returns the teams of a workspace
func (h *WorkspaceHandler) ListTeams(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace context missing")
		return
	}

	teams, err := h.workspaceService.ListTeams(c.Request.Context(), workspace.ID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": dto.ToTeamDTOs(teams)})
}

// GetSummary returns the members and task counts of a workspace
func (h *WorkspaceHandler) GetSummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace context missing")
		return
	}

	summary, err := h.workspaceService.GetSummary(c.Request.Context(), workspace.ID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceSummaryDTO(summary))
}

// RenameWorkspace changes the workspace name (admin only)
func (h *WorkspaceHandler) RenameWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace context missing")
		return
	}

	var req workspaceNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.workspaceService.RenameWorkspace(c.Request.Context(), workspace.ID, userID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*updated, true))
}

// RegenerateCode issues a new join code (admin only)
func (h *WorkspaceHandler) RegenerateCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace context missing")
		return
	}

	updated, err := h.workspaceService.RegenerateCode(c.Request.Context(), workspace.ID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*updated, true))
}

// DeleteWorkspace removes a workspace with its teams and tasks (admin only)
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace context missing")
		return
	}

	if err := h.workspaceService.DeleteWorkspace(c.Request.Context(), workspace.ID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Workspace deleted successfully",
	})
}

// RemoveMember removes a user from the workspace and its teams. Members may
// remove themselves
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace context missing")
		return
	}
	targetID, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.workspaceService.RemoveMember(c.Request.Context(), workspace.ID, userID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// CreateTeam creates a team inside the workspace (admin only)
func (h *WorkspaceHandler) CreateTeam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace context missing")
		return
	}

	type CreateTeamRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "name is required")
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), workspace.ID, userID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

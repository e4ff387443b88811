package middleware

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/constants"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/services"
)

// RequireWorkspaceAccess checks if the user is a member of the workspace
// named by :id.
func RequireWorkspaceAccess(workspaces *services.WorkspaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := ParseIDParam(c, "id")
		if !ok {
			apierrors.BadRequest(c, "Invalid workspace ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		workspace, member, err := workspaces.GetMembership(c.Request.Context(), workspaceID, userID)
		switch {
		case errors.Is(err, services.ErrNotFound):
			apierrors.NotFound(c, "Workspace not found")
			return
		case errors.Is(err, services.ErrForbidden):
			apierrors.Forbidden(c, err.Error())
			return
		case err != nil:
			log.Printf("RequireWorkspaceAccess: %v", err)
			apierrors.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyWorkspace, workspace)
		c.Set(constants.ContextKeyWorkspaceMember, member)
		c.Next()
	}
}

// RequireWorkspaceAdmin checks the membership stored by RequireWorkspaceAccess.
func RequireWorkspaceAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetWorkspaceMember(c)
		if !ok {
			apierrors.Forbidden(c, "Workspace access required")
			return
		}

		if member.Role != models.WorkspaceRoleAdmin {
			apierrors.Forbidden(c, services.ErrNotWorkspaceAdmin.Error())
			return
		}

		c.Next()
	}
}

// GetWorkspace returns the workspace stored by RequireWorkspaceAccess.
func GetWorkspace(c *gin.Context) (*models.Workspace, bool) {
	value, exists := c.Get(constants.ContextKeyWorkspace)
	if !exists {
		return nil, false
	}
	workspace, ok := value.(*models.Workspace)
	return workspace, ok
}

// GetWorkspaceMember returns the membership stored by RequireWorkspaceAccess.
func GetWorkspaceMember(c *gin.Context) (*models.UserWorkspace, bool) {
	value, exists := c.Get(constants.ContextKeyWorkspaceMember)
	if !exists {
		return nil, false
	}
	member, ok := value.(*models.UserWorkspace)
	return member, ok
}

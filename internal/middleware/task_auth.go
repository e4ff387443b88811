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

// RequireTaskAccess loads the task named by :id and rejects users who are not
// members of its team. The task and the caller's permissions are stored in
// the context for the handlers.
func RequireTaskAccess(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, ok := ParseIDParam(c, "id")
		if !ok {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		task, perms, err := tasks.LoadTask(c.Request.Context(), taskID, userID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				apierrors.NotFound(c, "Task not found")
				return
			}
			log.Printf("RequireTaskAccess: %v", err)
			apierrors.InternalError(c, "")
			return
		}

		if !perms.Member {
			apierrors.Forbidden(c, services.ErrNotTeamMember.Error())
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Set(constants.ContextKeyTaskPermissions, perms)
		c.Next()
	}
}

// GetTask returns the task stored by RequireTaskAccess.
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok
}

// GetTaskPermissions returns the permissions stored by RequireTaskAccess.
func GetTaskPermissions(c *gin.Context) (services.TaskPermissions, bool) {
	value, exists := c.Get(constants.ContextKeyTaskPermissions)
	if !exists {
		return services.TaskPermissions{}, false
	}
	perms, ok := value.(services.TaskPermissions)
	return perms, ok
}

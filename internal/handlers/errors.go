package handlers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/services"
)

// respondServiceError maps service error kinds to HTTP responses. Anything
// unrecognized, including exhausted concurrency retries, is a 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.InvalidStatus(c, err.Error())
	case errors.Is(err, services.ErrInvalidDifficulty):
		apierrors.InvalidDifficulty(c, err.Error())
	case errors.Is(err, services.ErrValidationFailed):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		apierrors.InternalError(c, "")
	}
}

// currentUserID returns the authenticated user or writes a 401.
func currentUserID(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return userID, exists
}

// idParam parses a numeric path parameter or writes a 400.
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, ok := middleware.ParseIDParam(c, name)
	if !ok {
		apierrors.BadRequest(c, "Invalid "+name)
	}
	return id, ok
}

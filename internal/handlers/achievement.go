package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/dto"
	"github.com/yukikurage/taskquest-api/internal/services"
)

type AchievementHandler struct {
	progressionService *services.ProgressionService
}

func NewAchievementHandler(progressionService *services.ProgressionService) *AchievementHandler {
	return &AchievementHandler{progressionService: progressionService}
}

// ListMyAchievements returns the achievements of the current user, oldest first
func (h *AchievementHandler) ListMyAchievements(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	awards, err := h.progressionService.ListUserAchievements(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": dto.ToAwardDTOs(awards)})
}

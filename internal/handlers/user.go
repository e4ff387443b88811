package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SearchUsers finds other users by username or email
func (h *UserHandler) SearchUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	users, err := h.userService.SearchUsers(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserSummaryDTOs(users)})
}

// UpdateProfile changes profile fields of the current user
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type UpdateProfileRequest struct {
		Username  *string `json:"username"`
		Email     *string `json:"email" binding:"omitempty,email,max=150"`
		FullName  *string `json:"full_name"`
		Phone     *string `json:"phone"`
		Country   *string `json:"country"`
		City      *string `json:"city"`
		Timezone  *string `json:"timezone"`
		Theme     *string `json:"theme"`
		AvatarURL *string `json:"avatar_url"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, services.UpdateProfileInput{
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Country:   req.Country,
		City:      req.City,
		Timezone:  req.Timezone,
		Theme:     req.Theme,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

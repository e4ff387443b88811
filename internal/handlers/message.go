package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/services"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

type messageContentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListDirect returns the conversation with another user, oldest first
func (h *MessageHandler) ListDirect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	messages, err := h.messageService.ListDirect(c.Request.Context(), userID, otherID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": dto.ToMessageDTOs(messages)})
}

// SendDirect sends a direct message to another user
func (h *MessageHandler) SendDirect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	var req messageContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "content is required")
		return
	}

	message, err := h.messageService.SendDirect(c.Request.Context(), userID, otherID, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageDTO(*message))
}

// ClearConversation deletes every direct message between the caller and another user
func (h *MessageHandler) ClearConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.messageService.ClearConversation(c.Request.Context(), userID, otherID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation cleared"})
}

// ListRecentConversations returns the latest message per conversation partner
func (h *MessageHandler) ListRecentConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversations, err := h.messageService.ListRecentConversations(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": dto.ToConversationDTOs(conversations)})
}

// ListTaskMessages returns the discussion of a task
func (h *MessageHandler) ListTaskMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "task_id")
	if !ok {
		return
	}

	messages, err := h.messageService.ListTaskMessages(c.Request.Context(), taskID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": dto.ToMessageDTOs(messages)})
}

// SendTaskMessage posts a message on a task
func (h *MessageHandler) SendTaskMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "task_id")
	if !ok {
		return
	}

	var req messageContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "content is required")
		return
	}

	message, err := h.messageService.SendTaskMessage(c.Request.Context(), taskID, userID, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageDTO(*message))
}

// EditMessage changes the content of the caller's own message
func (h *MessageHandler) EditMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := idParam(c, "message_id")
	if !ok {
		return
	}

	var req messageContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "content is required")
		return
	}

	message, err := h.messageService.EditMessage(c.Request.Context(), messageID, userID, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageDTO(*message))
}

// DeleteMessage removes the caller's own message
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := idParam(c, "message_id")
	if !ok {
		return
	}

	if err := h.messageService.DeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}

// ListBlocks returns the users the caller has blocked
func (h *MessageHandler) ListBlocks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	blocks, err := h.messageService.ListBlocks(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocks": dto.ToBlockDTOs(blocks)})
}

// Block stops messaging between the caller and another user
func (h *MessageHandler) Block(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	block, err := h.messageService.Block(c.Request.Context(), userID, targetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBlockDTOs([]models.UserBlock{*block})[0])
}

// Unblock removes a block created by the caller
func (h *MessageHandler) Unblock(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.messageService.Unblock(c.Request.Context(), userID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unblocked"})
}

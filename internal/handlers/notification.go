package handlers

import (
	"net/http"

	"placescout/internal/db"
	"placescout/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// List returns the caller's most recent notifications with sender and
// commented place populated.
func (h *NotificationHandler) List(c *gin.Context) {
	user := CurrentUser(c)

	var notifications []models.Notification
	err := db.DB.
		Preload("Sender").
		Preload("Comment").
		Preload("Comment.Place").
		Where("recipient_id = ?", user.ID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).Error
	if err != nil {
		zap.L().Error("notification list failed", zap.Uint("user_id", user.ID), zap.Error(err))
		Message(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, notifications)
}

type markReadRequest struct {
	IDs []uint `json:"ids"`
}

// MarkRead marks the given notifications read. Only rows owned by the
// caller are touched; foreign ids are ignored, and re-marking read rows is
// a no-op.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := CurrentUser(c)

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		Message(c, http.StatusBadRequest, "Notification IDs must be a non-empty array.")
		return
	}

	err := db.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND id IN ?", user.ID, req.IDs).
		Update("is_read", true).Error
	if err != nil {
		zap.L().Error("mark-read failed", zap.Uint("user_id", user.ID), zap.Error(err))
		Message(c, http.StatusInternalServerError, "Server error")
		return
	}

	Message(c, http.StatusOK, "Notifications marked as read.")
}

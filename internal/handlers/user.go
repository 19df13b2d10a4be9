package handlers

import (
	"net/http"

	"placescout/internal/db"
	"placescout/internal/models"
	"placescout/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

func (h *UserHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"created_at": user.CreatedAt,
	})
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Update(c *gin.Context) {
	user := CurrentUser(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Message(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		var other models.User
		if err := db.DB.Where("email = ? AND id <> ?", req.Email, user.ID).First(&other).Error; err == nil {
			Message(c, http.StatusConflict, "Email already in use.")
			return
		}
		updates["email"] = req.Email
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			Message(c, http.StatusInternalServerError, "Server error")
			return
		}
		updates["password"] = hash
	}

	if len(updates) == 0 {
		Message(c, http.StatusBadRequest, "No update data provided.")
		return
	}

	if err := db.DB.Model(user).Updates(updates).Error; err != nil {
		zap.L().Error("profile update failed", zap.Uint("user_id", user.ID), zap.Error(err))
		Message(c, http.StatusInternalServerError, "Server error")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    gin.H{"id": user.ID, "email": user.Email, "name": user.Name},
	})
}

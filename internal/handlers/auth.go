package handlers

import (
	"errors"
	"net/http"

	"placescout/internal/db"
	"placescout/internal/middleware"
	"placescout/internal/models"
	"placescout/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		Message(c, http.StatusBadRequest, "Email and password are required.")
		return
	}

	var existing models.User
	if err := db.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		Message(c, http.StatusConflict, "User with this email already exists.")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		Message(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := models.User{Email: req.Email, Password: hash}
	if err := db.DB.Create(&user).Error; err != nil {
		zap.L().Error("registration failed", zap.Error(err))
		Message(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	zap.L().Info("new user registered",
		zap.String("email", user.Email), zap.Uint("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    gin.H{"id": user.ID, "email": user.Email},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		Message(c, http.StatusBadRequest, "Email and password are required.")
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Message(c, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		Message(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		Message(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	token, err := middleware.IssueToken(user.ID, user.Email)
	if err != nil {
		zap.L().Error("token issue failed", zap.Error(err))
		Message(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	zap.L().Info("user logged in",
		zap.String("email", user.Email), zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    gin.H{"id": user.ID, "email": user.Email, "name": user.Name},
	})
}

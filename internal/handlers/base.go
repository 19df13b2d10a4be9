package handlers

import (
	"placescout/internal/middleware"
	"placescout/internal/models"

	"github.com/gin-gonic/gin"
)

// Message writes the {"message": ...} payload every error and status
// response uses.
func Message(c *gin.Context, code int, text string) {
	c.JSON(code, gin.H{"message": text})
}

// CurrentUser returns the authenticated user set by AuthRequired. Panics
// if the route is not behind the middleware.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(middleware.CheckUserKey).(*models.User)
}

// ViewerID returns the optional viewer's id, zero for anonymous requests.
func ViewerID(c *gin.Context) uint {
	if user, exists := c.Get(middleware.CheckUserKey); exists && user != nil {
		return user.(*models.User).ID
	}
	return 0
}

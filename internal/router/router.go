package router

import (
	"placescout/internal/db"
	"placescout/internal/handlers"
	"placescout/internal/middleware"
	"placescout/internal/services"
	"placescout/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const nearbyCacheSize = 500

func RegisterRoutes(r *gin.Engine) {
	nearbyCache, err := utils.NewCache(nearbyCacheSize)
	if err != nil {
		zap.L().Fatal("failed to create nearby cache", zap.Error(err))
	}

	placesService := services.NewPlacesService(nearbyCache)
	commentService := services.NewCommentService(db.DB, services.GetNotifier())

	authHandler := handlers.NewAuthHandler()
	userHandler := handlers.NewUserHandler()
	placeHandler := handlers.NewPlaceHandler(placesService, commentService)
	commentHandler := handlers.NewCommentHandler(commentService)
	notificationHandler := handlers.NewNotificationHandler()

	api := r.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	api.POST("/nearby", placeHandler.Nearby)
	api.GET("/nearby", placeHandler.NearbyConfig)
	api.GET("/places/community-favorites", placeHandler.CommunityFavorites)
	api.GET("/places/by-google-id/:googlePlaceId", middleware.LoadUser(), placeHandler.ByGoogleID)

	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/users/me", userHandler.Me)
		authorized.PUT("/users/me", userHandler.Update)

		authorized.GET("/places/me/favorites", placeHandler.MyFavorites)
		authorized.POST("/places/favorite", placeHandler.Favorite)
		authorized.POST("/places/comment", placeHandler.CreateComment)

		authorized.POST("/comments/:commentId/vote", commentHandler.Vote)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.POST("/notifications/mark-read", notificationHandler.MarkRead)
	}
}

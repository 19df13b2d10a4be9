package handlers

import (
	"errors"
	"net/http"
	"strings"

	"placescout/internal/db"
	"placescout/internal/models"
	"placescout/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlaceHandler struct {
	places   *services.PlacesService
	comments *services.CommentService
}

func NewPlaceHandler(places *services.PlacesService, comments *services.CommentService) *PlaceHandler {
	return &PlaceHandler{places: places, comments: comments}
}

type nearbyRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Keyword   string   `json:"keyword"`
}

// Nearby proxies the upstream nearby search, serving repeats from the TTL
// cache.
func (h *PlaceHandler) Nearby(c *gin.Context) {
	var req nearbyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		Message(c, http.StatusBadRequest, "Latitude and longitude are required in the request body.")
		return
	}

	zap.L().Info("nearby search",
		zap.Float64("lat", *req.Latitude),
		zap.Float64("lng", *req.Longitude),
		zap.String("keyword", req.Keyword))

	results, err := h.places.SearchNearby(*req.Latitude, *req.Longitude, req.Keyword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPlaceType):
			c.JSON(http.StatusBadRequest, gin.H{
				"message":    "Invalid place type. Must be one of: " + strings.Join(services.ValidPlaceTypes, ", "),
				"validTypes": services.ValidPlaceTypes,
			})
		case errors.Is(err, services.ErrNoAPIKey):
			Message(c, http.StatusInternalServerError, "API key not configured.")
		default:
			var upstream *services.UpstreamError
			if errors.As(err, &upstream) {
				c.JSON(upstream.StatusCode, gin.H{
					"message":    "Google Places API error: " + upstream.Body,
					"statusCode": upstream.StatusCode,
				})
				return
			}
			zap.L().Error("nearby search failed", zap.Error(err))
			Message(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, results)
}

// NearbyConfig reports whether the upstream key is configured, without
// revealing it.
func (h *PlaceHandler) NearbyConfig(c *gin.Context) {
	key := h.places.APIKey()
	if key == "" {
		Message(c, http.StatusInternalServerError, "API key not configured")
		return
	}
	prefix := key
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "API key is configured",
		"keyPrefix":  prefix + "...",
		"keyLength":  len(key),
		"validTypes": services.ValidPlaceTypes,
	})
}

// CommunityFavorites lists every place at least one user has favorited.
func (h *PlaceHandler) CommunityFavorites(c *gin.Context) {
	var places []models.Place
	err := db.DB.
		Distinct("places.*").
		Joins("JOIN favorites ON favorites.place_id = places.id AND favorites.is_favorite = ?", true).
		Find(&places).Error
	if err != nil {
		zap.L().Error("community favorites query failed", zap.Error(err))
		Message(c, http.StatusInternalServerError, "Server error")
		return
	}
	c.JSON(http.StatusOK, places)
}

// ByGoogleID returns a locally known place with its comment tree. The
// viewer's own votes are populated when a valid token accompanies the
// request.
func (h *PlaceHandler) ByGoogleID(c *gin.Context) {
	googlePlaceID := c.Param("googlePlaceId")

	var place models.Place
	if err := db.DB.Where("google_place_id = ?", googlePlaceID).First(&place).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Message(c, http.StatusNotFound, "Place not yet in our database.")
			return
		}
		Message(c, http.StatusInternalServerError, "Server error")
		return
	}

	tree, err := h.comments.Tree(place.ID, ViewerID(c))
	if err != nil {
		zap.L().Error("comment tree build failed", zap.Uint("place_id", place.ID), zap.Error(err))
		Message(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"place": place, "comments": tree})
}

// MyFavorites lists the authenticated user's favorited places.
func (h *PlaceHandler) MyFavorites(c *gin.Context) {
	user := CurrentUser(c)

	var places []models.Place
	err := db.DB.
		Joins("JOIN favorites ON favorites.place_id = places.id").
		Where("favorites.user_id = ? AND favorites.is_favorite = ?", user.ID, true).
		Find(&places).Error
	if err != nil {
		zap.L().Error("user favorites query failed", zap.Uint("user_id", user.ID), zap.Error(err))
		Message(c, http.StatusInternalServerError, "Server error")
		return
	}
	c.JSON(http.StatusOK, places)
}

type favoriteRequest struct {
	PlaceData  services.PlaceData `json:"placeData"`
	IsFavorite bool               `json:"isFavorite"`
	Rating     *int               `json:"rating"`
}

// Favorite upserts the caller's favorite/rating entry for a place,
// creating the place row on first reference.
func (h *PlaceHandler) Favorite(c *gin.Context) {
	user := CurrentUser(c)

	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Message(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	place, err := h.places.FindOrCreate(req.PlaceData)
	if err != nil {
		if errors.Is(err, services.ErrMissingPlaceID) {
			Message(c, http.StatusBadRequest, err.Error())
			return
		}
		zap.L().Error("place resolution failed", zap.Error(err))
		Message(c, http.StatusInternalServerError, "Server error")
		return
	}

	favorite := models.Favorite{
		UserID:     user.ID,
		PlaceID:    place.ID,
		IsFavorite: req.IsFavorite,
		Rating:     req.Rating,
	}
	err = db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "place_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_favorite", "rating"}),
	}).Create(&favorite).Error
	if err != nil {
		zap.L().Error("favorite upsert failed", zap.Uint("user_id", user.ID), zap.Error(err))
		Message(c, http.StatusInternalServerError, "Server error")
		return
	}

	Message(c, http.StatusOK, "Preference updated successfully")
}

type createCommentRequest struct {
	PlaceData services.PlaceData `json:"placeData"`
	Content   string             `json:"content"`
	ParentID  *uint              `json:"parentId"`
}

// CreateComment posts a comment (or reply) on a place, resolving the place
// first so a comment is never attached to a place we failed to record.
func (h *PlaceHandler) CreateComment(c *gin.Context) {
	user := CurrentUser(c)

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Message(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		Message(c, http.StatusBadRequest, "Comment content cannot be empty.")
		return
	}

	place, err := h.places.FindOrCreate(req.PlaceData)
	if err != nil {
		if errors.Is(err, services.ErrMissingPlaceID) {
			Message(c, http.StatusBadRequest, err.Error())
			return
		}
		zap.L().Error("place resolution failed", zap.Error(err))
		Message(c, http.StatusInternalServerError, "Server error")
		return
	}

	comment, err := h.comments.Submit(user.ID, place.ID, req.Content, req.ParentID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyContent):
			Message(c, http.StatusBadRequest, "Comment content cannot be empty.")
		case errors.Is(err, services.ErrParentNotFound):
			Message(c, http.StatusNotFound, "Parent comment not found.")
		case errors.Is(err, services.ErrParentPlaceMismatch):
			Message(c, http.StatusBadRequest, "Parent comment belongs to a different place.")
		default:
			zap.L().Error("comment create failed", zap.Uint("user_id", user.ID), zap.Error(err))
			Message(c, http.StatusInternalServerError, "Server error")
		}
		return
	}

	c.JSON(http.StatusCreated, comment)
}

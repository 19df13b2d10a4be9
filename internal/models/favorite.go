package models

import (
	"time"
)

// Favorite holds one user's preference for one place. The composite
// unique index backs the upsert on repeated toggles.
type Favorite struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_place" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PlaceID    uint      `gorm:"not null;uniqueIndex:idx_user_place" json:"place_id"`
	Place      Place     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	IsFavorite bool      `gorm:"default:true" json:"is_favorite"`
	Rating     *int      `json:"rating"` // Optional 1-5 personal rating
	CreatedAt  time.Time `json:"created_at"`
}

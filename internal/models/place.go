package models

import (
	"time"
)

// Place is a locally cached copy of an upstream search result. The
// GooglePlaceID is the stable name_address id clients route on, not the
// upstream resource name.
type Place struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	GooglePlaceID    string    `gorm:"uniqueIndex;not null" json:"google_place_id"`
	Name             string    `gorm:"not null" json:"name"`
	FormattedAddress string    `json:"formatted_address"`
	WebsiteURI       string    `json:"website_uri"`
	Types            []string  `gorm:"serializer:json" json:"types"`
	Rating           float64   `json:"rating"`
	UserRatingCount  int       `json:"user_rating_count"`
	Latitude         string    `gorm:"size:50" json:"latitude"`
	Longitude        string    `gorm:"size:50" json:"longitude"`
	CreatedAt        time.Time `json:"created_at"`
}

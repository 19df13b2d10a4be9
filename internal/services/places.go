package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"placescout/internal/db"
	"placescout/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNoAPIKey         = errors.New("places API key not configured")
	ErrInvalidPlaceType = errors.New("invalid place type")
	ErrMissingPlaceID   = errors.New("googlePlaceId is required to find or create a place")
)

// UpstreamError carries a failure response from the Google Places API so
// the handler can mirror its status code.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Google Places API error: status %d: %s", e.StatusCode, e.Body)
}

// ValidPlaceTypes is the set of place types accepted by the nearby search.
var ValidPlaceTypes = []string{
	"airport", "amusement_park", "aquarium", "art_gallery", "atm", "bakery",
	"bank", "bar", "beauty_salon", "bicycle_store", "book_store", "bowling_alley", "bus_station", "cafe",
	"campground", "car_dealer", "car_rental", "car_repair", "car_wash", "casino", "cemetery", "church",
	"city_hall", "clothing_store", "convenience_store", "courthouse", "dentist", "department_store",
	"doctor", "drugstore", "electrician", "electronics_store", "embassy", "establishment", "finance",
	"fire_station", "florist", "food", "furniture_store", "gas_station", "geocode",
	"grocery_store", "gym", "hair_care", "hardware_store", "health", "hindu_temple", "home_goods_store",
	"hospital", "insurance_agency", "jewelry_store", "laundry", "lawyer", "library", "liquor_store",
	"local_government_office", "locality", "locksmith", "lodging", "meal_delivery", "meal_takeaway", "mosque",
	"movie_rental", "movie_theater", "moving_company", "museum", "natural_feature", "neighborhood",
	"night_club", "painter", "park", "parking", "pet_store", "pharmacy", "physiotherapist", "place_of_worship",
	"plumber", "police", "post_office", "postal_code", "premise", "primary_school", "real_estate_agency",
	"restaurant", "roofing_contractor", "route", "rv_park", "school", "secondary_school", "shoe_store",
	"shopping_mall", "spa", "stadium", "storage", "store", "street_address", "street_number", "sublocality",
	"subway_station", "supermarket", "synagogue", "taxi_stand", "train_station", "transit_station",
	"travel_agency", "university", "veterinary_care", "zoo",
}

var validPlaceTypeSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(ValidPlaceTypes))
	for _, t := range ValidPlaceTypes {
		m[t] = struct{}{}
	}
	return m
}()

// IsValidPlaceType reports whether keyword names a known place type.
func IsValidPlaceType(keyword string) bool {
	_, ok := validPlaceTypeSet[keyword]
	return ok
}

type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearbyPlace is the transformed search result the SPA consumes.
// GooglePlaceID is the stable id built from name and address, used as the
// routing key and the find-or-create key.
type NearbyPlace struct {
	GooglePlaceID    string   `json:"googlePlaceId"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formattedAddress"`
	Types            []string `json:"types"`
	WebsiteURI       string   `json:"websiteUri"`
	Rating           float64  `json:"rating"`
	UserRatingCount  int      `json:"userRatingCount"`
	Location         *LatLng  `json:"location"`
}

// PlaceData is the place payload clients send when favoriting or
// commenting, mirroring NearbyPlace.
type PlaceData struct {
	GooglePlaceID    string   `json:"googlePlaceId"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formattedAddress"`
	Types            []string `json:"types"`
	WebsiteURI       string   `json:"websiteUri"`
	Rating           float64  `json:"rating"`
	UserRatingCount  int      `json:"userRatingCount"`
	Location         *LatLng  `json:"location"`
}

const nearbyCacheTTL = time.Hour

// NearbyCache is the cache collaborator for nearby search responses.
// *utils.Cache satisfies it.
type NearbyCache interface {
	Get(key string) interface{}
	Set(key string, data interface{}, ttl time.Duration)
}

// PlacesService proxies the Google Places searchNearby API behind a TTL
// cache and resolves upstream results to local place rows.
type PlacesService struct {
	client  *http.Client
	cache   NearbyCache
	apiKey  string
	baseURL string
}

func NewPlacesService(cache NearbyCache) *PlacesService {
	return &PlacesService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:   cache,
		apiKey:  os.Getenv("GOOGLE_PLACES_API_KEY"),
		baseURL: "https://places.googleapis.com/v1/places:searchNearby",
	}
}

// APIKey exposes the configured key for the config probe endpoint.
func (s *PlacesService) APIKey() string {
	return s.apiKey
}

type searchNearbyRequest struct {
	IncludedTypes       []string `json:"includedTypes"`
	MaxResultCount      int      `json:"maxResultCount"`
	LocationRestriction struct {
		Circle struct {
			Center LatLng  `json:"center"`
			Radius float64 `json:"radius"`
		} `json:"circle"`
	} `json:"locationRestriction"`
}

type searchNearbyResponse struct {
	Places []struct {
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string   `json:"formattedAddress"`
		Types            []string `json:"types"`
		WebsiteURI       string   `json:"websiteUri"`
		Rating           float64  `json:"rating"`
		UserRatingCount  int      `json:"userRatingCount"`
		Location         *LatLng  `json:"location"`
	} `json:"places"`
}

func nearbyCacheKey(latitude, longitude, keyword string) string {
	return fmt.Sprintf("nearby:%s:%s:%s", latitude, longitude, keyword)
}

// SearchNearby returns places around (latitude, longitude) matching the
// keyword type, serving repeated searches from the cache for an hour.
func (s *PlacesService) SearchNearby(latitude, longitude float64, keyword string) ([]NearbyPlace, error) {
	if s.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if keyword != "" && !IsValidPlaceType(keyword) {
		return nil, ErrInvalidPlaceType
	}

	cacheKey := nearbyCacheKey(
		fmt.Sprintf("%g", latitude), fmt.Sprintf("%g", longitude), keyword)
	if cached := s.cache.Get(cacheKey); cached != nil {
		if places, ok := cached.([]NearbyPlace); ok {
			zap.L().Info("nearby cache hit", zap.String("key", cacheKey))
			return places, nil
		}
	}

	includedType := keyword
	if includedType == "" {
		includedType = "restaurant"
	}

	var reqBody searchNearbyRequest
	reqBody.IncludedTypes = []string{includedType}
	reqBody.MaxResultCount = 10
	reqBody.LocationRestriction.Circle.Center = LatLng{Latitude: latitude, Longitude: longitude}
	reqBody.LocationRestriction.Circle.Radius = 5000.0

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", s.apiKey)
	req.Header.Set("X-Goog-FieldMask",
		"places.displayName,places.formattedAddress,places.types,places.websiteUri,places.rating,places.userRatingCount,places.location")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		zap.L().Error("places upstream error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var data searchNearbyResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}
	if len(data.Places) == 0 {
		zap.L().Warn("places upstream returned no results",
			zap.String("keyword", includedType))
		return []NearbyPlace{}, nil
	}

	results := make([]NearbyPlace, 0, len(data.Places))
	for _, p := range data.Places {
		name := p.DisplayName.Text
		if name == "" {
			name = "Unknown"
		}
		address := p.FormattedAddress
		if address == "" {
			address = "Unknown"
		}
		results = append(results, NearbyPlace{
			GooglePlaceID:    name + "_" + address,
			Name:             name,
			FormattedAddress: address,
			Types:            p.Types,
			WebsiteURI:       p.WebsiteURI,
			Rating:           p.Rating,
			UserRatingCount:  p.UserRatingCount,
			Location:         p.Location,
		})
	}

	s.cache.Set(cacheKey, results, nearbyCacheTTL)
	return results, nil
}

// FindOrCreate resolves a place row by its stable id, creating the local
// copy on first reference. Concurrent first references race on the unique
// index; the loser re-reads the winner's row.
func (s *PlacesService) FindOrCreate(data PlaceData) (*models.Place, error) {
	if data.GooglePlaceID == "" {
		return nil, ErrMissingPlaceID
	}

	var place models.Place
	err := db.DB.Where("google_place_id = ?", data.GooglePlaceID).First(&place).Error
	if err == nil {
		return &place, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	zap.L().Info("creating place", zap.String("name", data.Name))
	place = models.Place{
		GooglePlaceID:    data.GooglePlaceID,
		Name:             data.Name,
		FormattedAddress: data.FormattedAddress,
		WebsiteURI:       data.WebsiteURI,
		Types:            data.Types,
		Rating:           data.Rating,
		UserRatingCount:  data.UserRatingCount,
	}
	if data.Location != nil {
		place.Latitude = fmt.Sprintf("%g", data.Location.Latitude)
		place.Longitude = fmt.Sprintf("%g", data.Location.Longitude)
	}

	err = db.DB.Create(&place).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = db.DB.Where("google_place_id = ?", data.GooglePlaceID).First(&place).Error
	}
	if err != nil {
		return nil, err
	}
	return &place, nil
}

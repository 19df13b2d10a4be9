package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"placescout/internal/db"
	"placescout/internal/models"
	"placescout/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newPlacesService(t *testing.T, upstream string) *PlacesService {
	t.Helper()
	t.Setenv("GOOGLE_PLACES_API_KEY", "test-key-1234567890")

	cache, err := utils.NewCache(10)
	require.NoError(t, err)

	svc := NewPlacesService(cache)
	if upstream != "" {
		svc.baseURL = upstream
	}
	return svc
}

func upstreamResponse() map[string]interface{} {
	return map[string]interface{}{
		"places": []map[string]interface{}{
			{
				"displayName":      map[string]string{"text": "Blue Bottle"},
				"formattedAddress": "1 Ferry Building, San Francisco",
				"types":            []string{"cafe", "food"},
				"websiteUri":       "https://bluebottle.example",
				"rating":           4.5,
				"userRatingCount":  321,
				"location":         map[string]float64{"latitude": 37.7955, "longitude": -122.3937},
			},
		},
	}
}

func TestSearchNearbyTransformsResults(t *testing.T) {
	var gotFieldMask string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("X-Goog-Api-Key") != "test-key-1234567890" {
			t.Errorf("unexpected api key header %q", r.Header.Get("X-Goog-Api-Key"))
		}
		gotFieldMask = r.Header.Get("X-Goog-FieldMask")
		json.NewEncoder(w).Encode(upstreamResponse())
	}))
	defer server.Close()

	svc := newPlacesService(t, server.URL)

	results, err := svc.SearchNearby(37.79, -122.39, "cafe")
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, "Blue Bottle_1 Ferry Building, San Francisco", got.GooglePlaceID)
	assert.Equal(t, "Blue Bottle", got.Name)
	assert.Equal(t, []string{"cafe", "food"}, got.Types)
	assert.Equal(t, 4.5, got.Rating)
	assert.Equal(t, 321, got.UserRatingCount)
	require.NotNil(t, got.Location)
	assert.InDelta(t, 37.7955, got.Location.Latitude, 1e-6)
	assert.Contains(t, gotFieldMask, "places.displayName")
}

func TestSearchNearbyServesFromCache(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(upstreamResponse())
	}))
	defer server.Close()

	svc := newPlacesService(t, server.URL)

	_, err := svc.SearchNearby(37.79, -122.39, "cafe")
	require.NoError(t, err)
	_, err = svc.SearchNearby(37.79, -122.39, "cafe")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second identical search must hit the cache")

	// A different keyword is a different cache key.
	_, err = svc.SearchNearby(37.79, -122.39, "bar")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSearchNearbyRejectsUnknownType(t *testing.T) {
	svc := newPlacesService(t, "")
	_, err := svc.SearchNearby(37.79, -122.39, "discotheque")
	assert.ErrorIs(t, err, ErrInvalidPlaceType)
}

func TestSearchNearbyRequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_PLACES_API_KEY", "")
	cache, err := utils.NewCache(10)
	require.NoError(t, err)
	svc := NewPlacesService(cache)

	_, err = svc.SearchNearby(37.79, -122.39, "cafe")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestSearchNearbyMirrorsUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := newPlacesService(t, server.URL)
	_, err := svc.SearchNearby(37.79, -122.39, "cafe")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "quota exceeded")
}

func TestSearchNearbyEmptyUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	svc := newPlacesService(t, server.URL)
	results, err := svc.SearchNearby(37.79, -122.39, "cafe")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindOrCreate(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.Place{}))
	db.DB = gdb

	svc := newPlacesService(t, "")

	_, err = svc.FindOrCreate(PlaceData{Name: "No ID"})
	assert.ErrorIs(t, err, ErrMissingPlaceID)

	data := PlaceData{
		GooglePlaceID:    "Blue Bottle_1 Ferry Building",
		Name:             "Blue Bottle",
		FormattedAddress: "1 Ferry Building",
		Types:            []string{"cafe"},
		Rating:           4.5,
		UserRatingCount:  321,
		Location:         &LatLng{Latitude: 37.7955, Longitude: -122.3937},
	}

	created, err := svc.FindOrCreate(data)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "37.7955", created.Latitude)

	again, err := svc.FindOrCreate(data)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	var count int64
	require.NoError(t, gdb.Model(&models.Place{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

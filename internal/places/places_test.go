package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cravewise/backend/internal/types"
)

var timesSquare = types.GeoPoint{Lat: 40.7580, Lng: -73.9855}

func fakePlaces(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/textsearch/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "restaurant", r.URL.Query().Get("type"))
		assert.Equal(t, "40.758,-73.9855", r.URL.Query().Get("location"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFinder_FindNearby(t *testing.T) {
	t.Run("should pick the best rated open place", func(t *testing.T) {
		srv := fakePlaces(t, `{"status": "OK", "results": [
			{"name": "Closed Noodle Bar", "rating": 4.9, "business_status": "CLOSED_PERMANENTLY",
			 "geometry": {"location": {"lat": 40.759, "lng": -73.985}}},
			{"name": "Meh Noodles", "rating": 3.1, "geometry": {"location": {"lat": 40.758, "lng": -73.985}}},
			{"name": "Far Ramen", "rating": 4.6, "price_level": 3, "geometry": {"location": {"lat": 40.80, "lng": -73.95}}},
			{"name": "Near Ramen", "rating": 4.6, "price_level": 2, "formatted_address": "1 Broadway",
			 "geometry": {"location": {"lat": 40.7590, "lng": -73.9845}}}
		]}`)
		finder, err := NewFinder("test-key", nil, WithBaseURL(srv.URL))
		require.NoError(t, err)

		match, err := finder.FindNearby(context.Background(), "Tonkotsu Ramen", timesSquare)
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, "Near Ramen", match.Name)
		assert.Equal(t, "1 Broadway", match.Address)
		assert.Equal(t, 4.6, match.Rating)
		assert.Equal(t, 2, match.PriceLevel)
		assert.Less(t, match.DistanceMiles, 0.2)
	})

	t.Run("should return nil when nothing qualifies", func(t *testing.T) {
		srv := fakePlaces(t, `{"status": "ZERO_RESULTS", "results": []}`)
		finder, err := NewFinder("test-key", nil, WithBaseURL(srv.URL))
		require.NoError(t, err)

		match, err := finder.FindNearby(context.Background(), "Unicorn Stew", timesSquare)
		require.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("should surface API errors", func(t *testing.T) {
		srv := fakePlaces(t, `{"status": "OVER_QUERY_LIMIT", "error_message": "quota"}`)
		finder, err := NewFinder("test-key", nil, WithBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = finder.FindNearby(context.Background(), "Pho", timesSquare)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OVER_QUERY_LIMIT")
	})

	t.Run("should require an API key", func(t *testing.T) {
		_, err := NewFinder("", nil)
		assert.Error(t, err)
	})
}

func TestHaversineMiles(t *testing.T) {
	assert.InDelta(t, 0, HaversineMiles(timesSquare, timesSquare), 1e-9)
	// Times Square to Grand Central is roughly half a mile.
	grandCentral := types.GeoPoint{Lat: 40.7527, Lng: -73.9772}
	assert.InDelta(t, 0.55, HaversineMiles(timesSquare, grandCentral), 0.1)
}

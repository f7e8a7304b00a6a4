// Package places looks up restaurants near the user through the Google Places
// text search API.
package places

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"github.com/pageza/cravewise/backend/internal/types"
)

const (
	// DefaultRadiusMeters biases text search toward places within reach.
	DefaultRadiusMeters = 8000
	// MinRating filters out poorly reviewed places.
	MinRating = 3.5

	earthRadiusMiles = 3958.8
	closedForGood    = "CLOSED_PERMANENTLY"
)

// Finder resolves a dish name to the best nearby restaurant serving it.
type Finder struct {
	client *maps.Client
	radius uint
	logger *zap.Logger
}

// Option customizes a Finder.
type Option func(*finderOptions)

type finderOptions struct {
	mapsOpts []maps.ClientOption
	radius   uint
}

// WithBaseURL points the client at another Places endpoint.
func WithBaseURL(url string) Option {
	return func(o *finderOptions) { o.mapsOpts = append(o.mapsOpts, maps.WithBaseURL(url)) }
}

// WithRadius overrides DefaultRadiusMeters.
func WithRadius(meters uint) Option {
	return func(o *finderOptions) { o.radius = meters }
}

// NewFinder creates a Finder with the given API key.
func NewFinder(apiKey string, logger *zap.Logger, opts ...Option) (*Finder, error) {
	o := finderOptions{radius: DefaultRadiusMeters}
	for _, opt := range opts {
		opt(&o)
	}
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, o.mapsOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{client: client, radius: o.radius, logger: logger.Named("places")}, nil
}

// FindNearby returns the highest rated open restaurant serving dish near at,
// preferring the closer one on equal ratings. It returns nil when nothing
// qualifies.
func (f *Finder) FindNearby(ctx context.Context, dish string, at types.GeoPoint) (*types.RestaurantMatch, error) {
	dish = strings.TrimSpace(dish)
	if dish == "" {
		return nil, nil
	}

	resp, err := f.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    dish,
		Location: &maps.LatLng{Lat: at.Lat, Lng: at.Lng},
		Radius:   f.radius,
		Type:     maps.PlaceTypeRestaurant,
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	var best *types.RestaurantMatch
	for _, result := range resp.Results {
		if result.PermanentlyClosed || result.BusinessStatus == closedForGood {
			continue
		}
		if float64(result.Rating) < MinRating {
			continue
		}
		candidate := &types.RestaurantMatch{
			Name:          result.Name,
			Address:       result.FormattedAddress,
			Rating:        math.Round(float64(result.Rating)*10) / 10,
			DistanceMiles: HaversineMiles(at, types.GeoPoint{Lat: result.Geometry.Location.Lat, Lng: result.Geometry.Location.Lng}),
			PriceLevel:    result.PriceLevel,
		}
		if best == nil || candidate.Rating > best.Rating ||
			(candidate.Rating == best.Rating && candidate.DistanceMiles < best.DistanceMiles) {
			best = candidate
		}
	}

	f.logger.Debug("restaurant lookup",
		zap.String("dish", dish),
		zap.Int("results", len(resp.Results)),
		zap.Bool("matched", best != nil))
	return best, nil
}

// HaversineMiles is the great-circle distance between two points.
func HaversineMiles(a, b types.GeoPoint) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h)))
}

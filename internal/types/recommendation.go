package types

import "strings"

// Kind tells whether a recommendation points at a place to eat or a dish to cook.
type Kind string

const (
	KindRestaurant Kind = "restaurant"
	KindRecipe     Kind = "recipe"
)

// GeoPoint is a latitude/longitude pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat" binding:"min=-90,max=90"`
	Lng float64 `json:"lng" binding:"min=-180,max=180"`
}

// Position is the approximate location of a dish on a scanned menu, in percent.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Recommendation is a single dish, restaurant or recipe suggested for a craving.
type Recommendation struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Cuisine           string    `json:"cuisine,omitempty"`
	Kind              Kind      `json:"type"`
	MatchReason       string    `json:"matchReason,omitempty"`
	Image             string    `json:"image,omitempty"`
	Rating            *float64  `json:"rating,omitempty"`
	PrepTime          string    `json:"prepTime,omitempty"`
	Distance          string    `json:"distance,omitempty"`
	Price             string    `json:"price,omitempty"`
	Category          string    `json:"category,omitempty"`
	MatchScore        *float64  `json:"matchScore,omitempty"`
	Reasons           []string  `json:"reasons,omitempty"`
	Dietary           []string  `json:"dietary,omitempty"`
	SpiceLevel        *int      `json:"spiceLevel,omitempty"`
	EstimatedPosition *Position `json:"estimatedPosition,omitempty"`
}

// RecommendationSet is the bounded, ordered list shown for one request cycle.
type RecommendationSet struct {
	Recommendations []Recommendation `json:"recommendations"`
	Summary         string           `json:"summary,omitempty"`
}

// Names returns the recommendation names in display order.
func (s RecommendationSet) Names() []string {
	names := make([]string, 0, len(s.Recommendations))
	for _, r := range s.Recommendations {
		names = append(names, r.Name)
	}
	return names
}

// Find returns the recommendation whose name matches case-insensitively.
func (s RecommendationSet) Find(name string) (Recommendation, bool) {
	want := lower(name)
	for _, r := range s.Recommendations {
		if lower(r.Name) == want {
			return r, true
		}
	}
	return Recommendation{}, false
}

// RecommendationRequest is a craving captured from the user.
type RecommendationRequest struct {
	Craving           string    `json:"craving"`
	DietaryFilters    []string  `json:"dietaryFilters,omitempty"`
	CuisinePreference string    `json:"cuisinePreference,omitempty"`
	Location          *GeoPoint `json:"location,omitempty"`
}

// Normalize trims the craving and cuisine and de-duplicates dietary filters
// case-insensitively, keeping the first spelling seen.
func (r RecommendationRequest) Normalize() RecommendationRequest {
	out := r
	out.Craving = strings.TrimSpace(r.Craving)
	out.CuisinePreference = strings.TrimSpace(r.CuisinePreference)
	seen := make(map[string]struct{}, len(r.DietaryFilters))
	out.DietaryFilters = nil
	for _, f := range r.DietaryFilters {
		f = strings.TrimSpace(f)
		key := strings.ToLower(f)
		if f == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out.DietaryFilters = append(out.DietaryFilters, f)
	}
	return out
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

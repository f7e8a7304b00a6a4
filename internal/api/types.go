package api

import (
	"github.com/pageza/cravewise/backend/internal/models"
	"github.com/pageza/cravewise/backend/internal/types"
)

// AnalyzeCravingRequest is the body of POST /analyze-craving. Nationality is
// the cuisine preference under the name older clients send.
type AnalyzeCravingRequest struct {
	Craving            string          `json:"craving"`
	DietaryPreferences []string        `json:"dietaryPreferences"`
	Nationality        string          `json:"nationality"`
	CuisinePreference  string          `json:"cuisinePreference"`
	Location           *types.GeoPoint `json:"location" binding:"omitempty"`
}

// ToRecommendationRequest converts the wire body to the domain request.
func (r AnalyzeCravingRequest) ToRecommendationRequest() types.RecommendationRequest {
	cuisine := r.CuisinePreference
	if cuisine == "" {
		cuisine = r.Nationality
	}
	return types.RecommendationRequest{
		Craving:           r.Craving,
		DietaryFilters:    r.DietaryPreferences,
		CuisinePreference: cuisine,
		Location:          r.Location,
	}.Normalize()
}

// AnalyzeCravingResponse is returned by analyze-craving and regenerate.
type AnalyzeCravingResponse struct {
	Success         bool                    `json:"success"`
	Analysis        string                  `json:"analysis,omitempty"`
	Recommendations types.RecommendationSet `json:"recommendations"`
	SessionID       string                  `json:"sessionId,omitempty"`
}

// AnalyzeMenuRequest is the body of POST /analyze-menu.
type AnalyzeMenuRequest struct {
	ImageBase64 string `json:"imageBase64"`
	Cravings    string `json:"cravings"`
}

// AnalyzeMenuResponse is returned by both menu endpoints.
type AnalyzeMenuResponse struct {
	Success  bool                    `json:"success"`
	Analysis types.RecommendationSet `json:"analysis"`
	ImageURL string                  `json:"imageUrl,omitempty"`
}

// ConfirmRequest closes a session with the dish that satisfied the craving.
type ConfirmRequest struct {
	DishName string `json:"dishName" binding:"required"`
	Rating   *int   `json:"rating"`
}

// SessionResponse wraps a session lookup.
type SessionResponse struct {
	Success bool           `json:"success"`
	Session *types.Session `json:"session"`
}

// ConfirmResponse wraps the recorded history entry.
type ConfirmResponse struct {
	Success bool                  `json:"success"`
	Record  *models.CravingRecord `json:"record"`
}

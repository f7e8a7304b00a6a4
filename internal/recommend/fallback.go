package recommend

import "github.com/pageza/cravewise/backend/internal/types"

func floatPtr(f float64) *float64 { return &f }

// FallbackSet is returned whenever extraction finds nothing, so callers never
// show an empty set. Each call returns a fresh copy.
func FallbackSet() types.RecommendationSet {
	return types.RecommendationSet{
		Recommendations: []types.Recommendation{
			{
				ID:          "1",
				Name:        "Spicy Thai Red Curry",
				Description: "Rich coconut curry with fresh vegetables and aromatic spices",
				Image:       "https://images.unsplash.com/photo-1455619452474-d2be8b1e70cd?w=400&h=300&fit=crop",
				Kind:        types.KindRestaurant,
				Cuisine:     "Thai",
				Rating:      floatPtr(4.8),
				Distance:    "0.8 mi",
				Price:       "$$",
				MatchReason: "Perfect for your spicy and warming craving",
			},
			{
				ID:          "2",
				Name:        "Homemade Butter Chicken",
				Description: "Creamy tomato-based curry that's comforting and rich",
				Image:       "https://images.unsplash.com/photo-1565557623262-b51c2513a641?w=400&h=300&fit=crop",
				Kind:        types.KindRecipe,
				Cuisine:     "Indian",
				PrepTime:    "45 min",
				MatchReason: "Matches your comfort food mood perfectly",
			},
			{
				ID:          "3",
				Name:        "Korean Fire Noodles",
				Description: "Instant noodles with gochujang and fresh vegetables",
				Image:       "https://images.unsplash.com/photo-1569718212165-3a8278d5f624?w=400&h=300&fit=crop",
				Kind:        types.KindRecipe,
				Cuisine:     "Korean",
				PrepTime:    "15 min",
				MatchReason: "Quick spicy fix for your craving",
			},
		},
	}
}

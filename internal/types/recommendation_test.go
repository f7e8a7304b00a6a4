package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleSet() RecommendationSet {
	return RecommendationSet{Recommendations: []Recommendation{
		{Name: "Pad Thai", Kind: KindRestaurant},
		{Name: "Khao Soi", Kind: KindRecipe},
	}}
}

func TestRecommendationSet(t *testing.T) {
	t.Run("should list names straight off a returned set", func(t *testing.T) {
		assert.Equal(t, []string{"Pad Thai", "Khao Soi"}, sampleSet().Names())
		assert.Empty(t, RecommendationSet{}.Names())
	})

	t.Run("should find names ignoring case and padding", func(t *testing.T) {
		rec, ok := sampleSet().Find("  khao soi ")
		assert.True(t, ok)
		assert.Equal(t, KindRecipe, rec.Kind)

		_, ok = sampleSet().Find("larb")
		assert.False(t, ok)
	})
}

func TestRecommendationRequest_Normalize(t *testing.T) {
	req := RecommendationRequest{
		Craving:           "  ramen ",
		CuisinePreference: " Japanese",
		DietaryFilters:    []string{"Vegan", " vegan ", "", "halal"},
	}.Normalize()

	assert.Equal(t, "ramen", req.Craving)
	assert.Equal(t, "Japanese", req.CuisinePreference)
	assert.Equal(t, []string{"Vegan", "halal"}, req.DietaryFilters)
}

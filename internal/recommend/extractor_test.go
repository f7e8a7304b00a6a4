package recommend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cravewise/backend/internal/types"
)

func fixedChoice(i int) ChoiceFunc {
	return func(int) int { return i }
}

func TestExtractor_Candidates(t *testing.T) {
	e := NewExtractor(fixedChoice(0), nil)

	t.Run("should honour numbered and dashed lines in order", func(t *testing.T) {
		got := e.Candidates("1. Spicy Ramen\n2. Beef Tacos\n- Iced Coffee")
		assert.Equal(t, []string{"Spicy Ramen", "Beef Tacos", "Iced Coffee"}, got)
	})

	t.Run("should capture bold spans", func(t *testing.T) {
		got := e.Candidates("Try the **Pad Thai** tonight.\nOr some **Green Curry** instead.")
		assert.Equal(t, []string{"Pad Thai", "Green Curry"}, got)
	})

	t.Run("should de-duplicate case-insensitively", func(t *testing.T) {
		got := e.Candidates("- Curry\n- curry\n- CURRY")
		assert.Equal(t, []string{"Curry"}, got)
	})

	t.Run("should fall back to enclosing sentences for keywords", func(t *testing.T) {
		got := e.Candidates("Try a warm chicken soup tonight. Or maybe some pizza. Nothing else")
		assert.Equal(t, []string{"Try a warm chicken soup tonight", "Or maybe some pizza"}, got)
	})

	t.Run("should order keyword sentences by where they appear", func(t *testing.T) {
		got := e.Candidates("Pizza tonight. Or a curry tomorrow. Then rice")
		assert.Equal(t, []string{"Pizza tonight", "Or a curry tomorrow", "Then rice"}, got)
	})

	t.Run("should match whole words only", func(t *testing.T) {
		assert.Empty(t, e.Candidates("Something pricey and phonetic"))
	})

	t.Run("should not cap candidates", func(t *testing.T) {
		got := e.Candidates("1. A\n2. B\n3. C\n4. D\n5. E")
		assert.Len(t, got, 5)
	})
}

func TestExtractor_Extract(t *testing.T) {
	t.Run("should cap at three and enrich every item", func(t *testing.T) {
		e := NewExtractor(fixedChoice(1), nil)
		set := e.Extract("1. Spicy Ramen!\n2. Beef Tacos\n3. Chicken Biryani\n4. Margherita Pizza", "something spicy", "")

		require.Len(t, set.Recommendations, MaxTextRecommendations)
		assert.Equal(t, []string{"Spicy Ramen", "Beef Tacos", "Chicken Biryani"}, set.Names())

		first := set.Recommendations[0]
		assert.Equal(t, "1", first.ID)
		assert.Equal(t, "Japanese", first.Cuisine)
		assert.Equal(t, types.KindRecipe, first.Kind)
		assert.Equal(t, "A delicious spicy ramen that hits the spot", first.Description)
		assert.Equal(t, "Perfect match for your craving: something spicy", first.MatchReason)
		assert.Equal(t, noodlePhoto, first.Image)

		assert.Equal(t, "Mexican", set.Recommendations[1].Cuisine)
		assert.Equal(t, "Indian", set.Recommendations[2].Cuisine)
	})

	t.Run("should prefer the stated cuisine", func(t *testing.T) {
		e := NewExtractor(fixedChoice(0), nil)
		set := e.Extract("- Pad Thai", "noodles", "Korean")

		require.Len(t, set.Recommendations, 1)
		assert.Equal(t, "Korean", set.Recommendations[0].Cuisine)
		assert.Equal(t, types.KindRestaurant, set.Recommendations[0].Kind)
	})

	t.Run("should collapse names that only differ after cleaning", func(t *testing.T) {
		e := NewExtractor(fixedChoice(0), nil)
		set := e.Extract("1. Pho!\n2. Pho?\n3. Banh Mi", "soup", "")
		assert.Equal(t, []string{"Pho", "Banh Mi"}, set.Names())
	})

	t.Run("should never return an empty set", func(t *testing.T) {
		e := NewExtractor(fixedChoice(0), nil)
		inputs := []string{
			"",
			"I am not sure what to suggest here",
			"- !!!\n- ???",
			strings.Repeat("hmm. ", 20),
		}
		for _, in := range inputs {
			set := e.Extract(in, "anything", "")
			assert.NotEmpty(t, set.Recommendations, "input %q", in)
			assert.LessOrEqual(t, len(set.Recommendations), MaxTextRecommendations)
		}
	})

	t.Run("should use the fixed fallback set when nothing is found", func(t *testing.T) {
		e := NewExtractor(fixedChoice(0), nil)
		set := e.Extract("I am not sure what to suggest here", "anything", "")
		assert.Equal(t, FallbackSet(), set)
		assert.Equal(t, []string{"Spicy Thai Red Curry", "Homemade Butter Chicken", "Korean Fire Noodles"}, set.Names())
	})

	t.Run("should keep results unique for keyword prose", func(t *testing.T) {
		e := NewExtractor(fixedChoice(0), nil)
		set := e.Extract("Curry is lovely. Rice on the side. Curry again. Some soup too.", "warm", "")
		seen := map[string]bool{}
		for _, name := range set.Names() {
			key := strings.ToLower(name)
			assert.False(t, seen[key], "duplicate %q", name)
			seen[key] = true
		}
		assert.Len(t, set.Recommendations, 3)
	})
}

func TestCleanDishName(t *testing.T) {
	assert.Equal(t, "Chana Masala", CleanDishName("**Chana Masala**!"))
	assert.Equal(t, "Crème brûlée", CleanDishName("Crème brûlée."))
	assert.Equal(t, "Fish Chips", CleanDishName("Fish & Chips"))
	assert.Equal(t, "", CleanDishName(" -- "))
}

func TestInferCuisine(t *testing.T) {
	cases := map[string]string{
		"Chicken Biryani":  "Indian",
		"Margherita Pizza": "Italian",
		"Tonkotsu Ramen":   "Japanese",
		"Beef Tacos":       "Mexican",
		"Pho Bo":           "Vietnamese",
		"Pad Thai":         "Thai",
		"Tom-Yum Soup":     "Thai",
		"Shepherd's Pie":   DefaultCuisine,
	}
	for dish, want := range cases {
		assert.Equal(t, want, InferCuisine(dish), dish)
	}
}

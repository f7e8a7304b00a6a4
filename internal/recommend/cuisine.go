package recommend

import "strings"

// DefaultCuisine is used when no lookup entry matches.
const DefaultCuisine = "International"

type cuisineRule struct {
	keywords []string
	cuisine  string
}

// Order matters: the first rule with a matching keyword wins.
var cuisineRules = []cuisineRule{
	{[]string{"curry", "biryani"}, "Indian"},
	{[]string{"pasta", "pizza"}, "Italian"},
	{[]string{"ramen", "sushi"}, "Japanese"},
	{[]string{"taco", "burrito"}, "Mexican"},
	{[]string{"pho", "banh"}, "Vietnamese"},
	{[]string{"pad thai", "padthai", "pad-thai", "tom yum", "tomyum", "tom-yum"}, "Thai"},
}

// InferCuisine guesses a cuisine from a dish name by substring lookup.
func InferCuisine(dish string) string {
	lower := strings.ToLower(dish)
	for _, rule := range cuisineRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.cuisine
			}
		}
	}
	return DefaultCuisine
}

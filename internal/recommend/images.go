package recommend

import (
	"sort"
	"strings"
)

const unsplash = "https://images.unsplash.com/"

func photo(id string) string {
	return unsplash + id + "?w=400&h=300&fit=crop"
}

var (
	curryPhoto   = photo("photo-1565557623262-b51c2513a641")
	masalaPhoto  = photo("photo-1585937421612-70a008356fbe")
	thaiPhoto    = photo("photo-1455619452474-d2be8b1e70cd")
	noodlePhoto  = photo("photo-1569718212165-3a8278d5f624")
	burgerPhoto  = photo("photo-1571091718767-18b5b1457add")
	pizzaPhoto   = photo("photo-1565299624946-b28f40a0ca4b")
	bowlPhoto    = photo("photo-1546069901-ba9599a7e63c")
	saladPhoto   = photo("photo-1512621776951-a57141f2eefd")
	platterPhoto = photo("photo-1504674900247-0877df9cc836")
	platePhoto   = photo("photo-1540189549336-e6e99c3679fe")
	dessertPhoto = photo("photo-1565958011703-44f9829ba187")
	brunchPhoto  = photo("photo-1482049016688-2d3e1b311543")
)

// specificDishImages maps well-known dishes to a representative photo.
var specificDishImages = map[string]string{
	"chana masala":         masalaPhoto,
	"butter chicken":       curryPhoto,
	"paneer tikka masala":  masalaPhoto,
	"chicken tikka masala": masalaPhoto,
	"chicken biryani":      curryPhoto,
	"thai red curry":       thaiPhoto,
	"spicy thai red curry": thaiPhoto,
	"green curry":          thaiPhoto,
	"pad thai":             thaiPhoto,
	"tom yum":              thaiPhoto,
	"korean fire noodles":  noodlePhoto,
	"spicy ramen":          noodlePhoto,
	"tonkotsu ramen":       noodlePhoto,
	"pho bo":               noodlePhoto,
	"margherita pizza":     pizzaPhoto,
	"pepperoni pizza":      pizzaPhoto,
	"cheeseburger":         burgerPhoto,
	"smash burger":         burgerPhoto,
	"caesar salad":         saladPhoto,
	"mediterranean bowl":   bowlPhoto,
	"poke bowl":            bowlPhoto,
	"mango kulfi":          dessertPhoto,
	"chocolate lava cake":  dessertPhoto,
	"eggs benedict":        brunchPhoto,
	"avocado toast":        brunchPhoto,
	"spaghetti carbonara":  platePhoto,
	"mushroom risotto":     platePhoto,
	"mac and cheese":       platterPhoto,
	"beef tacos":           platterPhoto,
	"fish tacos":           platterPhoto,
}

// genericImages maps broad categories and ingredients to a photo.
var genericImages = map[string]string{
	"curry":      curryPhoto,
	"masala":     curryPhoto,
	"biryani":    curryPhoto,
	"noodle":     noodlePhoto,
	"ramen":      noodlePhoto,
	"pho":        noodlePhoto,
	"pizza":      pizzaPhoto,
	"burger":     burgerPhoto,
	"salad":      saladPhoto,
	"bowl":       bowlPhoto,
	"vegetarian": saladPhoto,
	"soup":       bowlPhoto,
	"dessert":    dessertPhoto,
	"cake":       dessertPhoto,
	"ice cream":  dessertPhoto,
	"kulfi":      dessertPhoto,
	"breakfast":  brunchPhoto,
	"toast":      brunchPhoto,
	"pasta":      platePhoto,
	"risotto":    platePhoto,
	"taco":       platterPhoto,
	"sandwich":   platterPhoto,
	"chicken":    curryPhoto,
	"main":       platePhoto,
	"appetizer":  platterPhoto,
}

var defaultImages = []string{platterPhoto, platePhoto, bowlPhoto}

type imageEntry struct {
	key string
	url string
}

// ImageResolver selects a display image for a dish, preferring the most
// specific (longest) matching key.
type ImageResolver struct {
	specific []imageEntry
	generic  []imageEntry
	choose   ChoiceFunc
}

// NewImageResolver builds a resolver over the built-in tables.
func NewImageResolver(choose ChoiceFunc) *ImageResolver {
	return &ImageResolver{
		specific: longestFirst(specificDishImages),
		generic:  longestFirst(genericImages),
		choose:   choose,
	}
}

func longestFirst(table map[string]string) []imageEntry {
	entries := make([]imageEntry, 0, len(table))
	for k, v := range table {
		entries = append(entries, imageEntry{key: k, url: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].key) != len(entries[j].key) {
			return len(entries[i].key) > len(entries[j].key)
		}
		return entries[i].key < entries[j].key
	})
	return entries
}

// Resolve returns the image for a dish name, falling back to its category
// and finally to a default photo.
func (r *ImageResolver) Resolve(name, category string) string {
	name = strings.ToLower(name)
	category = strings.ToLower(category)
	if url, ok := firstMatch(r.specific, name); ok {
		return url
	}
	if url, ok := firstMatch(r.generic, name); ok {
		return url
	}
	if url, ok := firstMatch(r.generic, category); ok && category != "" {
		return url
	}
	return pick(r.choose, defaultImages)
}

func firstMatch(entries []imageEntry, s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, e := range entries {
		if strings.Contains(s, e.key) {
			return e.url, true
		}
	}
	return "", false
}

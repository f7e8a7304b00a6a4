package recommend

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pageza/cravewise/backend/internal/types"
)

// MaxTextRecommendations caps the craving-text flow.
const MaxTextRecommendations = 3

var (
	numberedLine = regexp.MustCompile(`^\d+\.\s*(.+)`)
	dashedLine   = regexp.MustCompile(`^-\s*(.+)`)
	emphasisSpan = regexp.MustCompile(`\*\*(.+?)\*\*`)
	nonWord      = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	extraSpace   = regexp.MustCompile(`\s+`)
)

// dishVocabulary drives the keyword scan when the prose carries no list markers.
var dishVocabulary = []string{
	"curry", "chicken", "pasta", "soup", "noodles", "rice", "pizza", "sandwich",
	"salad", "stir fry", "tacos", "burger", "ramen", "pho", "biryani", "risotto",
}

var vocabularyPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(dishVocabulary))
	for i, w := range dishVocabulary {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}()

// Extractor pulls dish recommendations out of free-form completion prose.
type Extractor struct {
	choose ChoiceFunc
	images *ImageResolver
}

// NewExtractor builds an Extractor. A nil choose uses RandomChoice and a nil
// resolver uses the built-in image tables.
func NewExtractor(choose ChoiceFunc, images *ImageResolver) *Extractor {
	if choose == nil {
		choose = RandomChoice
	}
	if images == nil {
		images = NewImageResolver(choose)
	}
	return &Extractor{choose: choose, images: images}
}

// Candidates returns the de-duplicated candidate dish names found in text,
// before the size cap is applied.
func (e *Extractor) Candidates(text string) []string {
	candidates := structuredCandidates(text)
	if len(candidates) == 0 {
		candidates = keywordCandidates(text)
	}
	return dedupeFold(candidates)
}

// Extract builds a RecommendationSet from raw completion text. It never
// returns an empty set: when nothing usable is found the built-in fallback
// set is returned instead.
func (e *Extractor) Extract(raw, craving, cuisinePreference string) types.RecommendationSet {
	craving = strings.TrimSpace(craving)
	cuisinePreference = strings.TrimSpace(cuisinePreference)

	seen := make(map[string]struct{})
	var recs []types.Recommendation
	for _, candidate := range e.Candidates(raw) {
		if len(recs) == MaxTextRecommendations {
			break
		}
		name := CleanDishName(candidate)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		recs = append(recs, e.enrich(len(recs), name, craving, cuisinePreference))
	}

	if len(recs) == 0 {
		return FallbackSet()
	}
	return types.RecommendationSet{Recommendations: recs}
}

func (e *Extractor) enrich(index int, name, craving, cuisinePreference string) types.Recommendation {
	cuisine := cuisinePreference
	if cuisine == "" {
		cuisine = InferCuisine(name)
	}
	kind := pick(e.choose, []types.Kind{types.KindRestaurant, types.KindRecipe})
	return types.Recommendation{
		ID:          strconv.Itoa(index + 1),
		Name:        name,
		Description: fmt.Sprintf("A delicious %s that hits the spot", strings.ToLower(name)),
		Cuisine:     cuisine,
		Kind:        kind,
		MatchReason: fmt.Sprintf("Perfect match for your craving: %s", craving),
		Image:       e.images.Resolve(name, ""),
	}
}

// CleanDishName drops everything except word characters and spaces.
func CleanDishName(s string) string {
	s = nonWord.ReplaceAllString(s, "")
	return strings.TrimSpace(extraSpace.ReplaceAllString(s, " "))
}

func structuredCandidates(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var captured string
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			captured = m[1]
		} else if m := dashedLine.FindStringSubmatch(line); m != nil {
			captured = m[1]
		} else if m := emphasisSpan.FindStringSubmatch(line); m != nil {
			captured = m[1]
		} else {
			continue
		}
		if captured = strings.TrimSpace(captured); captured != "" {
			out = append(out, captured)
		}
	}
	return out
}

// keywordCandidates takes the first hit of each vocabulary word and returns
// the enclosing sentences in the order the hits appear in text.
func keywordCandidates(text string) []string {
	type hit struct {
		at       int
		sentence string
	}
	var hits []hit
	for _, re := range vocabularyPatterns {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if sentence := enclosingSentence(text, loc[0], loc[1]); sentence != "" {
			hits = append(hits, hit{at: loc[0], sentence: sentence})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at < hits[j].at })

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.sentence)
	}
	return out
}

// enclosingSentence returns the text between the nearest period (or text
// boundary) before start and the nearest period (or boundary) after end.
func enclosingSentence(text string, start, end int) string {
	from := strings.LastIndex(text[:start], ".") + 1
	to := len(text)
	if i := strings.Index(text[end:], "."); i >= 0 {
		to = end + i
	}
	return strings.TrimSpace(text[from:to])
}

func dedupeFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

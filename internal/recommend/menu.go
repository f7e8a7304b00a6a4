package recommend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/cravewise/backend/internal/types"
)

// MaxMenuRecommendations caps the menu-image flow.
const MaxMenuRecommendations = 6

var (
	// ErrParseFailure means no JSON object could be recovered from the response.
	ErrParseFailure = errors.New("no valid JSON found in response")
	// ErrInvalidFormat means the JSON object lacks a recommendations array.
	ErrInvalidFormat = errors.New("invalid analysis format received")
)

// MenuParser validates vision completion output and turns it into a
// display-ready RecommendationSet.
type MenuParser struct {
	images *ImageResolver
	logger *zap.Logger
}

// NewMenuParser creates a MenuParser. Nil arguments fall back to the built-in
// image tables and a no-op logger.
func NewMenuParser(images *ImageResolver, logger *zap.Logger) *MenuParser {
	if images == nil {
		images = NewImageResolver(RandomChoice)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuParser{images: images, logger: logger}
}

// menuAnalysis mirrors the JSON contract requested from the vision model.
type menuAnalysis struct {
	Recommendations json.RawMessage `json:"recommendations"`
	Summary         flexText        `json:"summary"`
}

type menuItem struct {
	ID                flexText     `json:"id"`
	Name              flexText     `json:"name"`
	Description       flexText     `json:"description"`
	Cuisine           flexText     `json:"cuisine"`
	Price             flexText     `json:"price"`
	Category          flexText     `json:"category"`
	MatchScore        flexNumber   `json:"matchScore"`
	Reasons           flexList     `json:"reasons"`
	Dietary           flexList     `json:"dietary"`
	SpiceLevel        flexNumber   `json:"spiceLevel"`
	EstimatedPosition *menuPosition `json:"estimatedPosition"`
}

type menuPosition struct {
	X      flexNumber `json:"x"`
	Y      flexNumber `json:"y"`
	Width  flexNumber `json:"width"`
	Height flexNumber `json:"height"`
}

// Parse locates the JSON object in raw, checks its shape and enriches every
// item. It returns ErrParseFailure or ErrInvalidFormat on contract violations.
func (p *MenuParser) Parse(raw string) (types.RecommendationSet, error) {
	doc, err := FindJSONObject(raw)
	if err != nil {
		return types.RecommendationSet{}, err
	}

	var analysis menuAnalysis
	if err := json.Unmarshal(doc, &analysis); err != nil {
		return types.RecommendationSet{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	trimmed := bytes.TrimSpace(analysis.Recommendations)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return types.RecommendationSet{}, ErrInvalidFormat
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return types.RecommendationSet{}, ErrInvalidFormat
	}

	set := types.RecommendationSet{Summary: CleanText(analysis.Summary.Value)}
	seen := make(map[string]struct{}, len(elems))
	for i, elem := range elems {
		if len(set.Recommendations) == MaxMenuRecommendations {
			p.logger.Warn("menu analysis exceeded item cap",
				zap.Int("items", len(elems)), zap.Int("cap", MaxMenuRecommendations))
			break
		}
		var item menuItem
		if err := json.Unmarshal(elem, &item); err != nil {
			p.logger.Warn("skipping malformed menu item", zap.Int("index", i), zap.Error(err))
			continue
		}
		rec := p.toRecommendation(item)
		if rec.Name == "" {
			continue
		}
		key := strings.ToLower(rec.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if rec.ID == "" {
			rec.ID = strconv.Itoa(len(set.Recommendations) + 1)
		}
		set.Recommendations = append(set.Recommendations, rec)
	}
	return set, nil
}

func (p *MenuParser) toRecommendation(item menuItem) types.Recommendation {
	name := CleanText(item.Name.Value)
	category := CleanText(item.Category.Value)
	rec := types.Recommendation{
		ID:          strings.TrimSpace(item.ID.Value),
		Name:        name,
		Description: CleanText(item.Description.Value),
		Cuisine:     CleanText(item.Cuisine.Value),
		Kind:        types.KindRestaurant,
		Price:       CleanText(item.Price.Value),
		Category:    category,
		Reasons:     cleanAll(item.Reasons),
		Dietary:     cleanAll(item.Dietary),
	}
	if name == "" {
		return rec
	}
	rec.Image = p.images.Resolve(name, category)

	if item.MatchScore.Set {
		score := p.clamp("matchScore", name, item.MatchScore.Value, 0, 100)
		rec.MatchScore = &score
	}
	if item.SpiceLevel.Set {
		level := int(math.Round(p.clamp("spiceLevel", name, item.SpiceLevel.Value, 0, 4)))
		rec.SpiceLevel = &level
	}
	if pos := item.EstimatedPosition; pos != nil {
		rec.EstimatedPosition = &types.Position{
			X:      pos.X.Value,
			Y:      pos.Y.Value,
			Width:  pos.Width.Value,
			Height: pos.Height.Value,
		}
	}
	return rec
}

// clamp bounds v to [lo, hi] without rounding; in-range values pass through.
func (p *MenuParser) clamp(field, dish string, v, lo, hi float64) float64 {
	switch {
	case v < lo:
		p.logger.Warn("value below range", zap.String("field", field), zap.String("dish", dish), zap.Float64("value", v))
		return lo
	case v > hi:
		p.logger.Warn("value above range", zap.String("field", field), zap.String("dish", dish), zap.Float64("value", v))
		return hi
	}
	return v
}

// FindJSONObject returns the first brace-balanced span of text that decodes
// as a JSON object. When no balanced span decodes, the span from the first
// '{' to the last '}' is tried before giving up with ErrParseFailure.
func FindJSONObject(text string) ([]byte, error) {
	for i := strings.IndexByte(text, '{'); i >= 0; {
		if end := balancedEnd(text, i); end > i {
			if span := []byte(text[i : end+1]); isObject(span) {
				return span, nil
			}
		}
		next := strings.IndexByte(text[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}

	first, last := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
	if first >= 0 && last > first {
		if span := []byte(text[first : last+1]); isObject(span) {
			return span, nil
		}
	}
	return nil, ErrParseFailure
}

// balancedEnd returns the index of the brace closing the one at start, or -1.
// Braces inside JSON strings are ignored.
func balancedEnd(text string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isObject(span []byte) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal(span, &obj) == nil && obj != nil
}

// flexText accepts a JSON string or number. Anything else decodes as empty.
type flexText struct {
	Value string
}

func (t *flexText) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		t.Value = str
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		t.Value = strconv.FormatFloat(num, 'f', -1, 64)
		return nil
	}
	t.Value = ""
	return nil
}

// flexNumber accepts a JSON number or a numeric string such as "85" or "85%".
type flexNumber struct {
	Value float64
	Set   bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		n.Value, n.Set = num, true
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		str = strings.TrimSuffix(strings.TrimSpace(str), "%")
		if v, err := strconv.ParseFloat(str, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			n.Value, n.Set = v, true
		}
	}
	return nil
}

// flexList accepts an array of strings or a single comma-separated string.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	var items []flexText
	if err := json.Unmarshal(data, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.Value)
		}
		*l = out
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*l = strings.Split(str, ",")
		return nil
	}
	*l = nil
	return nil
}

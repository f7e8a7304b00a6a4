package types

import "time"

// SessionState is a step of the regeneration loop.
type SessionState string

const (
	StatePresenting   SessionState = "presenting"
	StateRegenerating SessionState = "regenerating"
	StateSatisfied    SessionState = "satisfied"
)

// Session tracks one craving through its regeneration cycles until the user
// confirms a dish.
type Session struct {
	ID         string                `json:"id"`
	UserID     string                `json:"userId,omitempty"`
	Request    RecommendationRequest `json:"request"`
	State      SessionState          `json:"state"`
	Current    RecommendationSet     `json:"current"`
	ShownNames []string              `json:"shownNames"`
	Attempts   int                   `json:"attempts"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

// OwnedBy reports whether userID may act on the session. Anonymous sessions
// are open to anyone holding the id.
func (s *Session) OwnedBy(userID string) bool {
	return s.UserID == "" || s.UserID == userID
}

// RememberShown appends names not already recorded, ignoring case.
func (s *Session) RememberShown(names ...string) {
	seen := make(map[string]struct{}, len(s.ShownNames))
	for _, n := range s.ShownNames {
		seen[lower(n)] = struct{}{}
	}
	for _, n := range names {
		if _, ok := seen[lower(n)]; ok {
			continue
		}
		seen[lower(n)] = struct{}{}
		s.ShownNames = append(s.ShownNames, n)
	}
}

// RestaurantMatch is a nearby place serving a recommended dish.
type RestaurantMatch struct {
	Name          string
	Address       string
	Rating        float64
	DistanceMiles float64
	PriceLevel    int
}

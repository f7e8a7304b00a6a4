package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/cravewise/backend/internal/llm"
	"github.com/pageza/cravewise/backend/internal/models"
	"github.com/pageza/cravewise/backend/internal/recommend"
	"github.com/pageza/cravewise/backend/internal/types"
)

// CravingResult is the outcome of one craving completion.
type CravingResult struct {
	Analysis        string                  `json:"analysis"`
	Recommendations types.RecommendationSet `json:"recommendations"`
	SessionID       string                  `json:"sessionId,omitempty"`
}

// CravingService turns free-text cravings into recommendation sets and drives
// the regeneration loop.
type CravingService struct {
	provider  llm.Provider
	extractor *recommend.Extractor
	sessions  SessionStore
	history   HistoryRecorder
	finder    RestaurantFinder
	logger    *zap.Logger
	now       func() time.Time
}

// CravingOption customizes a CravingService.
type CravingOption func(*CravingService)

// WithRestaurantFinder enables nearby-restaurant enrichment.
func WithRestaurantFinder(f RestaurantFinder) CravingOption {
	return func(s *CravingService) { s.finder = f }
}

// WithHistory records confirmed sessions.
func WithHistory(h HistoryRecorder) CravingOption {
	return func(s *CravingService) { s.history = h }
}

// NewCravingService creates a new CravingService
func NewCravingService(provider llm.Provider, extractor *recommend.Extractor, sessions SessionStore, logger *zap.Logger, opts ...CravingOption) *CravingService {
	if extractor == nil {
		extractor = recommend.NewExtractor(nil, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CravingService{
		provider:  provider,
		extractor: extractor,
		sessions:  sessions,
		logger:    logger.Named("craving"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze validates the request, asks the provider for suggestions and opens a
// session for the resulting set.
func (s *CravingService) Analyze(ctx context.Context, userID string, req types.RecommendationRequest) (*CravingResult, error) {
	req = req.Normalize()
	if req.Craving == "" {
		return nil, ErrEmptyCraving
	}

	raw, err := s.provider.Complete(ctx, llm.Request{
		System:      llm.CravingSystemPrompt,
		User:        llm.CravingPrompt(req.Craving, req.CuisinePreference, req.DietaryFilters),
		Temperature: llm.CravingTemperature,
		MaxTokens:   llm.CravingMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	set := s.extractor.Extract(raw, req.Craving, req.CuisinePreference)
	s.enrich(ctx, req.Location, &set)

	now := s.now()
	sess := &types.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Request:   req,
		State:     types.StatePresenting,
		Current:   set,
		Attempts:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sess.RememberShown(set.Names()...)

	result := &CravingResult{Analysis: raw, Recommendations: set}
	if err := s.sessions.Create(ctx, sess); err != nil {
		s.logger.Warn("failed to open session", zap.Error(err))
		return result, nil
	}
	result.SessionID = sess.ID
	return result, nil
}

// GetSession returns a session visible to userID.
func (s *CravingService) GetSession(ctx context.Context, id, userID string) (*types.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.OwnedBy(userID) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Regenerate asks for a different set for the same craving. It issues exactly
// one completion and replaces the current set on success. On failure the
// session keeps its previous set.
func (s *CravingService) Regenerate(ctx context.Context, id, userID string) (*CravingResult, error) {
	if _, err := s.GetSession(ctx, id, userID); err != nil {
		return nil, err
	}

	token, locked, err := s.sessions.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrRequestInFlight
	}
	defer s.unlock(id, token)

	// Re-read under the lock so a concurrent confirm is observed. A
	// regenerating state seen while holding the lock was left by an abandoned
	// attempt and is treated as presenting.
	sess, err := s.GetSession(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sess.State == types.StateSatisfied {
		return nil, ErrSessionClosed
	}

	previous := sess.Current
	sess.State = types.StateRegenerating
	sess.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	req := sess.Request
	raw, err := s.provider.Complete(ctx, llm.Request{
		System:      llm.CravingSystemPrompt,
		User:        llm.RegeneratePrompt(req.Craving, req.CuisinePreference, req.DietaryFilters, sess.ShownNames),
		Temperature: llm.CravingTemperature,
		MaxTokens:   llm.CravingMaxTokens,
	})
	if err != nil {
		sess.State = types.StatePresenting
		sess.Current = previous
		sess.UpdatedAt = s.now()
		if saveErr := s.sessions.Save(context.WithoutCancel(ctx), sess); saveErr != nil {
			s.logger.Error("failed to restore session", zap.String("session_id", id), zap.Error(saveErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	set := s.extractor.Extract(raw, req.Craving, req.CuisinePreference)
	s.enrich(ctx, req.Location, &set)

	sess.Current = set
	sess.RememberShown(set.Names()...)
	sess.Attempts++
	sess.State = types.StatePresenting
	sess.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("regenerated recommendations",
		zap.String("session_id", id),
		zap.Int("attempt", sess.Attempts),
		zap.Strings("names", set.Names()))
	return &CravingResult{Analysis: raw, Recommendations: set, SessionID: id}, nil
}

// Confirm closes the session with the dish that satisfied the craving and
// records it in the user's history.
func (s *CravingService) Confirm(ctx context.Context, id, userID, dishName string, rating *int) (*models.CravingRecord, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, ErrInvalidRating
	}
	if _, err := s.GetSession(ctx, id, userID); err != nil {
		return nil, err
	}

	token, locked, err := s.sessions.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrRequestInFlight
	}
	defer s.unlock(id, token)

	sess, err := s.GetSession(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sess.State == types.StateSatisfied {
		return nil, ErrSessionClosed
	}

	chosen, ok := sess.Current.Find(dishName)
	if !ok {
		return nil, ErrUnknownDish
	}

	rec := &models.CravingRecord{
		SessionID:       sess.ID,
		Craving:         sess.Request.Craving,
		Cuisine:         chosen.Cuisine,
		DietaryFilters:  sess.Request.DietaryFilters,
		SatisfiedWith:   chosen.Name,
		Kind:            string(chosen.Kind),
		Rating:          rating,
		Recommendations: sess.Current.Names(),
		Attempts:        sess.Attempts,
		Embedding:       GenerateEmbedding(sess.Request.Craving),
	}
	if sess.UserID != "" {
		uid := sess.UserID
		rec.UserID = &uid
	}
	if s.history != nil {
		if err := s.history.Record(ctx, rec); err != nil {
			return nil, err
		}
	}

	sess.State = types.StateSatisfied
	sess.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *CravingService) unlock(id, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sessions.Unlock(ctx, id, token); err != nil {
		s.logger.Warn("failed to release session lock", zap.String("session_id", id), zap.Error(err))
	}
}

// enrich attaches the best nearby restaurant to every restaurant-kind item.
// Lookup failures never fail the request.
func (s *CravingService) enrich(ctx context.Context, at *types.GeoPoint, set *types.RecommendationSet) {
	if s.finder == nil || at == nil {
		return
	}
	for i := range set.Recommendations {
		rec := &set.Recommendations[i]
		if rec.Kind != types.KindRestaurant {
			continue
		}
		match, err := s.finder.FindNearby(ctx, rec.Name, *at)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.logger.Warn("restaurant lookup failed", zap.String("dish", rec.Name), zap.Error(err))
			}
			continue
		}
		if match == nil {
			continue
		}
		rec.Name = fmt.Sprintf("%s at %s", rec.Name, match.Name)
		rating := match.Rating
		rec.Rating = &rating
		rec.Distance = fmt.Sprintf("%.1f mi", match.DistanceMiles)
		if match.PriceLevel > 0 {
			rec.Price = priceSymbols(match.PriceLevel)
		}
	}
}

func priceSymbols(level int) string {
	if level > 4 {
		level = 4
	}
	out := make([]byte, level)
	for i := range out {
		out[i] = '$'
	}
	return string(out)
}

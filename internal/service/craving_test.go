package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cravewise/backend/internal/llm"
	"github.com/pageza/cravewise/backend/internal/mocks"
	"github.com/pageza/cravewise/backend/internal/models"
	"github.com/pageza/cravewise/backend/internal/recommend"
	"github.com/pageza/cravewise/backend/internal/types"
)

const (
	firstResponse  = "Here are some ideas:\n1. Pad Thai\n2. Green Curry\n3. Tom Yum Soup"
	secondResponse = "Try these instead:\n1. Massaman Curry\n2. Khao Soi\n3. Larb"
)

// restaurantsOnly makes every extracted item a restaurant suggestion.
func restaurantsOnly(int) int { return 0 }

func newTestCravingService(provider *mocks.StaticProvider, opts ...CravingOption) (*CravingService, *MemorySessionStore) {
	store := NewMemorySessionStore()
	extractor := recommend.NewExtractor(restaurantsOnly, nil)
	return NewCravingService(provider, extractor, store, nil, opts...), store
}

func TestCravingService_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject an empty craving without calling the provider", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{firstResponse}}
		svc, _ := newTestCravingService(provider)

		_, err := svc.Analyze(ctx, "", types.RecommendationRequest{Craving: "   "})
		assert.ErrorIs(t, err, ErrEmptyCraving)
		assert.Equal(t, 0, provider.Calls)
	})

	t.Run("should extract recommendations and open a session", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{firstResponse}}
		svc, store := newTestCravingService(provider)

		result, err := svc.Analyze(ctx, "user-1", types.RecommendationRequest{
			Craving:           "something spicy",
			CuisinePreference: "Thai",
			DietaryFilters:    []string{"vegetarian", "Vegetarian"},
		})
		require.NoError(t, err)

		assert.Equal(t, firstResponse, result.Analysis)
		assert.Equal(t, []string{"Pad Thai", "Green Curry", "Tom Yum Soup"}, result.Recommendations.Names())
		for _, rec := range result.Recommendations.Recommendations {
			assert.Equal(t, "Thai", rec.Cuisine)
			assert.Equal(t, types.KindRestaurant, rec.Kind)
		}
		require.NotEmpty(t, result.SessionID)

		require.Len(t, provider.Requests, 1)
		assert.Contains(t, provider.Requests[0].User, "I'm craving: something spicy (I prefer Thai cuisine)")
		assert.Contains(t, provider.Requests[0].User, "My dietary preferences: vegetarian")
		assert.NotContains(t, provider.Requests[0].User, "Vegetarian")

		sess, err := store.Get(ctx, result.SessionID)
		require.NoError(t, err)
		assert.Equal(t, types.StatePresenting, sess.State)
		assert.Equal(t, "user-1", sess.UserID)
		assert.Equal(t, 1, sess.Attempts)
		assert.Equal(t, []string{"Pad Thai", "Green Curry", "Tom Yum Soup"}, sess.ShownNames)
	})

	t.Run("should wrap provider failures", func(t *testing.T) {
		provider := &mocks.StaticProvider{Err: errors.New("quota exceeded")}
		svc, _ := newTestCravingService(provider)

		_, err := svc.Analyze(ctx, "", types.RecommendationRequest{Craving: "ramen"})
		assert.ErrorIs(t, err, ErrCompletionFailed)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("should fall back when nothing can be extracted", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{"I am not sure what to suggest."}}
		svc, _ := newTestCravingService(provider)

		result, err := svc.Analyze(ctx, "", types.RecommendationRequest{Craving: "anything"})
		require.NoError(t, err)
		assert.Equal(t, recommend.FallbackSet().Names(), result.Recommendations.Names())
		_, ok := recommend.FallbackSet().Find(result.Recommendations.Names()[0])
		assert.True(t, ok)
	})

	t.Run("should still answer when the session cannot be stored", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{firstResponse}}
		svc := NewCravingService(provider, recommend.NewExtractor(restaurantsOnly, nil), failingStore{}, nil)

		result, err := svc.Analyze(ctx, "", types.RecommendationRequest{Craving: "noodles"})
		require.NoError(t, err)
		assert.Empty(t, result.SessionID)
		assert.Len(t, result.Recommendations.Recommendations, 3)
	})
}

func TestCravingService_Enrichment(t *testing.T) {
	ctx := context.Background()
	at := types.GeoPoint{Lat: 40.7, Lng: -74.0}

	finder := new(mocks.MockRestaurantFinder)
	finder.On("FindNearby", mock.Anything, "Pad Thai", at).Return(&types.RestaurantMatch{
		Name:          "Thai Spice",
		Rating:        4.6,
		DistanceMiles: 1.24,
		PriceLevel:    2,
	}, nil)
	finder.On("FindNearby", mock.Anything, "Green Curry", at).Return(nil, errors.New("over query limit"))
	finder.On("FindNearby", mock.Anything, "Tom Yum Soup", at).Return(nil, nil)

	provider := &mocks.StaticProvider{Responses: []string{firstResponse}}
	svc, _ := newTestCravingService(provider, WithRestaurantFinder(finder))

	result, err := svc.Analyze(ctx, "", types.RecommendationRequest{Craving: "thai", Location: &at})
	require.NoError(t, err)

	recs := result.Recommendations.Recommendations
	require.Len(t, recs, 3)
	assert.Equal(t, "Pad Thai at Thai Spice", recs[0].Name)
	require.NotNil(t, recs[0].Rating)
	assert.Equal(t, 4.6, *recs[0].Rating)
	assert.Equal(t, "1.2 mi", recs[0].Distance)
	assert.Equal(t, "$$", recs[0].Price)
	assert.Equal(t, "Green Curry", recs[1].Name)
	assert.Equal(t, "Tom Yum Soup", recs[2].Name)
	finder.AssertExpectations(t)
}

func TestCravingService_Regenerate(t *testing.T) {
	ctx := context.Background()

	start := func(t *testing.T, provider *mocks.StaticProvider) (*CravingService, *MemorySessionStore, string) {
		t.Helper()
		svc, store := newTestCravingService(provider)
		result, err := svc.Analyze(ctx, "user-1", types.RecommendationRequest{Craving: "thai food"})
		require.NoError(t, err)
		require.NotEmpty(t, result.SessionID)
		return svc, store, result.SessionID
	}

	t.Run("should issue one request and replace the set", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{firstResponse, secondResponse}}
		svc, store, id := start(t, provider)

		result, err := svc.Regenerate(ctx, id, "user-1")
		require.NoError(t, err)

		assert.Equal(t, 2, provider.Calls)
		assert.Equal(t, []string{"Massaman Curry", "Khao Soi", "Larb"}, result.Recommendations.Names())
		assert.Equal(t, id, result.SessionID)
		assert.Contains(t, provider.Requests[1].User, "Please give me different results than before.")
		assert.Contains(t, provider.Requests[1].User, "Pad Thai, Green Curry, Tom Yum Soup")

		sess, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, types.StatePresenting, sess.State)
		assert.Equal(t, 2, sess.Attempts)
		assert.Equal(t, result.Recommendations.Names(), sess.Current.Names())
		assert.Len(t, sess.ShownNames, 6)
	})

	t.Run("should refuse while another request is in flight", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{firstResponse, secondResponse}}
		svc, store, id := start(t, provider)

		token, locked, err := store.Lock(ctx, id)
		require.NoError(t, err)
		require.True(t, locked)

		_, err = svc.Regenerate(ctx, id, "user-1")
		assert.ErrorIs(t, err, ErrRequestInFlight)
		assert.Equal(t, 1, provider.Calls)

		require.NoError(t, store.Unlock(ctx, id, token))
		_, err = svc.Regenerate(ctx, id, "user-1")
		assert.NoError(t, err)
	})

	t.Run("should keep the previous set when the provider fails", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{firstResponse}}
		svc, store, id := start(t, provider)
		provider.Err = errors.New("upstream timeout")

		_, err := svc.Regenerate(ctx, id, "user-1")
		assert.ErrorIs(t, err, ErrCompletionFailed)

		sess, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, types.StatePresenting, sess.State)
		assert.Equal(t, 1, sess.Attempts)
		assert.Equal(t, []string{"Pad Thai", "Green Curry", "Tom Yum Soup"}, sess.Current.Names())

		_, locked, err := store.Lock(ctx, id)
		require.NoError(t, err)
		assert.True(t, locked, "lock should be released after a failure")
	})

	t.Run("should refuse a nested regenerate during a long completion", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{firstResponse}}
		svc, store, id := start(t, provider)
		now := time.Now()
		store.now = func() time.Time { return now }

		var nestedErr error
		slow := &callbackProvider{
			response: secondResponse,
			during: func() {
				now = now.Add(DefaultLockTTL + time.Hour)
				_, nestedErr = svc.Regenerate(ctx, id, "user-1")
			},
		}
		svc.provider = slow

		_, err := svc.Regenerate(ctx, id, "user-1")
		require.NoError(t, err)
		assert.ErrorIs(t, nestedErr, ErrRequestInFlight)
		assert.Equal(t, 1, slow.calls)
	})

	t.Run("should hide sessions from other users", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{firstResponse}}
		svc, _, id := start(t, provider)

		_, err := svc.Regenerate(ctx, id, "user-2")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		_, err = svc.GetSession(ctx, id, "user-2")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Equal(t, 1, provider.Calls)
	})

	t.Run("should return not found for an unknown session", func(t *testing.T) {
		svc, _ := newTestCravingService(&mocks.StaticProvider{})
		_, err := svc.Regenerate(ctx, "missing", "")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestCravingService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("should record the chosen dish and close the session", func(t *testing.T) {
		history := new(mocks.MockHistory)
		history.On("Record", mock.Anything, mock.MatchedBy(func(rec *models.CravingRecord) bool {
			return rec.SatisfiedWith == "Green Curry" &&
				rec.Craving == "thai food" &&
				rec.UserID != nil && *rec.UserID == "user-1" &&
				rec.Rating != nil && *rec.Rating == 5 &&
				len(rec.Recommendations) == 3 &&
				len(rec.Embedding.Slice()) == models.EmbeddingDims
		})).Return(nil)

		provider := &mocks.StaticProvider{Responses: []string{firstResponse}}
		svc, store := newTestCravingService(provider, WithHistory(history))
		result, err := svc.Analyze(ctx, "user-1", types.RecommendationRequest{Craving: "thai food"})
		require.NoError(t, err)

		rating := 5
		rec, err := svc.Confirm(ctx, result.SessionID, "user-1", "green curry", &rating)
		require.NoError(t, err)
		assert.Equal(t, "Green Curry", rec.SatisfiedWith)
		assert.Equal(t, string(types.KindRestaurant), rec.Kind)
		history.AssertExpectations(t)

		sess, err := store.Get(ctx, result.SessionID)
		require.NoError(t, err)
		assert.Equal(t, types.StateSatisfied, sess.State)

		_, err = svc.Regenerate(ctx, result.SessionID, "user-1")
		assert.ErrorIs(t, err, ErrSessionClosed)
		assert.Equal(t, 1, provider.Calls)
	})

	t.Run("should reject a dish that is not on display", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{firstResponse}}
		svc, _ := newTestCravingService(provider)
		result, err := svc.Analyze(ctx, "", types.RecommendationRequest{Craving: "thai food"})
		require.NoError(t, err)

		_, err = svc.Confirm(ctx, result.SessionID, "", "Pizza", nil)
		assert.ErrorIs(t, err, ErrUnknownDish)
	})

	t.Run("should reject ratings outside one to five", func(t *testing.T) {
		svc, _ := newTestCravingService(&mocks.StaticProvider{})
		rating := 6
		_, err := svc.Confirm(ctx, "any", "", "Pad Thai", &rating)
		assert.ErrorIs(t, err, ErrInvalidRating)
	})

	t.Run("should leave the session open when recording fails", func(t *testing.T) {
		history := new(mocks.MockHistory)
		history.On("Record", mock.Anything, mock.Anything).Return(errors.New("db down"))

		provider := &mocks.StaticProvider{Responses: []string{firstResponse}}
		svc, store := newTestCravingService(provider, WithHistory(history))
		result, err := svc.Analyze(ctx, "", types.RecommendationRequest{Craving: "thai food"})
		require.NoError(t, err)

		_, err = svc.Confirm(ctx, result.SessionID, "", "Pad Thai", nil)
		require.Error(t, err)

		sess, err := store.Get(ctx, result.SessionID)
		require.NoError(t, err)
		assert.Equal(t, types.StatePresenting, sess.State)
	})
}

func TestPriceSymbols(t *testing.T) {
	assert.Equal(t, "$", priceSymbols(1))
	assert.Equal(t, "$$$$", priceSymbols(7))
}

type failingStore struct{}

func (failingStore) Create(context.Context, *types.Session) error { return errors.New("redis down") }
func (failingStore) Get(context.Context, string) (*types.Session, error) {
	return nil, ErrSessionNotFound
}
func (failingStore) Save(context.Context, *types.Session) error { return errors.New("redis down") }
func (failingStore) Lock(context.Context, string) (string, bool, error) {
	return "", false, errors.New("redis down")
}
func (failingStore) Unlock(context.Context, string, string) error { return nil }

// callbackProvider runs during while its completion is in flight.
type callbackProvider struct {
	response string
	during   func()
	calls    int
}

func (p *callbackProvider) Complete(context.Context, llm.Request) (string, error) {
	p.calls++
	if p.during != nil {
		p.during()
	}
	return p.response, nil
}

func (p *callbackProvider) Name() string { return "callback" }

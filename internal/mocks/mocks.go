package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/cravewise/backend/internal/llm"
	"github.com/pageza/cravewise/backend/internal/media"
	"github.com/pageza/cravewise/backend/internal/models"
	"github.com/pageza/cravewise/backend/internal/types"
)

// MockProvider is a mock implementation of llm.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) Name() string {
	return "mock"
}

// MockRestaurantFinder is a mock implementation of the restaurant lookup
type MockRestaurantFinder struct {
	mock.Mock
}

func (m *MockRestaurantFinder) FindNearby(ctx context.Context, dish string, at types.GeoPoint) (*types.RestaurantMatch, error) {
	args := m.Called(ctx, dish, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RestaurantMatch), args.Error(1)
}

// MockArchiver is a mock implementation of the menu image archive
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, img media.Image) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

// MockHistory is a mock implementation of the craving history service
type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Record(ctx context.Context, rec *models.CravingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockHistory) List(ctx context.Context, filter models.HistoryFilter) ([]models.CravingRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CravingRecord), args.Error(1)
}

func (m *MockHistory) Similar(ctx context.Context, userID, craving string, limit int) ([]models.CravingRecord, error) {
	args := m.Called(ctx, userID, craving, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CravingRecord), args.Error(1)
}

func (m *MockHistory) Favorites(ctx context.Context, userID string, limit int) ([]models.Favorite, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Favorite), args.Error(1)
}

func (m *MockHistory) Stats(ctx context.Context, userID string, cuisineLimit int) (*models.HistoryStats, error) {
	args := m.Called(ctx, userID, cuisineLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HistoryStats), args.Error(1)
}

func (m *MockHistory) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// StaticProvider returns canned responses in order and counts calls. It is
// safe for the sequential use of handler tests.
type StaticProvider struct {
	Responses []string
	Err       error
	Calls     int
	Requests  []llm.Request
}

func (p *StaticProvider) Complete(_ context.Context, req llm.Request) (string, error) {
	p.Calls++
	p.Requests = append(p.Requests, req)
	if p.Err != nil {
		return "", p.Err
	}
	if len(p.Responses) == 0 {
		return "", llm.ErrEmptyCompletion
	}
	i := p.Calls - 1
	if i >= len(p.Responses) {
		i = len(p.Responses) - 1
	}
	return p.Responses[i], nil
}

func (p *StaticProvider) Name() string {
	return "static"
}

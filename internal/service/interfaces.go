package service

import (
	"context"

	"github.com/pageza/cravewise/backend/internal/media"
	"github.com/pageza/cravewise/backend/internal/models"
	"github.com/pageza/cravewise/backend/internal/types"
)

// SessionStore persists regeneration sessions and guards them with a
// per-session in-flight lock.
type SessionStore interface {
	Create(ctx context.Context, s *types.Session) error
	Get(ctx context.Context, id string) (*types.Session, error)
	Save(ctx context.Context, s *types.Session) error
	// Lock returns false when another request already holds the session.
	// The returned token must be passed to Unlock.
	Lock(ctx context.Context, id string) (token string, ok bool, err error)
	// Unlock is a no-op when token no longer owns the lock.
	Unlock(ctx context.Context, id, token string) error
}

// RestaurantFinder looks up a nearby place serving a dish.
type RestaurantFinder interface {
	FindNearby(ctx context.Context, dish string, at types.GeoPoint) (*types.RestaurantMatch, error)
}

// ImageArchiver stores accepted menu images and returns a URL to them.
type ImageArchiver interface {
	Archive(ctx context.Context, img media.Image) (string, error)
}

// HistoryRecorder stores confirmed cravings.
type HistoryRecorder interface {
	Record(ctx context.Context, rec *models.CravingRecord) error
}

// IHistoryService defines the interface for craving history operations
type IHistoryService interface {
	HistoryRecorder
	List(ctx context.Context, filter models.HistoryFilter) ([]models.CravingRecord, error)
	Similar(ctx context.Context, userID, craving string, limit int) ([]models.CravingRecord, error)
	Favorites(ctx context.Context, userID string, limit int) ([]models.Favorite, error)
	Stats(ctx context.Context, userID string, cuisineLimit int) (*models.HistoryStats, error)
	Delete(ctx context.Context, userID, id string) error
}

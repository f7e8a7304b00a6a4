package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/cravewise/backend/internal/models"
)

// History listing bounds.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
	// favoritesScanLimit bounds the rows aggregated into favorites.
	favoritesScanLimit = 1000
	// DefaultCuisineLimit is how many popular cuisines Stats reports.
	DefaultCuisineLimit = 3
)

var (
	// ErrUserRequired is returned when a history query has no user.
	ErrUserRequired = errors.New("user id is required")
	// ErrRecordNotFound is returned when a history entry does not exist for the user.
	ErrRecordNotFound = errors.New("history record not found")
	// ErrInvalidRange is returned when a history date range ends before it starts.
	ErrInvalidRange = errors.New("from must be before to")
)

// HistoryService stores and queries confirmed cravings
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record persists a confirmed craving
func (s *HistoryService) Record(ctx context.Context, rec *models.CravingRecord) error {
	if len(rec.Embedding.Slice()) == 0 {
		rec.Embedding = GenerateEmbedding(rec.Craving)
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

// List returns a user's history, newest first
func (s *HistoryService) List(ctx context.Context, filter models.HistoryFilter) ([]models.CravingRecord, error) {
	if filter.UserID == "" {
		return nil, ErrUserRequired
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, ErrInvalidRange
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", filter.UserID)
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To.UTC())
	}

	var records []models.CravingRecord
	err := query.
		Order("created_at DESC").
		Limit(clampLimit(filter.Limit)).
		Offset(max(filter.Offset, 0)).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes one of the user's history entries.
func (s *HistoryService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUserRequired
	}
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.CravingRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Stats counts the user's cravings, averages their ratings to one decimal and
// ranks the cuisines that satisfied them most often.
func (s *HistoryService) Stats(ctx context.Context, userID string, cuisineLimit int) (*models.HistoryStats, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if cuisineLimit <= 0 {
		cuisineLimit = DefaultCuisineLimit
	}

	var totals struct {
		Total int64
		Rated int64
		Avg   *float64
	}
	err := s.db.WithContext(ctx).
		Model(&models.CravingRecord{}).
		Select("COUNT(*) AS total, COUNT(rating) AS rated, AVG(rating) AS avg").
		Where("user_id = ?", userID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	cuisines := []models.CuisineCount{}
	err = s.db.WithContext(ctx).
		Model(&models.CravingRecord{}).
		Select("cuisine, COUNT(*) AS count").
		Where("user_id = ? AND cuisine <> ''", userID).
		Group("cuisine").
		Order("count DESC, cuisine").
		Limit(min(cuisineLimit, MaxHistoryLimit)).
		Scan(&cuisines).Error
	if err != nil {
		return nil, err
	}

	stats := &models.HistoryStats{
		TotalCravings:   int(totals.Total),
		RatedCravings:   int(totals.Rated),
		PopularCuisines: cuisines,
	}
	if totals.Rated > 0 && totals.Avg != nil {
		avg := math.Round(*totals.Avg*10) / 10
		stats.AverageRating = &avg
	}
	return stats, nil
}

// Similar returns the user's past cravings closest to craving
func (s *HistoryService) Similar(ctx context.Context, userID, craving string, limit int) ([]models.CravingRecord, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	craving = strings.TrimSpace(craving)
	if craving == "" {
		return nil, ErrEmptyCraving
	}
	limit = clampLimit(limit)
	vec := GenerateEmbedding(craving)

	var records []models.CravingRecord
	if s.db.Dialector.Name() == "postgres" {
		err := s.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
			}).
			Limit(limit).
			Find(&records).Error
		return records, err
	}

	// Fallback to in-memory ranking for non-PostgreSQL databases
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, err
	}
	target := vec.Slice()
	sort.SliceStable(records, func(i, j int) bool {
		return euclidean(records[i].Embedding.Slice(), target) < euclidean(records[j].Embedding.Slice(), target)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Favorites aggregates the dishes a user confirmed most often
func (s *HistoryService) Favorites(ctx context.Context, userID string, limit int) ([]models.Favorite, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	var records []models.CravingRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(favoritesScanLimit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	type tally struct {
		fav         models.Favorite
		ratingSum   int
		ratingCount int
	}
	byDish := make(map[string]*tally)
	var order []string
	for _, rec := range records {
		key := strings.ToLower(rec.SatisfiedWith)
		t, ok := byDish[key]
		if !ok {
			t = &tally{fav: models.Favorite{
				DishName:   rec.SatisfiedWith,
				Kind:       rec.Kind,
				Cuisine:    rec.Cuisine,
				LastChosen: rec.CreatedAt,
			}}
			byDish[key] = t
			order = append(order, key)
		}
		t.fav.TimesChosen++
		if rec.CreatedAt.After(t.fav.LastChosen) {
			t.fav.LastChosen = rec.CreatedAt
		}
		if rec.Rating != nil {
			t.ratingSum += *rec.Rating
			t.ratingCount++
		}
	}

	favorites := make([]models.Favorite, 0, len(order))
	for _, key := range order {
		t := byDish[key]
		if t.ratingCount > 0 {
			avg := float64(t.ratingSum) / float64(t.ratingCount)
			t.fav.AvgRating = &avg
		}
		favorites = append(favorites, t.fav)
	}
	sort.SliceStable(favorites, func(i, j int) bool {
		if favorites[i].TimesChosen != favorites[j].TimesChosen {
			return favorites[i].TimesChosen > favorites[j].TimesChosen
		}
		return favorites[i].LastChosen.After(favorites[j].LastChosen)
	})
	if limit = clampLimit(limit); len(favorites) > limit {
		favorites = favorites[:limit]
	}
	return favorites, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// EmbeddingDims is the width of the craving embedding column.
const EmbeddingDims = 64

// CravingRecord is a confirmed craving: what was asked for and which dish
// satisfied it.
type CravingRecord struct {
	ID              string          `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	UserID          *string         `gorm:"type:varchar(128);index" json:"userId,omitempty"`
	SessionID       string          `gorm:"type:varchar(36);index" json:"sessionId,omitempty"`
	Craving         string          `gorm:"type:text;not null" json:"craving"`
	Cuisine         string          `json:"cuisine,omitempty"`
	DietaryFilters  pq.StringArray  `gorm:"type:text[]" json:"dietaryFilters,omitempty"`
	SatisfiedWith   string          `gorm:"not null" json:"satisfiedWith"`
	Kind            string          `json:"type"`
	Rating          *int            `json:"rating,omitempty"`
	Recommendations []string        `gorm:"serializer:json;type:text" json:"recommendations"`
	Attempts        int             `json:"attempts"`
	Embedding       pgvector.Vector `gorm:"type:vector(64)" json:"-"`
}

// TableName returns the table name for the CravingRecord model
func (CravingRecord) TableName() string {
	return "craving_records"
}

// BeforeCreate assigns an id when none was set.
func (r *CravingRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Favorite aggregates the dishes a user keeps coming back to.
type Favorite struct {
	DishName    string    `json:"dishName"`
	Kind        string    `json:"type"`
	Cuisine     string    `json:"cuisine,omitempty"`
	TimesChosen int       `json:"timesChosen"`
	AvgRating   *float64  `json:"avgRating,omitempty"`
	LastChosen  time.Time `json:"lastChosen"`
}

// HistoryFilter pages through a user's history. From is inclusive and To is
// exclusive; zero values leave that side open.
type HistoryFilter struct {
	UserID string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// CuisineCount is how often a cuisine satisfied a craving.
type CuisineCount struct {
	Cuisine string `json:"cuisine"`
	Count   int    `json:"count"`
}

// HistoryStats summarizes a user's history for the analytics view.
type HistoryStats struct {
	TotalCravings   int            `json:"totalCravings"`
	RatedCravings   int            `json:"ratedCravings"`
	AverageRating   *float64       `json:"averageRating,omitempty"`
	PopularCuisines []CuisineCount `json:"popularCuisines"`
}

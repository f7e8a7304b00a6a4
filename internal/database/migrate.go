package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/cravewise/backend/internal/models"
)

// sqliteSchema mirrors models.CravingRecord with types SQLite understands.
// Arrays and vectors are stored in their text encodings.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS craving_records (
	id TEXT PRIMARY KEY,
	created_at DATETIME,
	updated_at DATETIME,
	user_id TEXT,
	session_id TEXT,
	craving TEXT NOT NULL,
	cuisine TEXT,
	dietary_filters TEXT,
	satisfied_with TEXT NOT NULL,
	kind TEXT,
	rating INTEGER,
	recommendations TEXT,
	attempts INTEGER,
	embedding TEXT
);
CREATE INDEX IF NOT EXISTS idx_craving_records_user_id ON craving_records(user_id);
CREATE INDEX IF NOT EXISTS idx_craving_records_created_at ON craving_records(created_at);
`

// Migrate brings the schema up to date. PostgreSQL gets the pgvector
// extension and an auto-migrated table; SQLite gets a plain-text schema.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == DriverSQLite {
		if err := db.Exec(sqliteSchema).Error; err != nil {
			return fmt.Errorf("failed to create sqlite schema: %w", err)
		}
		return nil
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to install pgvector extension: %w", err)
	}
	if err := db.AutoMigrate(&models.CravingRecord{}); err != nil {
		return fmt.Errorf("failed to migrate craving records: %w", err)
	}
	return nil
}

package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/cravewise/backend/config"
	"github.com/pageza/cravewise/backend/internal/database"
	"github.com/pageza/cravewise/backend/internal/logging"
	"github.com/pageza/cravewise/backend/internal/models"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Drop the craving history table")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if *rollback {
		if err := db.Migrator().DropTable(&models.CravingRecord{}); err != nil {
			logger.Fatal("failed to roll back", zap.Error(err))
		}
		logger.Info("dropped table", zap.String("table", models.CravingRecord{}.TableName()))
		return
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}
	logger.Info("all migrations applied successfully", zap.String("driver", cfg.DBDriver))
}

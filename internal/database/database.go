package database

import (
	"fmt"
	"log"

	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/saga"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the local operational database: in-memory SQLite by default,
// file-backed SQLite for "sqlite:" URLs, Postgres otherwise. Domain entities
// never live here, only API tokens and the approval intent log.
func Connect(databaseURL string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	if databaseURL == "" || databaseURL == ":memory:" {
		db, err = gorm.Open(sqlite.Open(":memory:"), config)
	} else if len(databaseURL) > 10 && databaseURL[:6] == "sqlite" {
		// Strip "sqlite:" prefix for SQLite driver
		dbPath := databaseURL[7:]
		// Add query parameters to ensure write access
		dbPath = dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
		db, err = gorm.Open(sqlite.Open(dbPath), config)
	} else {
		db, err = gorm.Open(postgres.Open(databaseURL), config)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.APIToken{},
		&saga.ApprovalIntent{},
	)

	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

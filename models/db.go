package models

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens PostgreSQL when databaseURL is set and SQLite at sqlitePath otherwise.
func InitDB(databaseURL, sqlitePath string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	if databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}

	db, err := gorm.Open(sqlite.Open(sqlitePath+"?_foreign_keys=on"), cfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", sqlitePath, err)
	}

	// SQLite serialises writers; a single connection avoids SQLITE_BUSY under concurrent bids.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&MaterialCategory{},
		&Material{},
		&Supplier{},
		&Auction{},
		&Invitation{},
		&Bid{},
	)
}

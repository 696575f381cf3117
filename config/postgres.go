package config

import (
	"errors"
	"os"
	"time"

	"github.com/villageofwisdom/genius-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgres opens the Postgres pool from POSTGRES_URI and migrates the
// relational schema (users, profiles).
func NewPostgres() (*gorm.DB, error) {
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		return nil, errors.New("POSTGRES_URI environment variable is not set")
	}
	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pooling settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.AutoMigrate(&models.User{}, &models.Profile{}); err != nil {
		return nil, err
	}
	return db, nil
}

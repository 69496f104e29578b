package database

import (
	"log"

	"github.com/gatherhub/gather-api/internal/config"
	"github.com/gatherhub/gather-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// SQLite allows a single writer; one pooled connection keeps every
	// registration transaction fully serialized and avoids SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.APIKey{},
		&models.Author{},
		&models.Book{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Event{},
		&models.EventRegistration{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}

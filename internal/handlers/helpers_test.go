package handlers

import (
	"testing"

	"github.com/gatherhub/gather-api/internal/auth"
	"github.com/gatherhub/gather-api/internal/config"
	"github.com/gatherhub/gather-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to connect database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

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
	require.NoError(t, err, "failed to auto migrate")

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret",
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

func testAuthHandler(db *gorm.DB) *auth.AuthHandler {
	return auth.NewAuthHandler(testConfig(), db, zerolog.Nop())
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func credentialsFor(t *testing.T, ah *auth.AuthHandler, user *models.User) auth.Credentials {
	t.Helper()

	token, err := ah.GenerateToken(user.ID)
	require.NoError(t, err)
	return auth.Credentials{Authorization: "Bearer " + token}
}

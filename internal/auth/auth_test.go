package auth

import (
	"context"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherhub/gather-api/internal/config"
	"github.com/gatherhub/gather-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.APIKey{}))

	cfg := &config.Config{JWTSecret: "test-secret"}
	return NewAuthHandler(cfg, db, zerolog.Nop()), db
}

func errStatus(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	return se.GetStatus()
}

func TestSignupAndToken(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx := context.Background()

	signup := &SignupInput{}
	signup.Body.Username = "alice"
	signup.Body.Email = "alice@example.com"
	signup.Body.Password = "correct-horse"
	signup.Body.FirstName = "Alice"

	resp, err := handler.HandleSignup(ctx, signup)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.Status)
	assert.Equal(t, "alice", resp.Body.Username)
	assert.False(t, resp.Body.IsStaff)

	var stored models.User
	require.NoError(t, db.First(&stored, resp.Body.ID).Error)
	assert.NotEqual(t, "correct-horse", stored.PasswordHash, "password must be hashed")

	t.Run("DuplicateUsername", func(t *testing.T) {
		dup := &SignupInput{}
		dup.Body.Username = "alice"
		dup.Body.Email = "other@example.com"
		dup.Body.Password = "correct-horse"
		_, err := handler.HandleSignup(ctx, dup)
		require.Error(t, err)
		assert.Equal(t, 400, errStatus(t, err))
	})

	t.Run("ShortPassword", func(t *testing.T) {
		short := &SignupInput{}
		short.Body.Username = "bob"
		short.Body.Email = "bob@example.com"
		short.Body.Password = "short"
		_, err := handler.HandleSignup(ctx, short)
		require.Error(t, err)
		assert.Equal(t, 400, errStatus(t, err))
	})

	t.Run("TokenPair", func(t *testing.T) {
		input := &TokenInput{}
		input.Body.Username = "alice"
		input.Body.Password = "correct-horse"
		tokens, err := handler.HandleToken(ctx, input)
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.Body.Access)
		assert.NotEmpty(t, tokens.Body.Refresh)
		assert.Equal(t, "alice", tokens.Body.User.Username)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		input := &TokenInput{}
		input.Body.Username = "alice"
		input.Body.Password = "wrong-password"
		_, err := handler.HandleToken(ctx, input)
		require.Error(t, err)
		assert.Equal(t, 401, errStatus(t, err))
	})

	t.Run("UnknownUser", func(t *testing.T) {
		input := &TokenInput{}
		input.Body.Username = "nobody"
		input.Body.Password = "correct-horse"
		_, err := handler.HandleToken(ctx, input)
		require.Error(t, err)
		assert.Equal(t, 401, errStatus(t, err))
	})
}

func TestRefresh(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx := context.Background()

	user := models.User{Username: "alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	refresh, err := handler.GenerateRefreshToken(user.ID)
	require.NoError(t, err)

	t.Run("IssuesAccessToken", func(t *testing.T) {
		input := &RefreshInput{}
		input.Body.Refresh = refresh
		resp, err := handler.HandleRefresh(ctx, input)
		require.NoError(t, err)

		userID, err := handler.parseToken(resp.Body.Access, "access")
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
	})

	t.Run("AccessTokenRejected", func(t *testing.T) {
		access, err := handler.GenerateToken(user.ID)
		require.NoError(t, err)

		input := &RefreshInput{}
		input.Body.Refresh = access
		_, err = handler.HandleRefresh(ctx, input)
		require.Error(t, err)
		assert.Equal(t, 401, errStatus(t, err))
	})

	t.Run("DeactivatedUser", func(t *testing.T) {
		require.NoError(t, db.Model(&user).Update("is_active", false).Error)
		input := &RefreshInput{}
		input.Body.Refresh = refresh
		_, err := handler.HandleRefresh(ctx, input)
		require.Error(t, err)
		assert.Equal(t, 401, errStatus(t, err))
	})
}

func TestAuthorize(t *testing.T) {
	handler, db := newTestHandler(t)

	user := models.User{Username: "alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	t.Run("BearerToken", func(t *testing.T) {
		token, err := handler.GenerateToken(user.ID)
		require.NoError(t, err)

		userID, err := handler.Authorize(Credentials{Authorization: "Bearer " + token})
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
	})

	t.Run("RefreshTokenRejected", func(t *testing.T) {
		refresh, err := handler.GenerateRefreshToken(user.ID)
		require.NoError(t, err)

		_, err = handler.Authorize(Credentials{Authorization: "Bearer " + refresh})
		require.Error(t, err)
		assert.Equal(t, 401, errStatus(t, err))
	})

	t.Run("MissingCredentials", func(t *testing.T) {
		_, err := handler.Authorize(Credentials{})
		require.Error(t, err)
		assert.Equal(t, 401, errStatus(t, err))
	})

	t.Run("GarbageToken", func(t *testing.T) {
		_, err := handler.Authorize(Credentials{Authorization: "Bearer not-a-jwt"})
		require.Error(t, err)
		assert.Equal(t, 401, errStatus(t, err))
	})

	t.Run("APIKey", func(t *testing.T) {
		key := models.APIKey{UserID: user.ID, Key: "gk_live_0123456789abcdef", Name: "ci"}
		require.NoError(t, db.Create(&key).Error)

		userID, err := handler.Authorize(Credentials{APIKey: key.Key})
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)

		var used models.APIKey
		require.NoError(t, db.First(&used, key.ID).Error)
		assert.NotNil(t, used.LastUsedAt)
	})

	t.Run("ExpiredAPIKey", func(t *testing.T) {
		expiry := time.Now().Add(-time.Hour)
		key := models.APIKey{UserID: user.ID, Key: "gk_live_expired0000000000", Name: "old", ExpiresAt: &expiry}
		require.NoError(t, db.Create(&key).Error)

		_, err := handler.Authorize(Credentials{APIKey: key.Key})
		require.Error(t, err)
		assert.Equal(t, 401, errStatus(t, err))
	})

	t.Run("UnknownAPIKey", func(t *testing.T) {
		_, err := handler.Authorize(Credentials{APIKey: "gk_live_missing"})
		require.Error(t, err)
		assert.Equal(t, 401, errStatus(t, err))
	})
}

func TestCurrentUser(t *testing.T) {
	handler, db := newTestHandler(t)

	user := models.User{Username: "alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	token, err := handler.GenerateToken(user.ID)
	require.NoError(t, err)

	loaded, err := handler.CurrentUser(Credentials{Authorization: "Bearer " + token})
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Username)

	t.Run("DisabledAccount", func(t *testing.T) {
		require.NoError(t, db.Model(&user).Update("is_active", false).Error)
		_, err := handler.CurrentUser(Credentials{Authorization: "Bearer " + token})
		require.Error(t, err)
		assert.Equal(t, 401, errStatus(t, err))
	})
}

func TestUpdateMe(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx := context.Background()

	user := models.User{Username: "alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	token, err := handler.GenerateToken(user.ID)
	require.NoError(t, err)
	creds := Credentials{Authorization: "Bearer " + token}

	input := &UpdateMeInput{Credentials: creds}
	input.Body.FirstName = "Alice"
	input.Body.Email = "alice@gatherhub.dev"
	resp, err := handler.HandleUpdateMe(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.Body.FirstName)
	assert.Equal(t, "alice@gatherhub.dev", resp.Body.Email)

	me, err := handler.HandleMe(ctx, &MeInput{Credentials: creds})
	require.NoError(t, err)
	assert.Equal(t, "alice@gatherhub.dev", me.Body.Email)
}

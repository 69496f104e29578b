package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherhub/gather-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Credentials is embedded in the input struct of every protected
// operation. Either an API key or a bearer access token is accepted.
type Credentials struct {
	Authorization string `header:"Authorization" required:"false" doc:"Bearer access token"`
	APIKey        string `header:"X-API-KEY" required:"false" doc:"API key credential"`
}

// Authorize resolves the acting user from the supplied credentials.
// An API key takes precedence over a bearer token, matching the order
// the credentials are checked in.
func (h *AuthHandler) Authorize(creds Credentials) (uint, error) {
	// 1. API Key Header
	if creds.APIKey != "" {
		var keyModel models.APIKey
		if err := h.db.Where("key = ?", creds.APIKey).First(&keyModel).Error; err == nil {
			if keyModel.Expired(time.Now()) {
				return 0, huma.Error401Unauthorized("API key expired")
			}
			h.db.Model(&keyModel).Update("last_used_at", time.Now())
			return keyModel.UserID, nil
		}
		return 0, huma.Error401Unauthorized("Invalid API key")
	}

	// 2. Bearer token
	tokenString, ok := strings.CutPrefix(creds.Authorization, "Bearer ")
	if !ok || tokenString == "" {
		return 0, huma.Error401Unauthorized("No credentials provided")
	}

	userID, err := h.parseToken(tokenString, "access")
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// CurrentUser resolves and loads the acting user, rejecting deactivated
// accounts even when their token is still valid.
func (h *AuthHandler) CurrentUser(creds Credentials) (*models.User, error) {
	userID, err := h.Authorize(creds)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return nil, huma.Error401Unauthorized("Invalid token")
	}
	if !user.IsActive {
		return nil, huma.Error401Unauthorized("User account is disabled")
	}
	return &user, nil
}

func (h *AuthHandler) parseToken(tokenString, wantType string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, huma.Error401Unauthorized("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, huma.Error401Unauthorized("Invalid token claims")
	}
	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return 0, huma.Error401Unauthorized("Invalid token type")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, huma.Error401Unauthorized("Invalid token claims")
	}
	return uint(userIDFloat), nil
}

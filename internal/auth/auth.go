package auth

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherhub/gather-api/internal/config"
	"github.com/gatherhub/gather-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	AccessTokenDuration  = 30 * time.Minute
	RefreshTokenDuration = 7 * 24 * time.Hour
)

type AuthHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	logger zerolog.Logger
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, logger: logger}
}

type SignupInput struct {
	Body struct {
		Username  string `json:"username" minLength:"1" maxLength:"150" doc:"Unique username"`
		Email     string `json:"email" format:"email" doc:"Unique email address"`
		Password  string `json:"password" minLength:"8" doc:"Password, at least 8 characters"`
		FirstName string `json:"first_name,omitempty" required:"false"`
		LastName  string `json:"last_name,omitempty" required:"false"`
	}
}

type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

type SignupOutput struct {
	Status int
	Body   UserResponse
}

func (h *AuthHandler) HandleSignup(ctx context.Context, input *SignupInput) (*SignupOutput, error) {
	user := models.User{
		Username:  input.Body.Username,
		Email:     input.Body.Email,
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
		IsActive:  true,
	}
	if err := user.Validate(); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err := user.SetPassword(input.Body.Password); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	var count int64
	h.db.Model(&models.User{}).
		Where("username = ? OR email = ?", user.Username, user.Email).
		Count(&count)
	if count > 0 {
		return nil, huma.Error400BadRequest("A user with that username or email already exists")
	}

	if err := h.db.Create(&user).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create user")
	}

	h.logger.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	return &SignupOutput{
		Status: 201,
		Body:   newUserResponse(&user),
	}, nil
}

type TokenInput struct {
	Body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
}

type TokenOutput struct {
	Body struct {
		Access  string       `json:"access"`
		Refresh string       `json:"refresh"`
		User    UserResponse `json:"user"`
	}
}

func (h *AuthHandler) HandleToken(ctx context.Context, input *TokenInput) (*TokenOutput, error) {
	var user models.User
	if err := h.db.Where("username = ?", input.Body.Username).First(&user).Error; err != nil {
		return nil, huma.Error401Unauthorized("Invalid username or password")
	}
	if !user.IsActive || !user.CheckPassword(input.Body.Password) {
		return nil, huma.Error401Unauthorized("Invalid username or password")
	}

	access, err := h.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}
	refresh, err := h.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	res := &TokenOutput{}
	res.Body.Access = access
	res.Body.Refresh = refresh
	res.Body.User = newUserResponse(&user)
	return res, nil
}

type RefreshInput struct {
	Body struct {
		Refresh string `json:"refresh"`
	}
}

type RefreshOutput struct {
	Body struct {
		Access string `json:"access"`
	}
}

func (h *AuthHandler) HandleRefresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
	userID, err := h.parseToken(input.Body.Refresh, "refresh")
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil || !user.IsActive {
		return nil, huma.Error401Unauthorized("Invalid token")
	}

	access, err := h.GenerateToken(userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	res := &RefreshOutput{}
	res.Body.Access = access
	return res, nil
}

type MeInput struct {
	Credentials
}

type MeOutput struct {
	Body UserResponse
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *MeInput) (*MeOutput, error) {
	user, err := h.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}
	return &MeOutput{Body: newUserResponse(user)}, nil
}

type UpdateMeInput struct {
	Credentials
	Body struct {
		Email     string `json:"email,omitempty" required:"false"`
		FirstName string `json:"first_name,omitempty" required:"false"`
		LastName  string `json:"last_name,omitempty" required:"false"`
	}
}

func (h *AuthHandler) HandleUpdateMe(ctx context.Context, input *UpdateMeInput) (*MeOutput, error) {
	user, err := h.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	if input.Body.Email != "" {
		user.Email = input.Body.Email
	}
	if input.Body.FirstName != "" {
		user.FirstName = input.Body.FirstName
	}
	if input.Body.LastName != "" {
		user.LastName = input.Body.LastName
	}
	if err := user.Validate(); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	if err := h.db.Save(user).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update user")
	}

	return &MeOutput{Body: newUserResponse(user)}, nil
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	return h.signToken(userID, "access", AccessTokenDuration)
}

func (h *AuthHandler) GenerateRefreshToken(userID uint) (string, error) {
	return h.signToken(userID, "refresh", RefreshTokenDuration)
}

func (h *AuthHandler) signToken(userID uint, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"type":    tokenType,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

func newUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsStaff:   user.IsStaff,
	}
}

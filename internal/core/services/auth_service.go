package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"conveyease/internal/config"
	"conveyease/internal/core/domain"
	"conveyease/internal/pkg/jwt"
	"conveyease/internal/pkg/password"
)

// AuthService handles authentication business logic
type AuthService struct {
	users  UserStore
	tokens RefreshTokenStore
	cfg    *config.Config
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, tokens RefreshTokenStore, cfg *config.Config, log *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		cfg:    cfg,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return resp, nil
}

// RefreshToken rotates a refresh token and issues a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	stored, err := s.tokens.GetRefreshTokenByHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	now := s.now()
	if stored.IsRevoked() {
		// a revoked token coming back means it leaked; end every session
		if err := s.tokens.RevokeAllRefreshTokens(ctx, stored.UserID, now); err != nil {
			return nil, err
		}
		s.log.Warn("revoked refresh token reused", zap.String("user_id", stored.UserID))
		return nil, domain.ErrTokenRevoked
	}
	if stored.IsExpired(now) {
		return nil, domain.ErrTokenExpired
	}
	if stored.UserID != claims.UserID {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.RevokeRefreshToken(ctx, stored.ID, now); err != nil {
		return nil, err
	}

	return s.issue(ctx, user)
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	stored, err := s.tokens.GetRefreshTokenByHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.tokens.RevokeRefreshToken(ctx, stored.ID, s.now())
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.tokens.RevokeAllRefreshTokens(ctx, userID, s.now()); err != nil {
		return err
	}
	s.log.Info("all sessions revoked", zap.String("user_id", userID))
	return nil
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUser(ctx, userID)
}

// issue generates a token pair and stores the hashed refresh token
func (s *AuthService) issue(ctx context.Context, user *domain.User) (*AuthResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Name,
		string(user.Role),
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()
	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.tokens.CreateRefreshToken(ctx, &domain.RefreshToken{
		ID:        tokenID,
		UserID:    user.ID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: now.Add(time.Duration(s.cfg.JWT.RefreshTokenDays) * 24 * time.Hour),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         ToUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

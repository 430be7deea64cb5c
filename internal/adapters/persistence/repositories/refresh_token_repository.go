package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"conveyease/internal/adapters/persistence/models"
	"conveyease/internal/core/domain"
	"conveyease/internal/core/services"
)

// refreshTokenRepository implements services.RefreshTokenStore
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) services.RefreshTokenStore {
	return &refreshTokenRepository{db: db}
}

// CreateRefreshToken stores a hashed refresh token
func (r *refreshTokenRepository) CreateRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	m := &models.RefreshToken{
		ID:        token.ID,
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
		RevokedAt: token.RevokedAt,
	}
	return mapError(r.db.WithContext(ctx).Create(m).Error)
}

// GetRefreshTokenByHash gets a refresh token by its hash
func (r *refreshTokenRepository) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("refresh token: %w", domain.ErrNotFound)
		}
		return nil, err
	}

	return &domain.RefreshToken{
		ID:        token.ID,
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
		RevokedAt: token.RevokedAt,
	}, nil
}

// RevokeRefreshToken revokes a refresh token by ID
func (r *refreshTokenRepository) RevokeRefreshToken(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id = ?", id).
		Where("revoked_at IS NULL").
		Update("revoked_at", &at)
	return res.Error
}

// RevokeAllRefreshTokens revokes all refresh tokens for a user
func (r *refreshTokenRepository) RevokeAllRefreshTokens(ctx context.Context, userID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Update("revoked_at", &at).Error
}

// DeleteStaleRefreshTokens deletes expired and revoked tokens (cleanup job)
func (r *refreshTokenRepository) DeleteStaleRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at IS NOT NULL", now).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

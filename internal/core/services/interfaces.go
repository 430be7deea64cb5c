package services

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_stores.go -package=mocks

import (
	"context"
	"time"

	"conveyease/internal/core/domain"
)

// BillStore persists bills and their history.
//
// PutBill is a compare-and-swap on Version: it succeeds only while the
// stored version equals bill.Version, then stores the bill with
// Version+1 and sets bill.Version to match. History events beyond the
// stored ones are appended; earlier events are never rewritten. A stale
// version yields domain.ErrWriteConflict and an unknown id
// domain.ErrNotFound.
type BillStore interface {
	GetBill(ctx context.Context, id string) (*domain.Bill, error)
	CreateBill(ctx context.Context, bill *domain.Bill) error
	PutBill(ctx context.Context, bill *domain.Bill) error
	ListBills(ctx context.Context) ([]*domain.Bill, error)
}

// UserStore persists users
type UserStore interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
}

// RefreshTokenStore persists hashed refresh tokens
type RefreshTokenStore interface {
	CreateRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, at time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string, at time.Time) error
	DeleteStaleRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

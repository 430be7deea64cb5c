package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"conveyease/internal/adapters/persistence/models"
	"conveyease/internal/core/domain"
	"conveyease/internal/core/services"
)

// userRepository implements services.UserStore
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) services.UserStore {
	return &userRepository{db: db}
}

// CreateUser creates a new user
func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	m := toUserModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create user %s: %w", user.Email, mapError(err))
	}
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}

// GetUser gets a user by ID
func (r *userRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
		}
		return nil, err
	}
	return toDomainUser(&user), nil
}

// GetUserByEmail gets a user by email, case-insensitively
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
		}
		return nil, err
	}
	return toDomainUser(&user), nil
}

// ListUsers lists all users, oldest first
func (r *userRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&users).Error; err != nil {
		return nil, err
	}

	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, toDomainUser(u))
	}
	return out, nil
}

func toDomainUser(m *models.User) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Role:         domain.Role(m.Role),
		SupervisorID: m.SupervisorID,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) *models.User {
	return &models.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		SupervisorID: u.SupervisorID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

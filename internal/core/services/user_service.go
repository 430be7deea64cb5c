package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"conveyease/internal/core/domain"
	"conveyease/internal/core/workflow"
	"conveyease/internal/pkg/password"
)

// UserService handles user management business logic
type UserService struct {
	users UserStore
	log   *zap.Logger
	now   func() time.Time
}

// NewUserService creates a new user service
func NewUserService(users UserStore, log *zap.Logger) *UserService {
	return &UserService{
		users: users,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Email        string  `json:"email" validate:"required,email,max=100"`
	Password     string  `json:"password" validate:"required,min=8,max=72"`
	Role         string  `json:"role" validate:"required,oneof=employee supervisor accounts management"`
	SupervisorID *string `json:"supervisor_id" validate:"omitempty,max=36"`
}

// UserResponse DTO
type UserResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	SupervisorID *string   `json:"supervisor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToUserResponse converts a domain user, dropping the password hash
func ToUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		SupervisorID: u.SupervisorID,
		CreatedAt:    u.CreatedAt,
	}
}

// Register creates a user account. Employees must name an existing
// supervisor; other roles cannot have one.
func (s *UserService) Register(ctx context.Context, input *RegisterInput) (*domain.User, error) {
	role := domain.Role(strings.ToLower(strings.TrimSpace(input.Role)))
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, input.Role)
	}
	if !password.ValidatePassword(input.Password) {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	var supervisorID *string
	switch {
	case role == domain.RoleEmployee:
		if input.SupervisorID == nil || *input.SupervisorID == "" {
			return nil, fmt.Errorf("%w: employees need a supervisor", domain.ErrInvalidSupervisor)
		}
		sup, err := s.users.GetUser(ctx, *input.SupervisorID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrInvalidSupervisor
			}
			return nil, err
		}
		if sup.Role != domain.RoleSupervisor {
			return nil, domain.ErrInvalidSupervisor
		}
		id := sup.ID
		supervisorID = &id
	case input.SupervisorID != nil && *input.SupervisorID != "":
		return nil, fmt.Errorf("%w: only employees report to a supervisor", domain.ErrInvalidSupervisor)
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Role:         role,
		SupervisorID: supervisorID,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// GetByID gets a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetUser(ctx, id)
}

// List returns all users
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListUsers(ctx)
}

// Team returns the direct reports of a supervisor
func (s *UserService) Team(ctx context.Context, supervisorID string) ([]*domain.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return workflow.Team(supervisorID, users), nil
}

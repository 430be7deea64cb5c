package config

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"conveyease/internal/core/domain"
	"conveyease/internal/pkg/password"
)

// DemoPassword is the login password of every seeded user
const DemoPassword = "password123"

// SeedStore is the part of storage the seeder writes through
type SeedStore interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	GetBill(ctx context.Context, id string) (*domain.Bill, error)
	CreateBill(ctx context.Context, bill *domain.Bill) error
}

// Seeder handles demo data seeding
type Seeder struct {
	store SeedStore
	log   *zap.Logger
	now   func() time.Time
}

// NewSeeder creates a new seeder instance
func NewSeeder(store SeedStore, log *zap.Logger) *Seeder {
	return &Seeder{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds the demo organisation and bills. Records that already exist
// are left alone, so it is safe to run on every start.
// This is for development/testing only.
func (s *Seeder) Run(ctx context.Context) error {
	s.log.Info("running demo data seeders")

	users, err := s.seedUsers(ctx)
	if err != nil {
		return err
	}
	bills, err := s.seedBills(ctx)
	if err != nil {
		return err
	}

	s.log.Info("demo data seeded", zap.Int("users", users), zap.Int("bills", bills))
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context) (int, error) {
	hashed, err := password.Hash(DemoPassword)
	if err != nil {
		return 0, err
	}

	sup := "user-2"
	users := []domain.User{
		{ID: "user-1", Name: "Alice Employee", Email: "alice@example.com", Role: domain.RoleEmployee, SupervisorID: &sup},
		{ID: "user-2", Name: "Bob Supervisor", Email: "bob@example.com", Role: domain.RoleSupervisor},
		{ID: "user-3", Name: "Charlie Accounts", Email: "charlie@example.com", Role: domain.RoleAccounts},
		{ID: "user-4", Name: "Diana Management", Email: "diana@example.com", Role: domain.RoleManagement},
		{ID: "user-5", Name: "Eve Employee", Email: "eve@example.com", Role: domain.RoleEmployee, SupervisorID: &sup},
	}

	now := s.now()
	created := 0
	for i := range users {
		u := &users[i]
		if _, err := s.store.GetUser(ctx, u.ID); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return created, err
		}

		u.PasswordHash = hashed
		u.CreatedAt = now
		u.UpdatedAt = now
		if err := s.store.CreateUser(ctx, u); err != nil {
			if errors.Is(err, domain.ErrDuplicateEntry) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Seeder) seedBills(ctx context.Context) (int, error) {
	now := s.now()
	daysAgo := func(d int) time.Time { return now.Add(-time.Duration(d) * 24 * time.Hour) }
	receipt := "Please provide an itemized receipt."

	bills := []*domain.Bill{
		{
			ID:         "bill-1",
			EmployeeID: "user-1",
			Title:      "Client meeting travel",
			Amount:     decimal.RequireFromString("150.75"),
			Status:     domain.StatusSubmitted,
			History: []domain.HistoryEvent{
				{Status: domain.StatusSubmitted, Timestamp: daysAgo(2), ActorID: "user-1"},
			},
		},
		{
			ID:         "bill-2",
			EmployeeID: "user-5",
			Title:      "Office supplies purchase",
			Amount:     decimal.RequireFromString("85.00"),
			Status:     domain.StatusApprovedBySupervisor,
			History: []domain.HistoryEvent{
				{Status: domain.StatusSubmitted, Timestamp: daysAgo(5), ActorID: "user-5"},
				{Status: domain.StatusApprovedBySupervisor, Timestamp: daysAgo(4), ActorID: "user-2"},
			},
		},
		{
			ID:         "bill-3",
			EmployeeID: "user-1",
			Title:      "Team lunch",
			Amount:     decimal.RequireFromString("220.50"),
			Status:     domain.StatusRejectedBySupervisor,
			History: []domain.HistoryEvent{
				{Status: domain.StatusSubmitted, Timestamp: daysAgo(3), ActorID: "user-1"},
				{Status: domain.StatusRejectedBySupervisor, Timestamp: daysAgo(1), ActorID: "user-2", Comment: &receipt},
			},
		},
	}

	created := 0
	for _, b := range bills {
		b.CreatedAt = b.History[0].Timestamp
		b.UpdatedAt = b.LastEvent().Timestamp
		if err := b.Validate(); err != nil {
			return created, err
		}

		if _, err := s.store.GetBill(ctx, b.ID); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return created, err
		}
		if err := s.store.CreateBill(ctx, b); err != nil {
			if errors.Is(err, domain.ErrDuplicateEntry) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

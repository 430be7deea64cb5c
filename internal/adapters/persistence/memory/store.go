// Package memory is a process-local store for bills, users and refresh
// tokens. It backs STORAGE=memory and the service and handler tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"conveyease/internal/core/domain"
)

// Store keeps records in maps guarded by a single RWMutex. Every value is
// cloned on the way in and out so callers never share memory with it.
type Store struct {
	mu sync.RWMutex

	bills     map[string]*domain.Bill
	billOrder []string

	users     map[string]*domain.User
	userOrder []string

	tokens map[string]*domain.RefreshToken
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		bills:  make(map[string]*domain.Bill),
		users:  make(map[string]*domain.User),
		tokens: make(map[string]*domain.RefreshToken),
	}
}

// ============================================================
// Bills
// ============================================================

func (s *Store) GetBill(ctx context.Context, id string) (*domain.Bill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bills[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBillNotFound, id)
	}
	return b.Clone(), nil
}

// CreateBill stores a new bill at version 1
func (s *Store) CreateBill(ctx context.Context, bill *domain.Bill) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bills[bill.ID]; ok {
		return fmt.Errorf("bill %s: %w", bill.ID, domain.ErrDuplicateEntry)
	}
	bill.Version = 1
	s.bills[bill.ID] = bill.Clone()
	s.billOrder = append(s.billOrder, bill.ID)
	return nil
}

// PutBill replaces a bill if nobody wrote it since it was read
func (s *Store) PutBill(ctx context.Context, bill *domain.Bill) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bills[bill.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrBillNotFound, bill.ID)
	}
	if stored.Version != bill.Version {
		return fmt.Errorf("bill %s at version %d, have %d: %w", bill.ID, stored.Version, bill.Version, domain.ErrWriteConflict)
	}
	if len(bill.History) < len(stored.History) {
		return fmt.Errorf("bill %s: history shrank: %w", bill.ID, domain.ErrCorruptHistory)
	}
	if bill.EmployeeID != stored.EmployeeID {
		return fmt.Errorf("%w: bill owner cannot change", domain.ErrInvalidInput)
	}
	if bill.Title != stored.Title || !bill.Amount.Equal(stored.Amount) {
		return fmt.Errorf("%w: bill title and amount are fixed once created", domain.ErrInvalidInput)
	}

	next := bill.Clone()
	// stored events are immutable
	copy(next.History, stored.Clone().History)
	next.Version = stored.Version + 1
	s.bills[bill.ID] = next
	bill.Version = next.Version
	return nil
}

// ListBills returns all bills in creation order
func (s *Store) ListBills(ctx context.Context) ([]*domain.Bill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Bill, 0, len(s.billOrder))
	for _, id := range s.billOrder {
		out = append(out, s.bills[id].Clone())
	}
	return out, nil
}

// ============================================================
// Users
// ============================================================

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.userOrder {
		if u := s.users[id]; strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
}

func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, cloneUser(s.users[id]))
	}
	return out, nil
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrDuplicateEntry)
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("email %s: %w", user.Email, domain.ErrDuplicateEntry)
		}
	}
	s.users[user.ID] = cloneUser(user)
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.SupervisorID != nil {
		sup := *u.SupervisorID
		c.SupervisorID = &sup
	}
	return &c
}

// ============================================================
// Refresh tokens
// ============================================================

func (s *Store) CreateRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tokens {
		if t.TokenHash == token.TokenHash {
			return fmt.Errorf("refresh token: %w", domain.ErrDuplicateEntry)
		}
	}
	c := *token
	s.tokens[token.ID] = &c
	return nil
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.TokenHash == tokenHash {
			c := *t
			return &c, nil
		}
	}
	return nil, fmt.Errorf("refresh token: %w", domain.ErrNotFound)
}

func (s *Store) RevokeRefreshToken(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[id]
	if !ok {
		return fmt.Errorf("refresh token: %w", domain.ErrNotFound)
	}
	if t.RevokedAt == nil {
		t.RevokedAt = &at
	}
	return nil
}

func (s *Store) RevokeAllRefreshTokens(ctx context.Context, userID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			revokedAt := at
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

// DeleteStaleRefreshTokens drops expired and revoked tokens
func (s *Store) DeleteStaleRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, t := range s.tokens {
		if t.IsRevoked() || t.IsExpired(now) {
			delete(s.tokens, id)
			n++
		}
	}
	return n, nil
}

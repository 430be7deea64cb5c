package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"conveyease/internal/adapters/persistence/memory"
	"conveyease/internal/config"
	"conveyease/internal/core/domain"
	"conveyease/internal/core/workflow"
	"conveyease/internal/pkg/password"
)

var (
	alice   = workflow.Actor{ID: "user-1", Role: domain.RoleEmployee}
	bob     = workflow.Actor{ID: "user-2", Role: domain.RoleSupervisor}
	charlie = workflow.Actor{ID: "user-3", Role: domain.RoleAccounts}
	diana   = workflow.Actor{ID: "user-4", Role: domain.RoleManagement}
	eve     = workflow.Actor{ID: "user-5", Role: domain.RoleEmployee}
	frank   = workflow.Actor{ID: "user-6", Role: domain.RoleSupervisor}
)

const testPassword = "password123"

func init() {
	password.Cost = bcrypt.MinCost
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Bills: config.BillConfig{
			WriteRetries:   3,
			RetryBaseDelay: time.Microsecond,
			RetryMaxDelay:  10 * time.Microsecond,
		},
	}
}

// tickingClock advances one minute on every call
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

func newTestEngine() *workflow.Engine {
	return workflow.NewEngine(&tickingClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)})
}

func strPtr(s string) *string { return &s }

// seededStore returns a memory store holding the demo organisation:
// alice and eve report to bob, frank supervises nobody.
func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	hash, err := password.Hash(testPassword)
	require.NoError(t, err)

	sup := "user-2"
	users := []*domain.User{
		{ID: "user-1", Name: "Alice Employee", Email: "alice@example.com", Role: domain.RoleEmployee, SupervisorID: &sup},
		{ID: "user-2", Name: "Bob Supervisor", Email: "bob@example.com", Role: domain.RoleSupervisor},
		{ID: "user-3", Name: "Charlie Accounts", Email: "charlie@example.com", Role: domain.RoleAccounts},
		{ID: "user-4", Name: "Diana Management", Email: "diana@example.com", Role: domain.RoleManagement},
		{ID: "user-5", Name: "Eve Employee", Email: "eve@example.com", Role: domain.RoleEmployee, SupervisorID: &sup},
		{ID: "user-6", Name: "Frank Supervisor", Email: "frank@example.com", Role: domain.RoleSupervisor},
	}
	for _, u := range users {
		u.PasswordHash = hash
		require.NoError(t, store.CreateUser(context.Background(), u))
	}
	return store
}

func newTestBillService(store *memory.Store) *BillService {
	svc := NewBillService(store, store, newTestEngine(), testConfig(), zap.NewNop())
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("bill-%d", n)
	}
	return svc
}

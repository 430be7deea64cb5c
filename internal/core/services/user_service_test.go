package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conveyease/internal/core/domain"
	"conveyease/internal/pkg/password"
)

func TestUserRegister(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name          string
		input         RegisterInput
		expectedEmail string
		expectedErr   error
	}{
		{
			name:          "employee_with_supervisor",
			input:         RegisterInput{Name: "Grace", Email: "Grace@Example.com ", Password: "longenough", Role: "employee", SupervisorID: strPtr("user-2")},
			expectedEmail: "grace@example.com",
		},
		{
			name:          "accounts_without_supervisor",
			input:         RegisterInput{Name: "Heidi", Email: "heidi@example.com", Password: "longenough", Role: "accounts"},
			expectedEmail: "heidi@example.com",
		},
		{
			name:        "duplicate_email",
			input:       RegisterInput{Name: "Alice", Email: "ALICE@example.com", Password: "longenough", Role: "management"},
			expectedErr: domain.ErrUserAlreadyExists,
		},
		{
			name:        "employee_missing_supervisor",
			input:       RegisterInput{Name: "Ivan", Email: "ivan@example.com", Password: "longenough", Role: "employee"},
			expectedErr: domain.ErrInvalidSupervisor,
		},
		{
			name:        "supervisor_is_not_a_supervisor",
			input:       RegisterInput{Name: "Ivan", Email: "ivan@example.com", Password: "longenough", Role: "employee", SupervisorID: strPtr("user-3")},
			expectedErr: domain.ErrInvalidSupervisor,
		},
		{
			name:        "unknown_supervisor",
			input:       RegisterInput{Name: "Ivan", Email: "ivan@example.com", Password: "longenough", Role: "employee", SupervisorID: strPtr("user-99")},
			expectedErr: domain.ErrInvalidSupervisor,
		},
		{
			name:        "manager_with_supervisor",
			input:       RegisterInput{Name: "Judy", Email: "judy@example.com", Password: "longenough", Role: "management", SupervisorID: strPtr("user-2")},
			expectedErr: domain.ErrInvalidSupervisor,
		},
		{
			name:        "unknown_role",
			input:       RegisterInput{Name: "Judy", Email: "judy@example.com", Password: "longenough", Role: "admin"},
			expectedErr: domain.ErrInvalidInput,
		},
		{
			name:        "short_password",
			input:       RegisterInput{Name: "Judy", Email: "judy@example.com", Password: "short", Role: "accounts"},
			expectedErr: domain.ErrInvalidInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewUserService(seededStore(t), zap.NewNop())
			input := tc.input
			user, err := svc.Register(ctx, &input)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, tc.expectedEmail, user.Email)
			assert.True(t, password.Verify(input.Password, user.PasswordHash))
		})
	}
}

func TestUserTeam(t *testing.T) {
	svc := NewUserService(seededStore(t), zap.NewNop())

	team, err := svc.Team(context.Background(), "user-2")
	require.NoError(t, err)
	require.Len(t, team, 2)
	assert.Equal(t, "user-1", team[0].ID)
	assert.Equal(t, "user-5", team[1].ID)

	empty, err := svc.Team(context.Background(), "user-6")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestToUserResponseDropsHash(t *testing.T) {
	resp := ToUserResponse(&domain.User{ID: "user-1", Name: "Alice", Role: domain.RoleEmployee, PasswordHash: "secret"})
	assert.Equal(t, "employee", resp.Role)
	assert.Equal(t, "user-1", resp.ID)
}

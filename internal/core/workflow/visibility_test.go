package workflow

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"conveyease/internal/core/domain"
)

func fixtureUsers() []*domain.User {
	sup := "user-2"
	other := "user-9"
	return []*domain.User{
		{ID: "user-1", Name: "Alice Employee", Role: domain.RoleEmployee, SupervisorID: &sup},
		{ID: "user-2", Name: "Bob Supervisor", Role: domain.RoleSupervisor},
		{ID: "user-3", Name: "Charlie Accounts", Role: domain.RoleAccounts},
		{ID: "user-4", Name: "Diana Management", Role: domain.RoleManagement},
		{ID: "user-5", Name: "Eve Employee", Role: domain.RoleEmployee, SupervisorID: &sup},
		{ID: "user-6", Name: "Frank Employee", Role: domain.RoleEmployee, SupervisorID: &other},
		{ID: "user-9", Name: "Grace Supervisor", Role: domain.RoleSupervisor},
	}
}

func billFor(id, owner string, status domain.BillStatus) *domain.Bill {
	return &domain.Bill{
		ID:         id,
		EmployeeID: owner,
		Title:      "Trip",
		Amount:     decimal.NewFromInt(1),
		Status:     status,
		History:    []domain.HistoryEvent{{Status: domain.StatusSubmitted, ActorID: owner}},
	}
}

func fixtureBills() []*domain.Bill {
	return []*domain.Bill{
		billFor("bill-1", "user-1", domain.StatusSubmitted),
		billFor("bill-2", "user-5", domain.StatusApprovedBySupervisor),
		billFor("bill-3", "user-1", domain.StatusRejectedBySupervisor),
		billFor("bill-4", "user-6", domain.StatusSubmitted),
		billFor("bill-5", "user-6", domain.StatusApprovedByManagement),
	}
}

func ids(bills []*domain.Bill) []string {
	out := make([]string, len(bills))
	for i, b := range bills {
		out[i] = b.ID
	}
	return out
}

func TestVisibleBills(t *testing.T) {
	users := fixtureUsers()
	byID := make(map[string]*domain.User)
	for _, u := range users {
		byID[u.ID] = u
	}

	testCases := []struct {
		name     string
		user     *domain.User
		expected []string
	}{
		{name: "employee_sees_own", user: byID["user-1"], expected: []string{"bill-1", "bill-3"}},
		{name: "employee_without_bills", user: byID["user-5"], expected: []string{"bill-2"}},
		{name: "supervisor_sees_team", user: byID["user-2"], expected: []string{"bill-1", "bill-2", "bill-3"}},
		{name: "other_supervisor_sees_own_team", user: byID["user-9"], expected: []string{"bill-4", "bill-5"}},
		{name: "accounts_sees_all", user: byID["user-3"], expected: []string{"bill-1", "bill-2", "bill-3", "bill-4", "bill-5"}},
		{name: "management_sees_all", user: byID["user-4"], expected: []string{"bill-1", "bill-2", "bill-3", "bill-4", "bill-5"}},
		{name: "unknown_role_sees_nothing", user: &domain.User{ID: "x", Role: "auditor"}, expected: []string{}},
		{name: "nil_user", user: nil, expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := VisibleBills(fixtureBills(), tc.user, users)
			assert.Equal(t, tc.expected, ids(got))

			for _, b := range fixtureBills() {
				want := false
				for _, id := range tc.expected {
					want = want || id == b.ID
				}
				assert.Equal(t, want, CanView(b, tc.user, users), b.ID)
			}
		})
	}
}

func TestVisibleBillsSupervisorAtScale(t *testing.T) {
	users := fixtureUsers()
	var bills []*domain.Bill
	owners := []string{"user-1", "user-5", "user-6", "user-3"}
	for i := 0; i < 400; i++ {
		bills = append(bills, billFor(fmt.Sprintf("bill-%d", i), owners[i%len(owners)], domain.StatusSubmitted))
	}

	got := VisibleBills(bills, users[1], users)
	assert.Len(t, got, 200)
	for _, b := range got {
		assert.Contains(t, []string{"user-1", "user-5"}, b.EmployeeID)
	}
}

func TestAwaitingAction(t *testing.T) {
	bills := fixtureBills()

	assert.Equal(t, []string{"bill-1", "bill-4"}, ids(AwaitingAction(bills, supervisor)))
	assert.Equal(t, []string{"bill-2", "bill-5"}, ids(AwaitingAction(bills, accounts)))
	assert.Equal(t, []string{}, ids(AwaitingAction(bills, management)))
	assert.Equal(t, []string{"bill-3"}, ids(AwaitingAction(bills, employee)))
}

func TestTeam(t *testing.T) {
	users := fixtureUsers()
	team := Team("user-2", users)
	assert.Len(t, team, 2)
	assert.Equal(t, "user-1", team[0].ID)
	assert.Equal(t, "user-5", team[1].ID)
	assert.Empty(t, Team("user-4", users))
}

package workflow

import "conveyease/internal/core/domain"

// VisibleBills returns the bills user may see, in input order.
// Supervisors see bills of their direct reports, resolved through users.
func VisibleBills(all []*domain.Bill, user *domain.User, users []*domain.User) []*domain.Bill {
	if user == nil {
		return nil
	}

	var team map[string]bool
	if user.Role == domain.RoleSupervisor {
		team = teamOf(user.ID, users)
	}

	out := make([]*domain.Bill, 0, len(all))
	for _, b := range all {
		if visible(b, user, team) {
			out = append(out, b)
		}
	}
	return out
}

// CanView reports whether user may see bill
func CanView(bill *domain.Bill, user *domain.User, users []*domain.User) bool {
	if bill == nil || user == nil {
		return false
	}
	var team map[string]bool
	if user.Role == domain.RoleSupervisor {
		team = teamOf(user.ID, users)
	}
	return visible(bill, user, team)
}

// AwaitingAction filters bills down to those actor can move forward now
func AwaitingAction(bills []*domain.Bill, actor Actor) []*domain.Bill {
	out := make([]*domain.Bill, 0)
	for _, b := range bills {
		if len(Permitted(b.Status, actor.Role, actor.ID == b.EmployeeID)) > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Team returns the direct reports of supervisorID, in input order
func Team(supervisorID string, users []*domain.User) []*domain.User {
	out := make([]*domain.User, 0)
	for _, u := range users {
		if u.ReportsTo(supervisorID) {
			out = append(out, u)
		}
	}
	return out
}

func teamOf(supervisorID string, users []*domain.User) map[string]bool {
	team := make(map[string]bool)
	for _, u := range Team(supervisorID, users) {
		team[u.ID] = true
	}
	return team
}

func visible(b *domain.Bill, user *domain.User, team map[string]bool) bool {
	switch user.Role {
	case domain.RoleEmployee:
		return b.EmployeeID == user.ID
	case domain.RoleSupervisor:
		return team[b.EmployeeID]
	case domain.RoleAccounts, domain.RoleManagement:
		return true
	}
	return false
}

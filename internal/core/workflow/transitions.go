// Package workflow holds the bill approval state machine: the transition
// table, the engine that applies it and the visibility rules built on top.
package workflow

import "conveyease/internal/core/domain"

// Option is a status the actor may move a bill to
type Option struct {
	Target          domain.BillStatus
	CommentRequired bool
}

// rule grants targets to a role, or to the owning employee when ownerOnly is set
type rule struct {
	role      domain.Role
	ownerOnly bool
	targets   []Option
}

func approveOrReject(approve, reject domain.BillStatus) []Option {
	return []Option{
		{Target: approve},
		{Target: reject, CommentRequired: true},
	}
}

var resubmit = rule{
	role:      domain.RoleEmployee,
	ownerOnly: true,
	targets:   []Option{{Target: domain.StatusSubmitted}},
}

var table = map[domain.BillStatus][]rule{
	domain.StatusDraft: {resubmit},
	domain.StatusSubmitted: {{
		role:    domain.RoleSupervisor,
		targets: approveOrReject(domain.StatusApprovedBySupervisor, domain.StatusRejectedBySupervisor),
	}},
	domain.StatusApprovedBySupervisor: {{
		role:    domain.RoleAccounts,
		targets: approveOrReject(domain.StatusApprovedByAccounts, domain.StatusRejectedByAccounts),
	}},
	domain.StatusApprovedByAccounts: {{
		role:    domain.RoleManagement,
		targets: approveOrReject(domain.StatusApprovedByManagement, domain.StatusRejectedByManagement),
	}},
	domain.StatusApprovedByManagement: {{
		role:    domain.RoleAccounts,
		targets: []Option{{Target: domain.StatusPaid}},
	}},
	domain.StatusRejectedBySupervisor: {resubmit},
	domain.StatusRejectedByAccounts:   {resubmit},
	domain.StatusRejectedByManagement: {resubmit},
}

// Permitted returns the statuses an actor with role may move a bill in
// current to. isOwner is whether the actor is the bill's employee.
// The result is nil when nothing is permitted.
func Permitted(current domain.BillStatus, role domain.Role, isOwner bool) []Option {
	var out []Option
	for _, r := range table[current] {
		if r.role != role || (r.ownerOnly && !isOwner) {
			continue
		}
		out = append(out, r.targets...)
	}
	return out
}

// Lookup finds target among the permitted options
func Lookup(current domain.BillStatus, role domain.Role, isOwner bool, target domain.BillStatus) (Option, bool) {
	for _, opt := range Permitted(current, role, isOwner) {
		if opt.Target == target {
			return opt, true
		}
	}
	return Option{}, false
}

// RequiresComment reports whether entering target needs a reason
func RequiresComment(target domain.BillStatus) bool {
	return domain.IsRejected(target)
}

// ApprovalFor is the status role moves a bill to when approving it.
// Employees approve nothing.
func ApprovalFor(role domain.Role) (domain.BillStatus, bool) {
	switch role {
	case domain.RoleSupervisor:
		return domain.StatusApprovedBySupervisor, true
	case domain.RoleAccounts:
		return domain.StatusApprovedByAccounts, true
	case domain.RoleManagement:
		return domain.StatusApprovedByManagement, true
	}
	return "", false
}

// RejectionFor is the status role moves a bill to when rejecting it
func RejectionFor(role domain.Role) (domain.BillStatus, bool) {
	switch role {
	case domain.RoleSupervisor:
		return domain.StatusRejectedBySupervisor, true
	case domain.RoleAccounts:
		return domain.StatusRejectedByAccounts, true
	case domain.RoleManagement:
		return domain.StatusRejectedByManagement, true
	}
	return "", false
}

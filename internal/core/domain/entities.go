package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleSupervisor Role = "supervisor"
	RoleAccounts   Role = "accounts"
	RoleManagement Role = "management"
)

// Roles lists every known role in pipeline order
var Roles = []Role{RoleEmployee, RoleSupervisor, RoleAccounts, RoleManagement}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleSupervisor, RoleAccounts, RoleManagement:
		return true
	}
	return false
}

// SystemActorID identifies automated transitions in bill history
const SystemActorID = "system"

// SystemActorName is shown in place of a user name for SystemActorID
const SystemActorName = "System"

// User represents a user in the domain layer
type User struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	SupervisorID *string // employees only
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReportsTo reports whether u is a direct report of supervisorID
func (u *User) ReportsTo(supervisorID string) bool {
	return u.SupervisorID != nil && *u.SupervisorID == supervisorID
}

// RefreshToken represents a refresh token in the domain
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(rt.ExpiresAt)
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

package domain

import (
	"strings"
	"time"
)

// Role enumerates the fixed roles used for access decisions.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
	RoleUser  Role = "user"
)

// ParseRole accepts any casing of a known role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleAdmin, RoleAgent, RoleUser:
		return role, true
	default:
		return "", false
	}
}

// CanWorkTickets reports whether the role may be assigned tickets.
func (r Role) CanWorkTickets() bool {
	return r == RoleAgent || r == RoleAdmin
}

// User is an account able to authenticate against the API.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Actor returns the identity pair used by the access policy.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

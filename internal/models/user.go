package models

import (
	"strings"
	"time"
)

// Role is derived per request from stored state and never persisted.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleContractor Role = "contractor"
	RoleCitizen    Role = "citizen"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsStaff      bool       `db:"is_staff" json:"is_staff"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	DateJoined   time.Time  `db:"date_joined" json:"date_joined"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Principal is the authenticated caller with its resolved role.
type Principal struct {
	User       User        `json:"user"`
	Role       Role        `json:"role"`
	Contractor *Contractor `json:"contractor,omitempty"`
}

// ResolveRole applies the precedence staff, contractor link, citizen.
func ResolveRole(u User, contractor *Contractor) Role {
	switch {
	case u.IsStaff:
		return RoleAdmin
	case contractor != nil:
		return RoleContractor
	default:
		return RoleCitizen
	}
}

// NewPrincipal builds a principal from the stored user and optional contractor row.
func NewPrincipal(u User, contractor *Contractor) *Principal {
	return &Principal{User: u, Role: ResolveRole(u, contractor), Contractor: contractor}
}

// IsAdmin reports whether the principal resolved to the admin role.
func (p *Principal) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// UserCounts summarises the user base for operators.
type UserCounts struct {
	Users       int `db:"users" json:"users"`
	Admins      int `db:"admins" json:"admins"`
	Contractors int `db:"contractors" json:"contractors"`
	Complaints  int `db:"complaints" json:"complaints"`
}


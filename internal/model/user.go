package model

import (
	"strings"
	"time"
)

// Role is the job assigned to a user account.
type Role string

const (
	RoleClient     Role = "client"
	RoleAdmin      Role = "admin"
	RoleRevenue    Role = "revenue"
	RoleFlight     Role = "flight"
	RoleBoard      Role = "board"
	RoleFired      Role = "fired"
	RoleUnassigned Role = "unassigned"
)

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleClient, RoleAdmin, RoleRevenue, RoleFlight, RoleBoard, RoleFired, RoleUnassigned:
		return r, true
	}
	return "", false
}

// IsStaff reports whether the role belongs to an active employee.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleRevenue, RoleFlight, RoleBoard:
		return true
	}
	return false
}

// User represents an account as stored in the `users` table. Clients and
// staff share the table and are told apart by Role.
//
// Fields:
//  ID           – primary key.
//  Login        – unique login, at most 12 characters.
//  PasswordHash – bcrypt hash.
//  Role         – client, staff job or fired/unassigned.
//  IsActive     – whether the account may sign in.
type User struct {
	ID           uint64    `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	FirstName    string    `json:"first_name,omitempty"`
	MiddleName   string    `json:"middle_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins the non-empty name parts.
func (u User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.LastName, u.FirstName, u.MiddleName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Client is the passenger profile attached to a user with the client role.
type Client struct {
	ID        uint64 `json:"id"`
	UserID    uint64 `json:"user_id"`
	Phone     string `json:"phone"`
	IsDeleted bool   `json:"is_deleted"`
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the token is stored.
//
// Fields:
//  ID        – primary key.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – revocation time, nil while active.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

package models

import (
	"time"
)

// User represents a dashboard account
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	IsApproved   bool      `json:"is_approved" db:"is_approved"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// UserRole represents user roles
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// SessionUser is the identity carried inside a session token
type SessionUser struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// Stats is the dashboard overview. Admins get the global counters, other
// users only their own note count.
type Stats struct {
	TotalUsers       *int64 `json:"total_users,omitempty"`
	TotalNotes       *int64 `json:"total_notes,omitempty"`
	PendingApprovals *int64 `json:"pending_approvals,omitempty"`
	YourNotes        *int64 `json:"your_notes,omitempty"`
}

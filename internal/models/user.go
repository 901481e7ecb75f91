package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleStaff UserRole = "staff"
)

// User represents a staff account stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Service      string     `db:"servicio" json:"servicio"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// StaffProfile is the authorization view of a user: the role attribute that
// decides the privileged/scoped query split, plus the service the account is
// pinned to when not elevated.
type StaffProfile struct {
	UserID  string   `db:"id"`
	Role    UserRole `db:"role"`
	Service string   `db:"servicio"`
}

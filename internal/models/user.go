package models

import (
	"time"
)

// Role is a user's access level.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	// Legacy roles kept for old rows; they carry no extra privileges.
	RoleCustomer Role = "customer"
	RoleWriter   Role = "writer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleCustomer, RoleWriter:
		return true
	}
	return false
}

// User represents a tracker account. The password hash never leaves the server.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null;index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// EmailFor derives the placeholder address used when none is supplied.
func EmailFor(username string) string {
	return username + "@example.com"
}

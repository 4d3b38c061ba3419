package model

import (
	"github.com/thidaswick/WorqHub/internal/access"
)

// User is an account bound to exactly one tenant.
// (tenant_id, email) is unique; the same email may exist in other tenants.
type User struct {
	TenantEntity
	Email        string      `json:"email" gorm:"type:varchar(255);not null"`
	PasswordHash string      `json:"-" gorm:"type:varchar(255);not null"`
	Name         string      `json:"name" gorm:"type:varchar(100);not null"`
	Role         access.Role `json:"role" gorm:"type:varchar(20);not null;default:'Staff'"`
	Active       bool        `json:"active" gorm:"not null"`
}

// Identity returns the identity a token for this user embeds
func (u *User) Identity() access.Identity {
	return access.Identity{UserID: u.ID, TenantID: u.TenantID, Role: u.Role}
}

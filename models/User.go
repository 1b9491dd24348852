package models

import "strings"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an account that can sign in and own compositions.
type User struct {
	Entity
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(16);not null;default:USER"`
}

// IsAdmin reports whether the user may manage the food catalog.
func (u User) IsAdmin() bool {
	return NormalizeRole(u.Role) == RoleAdmin
}

// NormalizeRole maps arbitrary input onto a known role, defaulting to RoleUser.
func NormalizeRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the payload of access tokens issued by the identity provider.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	FacultyID int64    `json:"faculty_id,omitempty"`
	Role      UserRole `json:"role"`
	FullName  string   `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the caller may manage the whole system.
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

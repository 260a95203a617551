package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role grants access to the administrative endpoints.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

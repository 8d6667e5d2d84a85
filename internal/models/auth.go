package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token types stored in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// LoginRequest holds credentials for authenticating a user. The dashboard posts it
// form-encoded; JSON is accepted too.
type LoginRequest struct {
	Username  string `json:"username" form:"username" validate:"required"`
	Password  string `json:"password" form:"password" validate:"required"`
	IP        string `json:"-" form:"-"`
	UserAgent string `json:"-" form:"-"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair.
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" form:"refresh" validate:"required"`
}

// TokenPair is the issued access/refresh couple.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// JWTClaims represents the JWT payload for both token types.
type JWTClaims struct {
	UserID    int64    `json:"user_id"`
	Username  string   `json:"username"`
	Groups    []string `json:"groups,omitempty"`
	IsStaff   bool     `json:"is_staff,omitempty"`
	TokenType string   `json:"token_type"`
	jwt.RegisteredClaims
}

// HasGroup reports whether the token holder belongs to the named group.
func (c *JWTClaims) HasGroup(name string) bool {
	if c == nil {
		return false
	}
	return containsGroup(c.Groups, name)
}

package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims is the subset of the storefront backend's JWT the client reads.
// The backend stores the user id in sub and marks token kind in type.
type AccessTokenClaims struct {
	Type  string `json:"type,omitempty"`
	Fresh bool   `json:"fresh,omitempty"`
	jwt.RegisteredClaims
}

// UserID is the backend identity carried in the subject claim.
func (c *AccessTokenClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

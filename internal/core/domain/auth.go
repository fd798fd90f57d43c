package domain

import "time"

// RoleAdmin is the only role the API issues tokens for
const RoleAdmin = "admin"

// AdminTokenTTL is how long an admin token stays valid
const AdminTokenTTL = time.Hour

// AdminClaims is the payload of an admin JWT
type AdminClaims struct {
	Subject   string    `json:"sub"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// IsAdmin checks the role carried by the token
func (c *AdminClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// IsExpired checks if the token has expired
func (c *AdminClaims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// TokenRequest exchanges the admin key for a token
type TokenRequest struct {
	Key string `json:"key"`
}

// TokenResponse is returned after a successful key exchange
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

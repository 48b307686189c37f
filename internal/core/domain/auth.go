package domain

import "time"

// Management-API authentication. The public query path is gated by API
// keys; the management surface (source CRUD, processing triggers, key
// issuance) uses short-lived admin session tokens instead.

// TokenClaims represents the management JWT payload
type TokenClaims struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// AdminLoginRequest represents a management login attempt
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginResponse is returned after successful authentication
type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

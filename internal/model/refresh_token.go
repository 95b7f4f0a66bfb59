package model

import (
	"time"
)

// RefreshToken represents a refresh token stored in the database
type RefreshToken struct {
	ID         string     `db:"id" json:"id" bson:"_id"`
	UserID     string     `db:"user_id" json:"user_id" bson:"userId"`
	TokenHash  string     `db:"token_hash" json:"-" bson:"tokenHash"` // Never expose hash
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at" bson:"expiresAt"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at" bson:"createdAt"`
	RevokedAt  *time.Time `db:"revoked_at" json:"revoked_at,omitempty" bson:"revokedAt,omitempty"`
	ReplacedBy *string    `db:"replaced_by" json:"replaced_by,omitempty" bson:"replacedBy,omitempty"`
	DeviceInfo *string    `db:"device_info" json:"device_info,omitempty" bson:"deviceInfo,omitempty"`
	IPAddress  *string    `db:"ip_address" json:"ip_address,omitempty" bson:"ipAddress,omitempty"`
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// ExpiredAt reports whether the token is past its expiry at now.
func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Refresh token errors
var (
	ErrRefreshTokenNotFound = newError(KindAuth, "refresh token not found")
	ErrRefreshTokenExpired  = newError(KindAuth, "refresh token expired")
	ErrRefreshTokenRevoked  = newError(KindAuth, "refresh token revoked")
	ErrRefreshTokenReused   = newError(KindAuth, "refresh token reuse detected")
)

// Token API error codes (used in HTTP responses)
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeTokenReused  = "TOKEN_REUSED"
)

// TokenPair represents both tokens returned after login/refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // Seconds until access token expires
}

// LoginResponse is returned after successful login or signup
type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// RefreshRequest is the request body for POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest is the request body for POST /auth/logout
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

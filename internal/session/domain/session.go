package domain

import "time"

// Session represents a logged-in user session backing a refresh token.
type Session struct {
	ID               string     `db:"id"`
	UserID           string     `db:"user_id"`
	ExpiresAt        time.Time  `db:"expires_at"`
	RevokedAt        *time.Time `db:"revoked_at"` // nil when not revoked
	LastSeenAt       *time.Time `db:"last_seen_at"`
	RefreshJti       string     `db:"refresh_jti"`        // current refresh token jti for rotation; empty if not set
	RefreshTokenHash string     `db:"refresh_token_hash"` // SHA-256 hash of current refresh token
	CreatedAt        time.Time  `db:"created_at"`
}

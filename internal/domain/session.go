package domain

import "time"

// Session is server-side authentication state. The client only holds a
// signed token carrying the session id; the users table remains
// authoritative for identity and verification state.
type Session struct {
	SessionID string    `json:"-"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

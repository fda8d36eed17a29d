package domain

import "time"

// OTP is a one-time verification code. At most one row exists per email;
// issuing a new code overwrites the previous one. Expired rows are not
// purged — they simply fail verification.
type OTP struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

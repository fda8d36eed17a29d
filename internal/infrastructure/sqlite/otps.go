package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-vault-api/internal/domain"
)

// OTPRepo provides typed SQLite operations for the otps table.
// The table holds at most one code per email; Upsert replaces any prior row.
type OTPRepo struct {
	db *sql.DB
}

func NewOTPRepo(db *sql.DB) *OTPRepo {
	return &OTPRepo{db: db}
}

func (r *OTPRepo) Upsert(ctx context.Context, o *domain.OTP) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO otps (email, otp, expiry_time) VALUES (?, ?, ?)`,
		o.Email, o.Code, toMillis(o.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

func (r *OTPRepo) Get(ctx context.Context, email string) (*domain.OTP, error) {
	var o domain.OTP
	var expiry int64
	err := r.db.QueryRowContext(ctx,
		`SELECT email, otp, expiry_time FROM otps WHERE email = ?`, email,
	).Scan(&o.Email, &o.Code, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan otp: %w", err)
	}
	o.ExpiresAt = fromMillis(expiry)
	return &o, nil
}

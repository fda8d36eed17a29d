package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-vault-api/internal/domain"
)

// SessionRepo provides typed SQLite operations for the sessions table.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Put(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (session_id, user_id, username, email, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.UserID, s.Username, s.Email, toMillis(s.CreatedAt), toMillis(s.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	var s domain.Session
	var createdAt, expiresAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, username, email, created_at, expires_at FROM sessions WHERE session_id = ?`,
		sessionID,
	).Scan(&s.SessionID, &s.UserID, &s.Username, &s.Email, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.CreatedAt = fromMillis(createdAt)
	s.ExpiresAt = fromMillis(expiresAt)
	return &s, nil
}

// Delete removes a session row. Deleting a missing session is not an error.
func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteByUser clears every session for a user, used when the user row has
// vanished out from under an active session.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

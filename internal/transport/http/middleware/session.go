package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-vault-api/internal/domain"
	"github.com/go-vault-api/internal/infrastructure/token"
)

type contextKey string

const SessionKey contextKey = "session"

// CookieName is the session cookie set on login/verification.
const CookieName = "vault_session"

// TokenVerifier checks the signed token carried by the cookie.
type TokenVerifier interface {
	Verify(tokenStr string) (*token.Claims, error)
}

// SessionStore loads and clears server-side session rows.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// Session returns middleware that resolves the session cookie into a
// *domain.Session in the request context, rejecting with 401 otherwise.
func Session(verifier TokenVerifier, sessions SessionStore) func(http.Handler) http.Handler {
	return sessionMiddleware(verifier, sessions, true)
}

// OptionalSession resolves the session when a valid cookie is present but
// never rejects. Used by logout, which must succeed without a session.
func OptionalSession(verifier TokenVerifier, sessions SessionStore) func(http.Handler) http.Handler {
	return sessionMiddleware(verifier, sessions, false)
}

func sessionMiddleware(verifier TokenVerifier, sessions SessionStore, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := resolveSession(r, verifier, sessions)
			if sess == nil {
				if required {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveSession(r *http.Request, verifier TokenVerifier, sessions SessionStore) *domain.Session {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	claims, err := verifier.Verify(c.Value)
	if err != nil {
		return nil
	}
	sess, err := sessions.Get(r.Context(), claims.SessionID)
	if err != nil {
		return nil
	}
	if time.Now().After(sess.ExpiresAt) {
		if derr := sessions.Delete(r.Context(), sess.SessionID); derr != nil {
			slog.Warn("failed to clear expired session", "session_id", sess.SessionID, "err", derr)
		}
		return nil
	}
	return sess
}

// SessionFromContext extracts the resolved session from the request context.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(SessionKey).(*domain.Session)
	return s, ok
}

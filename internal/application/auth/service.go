package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/go-vault-api/internal/domain"
	"github.com/go-vault-api/internal/infrastructure/smtp"
	"github.com/go-vault-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// otpValidity is the window during which a one-time code is accepted.
const otpValidity = 300 * time.Second

// UserStore is the credential store the auth service depends on.
type UserStore interface {
	Insert(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID int64) (*domain.User, error)
	MarkVerified(ctx context.Context, email string) error
	DeleteByEmail(ctx context.Context, email string) error
}

// OTPStore holds at most one active code per email.
type OTPStore interface {
	Upsert(ctx context.Context, o *domain.OTP) error
	Get(ctx context.Context, email string) (*domain.OTP, error)
}

// SessionStore persists server-side session state.
type SessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// FileStatsStore aggregates per-user file usage for the profile endpoint.
type FileStatsStore interface {
	StatsByUser(ctx context.Context, userID int64) (domain.StorageStats, error)
}

// TokenSigner signs the session id carried by the client's cookie.
type TokenSigner interface {
	Sign(sessionID string, userID int64) (string, error)
}

type RegisterResult struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// LoginResult is a freshly established session: the public profile for the
// response body and the signed token for the cookie.
type LoginResult struct {
	User  domain.PublicProfile
	Token string
}

type ProfileResult struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	TotalFiles  int64  `json:"total_files"`
	UsedStorage int64  `json:"used_storage"`
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error)
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*LoginResult, error)
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Profile(ctx context.Context, sess *domain.Session) (*ProfileResult, error)
}

// ServiceDeps bundles the auth service dependencies.
type ServiceDeps struct {
	UserRepo    UserStore
	OTPRepo     OTPStore
	SessionRepo SessionStore
	FileRepo    FileStatsStore
	Mailer      smtp.Mailer
	Signer      TokenSigner
	SessionTTL  time.Duration
}

type service struct {
	users      UserStore
	otps       OTPStore
	sessions   SessionStore
	files      FileStatsStore
	mailer     smtp.Mailer
	signer     TokenSigner
	sessionTTL time.Duration
}

func NewService(d ServiceDeps) Service {
	return &service{
		users:      d.UserRepo,
		otps:       d.OTPRepo,
		sessions:   d.SessionRepo,
		files:      d.FileRepo,
		mailer:     d.Mailer,
		signer:     d.Signer,
		sessionTTL: d.SessionTTL,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if existing != nil && existing.Verified {
		return nil, fmt.Errorf("email already registered and verified: %w", domain.ErrConflict)
	}

	// Unverified user re-registering: only refresh the OTP, never insert a
	// second row for the same email.
	if existing != nil {
		if err := s.issueOTP(ctx, req.Email); err != nil {
			return nil, err
		}
		return &RegisterResult{Message: "OTP resent. Please verify OTP.", Email: req.Email}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Username: req.Username, Email: req.Email, PasswordHash: string(hash)}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, req.Email); err != nil {
		// A failed send must not leave a dangling unverified row; delete it
		// so the email stays available for a retry.
		if derr := s.users.DeleteByEmail(ctx, req.Email); derr != nil {
			slog.Warn("failed to roll back user after otp send failure", "email", req.Email, "err", derr)
		}
		return nil, err
	}
	return &RegisterResult{Message: "Registration successful. Please verify OTP.", Email: req.Email}, nil
}

// issueOTP generates, persists, and emails a fresh code. Persisting
// overwrites any prior code for the email.
func (s *service) issueOTP(ctx context.Context, email string) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	o := &domain.OTP{Email: email, Code: code, ExpiresAt: time.Now().Add(otpValidity)}
	if err := s.otps.Upsert(ctx, o); err != nil {
		return err
	}
	subject, body := smtp.OTPEmail(code)
	if err := s.mailer.SendEmail(email, subject, body); err != nil {
		slog.Warn("otp email send failed", "email", email, "err", err)
		return fmt.Errorf("failed to send verification email: %w", domain.ErrDependency)
	}
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*LoginResult, error) {
	o, err := s.otps.Get(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no OTP found for this email: %w", domain.ErrBadRequest)
		}
		return nil, err
	}
	if o.Expired(time.Now()) {
		return nil, fmt.Errorf("OTP has expired: %w", domain.ErrBadRequest)
	}
	if o.Code != req.OTP {
		return nil, fmt.Errorf("invalid OTP: %w", domain.ErrBadRequest)
	}

	if err := s.users.MarkVerified(ctx, req.Email); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("user not found after verification: %w", domain.ErrNotFound)
	}
	return s.establishSession(ctx, u)
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Identical error for unknown email and wrong password so the
		// response never reveals which emails are registered.
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !u.Verified {
		return nil, fmt.Errorf("account not verified: %w", domain.ErrNotVerified)
	}
	return s.establishSession(ctx, u)
}

// Logout is idempotent: clearing a missing or already-cleared session succeeds.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

func (s *service) Profile(ctx context.Context, sess *domain.Session) (*ProfileResult, error) {
	u, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The session points at a vanished user; clear it.
			if derr := s.sessions.Delete(ctx, sess.SessionID); derr != nil {
				slog.Warn("failed to clear session for vanished user", "session_id", sess.SessionID, "err", derr)
			}
		}
		return nil, err
	}
	stats, err := s.files.StatsByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{
		Username:    u.Username,
		Email:       u.Email,
		TotalFiles:  stats.TotalFiles,
		UsedStorage: stats.UsedStorage,
	}, nil
}

func (s *service) establishSession(ctx context.Context, u *domain.User) (*LoginResult, error) {
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID: id.New(),
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	tok, err := s.signer.Sign(sess.SessionID, u.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u.Public(), Token: tok}, nil
}

// generateOTP returns a 6-digit code drawn uniformly from [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

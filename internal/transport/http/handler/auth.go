package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-vault-api/internal/application/auth"
	"github.com/go-vault-api/internal/domain"
	"github.com/go-vault-api/internal/pkg/validate"
	"github.com/go-vault-api/internal/transport/http/middleware"
)

// AuthHandler handles registration, verification, login, logout, and profile.
type AuthHandler struct {
	svc        auth.Service
	sessionTTL time.Duration
}

func NewAuthHandler(svc auth.Service, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, sessionTTL: sessionTTL}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	setSessionCookie(w, result.Token, h.sessionTTL)
	writeJSON(w, http.StatusOK, UserEnvelope{
		Message: "Account verified and logged in successfully",
		User:    result.User,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.svc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrNotVerified) {
			writeJSON(w, http.StatusForbidden, NotVerifiedEnvelope{
				Error:             err.Error(),
				Email:             req.Email,
				NeedsVerification: true,
			})
			return
		}
		writeDomainError(w, err)
		return
	}
	setSessionCookie(w, result.Token, h.sessionTTL)
	writeJSON(w, http.StatusOK, UserEnvelope{Message: "Login successful", User: result.User})
}

// Logout clears whatever session the cookie references. It succeeds even
// with no active session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		if err := h.svc.Logout(r.Context(), sess.SessionID); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Logged out"})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	result, err := h.svc.Profile(r.Context(), sess)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			clearSessionCookie(w)
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

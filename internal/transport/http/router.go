package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-vault-api/internal/application/auth"
	fileapp "github.com/go-vault-api/internal/application/file"
	"github.com/go-vault-api/internal/config"
	"github.com/go-vault-api/internal/transport/http/handler"
	appmiddleware "github.com/go-vault-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	sessionTTL := time.Duration(cfg.SessionTTLDays) * 24 * time.Hour

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		OTPRepo:     deps.OTPRepo,
		SessionRepo: deps.SessionRepo,
		FileRepo:    deps.FileRepo,
		Mailer:      deps.Mailer,
		Signer:      deps.TokenProvider,
		SessionTTL:  sessionTTL,
	})
	fileSvc := fileapp.NewService(deps.FileRepo, deps.BlobStore)

	authH := handler.NewAuthHandler(authSvc, sessionTTL)
	fileH := handler.NewFileHandler(fileSvc)
	healthH := handler.NewHealthHandler()

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	sessionMw := appmiddleware.Session(deps.TokenProvider, deps.SessionRepo)
	optionalSessionMw := appmiddleware.OptionalSession(deps.TokenProvider, deps.SessionRepo)

	r.Get("/", healthH.Root)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no session) ───────────────────────────────────────
		r.With(sensitiveRL.Limit).Post("/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/login", authH.Login)
		r.With(optionalSessionMw).Post("/logout", authH.Logout)

		// ── Session-authenticated routes ─────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(sessionMw)

			r.Get("/profile", authH.Profile)
			r.Post("/upload", fileH.Upload)
			r.Get("/files", fileH.List)
			r.Get("/download/{id}", fileH.Download)
			r.Delete("/delete/{id}", fileH.Delete)
		})
	})

	return r
}

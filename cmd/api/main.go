package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-vault-api/internal/config"
	"github.com/go-vault-api/internal/infrastructure/blob"
	"github.com/go-vault-api/internal/infrastructure/smtp"
	"github.com/go-vault-api/internal/infrastructure/sqlite"
	"github.com/go-vault-api/internal/infrastructure/token"
	transporthttp "github.com/go-vault-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := sqlite.Bootstrap(context.Background(), db); err != nil {
		log.Fatalf("bootstrap database: %v", err)
	}

	blobStore, err := blob.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("init blob store: %v", err)
	}

	sessionTTL := time.Duration(cfg.SessionTTLDays) * 24 * time.Hour

	deps := &transporthttp.Deps{
		UserRepo:      sqlite.NewUserRepo(db),
		OTPRepo:       sqlite.NewOTPRepo(db),
		SessionRepo:   sqlite.NewSessionRepo(db),
		FileRepo:      sqlite.NewFileRepo(db),
		BlobStore:     blobStore,
		Mailer:        smtp.NewMailer(cfg),
		TokenProvider: token.NewProvider(cfg.SessionSecret, sessionTTL),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

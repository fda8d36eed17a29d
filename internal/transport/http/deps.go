package http

import (
	"github.com/go-vault-api/internal/infrastructure/blob"
	"github.com/go-vault-api/internal/infrastructure/smtp"
	"github.com/go-vault-api/internal/infrastructure/sqlite"
	"github.com/go-vault-api/internal/infrastructure/token"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo      *sqlite.UserRepo
	OTPRepo       *sqlite.OTPRepo
	SessionRepo   *sqlite.SessionRepo
	FileRepo      *sqlite.FileRepo
	BlobStore     *blob.Store
	Mailer        smtp.Mailer
	TokenProvider *token.Provider
}

package smtp

import (
	"fmt"
	"net/smtp"

	"github.com/go-vault-api/internal/config"
)

// Mailer sends emails. It is the only external notification collaborator;
// callers treat any failure as a dependency error.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(to, subject, body string) error {
	if m.username == "" || m.password == "" {
		return fmt.Errorf("smtp not configured")
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

// OTPEmail renders the subject and body of a verification-code email.
func OTPEmail(code string) (subject, body string) {
	subject = "SecureVault Verification Code"
	body = fmt.Sprintf(`Your SecureVault verification code is:

%s

This code expires in 5 minutes.

If you did not request this, please ignore this email.
`, code)
	return subject, body
}

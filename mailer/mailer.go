// Package mailer delivers the transactional email behind account
// lifecycle events over SMTP, rendering django templates for each
// message.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-errors"
	"gopkg.in/gomail.v2"

	auth "github.com/mukbit/acs-auth"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer implements auth.Notifier over a gomail SMTP dialer.
type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
	engine *django.Engine
	logger auth.Logger
}

var _ auth.Notifier = (*Mailer)(nil)

// New creates a Mailer and loads the email templates.
func New(cfg Config, logger auth.Logger) (*Mailer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open email templates")
	}

	engine := django.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load email templates")
	}

	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		engine: engine,
		logger: logger,
	}, nil
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, recipient, name, code string) error {
	return m.send(ctx, recipient, "Verify your Email", "verification_email", map[string]any{
		"name": name,
		"code": code,
	})
}

func (m *Mailer) SendWelcomeEmail(ctx context.Context, recipient, name string) error {
	return m.send(ctx, recipient, "Welcome to ACS Auth", "welcome_email", map[string]any{
		"name": name,
	})
}

func (m *Mailer) SendPasswordResetEmail(ctx context.Context, recipient, resetURL string) error {
	return m.send(ctx, recipient, "Reset your Password", "password_reset_request", map[string]any{
		"reset_url": resetURL,
	})
}

func (m *Mailer) SendResetSuccessEmail(ctx context.Context, recipient string) error {
	return m.send(ctx, recipient, "Password Reset Successful", "password_reset_success", nil)
}

func (m *Mailer) SendChangePasswordEmail(ctx context.Context, recipient string) error {
	return m.send(ctx, recipient, "Password Change Successful", "change_password_success", nil)
}

func (m *Mailer) send(ctx context.Context, recipient, subject, template string, vars map[string]any) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "context cancelled before email send")
	}

	var body bytes.Buffer
	if err := m.engine.Render(&body, template, vars); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to render email template").
			WithMetadata(map[string]any{"template": template})
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to send email").
			WithMetadata(map[string]any{"template": template})
	}

	m.logger.Debug("email sent", "template", template, "to", recipient)
	return nil
}

package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes that are part of an auth session
type Session interface {
	GetAccountID() string
	GetEmail() string
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, *Account, error)
	SessionFromToken(token string) (Session, error)
	AccountFromSession(ctx context.Context, session Session) (*Account, error)
}

// Accounts is the account record store: one document per user with
// identity, credential, and verification/reset state.
type Accounts interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByVerificationCode(ctx context.Context, code string) (*Account, error)
	GetByResetToken(ctx context.Context, token string) (*Account, error)
	Update(ctx context.Context, account *Account) (*Account, error)
	TrackSuccessfulLogin(ctx context.Context, account *Account) error
	EnsureIndexes(ctx context.Context) error
}

// Notifier sends templated transactional email for lifecycle events. It
// fulfils-or-fails; callers treat a failure as best-effort and never roll
// back a store write because of it.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, recipient, name, code string) error
	SendWelcomeEmail(ctx context.Context, recipient, name string) error
	SendPasswordResetEmail(ctx context.Context, recipient, resetURL string) error
	SendResetSuccessEmail(ctx context.Context, recipient string) error
	SendChangePasswordEmail(ctx context.Context, recipient string) error
}

// ChallengeVerifier checks the anti-automation challenge response that
// accompanies a signup.
type ChallengeVerifier interface {
	Verify(ctx context.Context, token string) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetCookieName() string
	GetBcryptCost() int
	GetClientURL() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

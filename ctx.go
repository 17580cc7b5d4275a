package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var accountCtxKey = &contextKey{"account"}
var sessionCtxKey = &contextKey{"session"}

type contextKey struct {
	name string
}

// Locals keys used by the auth middleware.
const (
	LocalsAccountKey = "auth_account"
	LocalsSessionKey = "auth_session"
)

// WithContext sets the Account in the given context
func WithContext(r context.Context, account *Account) context.Context {
	return context.WithValue(r, accountCtxKey, account)
}

// FromContext finds the account from the context.
func FromContext(ctx context.Context) (*Account, bool) {
	raw, ok := ctx.Value(accountCtxKey).(*Account)
	return raw, ok
}

// WithSessionContext sets the Session in the given context
func WithSessionContext(r context.Context, session Session) context.Context {
	return context.WithValue(r, sessionCtxKey, session)
}

// SessionFromContext extracts the Session from the standard context
func SessionFromContext(ctx context.Context) (Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(Session)
	return raw, ok
}

// AccountFromFiber extracts the authenticated account stashed by the
// RequireAuth middleware.
func AccountFromFiber(c *fiber.Ctx) (*Account, bool) {
	raw, ok := c.Locals(LocalsAccountKey).(*Account)
	return raw, ok
}

// SessionFromFiber extracts the session stashed by the RequireAuth
// middleware.
func SessionFromFiber(c *fiber.Ctx) (Session, bool) {
	raw, ok := c.Locals(LocalsSessionKey).(Session)
	return raw, ok
}

package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RouteAuthenticator bridges the Auther onto HTTP: it issues and clears
// the session cookie and guards protected routes.
type RouteAuthenticator struct {
	auth           Authenticator
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	return &RouteAuthenticator{
		cfg:            cfg,
		auth:           auther,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// Login verifies credentials and, on success, attaches the session cookie.
func (a *RouteAuthenticator) Login(c *fiber.Ctx, identifier, password string) (*Account, error) {
	token, account, err := a.auth.Login(c.Context(), identifier, password)
	if err != nil {
		a.Logger.Debug("Login error: %s", err)
		return nil, err
	}

	a.setCookieToken(c, token, a.cookieDuration)
	return account, nil
}

// IssueSession mints a session for an account that authenticated through
// a non-password path (verification code redemption) and sets the cookie.
func (a *RouteAuthenticator) IssueSession(c *fiber.Ctx, account *Account, ts TokenService) error {
	token, err := ts.Generate(account)
	if err != nil {
		return err
	}

	a.setCookieToken(c, token, a.cookieDuration)
	return nil
}

func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	a.cookieDel(c, a.cfg.GetCookieName())
}

// RequireAuth validates the session cookie and loads the account behind
// it. Missing, malformed, expired, and superseded tokens all produce the
// same Unauthenticated failure.
func (a *RouteAuthenticator) RequireAuth(onError func(*fiber.Ctx, error) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(a.cfg.GetCookieName())
		if raw == "" {
			return onError(c, ErrUnauthenticated)
		}

		session, err := a.auth.SessionFromToken(raw)
		if err != nil {
			return onError(c, ErrUnauthenticated)
		}

		account, err := a.auth.AccountFromSession(c.Context(), session)
		if err != nil {
			return onError(c, ErrUnauthenticated)
		}

		c.Locals(LocalsSessionKey, session)
		c.Locals(LocalsAccountKey, account)

		return c.Next()
	}
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetCookieName(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

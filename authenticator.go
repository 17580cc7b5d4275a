package auth

import (
	"context"
	"time"
)

// Auther authenticates credentials against the Accounts store and mints
// session tokens.
type Auther struct {
	accounts     Accounts
	tokenService TokenService
	bcryptCost   int
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(accounts Accounts, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		defLogger{},
	)

	return &Auther{
		accounts:     accounts,
		tokenService: tokenService,
		bcryptCost:   cfg.GetBcryptCost(),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService overrides the token service, used in tests.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the email/password pair and returns a signed session
// token plus the account. Unknown email and bad password both come back
// as ErrInvalidCredentials; a hash comparison runs either way so the two
// cases stay indistinguishable in timing too. Accounts may log in before
// verifying their email.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, *Account, error) {
	account, err := s.accounts.GetByEmail(ctx, identifier)
	if err != nil {
		// burn a compare so a missing account costs the same as a mismatch
		ComparePasswordAndHash(password, burnHash)
		s.logger.Debug("Login account lookup failed", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
		})
		return "", nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromAccount(account), account.ID.Hex(), map[string]any{
			"identifier": identifier,
		})
		return "", nil, ErrInvalidCredentials
	}

	if err := s.accounts.TrackSuccessfulLogin(ctx, account); err != nil {
		s.logger.Warn("Login failed to track login timestamp", "error", err)
	}

	token, err := s.tokenService.Generate(account)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromAccount(account), account.ID.Hex(), map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromAccount(account), account.ID.Hex(), map[string]any{
		"identifier": identifier,
	})

	return token, account, nil
}

// SessionFromToken validates a raw token and returns the session it carries.
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		return nil, err
	}

	return sessionFromAuthClaims(claims)
}

// AccountFromSession resolves the session back to its account. Tokens
// issued before the account's last password change are rejected: that is
// how change-password invalidates outstanding sessions.
func (s *Auther) AccountFromSession(ctx context.Context, session Session) (*Account, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}

	account, err := s.accounts.GetByID(ctx, session.GetAccountID())
	if err != nil {
		s.logger.Debug("AccountFromSession lookup failed", "error", err)
		return nil, ErrUnauthenticated
	}

	if sessionSuperseded(session, account.PasswordChangedAt) {
		return nil, ErrUnauthenticated
	}

	return account, nil
}

func sessionSuperseded(session Session, passwordChangedAt *time.Time) bool {
	if passwordChangedAt == nil {
		return false
	}
	issuedAt := session.GetIssuedAt()
	if issuedAt == nil {
		return true
	}
	// iat carries second precision, so a token minted in the same second
	// as the change counts as issued before it and gets rejected
	return issuedAt.Before(*passwordChangedAt)
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, accountID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actor,
		AccountID:  accountID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func (s *Auther) actorFromAccount(account *Account) ActorRef {
	if account == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   account.ID.Hex(),
		Type: "user",
	}
}

// burnHash is a throwaway bcrypt digest compared against when the account
// lookup misses, keeping login latency flat.
var burnHash = func() string {
	h, err := HashPassword("acs-auth-burn-comparison")
	if err != nil {
		return ""
	}
	return h
}()

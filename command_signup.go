package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

type SignupMessage struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Phone          string `json:"phone,omitempty"`
	Password       string `json:"password"`
	ChallengeToken string `json:"recaptchaToken"`
	OnResponse     func(resp *SignupResponse)
}

func (m SignupMessage) Type() string { return "auth.signup" }

type SignupResponse struct {
	Account *Account
}

// SignupHandler creates an unverified account, attaches a verification
// code, and sends the verification email.
type SignupHandler struct {
	accounts   Accounts
	notifier   Notifier
	challenge  ChallengeVerifier
	activity   ActivitySink
	logger     Logger
	bcryptCost int
	now        func() time.Time
}

// NewSignupHandler creates a handler with sane defaults.
func NewSignupHandler(accounts Accounts, notifier Notifier) *SignupHandler {
	return &SignupHandler{
		accounts:   accounts,
		notifier:   normalizeNotifier(notifier),
		challenge:  NoopChallenge{},
		activity:   noopActivitySink{},
		logger:     defLogger{},
		bcryptCost: DefaultBcryptCost,
		now:        time.Now,
	}
}

// WithChallengeVerifier sets the anti-automation gate run before any
// account state is touched.
func (h *SignupHandler) WithChallengeVerifier(v ChallengeVerifier) *SignupHandler {
	h.challenge = normalizeChallenge(v)
	return h
}

// WithActivitySink sets the sink used to emit signup events.
func (h *SignupHandler) WithActivitySink(sink ActivitySink) *SignupHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *SignupHandler) WithLogger(logger Logger) *SignupHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithBcryptCost overrides the hashing cost factor.
func (h *SignupHandler) WithBcryptCost(cost int) *SignupHandler {
	h.bcryptCost = cost
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *SignupHandler) WithClock(clock func() time.Time) *SignupHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *SignupHandler) Execute(ctx context.Context, event SignupMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupHandler) execute(ctx context.Context, event SignupMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := h.challenge.Verify(ctx, event.ChallengeToken); err != nil {
		return err
	}

	if err := CheckPasswordStrength(event.Password); err != nil {
		return err
	}

	phone, err := normalizePhone(event.Phone)
	if err != nil {
		return err
	}

	hash, err := HashPasswordWithCost(event.Password, h.bcryptCost)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	code, err := NewVerificationCode()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification code")
	}

	expiresAt := h.now().Add(VerificationCodeTTL)

	account := &Account{
		Email:                     NormalizeEmail(event.Email),
		Name:                      event.Name,
		Phone:                     phone,
		PasswordHash:              hash,
		Verified:                  false,
		VerificationCode:          code,
		VerificationCodeExpiresAt: &expiresAt,
	}

	if account, err = h.accounts.Create(ctx, account); err != nil {
		return err
	}

	// best-effort: the account exists regardless of whether the email lands
	if err := h.notifier.SendVerificationEmail(ctx, account.Email, account.Name, code); err != nil {
		h.logger.Warn("signup verification email failed", "email", account.Email, "error", err)
	}

	h.recordActivity(ctx, account)

	if event.OnResponse != nil {
		event.OnResponse(&SignupResponse{Account: account})
	}

	return nil
}

func (h *SignupHandler) recordActivity(ctx context.Context, account *Account) {
	event := ActivityEvent{
		EventType: ActivityEventSignup,
		Actor: ActorRef{
			ID:   account.ID.Hex(),
			Type: "user",
		},
		AccountID:  account.ID.Hex(),
		Metadata:   map[string]any{"email": account.Email},
		OccurredAt: h.now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during signup: %v", err)
	}
}

// normalizePhone returns the E.164 form of an optional phone number.
func normalizePhone(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(raw, "US")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", goerrors.New("invalid phone number", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

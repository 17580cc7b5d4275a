package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type VerifyEmailMessage struct {
	Code       string `json:"code"`
	OnResponse func(resp *VerifyEmailResponse)
}

func (m VerifyEmailMessage) Type() string { return "auth.verify_email" }

type VerifyEmailResponse struct {
	Account *Account
}

// VerifyEmailHandler redeems a verification code: the account becomes
// verified, the code is cleared exactly once, and the welcome email goes
// out.
type VerifyEmailHandler struct {
	accounts Accounts
	notifier Notifier
	activity ActivitySink
	logger   Logger
	now      func() time.Time
}

// NewVerifyEmailHandler creates a handler with sane defaults.
func NewVerifyEmailHandler(accounts Accounts, notifier Notifier) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		accounts: accounts,
		notifier: normalizeNotifier(notifier),
		activity: noopActivitySink{},
		logger:   defLogger{},
		now:      time.Now,
	}
}

// WithActivitySink sets the sink used to emit verification events.
func (h *VerifyEmailHandler) WithActivitySink(sink ActivitySink) *VerifyEmailHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *VerifyEmailHandler) WithLogger(logger Logger) *VerifyEmailHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *VerifyEmailHandler) WithClock(clock func() time.Time) *VerifyEmailHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.accounts.GetByVerificationCode(ctx, event.Code)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			return ErrInvalidOrExpiredCode
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up verification code")
	}

	// expired behaves exactly like unknown: one uniform error, one path
	if !CodesMatch(event.Code, account.VerificationCode) ||
		Expired(account.VerificationCodeExpiresAt, h.now()) {
		return ErrInvalidOrExpiredCode
	}

	account.Verified = true
	account.ClearVerification()

	if account, err = h.accounts.Update(ctx, account); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist verified account")
	}

	if err := h.notifier.SendWelcomeEmail(ctx, account.Email, account.Name); err != nil {
		h.logger.Warn("welcome email failed", "email", account.Email, "error", err)
	}

	h.recordActivity(ctx, account)

	if event.OnResponse != nil {
		event.OnResponse(&VerifyEmailResponse{Account: account})
	}

	return nil
}

func (h *VerifyEmailHandler) recordActivity(ctx context.Context, account *Account) {
	event := ActivityEvent{
		EventType: ActivityEventEmailVerified,
		Actor: ActorRef{
			ID:   account.ID.Hex(),
			Type: "user",
		},
		AccountID:  account.ID.Hex(),
		OccurredAt: h.now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during email verification: %v", err)
	}
}

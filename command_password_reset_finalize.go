package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type FinalizePasswordResetMessage struct {
	Token      string `json:"token"`
	Password   string `json:"password"`
	OnResponse func(resp *FinalizePasswordResetResponse)
}

func (m FinalizePasswordResetMessage) Type() string { return "auth.password_reset.finalize" }

type FinalizePasswordResetResponse struct {
	Account *Account
}

// FinalizePasswordResetHandler consumes a reset token: the digest is
// replaced, the token cleared in the same write so it can never be
// redeemed twice, and outstanding sessions are superseded.
type FinalizePasswordResetHandler struct {
	accounts   Accounts
	notifier   Notifier
	activity   ActivitySink
	logger     Logger
	bcryptCost int
	now        func() time.Time
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(accounts Accounts, notifier Notifier) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		accounts:   accounts,
		notifier:   normalizeNotifier(notifier),
		activity:   noopActivitySink{},
		logger:     defLogger{},
		bcryptCost: DefaultBcryptCost,
		now:        time.Now,
	}
}

// WithActivitySink sets the sink used to emit password reset events.
func (h *FinalizePasswordResetHandler) WithActivitySink(sink ActivitySink) *FinalizePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithBcryptCost overrides the hashing cost factor.
func (h *FinalizePasswordResetHandler) WithBcryptCost(cost int) *FinalizePasswordResetHandler {
	h.bcryptCost = cost
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *FinalizePasswordResetHandler) WithClock(clock func() time.Time) *FinalizePasswordResetHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.accounts.GetByResetToken(ctx, event.Token)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	// a consumed token was cleared on use, so it already fails the lookup;
	// expired tokens collapse into the same uniform error here
	if Expired(account.ResetTokenExpiresAt, h.now()) {
		return ErrInvalidOrExpiredToken
	}

	if err := CheckPasswordStrength(event.Password); err != nil {
		return err
	}

	hash, err := HashPasswordWithCost(event.Password, h.bcryptCost)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	account.StampPasswordChange(hash, h.now())
	account.ClearReset()

	if account, err = h.accounts.Update(ctx, account); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist reset password")
	}

	if err := h.notifier.SendResetSuccessEmail(ctx, account.Email); err != nil {
		h.logger.Warn("reset confirmation email failed", "email", account.Email, "error", err)
	}

	h.recordActivity(ctx, account)

	if event.OnResponse != nil {
		event.OnResponse(&FinalizePasswordResetResponse{Account: account})
	}

	return nil
}

func (h *FinalizePasswordResetHandler) recordActivity(ctx context.Context, account *Account) {
	event := ActivityEvent{
		EventType: ActivityEventPasswordResetSuccess,
		Actor: ActorRef{
			ID:   account.ID.Hex(),
			Type: "user",
		},
		AccountID:  account.ID.Hex(),
		OccurredAt: h.now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during password reset: %v", err)
	}
}

package auth

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (m InitializePasswordResetMessage) Type() string { return "auth.password_reset.initialize" }

type InitializePasswordResetResponse struct {
	// Success is true whether or not the email exists; the response shape
	// must not reveal account existence.
	Success bool
}

// InitializePasswordResetHandler mints a single-use reset token and mails
// the reset link. The outcome observable to the caller is identical for
// known and unknown emails; do not add a branch that changes it.
type InitializePasswordResetHandler struct {
	accounts  Accounts
	notifier  Notifier
	activity  ActivitySink
	logger    Logger
	clientURL string
	now       func() time.Time
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(accounts Accounts, notifier Notifier, clientURL string) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		accounts:  accounts,
		notifier:  normalizeNotifier(notifier),
		activity:  noopActivitySink{},
		logger:    defLogger{},
		clientURL: clientURL,
		now:       time.Now,
	}
}

// WithActivitySink sets the sink used to emit reset request events.
func (h *InitializePasswordResetHandler) WithActivitySink(sink ActivitySink) *InitializePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *InitializePasswordResetHandler) WithClock(clock func() time.Time) *InitializePasswordResetHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	respond := func() {
		if event.OnResponse != nil {
			event.OnResponse(&InitializePasswordResetResponse{Success: true})
		}
	}

	account, err := h.accounts.GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			respond()
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
	}

	token, err := NewResetToken()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	expiresAt := h.now().Add(ResetTokenTTL)
	account.ResetToken = token
	account.ResetTokenExpiresAt = &expiresAt

	if account, err = h.accounts.Update(ctx, account); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to attach reset token")
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", h.clientURL, token)
	if err := h.notifier.SendPasswordResetEmail(ctx, account.Email, resetURL); err != nil {
		h.logger.Warn("password reset email failed", "email", account.Email, "error", err)
	}

	h.recordActivity(ctx, account)

	respond()
	return nil
}

func (h *InitializePasswordResetHandler) recordActivity(ctx context.Context, account *Account) {
	event := ActivityEvent{
		EventType: ActivityEventPasswordResetRequest,
		Actor: ActorRef{
			ID:   account.ID.Hex(),
			Type: "user",
		},
		AccountID:  account.ID.Hex(),
		OccurredAt: h.now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during password reset request: %v", err)
	}
}

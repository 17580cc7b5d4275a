package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ChangePasswordMessage struct {
	AccountID       string `json:"-"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	OnResponse      func(resp *ChangePasswordResponse)
}

func (m ChangePasswordMessage) Type() string { return "auth.password_change" }

type ChangePasswordResponse struct {
	Account *Account
}

// ChangePasswordHandler replaces the credential for an authenticated
// account. Stamping password_changed_at supersedes every session minted
// before the change, forcing a fresh login.
type ChangePasswordHandler struct {
	accounts   Accounts
	notifier   Notifier
	activity   ActivitySink
	logger     Logger
	bcryptCost int
	now        func() time.Time
}

// NewChangePasswordHandler creates a handler with sane defaults.
func NewChangePasswordHandler(accounts Accounts, notifier Notifier) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		accounts:   accounts,
		notifier:   normalizeNotifier(notifier),
		activity:   noopActivitySink{},
		logger:     defLogger{},
		bcryptCost: DefaultBcryptCost,
		now:        time.Now,
	}
}

// WithActivitySink sets the sink used to emit password change events.
func (h *ChangePasswordHandler) WithActivitySink(sink ActivitySink) *ChangePasswordHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithBcryptCost overrides the hashing cost factor.
func (h *ChangePasswordHandler) WithBcryptCost(cost int) *ChangePasswordHandler {
	h.bcryptCost = cost
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *ChangePasswordHandler) WithClock(clock func() time.Time) *ChangePasswordHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.accounts.GetByID(ctx, event.AccountID)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			return ErrInvalidCredentials
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password change")
	}

	if err := ComparePasswordAndHash(event.CurrentPassword, account.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	if err := CheckPasswordStrength(event.NewPassword); err != nil {
		return err
	}

	// reusing the current password is not a change
	if err := ComparePasswordAndHash(event.NewPassword, account.PasswordHash); err == nil {
		return ErrWeakCredential
	}

	hash, err := HashPasswordWithCost(event.NewPassword, h.bcryptCost)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	account.StampPasswordChange(hash, h.now())

	if account, err = h.accounts.Update(ctx, account); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist password change")
	}

	if err := h.notifier.SendChangePasswordEmail(ctx, account.Email); err != nil {
		h.logger.Warn("password change email failed", "email", account.Email, "error", err)
	}

	h.recordActivity(ctx, account)

	if event.OnResponse != nil {
		event.OnResponse(&ChangePasswordResponse{Account: account})
	}

	return nil
}

func (h *ChangePasswordHandler) recordActivity(ctx context.Context, account *Account) {
	event := ActivityEvent{
		EventType: ActivityEventPasswordChanged,
		Actor: ActorRef{
			ID:   account.ID.Hex(),
			Type: "user",
		},
		AccountID:  account.ID.Hex(),
		OccurredAt: h.now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during password change: %v", err)
	}
}

package auth_test

import (
	"context"
	"testing"
	"time"

	auth "github.com/mukbit/acs-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func pendingAccount(code string, expiresAt time.Time) *auth.Account {
	return &auth.Account{
		ID:                        bson.NewObjectID(),
		Email:                     "user@example.com",
		Name:                      "Test User",
		Verified:                  false,
		VerificationCode:          code,
		VerificationCodeExpiresAt: &expiresAt,
	}
}

func TestVerifyEmailHandlerRedeemsCode(t *testing.T) {
	now := time.Now()
	account := pendingAccount("123456", now.Add(time.Hour))

	accounts := &MockAccounts{}
	notifier := &MockNotifier{}
	sink := &MockActivitySink{}

	accounts.On("GetByVerificationCode", mock.Anything, "123456").
		Return(account, nil).Once()
	accounts.On("Update", mock.Anything, mock.MatchedBy(func(acc *auth.Account) bool {
		return acc.Verified && acc.VerificationCode == "" && acc.VerificationCodeExpiresAt == nil
	})).Return(nil, nil).Once()

	notifier.On("SendWelcomeEmail", mock.Anything, account.Email, account.Name).
		Return(nil).Once()

	sink.On("Record", mock.Anything, mock.MatchedBy(func(evt auth.ActivityEvent) bool {
		return evt.EventType == auth.ActivityEventEmailVerified &&
			evt.AccountID == account.ID.Hex()
	})).Return(nil).Once()

	var resp *auth.VerifyEmailResponse
	handler := auth.NewVerifyEmailHandler(accounts, notifier).
		WithActivitySink(sink).
		WithLogger(testLogger{}).
		WithClock(func() time.Time { return now })

	err := handler.Execute(context.Background(), auth.VerifyEmailMessage{
		Code: "123456",
		OnResponse: func(r *auth.VerifyEmailResponse) {
			resp = r
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Account.Verified)

	accounts.AssertExpectations(t)
	notifier.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestVerifyEmailHandlerUnknownCode(t *testing.T) {
	accounts := &MockAccounts{}
	notifier := &MockNotifier{}

	accounts.On("GetByVerificationCode", mock.Anything, "999999").
		Return(nil, auth.ErrAccountNotFound).Once()

	handler := auth.NewVerifyEmailHandler(accounts, notifier).WithLogger(testLogger{})

	err := handler.Execute(context.Background(), auth.VerifyEmailMessage{Code: "999999"})

	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredCode)
	accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyEmailHandlerExpiryBoundary(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deadline := issued.Add(auth.VerificationCodeTTL)

	t.Run("one second before the deadline still redeems", func(t *testing.T) {
		account := pendingAccount("123456", deadline)

		accounts := &MockAccounts{}
		notifier := &MockNotifier{}

		accounts.On("GetByVerificationCode", mock.Anything, "123456").
			Return(account, nil).Once()
		accounts.On("Update", mock.Anything, mock.Anything).
			Return(nil, nil).Once()
		notifier.On("SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything).
			Return(nil).Once()

		handler := auth.NewVerifyEmailHandler(accounts, notifier).
			WithLogger(testLogger{}).
			WithClock(func() time.Time { return deadline.Add(-time.Second) })

		err := handler.Execute(context.Background(), auth.VerifyEmailMessage{Code: "123456"})
		assert.NoError(t, err)
	})

	t.Run("one second past the deadline is rejected", func(t *testing.T) {
		account := pendingAccount("123456", deadline)

		accounts := &MockAccounts{}
		notifier := &MockNotifier{}

		accounts.On("GetByVerificationCode", mock.Anything, "123456").
			Return(account, nil).Once()

		handler := auth.NewVerifyEmailHandler(accounts, notifier).
			WithLogger(testLogger{}).
			WithClock(func() time.Time { return deadline.Add(time.Second) })

		err := handler.Execute(context.Background(), auth.VerifyEmailMessage{Code: "123456"})
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredCode)
		accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestVerifyEmailHandlerWelcomeEmailFailureIsBestEffort(t *testing.T) {
	now := time.Now()
	account := pendingAccount("123456", now.Add(time.Hour))

	accounts := &MockAccounts{}
	notifier := &MockNotifier{}

	accounts.On("GetByVerificationCode", mock.Anything, "123456").
		Return(account, nil).Once()
	accounts.On("Update", mock.Anything, mock.Anything).
		Return(nil, nil).Once()
	notifier.On("SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError).Once()

	handler := auth.NewVerifyEmailHandler(accounts, notifier).
		WithLogger(testLogger{}).
		WithClock(func() time.Time { return now })

	err := handler.Execute(context.Background(), auth.VerifyEmailMessage{Code: "123456"})

	assert.NoError(t, err)
	accounts.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeDuplicateIdentity    = "AUTH_DUPLICATE_IDENTITY"
	TextCodeWeakCredential       = "AUTH_WEAK_CREDENTIAL"
	TextCodeChallengeFailed      = "AUTH_CHALLENGE_FAILED"
	TextCodeInvalidCredentials   = "AUTH_INVALID_CREDENTIALS"
	TextCodeInvalidOrExpiredCode = "AUTH_INVALID_OR_EXPIRED_CODE"
	TextCodeInvalidResetToken    = "AUTH_INVALID_OR_EXPIRED_TOKEN"
	TextCodeUnauthenticated      = "AUTH_UNAUTHENTICATED"
)

// ErrDuplicateIdentity is returned when a signup email is already taken.
var ErrDuplicateIdentity = errors.New("email already in use", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentity).
	WithCode(errors.CodeConflict)

// ErrWeakCredential is returned when a password fails the strength policy.
var ErrWeakCredential = errors.New("password does not meet the strength policy", errors.CategoryValidation).
	WithTextCode(TextCodeWeakCredential).
	WithCode(errors.CodeBadRequest)

// ErrChallengeFailed is returned when the anti-automation challenge does not verify.
var ErrChallengeFailed = errors.New("challenge verification failed", errors.CategoryValidation).
	WithTextCode(TextCodeChallengeFailed).
	WithCode(errors.CodeBadRequest)

// ErrInvalidCredentials is the uniform login failure: unknown email and
// wrong password are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrInvalidOrExpiredCode covers wrong, unknown, and expired verification
// codes alike so the response leaks nothing about which it was.
var ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidOrExpiredCode).
	WithCode(errors.CodeBadRequest)

// ErrInvalidOrExpiredToken covers unknown, consumed, and expired reset tokens.
var ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidResetToken).
	WithCode(errors.CodeBadRequest)

// ErrUnauthenticated is returned whenever a request lacks a usable session.
// Missing, malformed, expired, and superseded tokens all map here.
var ErrUnauthenticated = errors.New("unauthenticated", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrAccountNotFound is the store's sentinel for a missing account. It is
// never surfaced to clients directly; handlers translate it into the
// uniform error for the flow at hand.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is the hasher's sentinel for a failed compare.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeWeakCredential).
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

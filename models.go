package auth

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Account is the single persisted entity: one document per user holding
// identity, credential, and verification/reset state.
type Account struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string        `bson:"email" json:"email,omitempty"`
	Name         string        `bson:"name" json:"name,omitempty"`
	Phone        string        `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string        `bson:"password_hash" json:"-"`

	Verified                  bool       `bson:"verified" json:"verified"`
	VerificationCode          string     `bson:"verification_code,omitempty" json:"-"`
	VerificationCodeExpiresAt *time.Time `bson:"verification_code_expires_at,omitempty" json:"-"`

	ResetToken          string     `bson:"reset_token,omitempty" json:"-"`
	ResetTokenExpiresAt *time.Time `bson:"reset_token_expires_at,omitempty" json:"-"`

	LastLoginAt       *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	PasswordChangedAt *time.Time `bson:"password_changed_at,omitempty" json:"-"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at,omitempty"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"-"`
}

// HasPendingReset reports whether a reset token is currently attached to
// the account. Expiry is judged by the caller, not here, so expired and
// missing tokens surface through the same code path.
func (a *Account) HasPendingReset() bool {
	return a.ResetToken != ""
}

// ClearVerification removes the verification code fields. Called exactly
// once, when code redemption succeeds.
func (a *Account) ClearVerification() {
	a.VerificationCode = ""
	a.VerificationCodeExpiresAt = nil
}

// ClearReset removes the reset token fields, enforcing single use.
func (a *Account) ClearReset() {
	a.ResetToken = ""
	a.ResetTokenExpiresAt = nil
}

// StampPasswordChange replaces the credential digest and records the
// change instant. Sessions minted before this instant are rejected by the
// auth middleware.
func (a *Account) StampPasswordChange(hash string, at time.Time) {
	a.PasswordHash = hash
	a.PasswordChangedAt = &at
}

// NormalizeEmail trims whitespace and lower-cases an email so lookups and
// stored values agree regardless of how the address was typed.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

const (
	// VerificationCodeTTL bounds how long a signup code stays redeemable.
	VerificationCodeTTL = 24 * time.Hour
	// ResetTokenTTL bounds how long an emailed reset link stays usable.
	ResetTokenTTL = time.Hour

	verificationCodeDigits = 6
	resetTokenBytes        = 20
)

// NewVerificationCode returns a 6 digit numeric code. Low entropy is
// acceptable here: the code is single-use, time-boxed, and delivered
// out-of-band to the address it proves control of.
func NewVerificationCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < verificationCodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", verificationCodeDigits, n), nil
}

// NewResetToken returns a random opaque token for password reset links.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CodesMatch compares a submitted code against the stored one in constant
// time.
func CodesMatch(submitted, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) == 1
}

// Expired reports whether the deadline has passed at the given instant. A
// nil deadline counts as expired, so records that never carried a code or
// token fail the same way stale ones do.
func Expired(deadline *time.Time, now time.Time) bool {
	if deadline == nil {
		return true
	}
	return now.After(*deadline)
}

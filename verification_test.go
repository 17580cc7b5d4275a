package auth_test

import (
	"regexp"
	"testing"
	"time"

	auth "github.com/mukbit/acs-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerificationCode(t *testing.T) {
	sixDigits := regexp.MustCompile(`^\d{6}$`)

	for i := 0; i < 20; i++ {
		code, err := auth.NewVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
	}
}

func TestNewResetToken(t *testing.T) {
	hex40 := regexp.MustCompile(`^[0-9a-f]{40}$`)

	a, err := auth.NewResetToken()
	require.NoError(t, err)
	assert.Regexp(t, hex40, a)

	b, err := auth.NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCodesMatch(t *testing.T) {
	assert.True(t, auth.CodesMatch("123456", "123456"))
	assert.False(t, auth.CodesMatch("123456", "654321"))
	assert.False(t, auth.CodesMatch("", ""))
	assert.False(t, auth.CodesMatch("123456", ""))
}

func TestExpired(t *testing.T) {
	now := time.Now()

	t.Run("nil deadline counts as expired", func(t *testing.T) {
		assert.True(t, auth.Expired(nil, now))
	})

	t.Run("future deadline is not expired", func(t *testing.T) {
		deadline := now.Add(time.Minute)
		assert.False(t, auth.Expired(&deadline, now))
	})

	t.Run("past deadline is expired", func(t *testing.T) {
		deadline := now.Add(-time.Minute)
		assert.True(t, auth.Expired(&deadline, now))
	})

	t.Run("deadline instant itself is still valid", func(t *testing.T) {
		deadline := now
		assert.False(t, auth.Expired(&deadline, now))
	})
}

package auth_test

import (
	"testing"

	auth "github.com/mukbit/acs-auth"
	"github.com/stretchr/testify/assert"
)

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "strong password passes",
			password: "Abcdef1!",
			wantErr:  false,
		},
		{
			name:     "longer strong password passes",
			password: "CorrectHorse7$Battery",
			wantErr:  false,
		},
		{
			name:     "too short",
			password: "Ab1!xyz",
			wantErr:  true,
		},
		{
			name:     "missing upper case",
			password: "abcdef1!",
			wantErr:  true,
		},
		{
			name:     "missing lower case",
			password: "ABCDEF1!",
			wantErr:  true,
		},
		{
			name:     "missing digit",
			password: "Abcdefg!",
			wantErr:  true,
		},
		{
			name:     "missing symbol",
			password: "Abcdefg1",
			wantErr:  true,
		},
		{
			name:     "empty",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.CheckPasswordStrength(tt.password)

			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrWeakCredential)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestStrongPasswordRule(t *testing.T) {
	rule := auth.StrongPassword()

	assert.NoError(t, rule("Abcdef1!"))
	assert.ErrorIs(t, rule("weak"), auth.ErrWeakCredential)
	assert.ErrorIs(t, rule(12345), auth.ErrWeakCredential)
}
